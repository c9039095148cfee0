package trisync

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParameterType classifies a parameter's value for editor widgets.
type ParameterType string

// Parameter types. Extraction infers only ParameterNumber and
// ParameterString; the richer types are assigned by the caller's UI.
const (
	ParameterString  ParameterType = "string"
	ParameterNumber  ParameterType = "number"
	ParameterColumn  ParameterType = "column"
	ParameterDate    ParameterType = "date"
	ParameterBoolean ParameterType = "boolean"
)

// Parameter is one named, editable value lifted out of instruction text.
// Identity is positional: ID follows extraction order and is only stable
// within one extraction. Name is the semantically stable key.
type Parameter struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Value string        `json:"value"`
	Type  ParameterType `json:"type"`

	// Optional bounds for enumerated or ranged values.
	Options []string `json:"options,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

// StructuredInstructions is the display form of parameterized text:
// Text holds ordinal {{0}}, {{1}}, ... placeholders indexing into
// Parameters. The storage form kept in short/detailed text is the
// self-describing {{name:value}} token.
type StructuredInstructions struct {
	Text       string      `json:"text"`
	Parameters []Parameter `json:"parameters"`
}

// Resolve substitutes each ordinal placeholder with its parameter's bare
// value, yielding plain unparameterized text.
func (si StructuredInstructions) Resolve() string {
	text := si.Text
	for _, p := range si.Parameters {
		text = strings.ReplaceAll(text, fmt.Sprintf("{{%d}}", p.ID), p.Value)
	}
	return text
}

// paramToken matches one well-formed {{name:value}} token. Names are
// identifiers, so the first colon always splits name from value; values may
// contain colons but never braces. Unbalanced or malformed spans simply do
// not match.
var paramToken = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*):([^{}]*)\}\}`)

// symbolMention matches one #identifier reference.
var symbolMention = regexp.MustCompile(`#([A-Za-z_][A-Za-z0-9_]*)`)

// Extraction is the outcome of scanning text for parameter tokens.
type Extraction struct {
	// DisplayText has each token replaced by its ordinal {{id}}.
	DisplayText string

	// OriginalText is the input, untouched.
	OriginalText string

	Parameters []Parameter
}

// Instructions converts the extraction into the display form.
func (e Extraction) Instructions() StructuredInstructions {
	return StructuredInstructions{Text: e.DisplayText, Parameters: e.Parameters}
}

// ExtractParameters scans text for {{name:value}} tokens left to right,
// assigning positional IDs from 0, and returns the display form alongside
// the untouched original. Text without any token passes through verbatim
// with an empty parameter list. It never fails: anything that is not a
// well-formed token is left alone.
func ExtractParameters(text string) Extraction {
	var params []Parameter

	display := paramToken.ReplaceAllStringFunc(text, func(tok string) string {
		m := paramToken.FindStringSubmatch(tok)
		p := Parameter{
			ID:    len(params),
			Name:  m[1],
			Value: m[2],
			Type:  inferType(m[2]),
		}
		params = append(params, p)
		return fmt.Sprintf("{{%d}}", p.ID)
	})

	return Extraction{DisplayText: display, OriginalText: text, Parameters: params}
}

// inferType treats a value as a number iff its trimmed form parses as a
// finite one. ParseFloat also accepts NaN and Inf spellings; those stay
// strings. An empty value is a string.
func inferType(value string) ParameterType {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ParameterString
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return ParameterNumber
	}
	return ParameterString
}

// ReinsertParameter replaces every occurrence of the exact literal token
// {{name:oldValue}} with {{name:newValue}}. Matching is literal, never a
// caller-controlled pattern, so a parameter-only edit (a slider drag) can be
// applied independently to all three representations without an LLM
// round-trip.
func ReinsertParameter(text, name, oldValue, newValue string) string {
	oldTok := "{{" + name + ":" + oldValue + "}}"
	newTok := "{{" + name + ":" + newValue + "}}"
	return strings.ReplaceAll(text, oldTok, newTok)
}

// ExtractSymbolMentions returns the #identifier mentions in text,
// de-duplicated, in order of first appearance.
func ExtractSymbolMentions(text string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, m := range symbolMention.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}
