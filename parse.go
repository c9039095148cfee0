package trisync

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParseStrategy records which fallback level produced a parsed response.
type ParseStrategy string

// Parse strategies, from strictest to most permissive.
const (
	ParsedJSON  ParseStrategy = "json"
	ParsedScan  ParseStrategy = "scan"
	ParsedFence ParseStrategy = "fence"
	ParsedRaw   ParseStrategy = "raw"
)

// ParsedResponse is the normalized form of a raw model reply.
type ParsedResponse struct {
	Code            string
	Symbols         []SymbolInfo
	NotebookSymbols []SymbolInfo
	Strategy        ParseStrategy
}

// codeContract is the structured output shape code-producing prompts ask
// the model to return.
type codeContract struct {
	Code            string       `json:"code" desc:"generated code, \\n newlines, quotes escaped"`
	Symbols         []SymbolInfo `json:"symbols" desc:"symbols this cell defines"`
	NotebookSymbols []SymbolInfo `json:"notebookSymbols" desc:"symbols reused from other cells"`
}

// codeFence matches a python-tagged or bare triple fence and captures the
// interior.
var codeFence = regexp.MustCompile("(?s)```(?:python|py)?[ \t]*\n(.*?)```")

// ParseResponse recovers structured content from a raw model reply.
//
// For non-code directions the trimmed reply is returned as-is. For code
// directions it degrades through strategies: parse the whole reply as the
// JSON contract; scan for the first balanced JSON object carrying a "code"
// key (string- and escape-aware, so braces inside code strings do not
// truncate the span); extract a fenced code block; finally fall back to the
// trimmed raw text. It never fails.
func ParseResponse(raw string, extractCode bool) ParsedResponse {
	trimmed := strings.TrimSpace(raw)

	if !extractCode {
		return ParsedResponse{Code: trimmed, Strategy: ParsedRaw}
	}

	if parsed, ok := parseContract([]byte(trimmed)); ok {
		parsed.Strategy = ParsedJSON
		return parsed
	}

	if parsed, ok := scanForContract(trimmed); ok {
		parsed.Strategy = ParsedScan
		return parsed
	}

	if m := codeFence.FindStringSubmatch(trimmed); m != nil {
		return ParsedResponse{Code: strings.TrimSpace(m[1]), Strategy: ParsedFence}
	}

	return ParsedResponse{Code: trimmed, Strategy: ParsedRaw}
}

// parseContract attempts a strict parse of data as the code contract. The
// object must carry a "code" key; symbol entries with empty names or
// unrecognized kinds are dropped silently.
func parseContract(data []byte) (ParsedResponse, bool) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return ParsedResponse{}, false
	}
	if _, ok := keys["code"]; !ok {
		return ParsedResponse{}, false
	}

	var contract codeContract
	if err := json.Unmarshal(data, &contract); err != nil {
		return ParsedResponse{}, false
	}

	return ParsedResponse{
		Code:            contract.Code,
		Symbols:         filterSymbols(contract.Symbols),
		NotebookSymbols: filterSymbols(contract.NotebookSymbols),
	}, true
}

// scanForContract walks the reply looking for a balanced JSON object that
// parses as the contract. Candidates are tried at every opening brace, so
// prose or fences around the object do not matter.
func scanForContract(s string) (ParsedResponse, bool) {
	for start := strings.IndexByte(s, '{'); start != -1; {
		if span, ok := balancedObject(s[start:]); ok {
			if parsed, ok := parseContract([]byte(span)); ok {
				return parsed, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next == -1 {
			break
		}
		start += 1 + next
	}
	return ParsedResponse{}, false
}

// balancedObject returns the shortest brace-balanced prefix of s, tracking
// string and escape state so braces inside string values do not count.
// s must start with '{'.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// filterSymbols keeps entries with a non-empty name and a recognized kind.
// Malformed symbol metadata must not fail the sync.
func filterSymbols(symbols []SymbolInfo) []SymbolInfo {
	var kept []SymbolInfo
	for _, s := range symbols {
		if s.Name == "" {
			continue
		}
		if s.Kind != SymbolVariable && s.Kind != SymbolFunction {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}
