package trisync

import (
	"fmt"
	"strings"
)

// Example is one few-shot input/output pair embedded in a prompt.
type Example struct {
	Input  string
	Output string
}

// Prompt is the structured form of an LLM prompt. Every direction renders
// through the same canonical section order, so prompts stay consistent
// across the direction set.
type Prompt struct {
	Task string // Required: what the model should do

	CellsBefore []CellSnapshot // Sibling cells that run earlier
	CellsAfter  []CellSnapshot // Sibling cells that run later

	ExistingLabel string // Heading for Existing, e.g. "Existing code"
	Existing      string // Current target-representation content
	PreviousLabel string // Heading for Previous
	Previous      string // Last-synced source content

	Input string // Required: the content being synced from

	Symbols  []string  // Exact names generated code must define
	Examples []Example // Few-shot guidance

	Schema      string   // JSON contract for code-producing directions
	Constraints []string // Rules, always rendered last before the hint

	LanguageHint string // Non-empty when the input is non-Latin script
}

// Render flattens the prompt to the text sent to a model. Ordering is
// fixed; empty sections are skipped. Deterministic for identical inputs.
func (p *Prompt) Render() string {
	var sections []string

	if p.Task != "" {
		sections = append(sections, "Task: "+p.Task)
	}

	if len(p.CellsBefore) > 0 {
		sections = append(sections, renderCells("Cells that run before this one:", p.CellsBefore))
	}
	if len(p.CellsAfter) > 0 {
		sections = append(sections, renderCells("Cells that run after this one:", p.CellsAfter))
	}

	if p.Existing != "" {
		label := p.ExistingLabel
		if label == "" {
			label = "Existing content"
		}
		sections = append(sections, label+":\n"+p.Existing)
	}

	if p.Previous != "" {
		label := p.PreviousLabel
		if label == "" {
			label = "Previous version"
		}
		sections = append(sections, label+":\n"+p.Previous)
	}

	if p.Input != "" {
		sections = append(sections, "Input:\n"+p.Input)
	}

	if len(p.Symbols) > 0 {
		sym := "Use these exact names in the code:\n"
		for _, s := range p.Symbols {
			sym += "- " + s + "\n"
		}
		sections = append(sections, strings.TrimSpace(sym))
	}

	if len(p.Examples) > 0 {
		ex := "Examples:\n"
		for i, e := range p.Examples {
			ex += fmt.Sprintf("  %d. Input: %s\n     Output: %s\n", i+1, e.Input, e.Output)
		}
		sections = append(sections, strings.TrimSpace(ex))
	}

	if p.Schema != "" {
		sections = append(sections, "Return JSON matching this schema exactly:\n"+p.Schema)
	}

	if len(p.Constraints) > 0 {
		con := "Constraints:\n"
		for _, c := range p.Constraints {
			con += "- " + c + "\n"
		}
		sections = append(sections, strings.TrimSpace(con))
	}

	if p.LanguageHint != "" {
		sections = append(sections, "The input is written in "+p.LanguageHint+". Respond in "+p.LanguageHint+".")
	}

	return strings.Join(sections, "\n\n")
}

// Validate checks the prompt has its required fields.
func (p *Prompt) Validate() error {
	if p.Task == "" {
		return fmt.Errorf("prompt missing required Task field")
	}
	if p.Input == "" && p.Existing == "" {
		return fmt.Errorf("prompt missing required Input field")
	}
	return nil
}

func renderCells(heading string, cells []CellSnapshot) string {
	out := heading + "\n"
	for i, c := range cells {
		out += fmt.Sprintf("  %d. %s\n", i+1, c.ShortDescription)
		if c.Code != "" {
			out += indent(c.Code, "     ") + "\n"
		}
	}
	return strings.TrimSpace(out)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
