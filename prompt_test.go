package trisync

import (
	"strings"
	"testing"
)

func TestPromptRender(t *testing.T) {
	t.Run("section ordering", func(t *testing.T) {
		p := &Prompt{
			Task:          "Do the thing.",
			CellsBefore:   []CellSnapshot{{ShortDescription: "Load data", Code: "df = pd.read_csv(\"a.csv\")"}},
			CellsAfter:    []CellSnapshot{{ShortDescription: "Plot results"}},
			ExistingLabel: "Existing code",
			Existing:      "x = 1",
			PreviousLabel: "Previous instructions",
			Previous:      "old text",
			Input:         "new text",
			Symbols:       []string{"df", "total"},
			Examples:      []Example{{Input: "in", Output: "out"}},
			Schema:        `{"type": "object"}`,
			Constraints:   []string{"rule one"},
			LanguageHint:  "Russian",
		}
		rendered := p.Render()

		markers := []string{
			"Task: Do the thing.",
			"Cells that run before this one:",
			"Cells that run after this one:",
			"Existing code:\nx = 1",
			"Previous instructions:\nold text",
			"Input:\nnew text",
			"Use these exact names in the code:",
			"Examples:",
			"Return JSON matching this schema exactly:",
			"Constraints:",
			"The input is written in Russian. Respond in Russian.",
		}
		last := -1
		for _, m := range markers {
			idx := strings.Index(rendered, m)
			if idx == -1 {
				t.Fatalf("Rendered prompt missing %q:\n%s", m, rendered)
			}
			if idx < last {
				t.Errorf("Section %q rendered out of order", m)
			}
			last = idx
		}
	})

	t.Run("empty sections skipped", func(t *testing.T) {
		p := &Prompt{Task: "Rewrite it.", Input: "text"}
		rendered := p.Render()

		for _, absent := range []string{"Existing", "Previous", "Examples:", "Constraints:", "schema"} {
			if strings.Contains(rendered, absent) {
				t.Errorf("Empty section %q leaked into render:\n%s", absent, rendered)
			}
		}
	})

	t.Run("default labels", func(t *testing.T) {
		p := &Prompt{Task: "t", Input: "i", Existing: "e", Previous: "pr"}
		rendered := p.Render()
		if !strings.Contains(rendered, "Existing content:\ne") {
			t.Errorf("Default existing label missing:\n%s", rendered)
		}
		if !strings.Contains(rendered, "Previous version:\npr") {
			t.Errorf("Default previous label missing:\n%s", rendered)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		p := &Prompt{
			Task:        "t",
			Input:       "i",
			Symbols:     []string{"a", "b"},
			Constraints: []string{"c1", "c2"},
		}
		if p.Render() != p.Render() {
			t.Error("Render is not deterministic")
		}
	})

	t.Run("cell code indented under description", func(t *testing.T) {
		p := &Prompt{
			Task:        "t",
			Input:       "i",
			CellsBefore: []CellSnapshot{{ShortDescription: "Load", Code: "a = 1\nb = 2"}},
		}
		rendered := p.Render()
		if !strings.Contains(rendered, "  1. Load\n     a = 1\n     b = 2") {
			t.Errorf("Cell code not indented:\n%s", rendered)
		}
	})
}

func TestPromptValidate(t *testing.T) {
	tests := []struct {
		name    string
		prompt  Prompt
		wantErr bool
	}{
		{"valid", Prompt{Task: "t", Input: "i"}, false},
		{"existing satisfies input", Prompt{Task: "t", Existing: "e"}, false},
		{"missing task", Prompt{Input: "i"}, true},
		{"missing input", Prompt{Task: "t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prompt.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
