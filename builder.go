package trisync

// BuildPrompt renders the exact prompt text for a direction and context.
// It is a pure function: no I/O, no side effects, deterministic for
// identical inputs. Unknown directions render through the codeAssist
// template; callers are expected to validate the direction first.
func BuildPrompt(direction Direction, sc SyncContext) string {
	return promptFor(direction, sc).Render()
}

// promptFor dispatches to the per-direction template.
func promptFor(direction Direction, sc SyncContext) *Prompt {
	var p *Prompt

	switch direction {
	case DirectionExpand:
		p = expandPrompt(sc)
	case DirectionShorten:
		p = shortenPrompt(sc)
	case DirectionShortToPseudo:
		p = shortToPseudoPrompt(sc)
	case DirectionPseudoToShort:
		p = pseudoToShortPrompt(sc)
	case DirectionToCode, DirectionPseudoToCode, DirectionShortToCode:
		p = toCodePrompt(direction, sc)
	case DirectionToInstructions, DirectionCodeToShort:
		p = codeToShortPrompt(sc)
	case DirectionCodeToPseudo:
		p = codeToPseudoPrompt(sc)
	default:
		p = codeAssistPrompt(sc)
	}

	p.LanguageHint = languageHint(sc.NewContent)
	return p
}

// tokenRules are the parameter and mention preservation rules shared by
// every description-rewriting direction.
var tokenRules = []string{
	"Keep every {{name:value}} token exactly as written; never convert one back to a bare literal",
	"Convert bare literals the user typed (numbers, file names, dates) into {{name:value}} tokens with a short descriptive name",
	"Keep every #mention exactly as written",
	"Return only the rewritten text, nothing else",
}

// qualityRules hold the content-quality contract for description-to-
// description conversions. These are enforced by instruction only; nothing
// checks them mechanically.
var qualityRules = []string{
	"Do not introduce implementation details or algorithmic strategy the input does not state",
	"Do not drop any requirement the input states",
}

// descriptionRules combines the two rule sets into a fresh slice.
func descriptionRules() []string {
	rules := make([]string, 0, len(tokenRules)+len(qualityRules))
	rules = append(rules, tokenRules...)
	rules = append(rules, qualityRules...)
	return rules
}

func expandPrompt(sc SyncContext) *Prompt {
	return &Prompt{
		Task:  "Rewrite the instruction below with more explicit detail, in the same voice, without changing what it asks for.",
		Input: sc.NewContent,
		Examples: []Example{
			{
				Input:  "Plot {{column:revenue}} by month",
				Output: "Group the data by month, total {{column:revenue}} within each group, and draw a line chart of the monthly totals",
			},
		},
		Constraints: descriptionRules(),
	}
}

func shortenPrompt(sc SyncContext) *Prompt {
	return &Prompt{
		Task:  "Rewrite the instruction below as a single terse imperative sentence.",
		Input: sc.NewContent,
		Examples: []Example{
			{
				Input:  "Please could you load the file sales.csv and then remove every row where the amount column is below 100",
				Output: "Load {{file:sales.csv}} and keep rows where {{column:amount}} >= {{threshold:100}}",
			},
			{
				Input:  "Generate the first 20 Fibonacci numbers, store in #fib, and print",
				Output: "Generate the first {{count:20}} Fibonacci numbers, store in #fib, and print",
			},
		},
		Constraints: descriptionRules(),
	}
}

func shortToPseudoPrompt(sc SyncContext) *Prompt {
	p := &Prompt{
		Task:  "Elaborate the short instruction below into numbered step-by-step pseudo-code in plain language.",
		Input: sc.NewContent,
		Examples: []Example{
			{
				Input:  "Load {{file:sales.csv}} and keep rows where {{column:amount}} >= {{threshold:100}}",
				Output: "1. Load {{file:sales.csv}} into a table\n2. Keep only the rows where {{column:amount}} >= {{threshold:100}}\n3. Store the result for later cells",
			},
		},
		Constraints: descriptionRules(),
	}
	if sc.ExistingCounterpart != "" {
		p.ExistingLabel = "Current step-by-step version, to be replaced"
		p.Existing = sc.ExistingCounterpart
	}
	return p
}

func pseudoToShortPrompt(sc SyncContext) *Prompt {
	p := &Prompt{
		Task:  "Condense the step-by-step pseudo-code below into one terse instruction sentence.",
		Input: sc.NewContent,
		Examples: []Example{
			{
				Input:  "1. Load {{file:sales.csv}} into a table\n2. Keep only the rows where {{column:amount}} >= {{threshold:100}}",
				Output: "Load {{file:sales.csv}} and keep rows where {{column:amount}} >= {{threshold:100}}",
			},
		},
		Constraints: descriptionRules(),
	}
	if sc.ExistingCounterpart != "" {
		p.ExistingLabel = "Current short version, to be replaced"
		p.Existing = sc.ExistingCounterpart
	}
	return p
}

// codeMode selects the →Code sub-case from data availability.
type codeMode int

const (
	codeFresh codeMode = iota
	codeReference
	codeIncremental
)

func selectCodeMode(sc SyncContext) codeMode {
	if sc.ExistingCounterpart == "" {
		return codeFresh
	}
	if sc.PreviousContent != "" && sc.PreviousContent != sc.NewContent {
		return codeIncremental
	}
	return codeReference
}

func toCodePrompt(direction Direction, sc SyncContext) *Prompt {
	p := &Prompt{
		Input:       sc.NewContent,
		CellsBefore: sc.CellsBefore,
		CellsAfter:  sc.CellsAfter,
		Symbols:     proposedSymbols(sc),
		Schema:      codeSchema,
	}

	source := "instructions"
	if direction == DirectionPseudoToCode {
		source = "step-by-step pseudo-code"
	}

	switch selectCodeMode(sc) {
	case codeFresh:
		p.Task = "Write Python code for a notebook cell that implements the " + source + " below."
	case codeReference:
		p.Task = "Regenerate this cell's code so it implements the " + source + " below. Use the existing code as a reference for naming and style."
		p.ExistingLabel = "Existing code"
		p.Existing = sc.ExistingCounterpart
	case codeIncremental:
		p.Task = "The " + source + " for this cell changed. Apply the smallest edit to the existing code that reflects the change; leave unrelated lines untouched."
		p.ExistingLabel = "Existing code"
		p.Existing = sc.ExistingCounterpart
		p.PreviousLabel = "Previous instructions, before the change"
		p.Previous = sc.PreviousContent
	}

	p.Constraints = []string{
		"Substitute each {{name:value}} token with its bare value in the code",
		"Do not re-import modules or recompute values that cells running before this one already provide; reuse their variables",
		"Define every listed name exactly as given",
		"List every variable and function this cell defines in symbols, and every symbol reused from other cells in notebookSymbols",
		"In the JSON, encode newlines in code as \\n and escape quotes so the whole reply is one valid JSON object",
		"Return the JSON object only, with no surrounding prose or fences",
	}
	return p
}

func codeToShortPrompt(sc SyncContext) *Prompt {
	p := &Prompt{
		Task:        "Describe what the code below does as one terse instruction sentence.",
		Input:       sc.NewContent,
		CellsBefore: sc.CellsBefore,
		Examples: []Example{
			{
				Input:  "df = pd.read_csv(\"sales.csv\")\ndf = df[df[\"amount\"] > 100]",
				Output: "Load {{file:sales.csv}} and keep rows where {{column:amount}} > {{threshold:100}}",
			},
		},
		Constraints: []string{
			"Convert hardcoded literals in the code (numbers, file names, dates) into {{name:value}} tokens with a short descriptive name",
			"Refer to variables and functions the code defines as #name mentions",
			"Describe intent, not mechanics: no library or API names unless the instruction depends on them",
			"Return only the instruction text, nothing else",
		},
	}
	if sc.ExistingCounterpart != "" {
		p.ExistingLabel = "Current description, to be replaced"
		p.Existing = sc.ExistingCounterpart
	}
	return p
}

func codeToPseudoPrompt(sc SyncContext) *Prompt {
	p := &Prompt{
		Task:        "Describe what the code below does as numbered step-by-step pseudo-code in plain language.",
		Input:       sc.NewContent,
		CellsBefore: sc.CellsBefore,
		Examples: []Example{
			{
				Input:  "df = pd.read_csv(\"sales.csv\")\ndf = df[df[\"amount\"] > 100]",
				Output: "1. Load {{file:sales.csv}} into a table\n2. Keep only the rows where {{column:amount}} > {{threshold:100}}",
			},
		},
		Constraints: []string{
			"Convert hardcoded literals in the code into {{name:value}} tokens with a short descriptive name",
			"Refer to variables and functions the code defines as #name mentions",
			"One step per line, numbered, in execution order",
			"Return only the steps, nothing else",
		},
	}
	if sc.ExistingCounterpart != "" {
		p.ExistingLabel = "Current step-by-step version, to be replaced"
		p.Existing = sc.ExistingCounterpart
	}
	return p
}

func codeAssistPrompt(sc SyncContext) *Prompt {
	return &Prompt{
		Task:          "Modify the code below as requested.",
		ExistingLabel: "Code",
		Existing:      sc.ExistingCounterpart,
		Input:         sc.NewContent,
		CellsBefore:   sc.CellsBefore,
		Constraints: []string{
			"Explain briefly what you changed",
			"End the reply with the full updated code in a ```python fence",
		},
	}
}

// proposedSymbols resolves the exact-names block for code generation:
// caller-supplied names win; otherwise #mentions are lifted from the source
// text.
func proposedSymbols(sc SyncContext) []string {
	if len(sc.ProposedSymbols) > 0 {
		return sc.ProposedSymbols
	}
	return ExtractSymbolMentions(sc.NewContent)
}
