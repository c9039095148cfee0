package trisync

import "fmt"

// Direction identifies the conversion a sync performs between two of the
// three representations. The set is closed; each direction selects its own
// prompt template and determines which SyncContext slots are relevant.
type Direction string

const (
	// DirectionExpand rewrites the instruction at a higher level of
	// detail without changing representation.
	DirectionExpand Direction = "expandInstructions"

	// DirectionShorten rewrites the instruction tersely, converting bare
	// literals into {{name:value}} tokens.
	DirectionShorten Direction = "shortenInstructions"

	// DirectionShortToPseudo elaborates a short instruction into
	// step-by-step pseudo-code.
	DirectionShortToPseudo Direction = "shortToPseudo"

	// DirectionPseudoToShort condenses pseudo-code steps into a short
	// instruction.
	DirectionPseudoToShort Direction = "pseudoToShort"

	// DirectionToCode generates code from an instruction (legacy
	// single-shot entry point).
	DirectionToCode Direction = "toCode"

	// DirectionPseudoToCode generates code from the detailed steps.
	DirectionPseudoToCode Direction = "pseudoToCode"

	// DirectionShortToCode generates code from the short instruction.
	DirectionShortToCode Direction = "shortToCode"

	// DirectionToInstructions derives a short instruction from code
	// (legacy single-shot entry point).
	DirectionToInstructions Direction = "toInstructions"

	// DirectionCodeToShort derives the short instruction from code.
	DirectionCodeToShort Direction = "codeToShort"

	// DirectionCodeToPseudo derives the detailed steps from code.
	DirectionCodeToPseudo Direction = "codeToPseudo"

	// DirectionCodeAssist applies a free-form edit request to code.
	// Output is freeform with an optional trailing fenced code block.
	DirectionCodeAssist Direction = "codeAssist"
)

// directions lists every valid direction.
var directions = map[Direction]bool{
	DirectionExpand:         true,
	DirectionShorten:        true,
	DirectionShortToPseudo:  true,
	DirectionPseudoToShort:  true,
	DirectionToCode:         true,
	DirectionPseudoToCode:   true,
	DirectionShortToCode:    true,
	DirectionToInstructions: true,
	DirectionCodeToShort:    true,
	DirectionCodeToPseudo:   true,
	DirectionCodeAssist:     true,
}

// Valid reports whether d is a member of the closed direction set.
func (d Direction) Valid() bool {
	return directions[d]
}

// ProducesCode reports whether d generates code under the structured JSON
// contract.
func (d Direction) ProducesCode() bool {
	switch d {
	case DirectionToCode, DirectionPseudoToCode, DirectionShortToCode:
		return true
	}
	return false
}

// FromCode reports whether d derives a description from code.
func (d Direction) FromCode() bool {
	switch d {
	case DirectionToInstructions, DirectionCodeToShort, DirectionCodeToPseudo:
		return true
	}
	return false
}

// ExtractsCode reports whether the response parser should attempt code
// extraction for d. Covers the JSON-contract directions plus codeAssist,
// whose freeform output may carry a trailing fenced block.
func (d Direction) ExtractsCode() bool {
	return d.ProducesCode() || d == DirectionCodeAssist
}

// validateDirection returns a descriptive error for directions outside the
// closed set.
func validateDirection(d Direction) error {
	if !d.Valid() {
		return fmt.Errorf("unknown sync direction %q", string(d))
	}
	return nil
}
