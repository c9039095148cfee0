package trisync

// scriptRange is a half-open set of Unicode blocks associated with a
// language hint.
type scriptRange struct {
	language string
	ranges   [][2]rune
}

// scriptRanges are checked independently in fixed priority order; the first
// language whose script appears in the text wins. This is a heuristic for
// keeping generated content in the source language, not a language
// detector: mixed-script input matches only the highest-priority script.
var scriptRanges = []scriptRange{
	{"Hebrew", [][2]rune{{0x0590, 0x05FF}}},
	{"Arabic", [][2]rune{{0x0600, 0x06FF}, {0x0750, 0x077F}}},
	{"Chinese", [][2]rune{{0x4E00, 0x9FFF}, {0x3400, 0x4DBF}}},
	{"Japanese", [][2]rune{{0x3040, 0x309F}, {0x30A0, 0x30FF}}},
	{"Korean", [][2]rune{{0xAC00, 0xD7AF}, {0x1100, 0x11FF}}},
	{"Russian", [][2]rune{{0x0400, 0x04FF}}},
}

// languageHint returns the language name whose script appears first in
// priority order, or "" when the text is entirely Latin/other.
func languageHint(text string) string {
	for _, sr := range scriptRanges {
		if containsScript(text, sr.ranges) {
			return sr.language
		}
	}
	return ""
}

func containsScript(text string, ranges [][2]rune) bool {
	for _, r := range text {
		for _, span := range ranges {
			if r >= span[0] && r <= span[1] {
				return true
			}
		}
	}
	return false
}
