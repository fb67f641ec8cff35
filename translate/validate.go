package translate

import "strings"

// MaxUnitLength caps how long a single unit may be, in runes. Blocks
// past the cap are almost always extraction artifacts and would blow
// the provider's context anyway.
const MaxUnitLength = 4000

// Translatable reports whether a unit's text is worth sending to the
// provider. Blank text, lone punctuation, markup commands and
// oversized blocks are skipped; skipped units keep their source text
// in the output.
func Translatable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if len([]rune(trimmed)) > MaxUnitLength {
		return false
	}
	// TeX-style commands leak out of formula-heavy documents and
	// come back mangled.
	if strings.HasPrefix(trimmed, "\\") {
		return false
	}
	return hasLetter(trimmed)
}

// hasLetter reports whether the text has at least one letter or
// ideograph, so bare numbers and punctuation runs are skipped.
func hasLetter(text string) bool {
	for _, r := range text {
		if isLetterLike(r) {
			return true
		}
	}
	return false
}

func isLetterLike(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= 0x00C0 && r <= 0x024F: // Latin supplements
		return true
	case r >= 0x0370 && r <= 0x03FF: // Greek
		return true
	case r >= 0x0400 && r <= 0x04FF: // Cyrillic
		return true
	case r >= 0x3040 && r <= 0x30FF: // kana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK ideographs
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // hangul
		return true
	default:
		return false
	}
}
