package views

import (
	"strings"
	"unicode/utf8"
)

// previewRunes is the widest a contact-list preview gets before it is
// cut with an ellipsis.
const previewRunes = 30

// truncatePreview cuts s to previewRunes runes, appending "..." when
// anything was cut. Counting is rune-based so multibyte text never gets
// split mid-character.
func truncatePreview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewRunes]) + "..."
}

// sanitizeForTerminal removes Unicode codepoints that break cell-width
// accounting in tcell: skin tone modifiers, zero width joiners and
// variation selectors. Multi-codepoint emoji collapse to their base
// glyph, which renders at a stable width.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isProblematicRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isProblematicRune(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r == 0x200D: // zero width joiner
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0xE0100 && r <= 0xE01EF: // variation selectors supplement
		return true
	default:
		return false
	}
}
