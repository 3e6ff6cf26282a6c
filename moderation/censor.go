// Package moderation holds the per-room moderation ledger (bans and kicks)
// and the profanity censor applied to message bodies.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Censor masks forbidden words in message bodies. Matching is done on a
// normalized form (lowercased, leet speak folded, punctuation and spacing
// stripped) so "B.4.d word" variants are still caught, while the masked
// output preserves the original spacing.
type Censor struct {
	matcher     *goahocorasick.Machine
	maskingRune rune
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewCensor builds the Aho-Corasick automaton from the forbidden word list.
func NewCensor(words []string, maskingRune rune) (*Censor, error) {
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = normalizeRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Censor{matcher: m, maskingRune: maskingRune}, nil
}

// Apply masks every forbidden pattern in the input and reports whether
// anything was masked.
func (c *Censor) Apply(original string) (string, bool) {
	mapping := c.normalize(original)
	if len(mapping.normalized) == 0 {
		return original, false
	}

	spans := c.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, false
	}

	origRunes := []rune(original)
	masked := false
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(mapping.origIdx) {
			continue
		}

		origStart := mapping.origIdx[normStart]
		origEnd := mapping.origIdx[normEnd-1] + 1
		for i := origStart; i < origEnd; i++ {
			origRunes[i] = c.maskingRune
		}
		masked = true
	}

	return string(origRunes), masked
}

// normalize builds the searchable form of the input while remembering
// where every kept rune sat in the original.
func (c *Censor) normalize(input string) textMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := foldRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return textMapping{normalized: norm, origIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := foldRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// foldRune maps common leet speak substitutions back to their letter.
func foldRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies runes ignored during pattern matching.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
