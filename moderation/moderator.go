// Package moderation filters user-settable display names: length and
// whitespace hygiene plus Aho-Corasick censoring of a configured word
// list, resilient to leet-speak and punctuation padding.
package moderation

import (
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"price-pact/errors"
)

type NameFilter struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	maxLen       int
}

// NewNameFilter builds the automaton over a normalized version of the
// word list. An empty list disables censoring but keeps the hygiene
// rules.
func NewNameFilter(censoredWords []string, censoredChar rune, maxLen int) (NameFilter, error) {
	f := NameFilter{censoredChar: censoredChar, maxLen: maxLen}
	if len(censoredWords) == 0 {
		return f, nil
	}
	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i] = foldRunes([]rune(word))
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return NameFilter{}, err
	}
	f.matcher = m
	return f, nil
}

// Clean validates and censors a display name. Empty or oversized names
// are rejected rather than repaired; forbidden words are starred out in
// place so the name keeps its shape.
func (f *NameFilter) Clean(name string) (string, error) {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) == 0 || len(runes) > f.maxLen {
		return "", errors.ErrNameRejected
	}
	if f.matcher == nil {
		return name, nil
	}

	folded, origIdx := fold(runes)
	if len(folded) == 0 {
		return name, nil
	}
	spans := f.matcher.MultiPatternSearch(folded, false)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			runes[i] = f.censoredChar
		}
	}
	return string(runes), nil
}

// fold lowercases, strips separator noise and undoes common leet
// substitutions, keeping a map back to original rune positions.
func fold(input []rune) ([]rune, []int) {
	folded := make([]rune, 0, len(input))
	origIdx := make([]int, 0, len(input))
	for i, r := range input {
		plain := unleet(r)
		if isNoise(plain) {
			continue
		}
		folded = append(folded, unicode.ToLower(plain))
		origIdx = append(origIdx, i)
	}
	return folded, origIdx
}

func foldRunes(input []rune) []rune {
	folded, _ := fold(input)
	return folded
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
