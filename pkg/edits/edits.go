// Package edits generates the strings reachable from a word by one or two
// single-character edits: deletes, transposes, replaces and inserts.
//
// Words are cut on rune boundaries, so multi-byte input never yields broken
// UTF-8. The replacement and insertion alphabet is fixed to the 26 lowercase
// Latin letters.
package edits

import (
	"sort"
	"unicode/utf8"
)

// Alphabet is the set of letters used by replaces and inserts.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

// Set is an unordered collection of distinct strings.
type Set map[string]struct{}

// NewSet builds a Set from the given words.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Add inserts word into the set.
func (s Set) Add(word string) {
	s[word] = struct{}{}
}

// Has reports whether word is in the set.
func (s Set) Has(word string) bool {
	_, ok := s[word]
	return ok
}

// Len returns the number of distinct words.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Split is one way of cutting a word in two, Left+Right == word.
type Split struct {
	Left  string
	Right string
}

// Splits returns the n+1 cuts of word, from empty-left to empty-right.
func Splits(word string) []Split {
	splits := make([]Split, 0, utf8.RuneCountInString(word)+1)
	for i := range word {
		splits = append(splits, Split{Left: word[:i], Right: word[i:]})
	}
	return append(splits, Split{Left: word, Right: ""})
}

// Deletes drops the first rune of every non-empty right side.
func Deletes(splits []Split) []string {
	out := make([]string, 0, len(splits))
	for _, s := range splits {
		if s.Right == "" {
			continue
		}
		_, w := utf8.DecodeRuneInString(s.Right)
		out = append(out, s.Left+s.Right[w:])
	}
	return out
}

// Transposes swaps the first two runes of every right side that has at least two.
func Transposes(splits []Split) []string {
	out := make([]string, 0, len(splits))
	for _, s := range splits {
		first, w1 := utf8.DecodeRuneInString(s.Right)
		if w1 == 0 || w1 == len(s.Right) {
			continue
		}
		second, w2 := utf8.DecodeRuneInString(s.Right[w1:])
		out = append(out, s.Left+string(second)+string(first)+s.Right[w1+w2:])
	}
	return out
}

// Replaces substitutes every alphabet letter for the first rune of every
// non-empty right side. The no-op substitution is kept.
func Replaces(splits []Split) []string {
	out := make([]string, 0, len(splits)*len(Alphabet))
	for _, s := range splits {
		if s.Right == "" {
			continue
		}
		_, w := utf8.DecodeRuneInString(s.Right)
		for _, c := range Alphabet {
			out = append(out, s.Left+string(c)+s.Right[w:])
		}
	}
	return out
}

// Inserts places every alphabet letter at every cut, including the end.
func Inserts(splits []Split) []string {
	out := make([]string, 0, len(splits)*len(Alphabet))
	for _, s := range splits {
		for _, c := range Alphabet {
			out = append(out, s.Left+string(c)+s.Right)
		}
	}
	return out
}

// Walk1 calls fn for every single-edit variant of word. Variants are not
// deduplicated; callers that need a set should use Edits1.
func Walk1(word string, fn func(string)) {
	for _, s := range Splits(word) {
		first, w1 := utf8.DecodeRuneInString(s.Right)
		if w1 > 0 {
			rest := s.Right[w1:]
			fn(s.Left + rest)
			if rest != "" {
				second, w2 := utf8.DecodeRuneInString(rest)
				fn(s.Left + string(second) + string(first) + rest[w2:])
			}
			for _, c := range Alphabet {
				fn(s.Left + string(c) + rest)
			}
		}
		for _, c := range Alphabet {
			fn(s.Left + string(c) + s.Right)
		}
	}
}

// Edits1 returns every distinct string one edit away from word.
func Edits1(word string) Set {
	n := utf8.RuneCountInString(word)
	set := make(Set, 54*n+25)
	Walk1(word, set.Add)
	return set
}

// Edits2 returns every distinct string two edits away from word. The result
// is deduplicated as it is generated, which keeps memory near the number of
// distinct variants instead of the raw (54n+25)^2 expansion.
func Edits2(word string) Set {
	set := make(Set)
	for e1 := range Edits1(word) {
		Walk1(e1, set.Add)
	}
	return set
}
