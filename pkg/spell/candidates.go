package spell

import (
	"github.com/bastiangx/wordfix/pkg/edits"
)

// Tier identifies which candidate set a correction was drawn from.
type Tier int

const (
	TierExact    Tier = iota // the word itself is known
	TierEdit1                // known words one edit away
	TierEdit2                // known words two edits away
	TierFallback             // nothing known, the input stands
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierEdit1:
		return "edit1"
	case TierEdit2:
		return "edit2"
	case TierFallback:
		return "fallback"
	}
	return "unknown"
}

// Known returns the members of words that are in the vocabulary.
func Known(words edits.Set, v Vocabulary) edits.Set {
	out := make(edits.Set)
	for w := range words {
		if v.Contains(w) {
			out.Add(w)
		}
	}
	return out
}

// knownEdits2 is Known(edits.Edits2(word), v) without materialising the
// full edits2 set: only vocabulary hits are kept while streaming.
func knownEdits2(word string, v Vocabulary) edits.Set {
	out := make(edits.Set)
	for e1 := range edits.Edits1(word) {
		edits.Walk1(e1, func(e2 string) {
			if v.Contains(e2) {
				out.Add(e2)
			}
		})
	}
	return out
}

// Candidates returns the first non-empty tier for word, in order exact,
// edits1, edits2, fallback. Later tiers are not generated once one matches.
// The returned words are sorted; the fallback tier is always {word}.
func Candidates(word string, v Vocabulary) (Tier, []string) {
	if v.Contains(word) {
		return TierExact, []string{word}
	}
	if known := Known(edits.Edits1(word), v); known.Len() > 0 {
		return TierEdit1, known.Sorted()
	}
	if known := knownEdits2(word, v); known.Len() > 0 {
		return TierEdit2, known.Sorted()
	}
	return TierFallback, []string{word}
}

// Probability is the relative frequency of word in v. Unknown words and
// empty vocabularies yield 0.
func Probability(word string, v Vocabulary) float64 {
	total := v.Total()
	if total <= 0 {
		return 0
	}
	return float64(v.Count(word)) / float64(total)
}
