// Package spell is the correction engine: candidate selection over edit
// neighbourhoods and probability ranking against a word frequency model.
package spell

import "context"

// Vocabulary is the read-only view of a frequency model the engine needs.
// *model.Model satisfies it.
type Vocabulary interface {
	// Count returns the occurrences of word, 0 when unknown.
	Count(word string) int

	// Total returns the sum of all counts.
	Total() int

	// Contains reports whether word is a known word.
	Contains(word string) bool
}

// ICorrector is the surface the CLI and IPC server depend on.
type ICorrector interface {
	// Correction returns the most probable intended word.
	Correction(word string) string

	// Correct returns the full decision for word.
	Correct(word string) Result

	// CorrectAll runs Correct over words, keeping their order.
	CorrectAll(ctx context.Context, words []string) ([]Result, error)
}

var _ ICorrector = (*Corrector)(nil)
