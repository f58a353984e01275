/*
Package model holds the word frequency table the corrector ranks against.

A Model is built once through a Builder and is read-only afterwards, so it can
be shared by any number of goroutines without locking. Besides the plain
word -> count map, every word is indexed in a Patricia trie which backs prefix
lookups and ordered walks over the vocabulary.
*/
package model

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is a word with its occurrence count.
type Entry struct {
	Word  string `msgpack:"w"`
	Count int    `msgpack:"n"`
}

// Model maps lowercase words to their counts in the reference corpus.
type Model struct {
	counts   map[string]int
	total    int
	maxCount int
	trie     *patricia.Trie
}

// Builder accumulates counts before a Model is frozen.
type Builder struct {
	counts map[string]int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{counts: make(map[string]int)}
}

// Add counts one occurrence of token. Tokens are lowercased; empty tokens are ignored.
func (b *Builder) Add(token string) {
	b.AddCount(token, 1)
}

// AddCount adds n occurrences of word. Non-positive counts are ignored so
// every stored word keeps a count of at least one. Counts saturate at
// math.MaxInt.
func (b *Builder) AddCount(word string, n int) {
	if word == "" || n <= 0 {
		return
	}
	w := strings.ToLower(word)
	b.counts[w] = saturatingAdd(b.counts[w], n)
}

// saturatingAdd returns a+b for non-negative a and b, capped at math.MaxInt.
func saturatingAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Len returns the number of distinct words seen so far.
func (b *Builder) Len() int {
	return len(b.counts)
}

// Build freezes the accumulated counts into a Model. The builder can keep
// being used afterwards without affecting the returned Model.
func (b *Builder) Build() *Model {
	m := &Model{
		counts: make(map[string]int, len(b.counts)),
		trie:   patricia.NewTrie(),
	}
	for word, n := range b.counts {
		m.counts[word] = n
		m.total = saturatingAdd(m.total, n)
		if n > m.maxCount {
			m.maxCount = n
		}
		m.trie.Insert(patricia.Prefix(word), n)
	}
	log.Debugf("Model built: %d words, %d tokens", len(m.counts), m.total)
	return m
}

// New builds a Model from a token stream.
func New(tokens []string) *Model {
	b := NewBuilder()
	for _, t := range tokens {
		b.Add(t)
	}
	return b.Build()
}

// FromCounts builds a Model from precomputed counts.
func FromCounts(counts map[string]int) *Model {
	b := NewBuilder()
	for w, n := range counts {
		b.AddCount(w, n)
	}
	return b.Build()
}

// Count returns the occurrences of word, 0 if it is unknown.
func (m *Model) Count(word string) int {
	return m.counts[word]
}

// Total returns the sum of all counts.
func (m *Model) Total() int {
	return m.total
}

// Contains reports whether word is in the vocabulary.
func (m *Model) Contains(word string) bool {
	_, ok := m.counts[word]
	return ok
}

// Len returns the vocabulary size.
func (m *Model) Len() int {
	return len(m.counts)
}

// WithPrefix returns up to limit vocabulary words starting with prefix,
// most frequent first. A limit <= 0 returns every match.
func (m *Model) WithPrefix(prefix string, limit int) []Entry {
	var entries []Entry
	err := m.trie.VisitSubtree(patricia.Prefix(strings.ToLower(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		entries = append(entries, Entry{Word: string(p), Count: item.(int)})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting vocabulary subtree: %v", err)
		return nil
	}
	return rank(entries, limit)
}

// MostCommon returns the n most frequent words. A non-positive n returns all of them.
func (m *Model) MostCommon(n int) []Entry {
	entries := make([]Entry, 0, len(m.counts))
	err := m.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		entries = append(entries, Entry{Word: string(p), Count: item.(int)})
		return nil
	})
	if err != nil {
		log.Errorf("Error walking vocabulary: %v", err)
		return nil
	}
	return rank(entries, n)
}

// Stats reports the vocabulary size, token total and highest count.
func (m *Model) Stats() map[string]int {
	return map[string]int{
		"words":    len(m.counts),
		"total":    m.total,
		"maxCount": m.maxCount,
	}
}

// rank orders entries by count, ties broken lexicographically, and truncates to limit.
func rank(entries []Entry, limit int) []Entry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
