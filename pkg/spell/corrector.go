package spell

import (
	"context"
	"sort"
	"strings"

	"github.com/bastiangx/wordfix/internal/logger"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Candidate is one ranked member of the chosen tier.
type Candidate struct {
	Word        string
	Count       int
	Probability float64
}

// Result is the full decision for one input word.
type Result struct {
	Input       string
	Correction  string
	Tier        Tier
	Probability float64
	Candidates  []Candidate
}

// Corrector picks the most probable intended word from a Vocabulary.
// It holds no mutable state and is safe for concurrent use.
type Corrector struct {
	vocab Vocabulary
	opts  Options
	cache *resultCache
	log   *log.Logger
}

// New creates a Corrector over v.
func New(v Vocabulary, opts ...Option) *Corrector {
	o := DefaultOptions
	for _, opt := range opts {
		opt.Apply(&o)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	l := o.Logger
	if l == nil {
		l = logger.New("spell")
	}
	c := &Corrector{vocab: v, opts: o, log: l}
	if o.CacheSize > 0 {
		c.cache = newResultCache(o.CacheSize)
	}
	return c
}

// Correction returns the most probable intended word for word. Input is
// lowercased first. When no known word is within two edits the lowercased
// input itself is returned.
func (c *Corrector) Correction(word string) string {
	if c.cache != nil {
		return c.Correct(word).Correction
	}
	w := strings.ToLower(word)
	_, cands := Candidates(w, c.vocab)
	return c.best(cands)
}

// Correct is Correction with the tier, probability and ranked candidates.
// The returned Result is the caller's own, even when it came from the cache.
func (c *Corrector) Correct(word string) Result {
	w := strings.ToLower(word)
	if c.cache == nil {
		return c.correct(w)
	}
	if res, ok := c.cache.get(w); ok {
		return res
	}
	res := c.correct(w)
	c.cache.put(w, res)
	return res
}

// CacheStats reports cache usage, nil when the cache is disabled.
func (c *Corrector) CacheStats() map[string]int {
	if c.cache == nil {
		return nil
	}
	return c.cache.stats()
}

func (c *Corrector) correct(w string) Result {
	tier, cands := Candidates(w, c.vocab)

	ranked := make([]Candidate, 0, len(cands))
	for _, cand := range cands {
		ranked = append(ranked, Candidate{
			Word:        cand,
			Count:       c.vocab.Count(cand),
			Probability: Probability(cand, c.vocab),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return better(ranked[i].Word, ranked[i].Count, ranked[j].Word, ranked[j].Count)
	})

	best := ranked[0]
	if c.opts.MaxCandidates > 0 && len(ranked) > c.opts.MaxCandidates {
		ranked = ranked[:c.opts.MaxCandidates]
	}
	c.log.Debug("corrected", "input", w, "tier", tier, "correction", best.Word, "candidates", len(cands))

	return Result{
		Input:       w,
		Correction:  best.Word,
		Tier:        tier,
		Probability: best.Probability,
		Candidates:  ranked,
	}
}

// CorrectAll corrects words concurrently, bounded by the Workers option.
// Results keep the input order. It stops early when ctx is cancelled.
func (c *Corrector) CorrectAll(ctx context.Context, words []string) ([]Result, error) {
	results := make([]Result, len(words))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for i, w := range words {
		if gctx.Err() != nil {
			break
		}
		i, w := i, w
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.Correct(w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// best returns the candidate with the highest count; equal counts go to the
// lexicographically smaller word. cands is never empty.
func (c *Corrector) best(cands []string) string {
	top := cands[0]
	topCount := c.vocab.Count(top)
	for _, cand := range cands[1:] {
		n := c.vocab.Count(cand)
		if better(cand, n, top, topCount) {
			top, topCount = cand, n
		}
	}
	return top
}

// better orders by count, higher first, then lexicographically.
// Counts share a denominator, so this is the probability order.
func better(a string, an int, b string, bn int) bool {
	if an != bn {
		return an > bn
	}
	return a < b
}
