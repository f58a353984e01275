package spell

import (
	"math"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// resultCache keeps recent Results keyed by lowercased input. Eviction
// drops the least recently used entry, tracked with a logical clock.
// Candidates are copied on the way in and out, so callers own what they get.
type resultCache struct {
	results    map[string]Result
	accessTime map[string]int64
	clock      int64
	hits       int64
	misses     int64
	maxEntries int
	mu         sync.Mutex
}

func newResultCache(maxEntries int) *resultCache {
	return &resultCache{
		results:    make(map[string]Result, maxEntries),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

func (rc *resultCache) get(word string) (Result, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	res, ok := rc.results[word]
	if !ok {
		rc.misses++
		return Result{}, false
	}
	rc.hits++
	rc.accessTime[word] = rc.tick()
	res.Candidates = slices.Clone(res.Candidates)
	return res, true
}

func (rc *resultCache) put(word string, res Result) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, ok := rc.results[word]; !ok && len(rc.results) >= rc.maxEntries {
		rc.evictLRU()
	}
	res.Candidates = slices.Clone(res.Candidates)
	rc.results[word] = res
	rc.accessTime[word] = rc.tick()
}

func (rc *resultCache) stats() map[string]int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return map[string]int{
		"cacheEntries": len(rc.results),
		"maxEntries":   rc.maxEntries,
		"cacheHits":    int(rc.hits),
		"cacheMisses":  int(rc.misses),
	}
}

func (rc *resultCache) tick() int64 {
	rc.clock++
	return rc.clock
}

func (rc *resultCache) evictLRU() {
	var oldestWord string
	var oldestTime int64 = math.MaxInt64

	for word, t := range rc.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldestWord = word
		}
	}
	if oldestWord != "" {
		delete(rc.results, oldestWord)
		delete(rc.accessTime, oldestWord)
		log.Debugf("Evicted '%s' from correction cache", oldestWord)
	}
}
