// Package cache memoizes analysis results per filing and rule-set version.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"FilingScanner/internal/domain"
	"FilingScanner/internal/ports"
)

// ResultCache is a process-wide memo of analysis output. Keys cover the
// filing identifier, the full filing text, and the rule-set version, so a
// rule change can never serve a stale result. Concurrent misses on the same
// key are collapsed into a single computation; every caller still receives
// a result.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]domain.AnalysisResult
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

var _ ports.AnalysisCache = (*ResultCache)(nil)

// New builds an empty cache.
func New() *ResultCache {
	return &ResultCache{entries: make(map[string]domain.AnalysisResult)}
}

// GetOrCompute returns the stored result for the filing under the given
// rule-set version, computing and storing it on a miss.
func (c *ResultCache) GetOrCompute(filing domain.FilingDocument, version string, compute func(domain.FilingDocument) domain.AnalysisResult) domain.AnalysisResult {
	key := computeKey(filing, version)

	c.mu.RLock()
	result, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return copyResult(result)
	}

	c.misses.Add(1)
	v, _, _ := c.group.Do(key, func() (any, error) {
		// A racing caller may have stored the entry while this one
		// waited on the flight group.
		c.mu.RLock()
		stored, found := c.entries[key]
		c.mu.RUnlock()
		if found {
			return stored, nil
		}

		computed := compute(filing)
		c.mu.Lock()
		c.entries[key] = computed
		c.mu.Unlock()
		return computed, nil
	})

	return copyResult(v.(domain.AnalysisResult))
}

// Stats reports hit and miss counts since the last Reset.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len reports the number of stored entries.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops all entries and counters. Intended for tests and for
// long-lived processes reloading their rule set.
func (c *ResultCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]domain.AnalysisResult)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

// computeKey hashes identifier, version, and text with separators so no two
// distinct inputs can collide by concatenation.
func computeKey(filing domain.FilingDocument, version string) string {
	h := sha256.New()
	h.Write([]byte(filing.Identifier))
	h.Write([]byte{0})
	h.Write([]byte(version))
	h.Write([]byte{0})
	h.Write([]byte(filing.Text))
	return hex.EncodeToString(h.Sum(nil))
}

// copyResult clones the evidence slice so callers cannot mutate a cached
// entry through the returned value.
func copyResult(r domain.AnalysisResult) domain.AnalysisResult {
	if len(r.Evidence) == 0 {
		return r
	}
	evidence := make([]domain.Evidence, len(r.Evidence))
	copy(evidence, r.Evidence)
	r.Evidence = evidence
	return r
}

// Nop is an AnalysisCache that always computes. Useful in tests and when
// caching is disabled by configuration.
type Nop struct{}

var _ ports.AnalysisCache = Nop{}

// GetOrCompute always invokes compute.
func (Nop) GetOrCompute(filing domain.FilingDocument, _ string, compute func(domain.FilingDocument) domain.AnalysisResult) domain.AnalysisResult {
	return compute(filing)
}

// Reset does nothing.
func (Nop) Reset() {}
