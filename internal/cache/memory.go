package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/panbanda/relic/pkg/analyzer/complexity"
	"github.com/panbanda/relic/pkg/models"
)

// Memory fronts the metrics engine with an LRU keyed by content fingerprint
// and line count, so repeated texts are scored once per process.
type Memory struct {
	entries *lru.Cache[string, complexity.Metrics]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewMemory creates an in-memory cache holding up to size results.
func NewMemory(size int) (*Memory, error) {
	entries, err := lru.New[string, complexity.Metrics](size)
	if err != nil {
		return nil, fmt.Errorf("create metrics cache: %w", err)
	}
	return &Memory{entries: entries}, nil
}

// Compute returns cached metrics for text, computing them on a miss.
// A nil Memory always computes.
func (m *Memory) Compute(text string, linesOfCode int) complexity.Metrics {
	if m == nil {
		return complexity.Compute(text, linesOfCode)
	}

	key := fmt.Sprintf("%s:%d", models.Fingerprint([]byte(text)), linesOfCode)
	if cached, ok := m.entries.Get(key); ok {
		m.hits.Add(1)
		return cached
	}

	m.misses.Add(1)
	metrics := complexity.Compute(text, linesOfCode)
	m.entries.Add(key, metrics)
	return metrics
}

// Hits returns the number of cache hits.
func (m *Memory) Hits() int64 { return m.hits.Load() }

// Misses returns the number of cache misses.
func (m *Memory) Misses() int64 { return m.misses.Load() }

// Len returns the number of cached results.
func (m *Memory) Len() int { return m.entries.Len() }
