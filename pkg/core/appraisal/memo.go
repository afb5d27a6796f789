package appraisal

import (
	"encoding/json"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"investment_appraisal/pkg/models"
)

// DefaultMemoSize bounds a Memo created with a non-positive size.
const DefaultMemoSize = 256

// Memo caches Compute results keyed by input equality, evicting the least
// recently used entry once full. Safe for concurrent use.
type Memo struct {
	cache  *lru.Cache[string, models.AppraisalResults]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemo creates a cache holding at most size results.
func NewMemo(size int) *Memo {
	if size <= 0 {
		size = DefaultMemoSize
	}
	cache, err := lru.New[string, models.AppraisalResults](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &Memo{cache: cache}
}

// Compute returns cached results for identical inputs, computing them otherwise.
// The returned value is a copy; callers may not alter the cache through it.
func (m *Memo) Compute(inputs models.AppraisalInputs) models.AppraisalResults {
	key, err := memoKey(inputs)
	if err != nil {
		// Not encodable (NaN/Inf); skip the cache.
		return Compute(inputs)
	}

	if res, ok := m.cache.Get(key); ok {
		m.hits.Add(1)
		return res.Clone()
	}
	m.misses.Add(1)

	res := Compute(inputs)
	m.cache.Add(key, res.Clone())
	return res
}

// Stats reports cache hits and misses since creation.
func (m *Memo) Stats() (hits, misses int) {
	return int(m.hits.Load()), int(m.misses.Load())
}

// Len is the number of cached entries.
func (m *Memo) Len() int {
	return m.cache.Len()
}

func memoKey(inputs models.AppraisalInputs) (string, error) {
	b, err := json.Marshal(inputs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
