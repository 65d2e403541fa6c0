package ibl

import (
	"strconv"
	"strings"

	"github.com/dgraph-io/ristretto"
	farm "github.com/dgryski/go-farm"

	"ibl/pkg/instance"
)

// PredictionCache memoizes Classify results by a hash of the query's
// feature-value indices. It is safe for concurrent use only once the
// owning Classifier has been Trained and its Options frozen (spec.md §5:
// the instance base and feature space are immutable after Train, so
// concurrent reads are safe and a shared cache is sound).
type PredictionCache struct {
	cache *ristretto.Cache
}

// NewPredictionCache returns a cache sized for roughly maxItems entries.
func NewPredictionCache(maxItems int64) (*PredictionCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &PredictionCache{cache: c}, nil
}

// Key hashes a query instance's feature-value indices into a stable cache
// key, using go-farm for speed on what can be a fairly long byte string
// once a model has dozens of features.
func Key(query *instance.Instance) uint64 {
	var b strings.Builder
	for i := 0; i < query.Width(); i++ {
		v := query.At(i)
		if v == nil {
			b.WriteString("?,")
			continue
		}
		b.WriteString(strconv.Itoa(v.Index))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(v.Numeric, 'g', -1, 64))
		b.WriteByte(',')
	}
	return farm.Hash64([]byte(b.String()))
}

// Get returns a cached Result for key, if present.
func (pc *PredictionCache) Get(key uint64) (*Result, bool) {
	v, ok := pc.cache.Get(key)
	if !ok {
		return nil, false
	}
	r, ok := v.(*Result)
	return r, ok
}

// Set stores result under key with unit cost.
func (pc *PredictionCache) Set(key uint64, result *Result) {
	pc.cache.Set(key, result, 1)
}

// Close releases the underlying ristretto cache's background goroutines.
func (pc *PredictionCache) Close() { pc.cache.Close() }

// ClassifyCached is Classify with a cache in front of it.
func (c *Classifier) ClassifyCached(query *instance.Instance, cache *PredictionCache) (*Result, error) {
	key := Key(query)
	if r, ok := cache.Get(key); ok {
		return r, nil
	}
	r, err := c.Classify(query)
	if err != nil {
		return nil, err
	}
	cache.Set(key, r)
	return r, nil
}
