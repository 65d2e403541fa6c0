// Package tester implements the distance and similarity testers of
// spec.md §4.5, grounded on Tester/DistanceTester/SimilarityTester in
// original_source/include/timbl/Testers.h.
package tester

import (
	"ibl/pkg/feature"
	"ibl/pkg/instance"
)

// DistanceTester walks a query against a stored instance, feature by
// feature, in permutation order (descending weight), and can stop early
// once the running distance reaches or exceeds a caller-supplied bound —
// because every remaining feature can only add nonnegative distance.
type DistanceTester struct {
	Features   []*feature.Feature
	Permutation []int
}

// New returns a DistanceTester over features visited in perm order.
func New(features []*feature.Feature, perm []int) *DistanceTester {
	return &DistanceTester{Features: features, Permutation: perm}
}

// Result carries the computed distance plus how much of the permutation
// was actually examined, the observable signal spec.md §4.5's early
// termination must expose for testing and diagnostics.
type Result struct {
	Distance float64
	Examined int
}

// Test computes the weighted distance between query and exemplar. If
// bound is finite (>= 0) and the running sum ever reaches or exceeds it,
// Test stops early and returns the partial sum with Examined less than
// len(Permutation); pass a negative bound to disable early termination.
func (dt *DistanceTester) Test(query, exemplar *instance.Instance, bound float64) (Result, error) {
	sum := 0.0
	examined := 0
	for _, idx := range dt.Permutation {
		f := dt.Features[idx]
		if f.Ignore {
			continue
		}
		examined++
		d, err := f.Distance(query.At(idx), exemplar.At(idx))
		if err != nil {
			return Result{}, err
		}
		sum += d * f.Weight
		if bound >= 0 && sum >= bound {
			return Result{Distance: sum, Examined: examined}, nil
		}
	}
	return Result{Distance: sum, Examined: examined}, nil
}
