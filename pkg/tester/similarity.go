package tester

import (
	"math"

	"ibl/pkg/feature"
	"ibl/pkg/instance"
)

// SimilarityTester computes a whole-instance similarity (Cosine or
// DotProduct, spec.md §4.5) rather than a per-feature accumulated
// distance. BestArray only ever orders by "smaller is better", so both
// testers report their result as a distance: the negated dot product for
// DotProduct (negative whenever the dot product is positive), and
// 1 - cosine, from 0 to 2, for Cosine.
type SimilarityTester struct {
	Features []*feature.Feature
	DotProduct bool
}

// NewCosine returns a SimilarityTester using cosine similarity.
func NewCosine(features []*feature.Feature) *SimilarityTester {
	return &SimilarityTester{Features: features}
}

// NewDotProduct returns a SimilarityTester using the raw dot product.
func NewDotProduct(features []*feature.Feature) *SimilarityTester {
	return &SimilarityTester{Features: features, DotProduct: true}
}

// Test returns a distance derived from the similarity between query and
// exemplar over every non-ignored feature set on both sides (a numeric
// feature contributes its value, a symbolic one its value index): -dot
// for DotProduct, or (1 - cosine) for Cosine, so that smaller is closer
// under both; under Cosine, same-direction vectors score 0 and opposed
// vectors 2.
func (st *SimilarityTester) Test(query, exemplar *instance.Instance) (Result, error) {
	dot, na, nb := 0.0, 0.0, 0.0
	examined := 0
	for i, f := range st.Features {
		if f.Ignore {
			continue
		}
		qv, ev := query.At(i), exemplar.At(i)
		if qv == nil || ev == nil {
			continue
		}
		x, y := qv.Numeric, ev.Numeric
		if !f.IsNumeric() {
			x, y = float64(qv.Index), float64(ev.Index)
		}
		dot += x * y
		na += x * x
		nb += y * y
		examined++
	}
	if st.DotProduct {
		return Result{Distance: -dot, Examined: examined}, nil
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return Result{Distance: 1, Examined: examined}, nil
	}
	cosine := dot / denom
	return Result{Distance: 1 - cosine, Examined: examined}, nil
}
