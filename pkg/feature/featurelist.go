package feature

import "sort"

// WeightType selects which statistic drives a feature's weight and,
// through it, the permutation order used for early termination (spec.md
// §4.3's "descending-weight ordering").
type WeightType int

const (
	WeightUniform WeightType = iota
	WeightGainRatio
	WeightInfoGain
	WeightChiSquare
	WeightSharedVariance
	// WeightStandardDeviation weights a (necessarily numeric) feature by
	// its observed standard deviation.
	WeightStandardDeviation
	// WeightUser leaves Weight exactly as the caller last assigned it —
	// ApplyWeighting performs no recomputation for it.
	WeightUser
)

// List holds the ordered set of Features making up one classifier, plus
// the permutation that DistanceTester walks for early termination.
// Grounded on FeatureList/Permutation as described in spec.md §4.1/§4.3.
type List struct {
	Features []*Feature
	perm     []int
}

// NewList returns an empty feature list.
func NewList() *List { return &List{} }

// Add appends f and returns its position in the list.
func (l *List) Add(f *Feature) int {
	l.Features = append(l.Features, f)
	return len(l.Features) - 1
}

// EffectiveFeatures returns the count of features not flagged Ignore.
func (l *List) EffectiveFeatures() int {
	n := 0
	for _, f := range l.Features {
		if !f.Ignore {
			n++
		}
	}
	return n
}

// ApplyWeighting copies the statistic named by wt into each feature's
// Weight field. WeightUniform sets every non-ignored feature's weight to
// 1.0, disabling weighting without disabling the feature itself.
func (l *List) ApplyWeighting(wt WeightType) {
	for _, f := range l.Features {
		switch wt {
		case WeightGainRatio:
			f.Weight = f.GainRatio
		case WeightInfoGain:
			f.Weight = f.InfoGain
		case WeightChiSquare:
			f.Weight = f.ChiSquare
		case WeightSharedVariance:
			f.Weight = f.SharedVariance
		case WeightStandardDeviation:
			f.Weight = f.StandardDeviation
		case WeightUser:
			// Weight already holds whatever the caller assigned; leave it.
		default:
			f.Weight = 1.0
		}
	}
}

// CalculatePermutation recomputes the descending-weight visiting order
// used by DistanceTester. Ignored features sort to the back, since a
// DistanceTester must still skip over them but never needs to examine
// their distance contribution. Ties break by original list position, so
// the permutation is stable and reproducible across runs, matching the
// determinism spec.md §8 requires of tie-breaking.
func (l *List) CalculatePermutation() {
	n := len(l.Features)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		fa, fb := l.Features[perm[a]], l.Features[perm[b]]
		if fa.Ignore != fb.Ignore {
			return !fa.Ignore
		}
		if fa.Weight != fb.Weight {
			return fa.Weight > fb.Weight
		}
		return perm[a] < perm[b]
	})
	l.perm = perm
}

// Permutation returns the last computed visiting order, feature-list
// indices from highest weight to lowest.
func (l *List) Permutation() []int {
	if l.perm == nil {
		l.CalculatePermutation()
	}
	return l.perm
}
