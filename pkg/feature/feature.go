// Package feature implements Feature and FeatureValue from spec.md §4.3,
// grounded on Feature/FeatureValue/FeatVal_Stat in
// original_source/include/timbl/Instance.h.
package feature

import (
	"fmt"

	"ibl/pkg/classdist"
	"ibl/pkg/errs"
	"ibl/pkg/metric"
	"ibl/pkg/stringtable"
	"ibl/pkg/target"
)

// unknownIndex is the reserved dense index for a feature's "unknown value"
// sentinel. Index 0 is never looked up by name; it is used whenever a
// record is missing this feature.
const unknownIndex = 0

// Value is one discrete value observed for a feature, or a numeric value
// wrapper when the owning Feature is numeric.
type Value struct {
	NameID     uint32
	Index      int
	Frequency  int
	TargetDist *classdist.Distribution
	Numeric    float64
	SparseProb *SparseValueProb
}

// IsUnknown reports whether v is the reserved unknown-value sentinel.
func (v *Value) IsUnknown() bool { return v.Index == unknownIndex }

// SparseValueProb is a prestored, sparse probability vector over target
// classes for one FeatureValue, used by some value-difference variants
// instead of recomputing probabilities from TargetDist at matrix-build
// time. Grounded on SparseValueProbClass in the original source.
type SparseValueProb struct {
	dimension int
	vc        map[int]float64
}

// NewSparseValueProb returns an empty vector over dimension target classes.
func NewSparseValueProb(dimension int) *SparseValueProb {
	return &SparseValueProb{dimension: dimension, vc: make(map[int]float64)}
}

// Assign sets the probability at target index i.
func (s *SparseValueProb) Assign(i int, p float64) { s.vc[i] = p }

// Clear empties the vector.
func (s *SparseValueProb) Clear() { s.vc = make(map[int]float64) }

// Get returns the probability at target index i, or 0 if unset.
func (s *SparseValueProb) Get(i int) float64 { return s.vc[i] }

// Dense materializes the sparse vector into a length-dimension slice.
func (s *SparseValueProb) Dense() []float64 {
	out := make([]float64, s.dimension)
	for i, p := range s.vc {
		if i >= 0 && i < s.dimension {
			out[i] = p
		}
	}
	return out
}

// Feature is one attribute column: its values, its chosen metric, and the
// statistics that drive its weight.
type Feature struct {
	strings *stringtable.Table

	Ignore     bool
	numeric    bool
	MetricType metric.Type

	Entropy           float64
	InfoGain          float64
	SplitInfo         float64
	GainRatio         float64
	ChiSquare         float64
	SharedVariance    float64
	StandardDeviation float64
	Weight            float64

	NMin, NMax float64
	hasRange   bool

	BinSize        int
	MatrixClipFreq int
	VDThreshold    int

	values        []*Value
	reverseByName map[uint32]*Value

	matrix      *matrixStore
	matrixLevel int
}

// New returns a Feature with its reserved unknown value already in place.
func New(strings *stringtable.Table, numeric bool, mt metric.Type) *Feature {
	f := &Feature{
		strings:        strings,
		numeric:        numeric,
		MetricType:     mt,
		Weight:         1.0,
		BinSize:        10,
		MatrixClipFreq: 1,
		VDThreshold:    1,
		reverseByName:  make(map[uint32]*Value),
	}
	unknown := &Value{Index: unknownIndex, TargetDist: classdist.New()}
	f.values = append(f.values, unknown)
	return f
}

// IsNumeric reports whether this feature's values are numbers.
func (f *Feature) IsNumeric() bool { return f.numeric }

// IsStorableMetric reports whether f's chosen metric prestores a matrix.
func (f *Feature) IsStorableMetric() bool { return f.MetricType.Storable() }

// Unknown returns the reserved unknown-value sentinel.
func (f *Feature) Unknown() *Value { return f.values[unknownIndex] }

// Values returns every value of this feature, including the unknown
// sentinel at index 0.
func (f *Feature) Values() []*Value { return f.values }

// Lookup finds a value by name without creating one.
func (f *Feature) Lookup(name string) (*Value, bool) {
	id, ok := f.strings.Lookup(name)
	if !ok {
		return nil, false
	}
	v, ok := f.reverseByName[id]
	return v, ok
}

// AddValue creates the value on first sight (dense index starting at 1;
// index 0 stays reserved) and increments its frequency and its
// target_dist[tv] by freq, matching Feature::add_value.
func (f *Feature) AddValue(name string, tv *target.Value, freq int) (*Value, error) {
	if f.numeric {
		return nil, fmt.Errorf("AddValue called on numeric feature %q: %w", name, errs.ErrSchema)
	}
	id := f.strings.Intern(name)
	return f.addValueID(id, tv, freq)
}

// AddValueID is the id-keyed counterpart of AddValue, used to replay a
// persisted hashed-form model against a live string table without ever
// reconstructing the original name string.
func (f *Feature) AddValueID(nameID uint32, tv *target.Value, freq int) (*Value, error) {
	if f.numeric {
		return nil, fmt.Errorf("AddValueID called on numeric feature: %w", errs.ErrSchema)
	}
	return f.addValueID(nameID, tv, freq)
}

func (f *Feature) addValueID(nameID uint32, tv *target.Value, freq int) (*Value, error) {
	v, ok := f.reverseByName[nameID]
	if !ok {
		v = &Value{NameID: nameID, Index: len(f.values), TargetDist: classdist.New()}
		f.values = append(f.values, v)
		f.reverseByName[nameID] = v
	}
	v.Frequency += freq
	if tv != nil {
		v.TargetDist.IncFreq(tv, freq, float64(freq))
	}
	return v, nil
}

// AddNumericValue records one numeric observation as a new Value appended
// to f's values (each observation gets its own slot, unlike symbolic
// values, which dedup by name), updating f's [NMin, NMax] range and the
// value's target distribution.
func (f *Feature) AddNumericValue(x float64, tv *target.Value, freq int) (*Value, error) {
	if !f.numeric {
		return nil, fmt.Errorf("AddNumericValue called on symbolic feature: %w", errs.ErrSchema)
	}
	if !f.hasRange {
		f.NMin, f.NMax = x, x
		f.hasRange = true
	} else {
		if x < f.NMin {
			f.NMin = x
		}
		if x > f.NMax {
			f.NMax = x
		}
	}
	fv := &Value{Index: len(f.values), Numeric: x, TargetDist: classdist.New()}
	f.values = append(f.values, fv)
	fv.Frequency += freq
	if tv != nil {
		fv.TargetDist.IncFreq(tv, freq, float64(freq))
	}
	return fv, nil
}

// IncrementValue raises fv's frequency and its target_dist[tv] by one,
// keeping both counters in sync (Feature::increment_value).
func (f *Feature) IncrementValue(fv *Value, tv *target.Value) {
	fv.Frequency++
	fv.TargetDist.IncFreq(tv, 1, 1)
}

// DecrementValue is the inverse of IncrementValue.
func (f *Feature) DecrementValue(fv *Value, tv *target.Value) {
	if fv.Frequency > 0 {
		fv.Frequency--
	}
	fv.TargetDist.DecFreq(tv)
}

// EffectiveValues returns the count of values (excluding the unknown
// sentinel) with frequency > 0.
func (f *Feature) EffectiveValues() int {
	n := 0
	for _, v := range f.values {
		if v.Index != unknownIndex && v.Frequency > 0 {
			n++
		}
	}
	return n
}

// TotalValues returns the number of distinct values ever added, excluding
// the unknown sentinel.
func (f *Feature) TotalValues() int {
	if len(f.values) == 0 {
		return 0
	}
	return len(f.values) - 1
}

// Name resolves fv's display name through the feature's string table.
// Numeric features have no symbolic name; callers should format fv.Numeric
// directly instead.
func (f *Feature) Name(fv *Value) string {
	s, _ := f.strings.Reverse(fv.NameID)
	return s
}
