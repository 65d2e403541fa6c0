// Package instance implements the training/test exemplar described in
// spec.md §4.1, grounded on the Instance class in
// original_source/include/timbl/Instance.h.
package instance

import (
	"ibl/pkg/feature"
	"ibl/pkg/target"
)

// Instance is one feature-value vector bound to a target, with an
// occurrence count and an optional per-instance sample weight used by
// weighted voting (spec.md §4.7).
type Instance struct {
	Values      []*feature.Value
	Target      *target.Value
	Occurrences int
	SampleWeight float64
}

// New allocates an Instance sized for width features, all initially nil
// (unset) — callers fill in observed values with Set.
func New(width int) *Instance {
	return &Instance{
		Values:       make([]*feature.Value, width),
		Occurrences:  1,
		SampleWeight: 1.0,
	}
}

// Set binds the value observed at feature position i.
func (inst *Instance) Set(i int, v *feature.Value) { inst.Values[i] = v }

// At returns the value bound at feature position i.
func (inst *Instance) At(i int) *feature.Value { return inst.Values[i] }

// Width returns the number of feature slots in this instance.
func (inst *Instance) Width() int { return len(inst.Values) }

// Merge folds a duplicate observation of this exact instance into it,
// adding to Occurrences and SampleWeight. Classifier.AddInstance does not
// call it: every ingested row is stored as an Instance of its own.
func (inst *Instance) Merge(occurrences int, weight float64) {
	inst.Occurrences += occurrences
	inst.SampleWeight += weight
}

// Equal reports whether two instances have identical feature values and
// target. Ingest does not use it; duplicate rows are kept separately.
func Equal(a, b *Instance) bool {
	if a.Target.Index != b.Target.Index || len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		av, bv := a.Values[i], b.Values[i]
		if (av == nil) != (bv == nil) {
			return false
		}
		if av != nil && av.Index != bv.Index {
			return false
		}
	}
	return true
}
