// Package target implements the TargetRegistry and TargetValue described in
// spec.md §4.1, grounded on Targets/TargetValue in
// original_source/include/timbl/Instance.h.
package target

import "ibl/pkg/stringtable"

// Value is one discrete class label. Owned by a Registry; never destroyed
// while the registry lives, so indices stay stable for the model's lifetime.
type Value struct {
	NameID    uint32
	Index     int
	Frequency int
}

// Registry owns all Values seen during training, mapping name<->id and
// tracking frequencies.
type Registry struct {
	strings *stringtable.Table
	byIndex []*Value
	byName  map[uint32]*Value
}

// New returns an empty Registry backed by the given string table.
func New(strings *stringtable.Table) *Registry {
	return &Registry{
		strings: strings,
		byName:  make(map[uint32]*Value),
	}
}

// AddValue is idempotent on identity: a value already present only has its
// frequency incremented by freq.
func (r *Registry) AddValue(name string, freq int) *Value {
	id := r.strings.Intern(name)
	return r.AddValueID(id, freq)
}

// AddValueID is the id-keyed counterpart of AddValue, used when replaying a
// persisted (hashed) model against a live string table.
func (r *Registry) AddValueID(nameID uint32, freq int) *Value {
	if v, ok := r.byName[nameID]; ok {
		v.Frequency += freq
		return v
	}
	v := &Value{NameID: nameID, Index: len(r.byIndex), Frequency: freq}
	r.byIndex = append(r.byIndex, v)
	r.byName[nameID] = v
	return v
}

// Lookup finds a Value by name without creating one.
func (r *Registry) Lookup(name string) (*Value, bool) {
	id, ok := r.strings.Lookup(name)
	if !ok {
		return nil, false
	}
	v, ok := r.byName[id]
	return v, ok
}

// ReverseLookup finds a Value by its dense index.
func (r *Registry) ReverseLookup(index int) (*Value, bool) {
	if index < 0 || index >= len(r.byIndex) {
		return nil, false
	}
	return r.byIndex[index], true
}

// Increment raises v's frequency by one.
func (r *Registry) Increment(v *Value) {
	v.Frequency++
}

// Decrement lowers v's frequency by one. Decrementing to zero does not
// remove the value; its index stays stable.
func (r *Registry) Decrement(v *Value) {
	if v.Frequency > 0 {
		v.Frequency--
	}
}

// MajorityClass returns the Value with the highest frequency, breaking ties
// by the smallest index.
func (r *Registry) MajorityClass() *Value {
	var best *Value
	for _, v := range r.byIndex {
		if best == nil || v.Frequency > best.Frequency {
			best = v
		}
	}
	return best
}

// EffectiveValues returns the count of values with frequency > 0.
func (r *Registry) EffectiveValues() int {
	n := 0
	for _, v := range r.byIndex {
		if v.Frequency > 0 {
			n++
		}
	}
	return n
}

// TotalValues returns the total number of distinct values ever added.
func (r *Registry) TotalValues() int {
	return len(r.byIndex)
}

// Name resolves v's display name via the owning string table.
func (r *Registry) Name(v *Value) string {
	s, _ := r.strings.Reverse(v.NameID)
	return s
}

// All returns every registered value in index order.
func (r *Registry) All() []*Value {
	return r.byIndex
}
