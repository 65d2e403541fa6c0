// Package option implements the two-phase configuration registry of
// spec.md §5, grounded on GetOptionClass/TimblOpts in
// original_source/include/timbl/GetOptClass.h: options live in a Runtime
// phase where Set is freely allowed, then move to Frozen once training
// locks the feature/target space in place.
package option

import (
	"fmt"
	"sort"
	"sync"

	"ibl/pkg/errs"
)

// Phase is the registry's lifecycle stage.
type Phase int

const (
	Runtime Phase = iota
	Frozen
)

// SetResult reports the outcome of a Set call, matching the four outcomes
// spec.md §5 names explicitly.
type SetResult int

const (
	OK SetResult = iota
	ResultFrozen
	Unknown
	IllegalValue
)

func (r SetResult) String() string {
	switch r {
	case OK:
		return "OK"
	case ResultFrozen:
		return "Frozen"
	case Unknown:
		return "Unknown"
	case IllegalValue:
		return "IllegalValue"
	default:
		return "Unknown"
	}
}

// Validator checks a candidate value before it is accepted.
type Validator func(value string) bool

type entry struct {
	value     string
	validator Validator
}

// Registry is a named-option store with a Runtime/Frozen lifecycle.
type Registry struct {
	mu      sync.RWMutex
	phase   Phase
	entries map[string]*entry
	order   []string
}

// New returns an empty Registry in the Runtime phase.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Add registers name with its default value and an optional validator
// (nil accepts anything). The classifier adds its options this way at
// construction time (AlgorithmType, WeightType, DecayType, Alpha, Beta,
// NormType, K, MaxBests, BinSize, MatrixClipFreq, VDThreshold and
// others); there is no MetricType option, since each feature's metric is
// given to DefineFeature.
func (r *Registry) Add(name, defaultValue string, v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = &entry{value: defaultValue, validator: v}
}

// Set assigns value to name, subject to the registry's phase and the
// option's validator.
func (r *Registry) Set(name, value string) SetResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == Frozen {
		return ResultFrozen
	}
	e, ok := r.entries[name]
	if !ok {
		return Unknown
	}
	if e.validator != nil && !e.validator(value) {
		return IllegalValue
	}
	e.value = value
	return OK
}

// Get returns name's current value and whether it is registered.
func (r *Registry) Get(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return "", false
	}
	return e.value, true
}

// MustGet returns name's current value, or "" if unregistered — useful
// for options the classifier always Adds itself and can therefore assume
// exist.
func (r *Registry) MustGet(name string) string {
	v, _ := r.Get(name)
	return v
}

// Freeze moves the registry into the Frozen phase; every subsequent Set
// call returns ResultFrozen until Unfreeze is called.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = Frozen
}

// Unfreeze returns the registry to the Runtime phase. Exposed for tests
// and for classifiers that support retraining from scratch.
func (r *Registry) Unfreeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = Runtime
}

// IsFrozen reports the registry's current phase.
func (r *Registry) IsFrozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase == Frozen
}

// Show renders every option and its current value, one per line sorted
// by option name, matching TimblOpts::Show's option dump used by the
// classifier's "show options" diagnostic command.
func (r *Registry) Show() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	out := ""
	for _, n := range names {
		out += fmt.Sprintf("%-20s %s\n", n, r.entries[n].value)
	}
	return out
}

// RequireRuntime returns errs.ErrState if the registry is Frozen,
// convenient for classifier methods that must refuse structural changes
// (adding features, changing the metric) once training has locked things
// down.
func (r *Registry) RequireRuntime() error {
	if r.IsFrozen() {
		return fmt.Errorf("registry is frozen: %w", errs.ErrState)
	}
	return nil
}
