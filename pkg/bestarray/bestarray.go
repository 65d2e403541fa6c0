// Package bestarray implements the bounded k-best neighbor accumulator of
// spec.md §4.6, grounded on BestArray/BestRec in
// original_source/include/timbl/BestArray.h.
package bestarray

import (
	"math"

	"ibl/pkg/classdist"
	"ibl/pkg/instance"
)

// Rec is one slot: the distance at which it was filled, the (possibly
// capped) instances retained for rendering, and Aggregate, the class
// distribution of every candidate ever merged into this slot regardless
// of the cap — matching BestRec's "list of instances sharing a distance"
// representation plus spec.md §4.6's requirement that the vote aggregate
// reflect all merged candidates even when label retention is capped.
type Rec struct {
	Distance  float64
	Instances []*instance.Instance
	Aggregate *classdist.Distribution
}

// Array is a fixed-capacity, ascending-distance accumulator of the k
// closest neighbors seen so far, with ties merged into the same slot
// rather than evicting one another. maxBests caps the total number of
// instances retained across all slots for rendering; 0 or negative means
// unbounded. The retained cap never affects Aggregate, so Vote always
// sees the true merged distribution even when maxBests is small.
type Array struct {
	k        int
	recs     []Rec
	eps      float64
	maxBests int
	retained int
	limited  bool
}

// New returns an Array seeded with k sentinel slots at strictly
// increasing, enormous distances: slot k-1 holds DBL_MAX and each earlier
// slot the next float64 below it (DBL_MAX-k+i itself rounds to DBL_MAX for
// every slot), so that the very first k real results always win their
// slot outright regardless of insertion order — mirroring BestArray::Init
// in the original source.
func New(k int, eps float64, maxBests int) *Array {
	a := &Array{k: k, recs: make([]Rec, k), eps: eps, maxBests: maxBests}
	sentinel := math.MaxFloat64
	for i := k - 1; i >= 0; i-- {
		a.recs[i].Distance = sentinel
		a.recs[i].Aggregate = classdist.New()
		sentinel = math.Nextafter(sentinel, 0)
	}
	return a
}

// K returns the configured neighbor-set size.
func (a *Array) K() int { return a.k }

// Bound returns the current worst (largest) distance held in a filled
// slot, the value a DistanceTester should use to stop early: any
// candidate whose running sum reaches this can never displace anything.
// Before k real results have been added, this is still one of the huge
// sentinel values, so early termination never fires prematurely.
func (a *Array) Bound() float64 {
	return a.recs[a.k-1].Distance
}

// AddResult offers inst at distance d for inclusion. Ties within eps of
// an existing slot's distance merge inst into that slot instead of
// opening a new one; a strictly smaller distance inserts a new slot,
// shifting worse slots down and dropping whatever falls off the end.
// Grounded on BestArray::AddResult.
func (a *Array) AddResult(d float64, inst *instance.Instance) {
	for i := 0; i < a.k; i++ {
		if withinEps(d, a.recs[i].Distance, a.eps) {
			a.mergeInto(&a.recs[i], inst)
			return
		}
		if d < a.recs[i].Distance {
			a.insertAt(i, d, inst)
			return
		}
	}
}

// mergeInto always folds inst into r's Aggregate; it is only appended to
// r.Instances while the array's retained total is still under maxBests,
// so a slot's Aggregate can outgrow its Instances once the cap is hit.
func (a *Array) mergeInto(r *Rec, inst *instance.Instance) {
	r.Aggregate.IncFreq(inst.Target, inst.Occurrences, inst.SampleWeight)
	if a.maxBests <= 0 || a.retained < a.maxBests {
		r.Instances = append(r.Instances, inst)
		a.retained++
	} else {
		a.limited = true
	}
}

func (a *Array) insertAt(pos int, d float64, inst *instance.Instance) {
	dropped := a.recs[a.k-1]
	a.retained -= len(dropped.Instances)
	copy(a.recs[pos+1:], a.recs[pos:a.k-1])
	a.recs[pos] = Rec{Distance: d, Aggregate: classdist.New()}
	a.mergeInto(&a.recs[pos], inst)
}

func withinEps(a, b, eps float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

// Filled reports how many of the k slots hold a real (non-sentinel)
// result.
func (a *Array) Filled() int {
	n := 0
	for _, r := range a.recs {
		if !r.Aggregate.ZeroDist() {
			n++
		}
	}
	return n
}

// Slots returns every filled slot in ascending-distance order.
func (a *Array) Slots() []Rec {
	out := make([]Rec, 0, a.k)
	for _, r := range a.recs {
		if !r.Aggregate.ZeroDist() {
			out = append(out, r)
		}
	}
	return out
}

// Total returns the total number of candidates merged across all slots,
// counting each instance's Occurrences via Aggregate rather than the
// (possibly capped) Instances slice — the "total" figure spec.md §6's
// neighbor-set XML output reports alongside k.
func (a *Array) Total() int {
	n := 0
	for _, r := range a.recs {
		n += r.Aggregate.TotalItems()
	}
	return n
}

// Limited reports whether maxBests ever forced a candidate's label to be
// dropped from Instances while still being folded into its slot's
// Aggregate — i.e. whether the retained neighbor list under-represents
// the true vote. Exposed because spec.md §6's XML schema carries a
// "limited" flag for exactly this case.
func (a *Array) Limited() bool { return a.limited }
