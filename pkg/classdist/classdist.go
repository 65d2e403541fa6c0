// Package classdist implements the ClassDistribution described in
// spec.md §4.2, grounded on ValueDistribution/WValueDistribution in
// original_source/include/timbl/Instance.h.
//
// The C++ source models Unweighted vs Weighted via inheritance
// (ValueDistribution / WValueDistribution); Design Notes §9 recommends a
// tagged variant instead, which is what Distribution implements: weighted
// becomes true the moment any entry's weight is set explicitly, and the
// weighted/unweighted dispatch in BestTarget, Merge, Save, and Normalize
// all key off that one flag.
package classdist

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"ibl/pkg/target"
)

const epsNorm = 1e-9

// entry is the per-target bookkeeping unit, corresponding to Vfield in the
// original source: a back-reference to the TargetValue (never owned), plus
// a frequency and a weight.
type entry struct {
	value     *target.Value
	frequency int
	weight    float64
}

// Distribution is a multiset over target labels, optionally weighted.
// The zero value is an empty, unweighted distribution.
type Distribution struct {
	byIndex    map[int]*entry
	totalItems int
	weighted   bool
}

// New returns an empty Distribution.
func New() *Distribution {
	return &Distribution{byIndex: make(map[int]*entry)}
}

// TotalItems returns the sum of all entry frequencies.
func (d *Distribution) TotalItems() int { return d.totalItems }

// ZeroDist reports whether the distribution has never had any mass merged
// into it, mirroring ValueDistribution::ZeroDist in the original source.
func (d *Distribution) ZeroDist() bool { return d.totalItems == 0 }

// IsWeighted reports whether any entry's weight diverges from its
// frequency-derived default.
func (d *Distribution) IsWeighted() bool { return d.weighted }

// Size returns the number of distinct targets with a recorded entry.
func (d *Distribution) Size() int { return len(d.byIndex) }

func (d *Distribution) entryFor(tv *target.Value) *entry {
	e, ok := d.byIndex[tv.Index]
	if !ok {
		e = &entry{value: tv}
		d.byIndex[tv.Index] = e
	}
	return e
}

// SetFreq sets tv's frequency (and weight, default 1.0 per unit of
// frequency) directly, replacing any prior entry for tv.
func (d *Distribution) SetFreq(tv *target.Value, freq int, weight float64) {
	e := d.entryFor(tv)
	d.totalItems += freq - e.frequency
	e.frequency = freq
	e.weight = weight
	if weight != float64(freq) {
		d.weighted = true
	}
}

// IncFreq adds delta to tv's frequency (and weight), creating the entry if
// this is the first time tv was seen. Returns whether the entry was
// created by this call.
func (d *Distribution) IncFreq(tv *target.Value, delta int, weight float64) bool {
	_, existed := d.byIndex[tv.Index]
	e := d.entryFor(tv)
	e.frequency += delta
	e.weight += weight
	d.totalItems += delta
	if weight != float64(delta) {
		d.weighted = true
	}
	return !existed
}

// DecFreq lowers tv's frequency by one, deleting the entry once it reaches
// zero (matching ValueDistribution::DecFreq).
func (d *Distribution) DecFreq(tv *target.Value) {
	e, ok := d.byIndex[tv.Index]
	if !ok {
		return
	}
	e.frequency--
	e.weight--
	d.totalItems--
	if e.frequency <= 0 {
		delete(d.byIndex, tv.Index)
	}
}

// Merge adds other's frequencies and weights into d, creating missing
// entries. Commutative and associative, as required by spec.md §8
// invariant 4 (tie-merge order independence).
func (d *Distribution) Merge(other *Distribution) {
	if other == nil {
		return
	}
	for idx, oe := range other.byIndex {
		e, ok := d.byIndex[idx]
		if !ok {
			e = &entry{value: oe.value}
			d.byIndex[idx] = e
		}
		e.frequency += oe.frequency
		e.weight += oe.weight
	}
	d.totalItems += other.totalItems
	if other.weighted {
		d.weighted = true
	}
}

// MergeWeighted merges other into d after scaling every one of other's
// weights by factor, used by decay-weighted voting (spec.md §4.7) to fold a
// bucket's aggregate into the final prediction distribution at its decay
// weight. Frequencies are left unscaled: only the weight side of the tagged
// variant carries the decay contribution, matching WValueDistribution::MergeW.
func (d *Distribution) MergeWeighted(other *Distribution, factor float64) {
	if other == nil {
		return
	}
	for idx, oe := range other.byIndex {
		e, ok := d.byIndex[idx]
		if !ok {
			e = &entry{value: oe.value}
			d.byIndex[idx] = e
		}
		e.frequency += oe.frequency
		e.weight += oe.weight * factor
	}
	d.totalItems += other.totalItems
	d.weighted = true
}

// Clone returns an independent copy, corresponding to to_VD_Copy /
// to_WVD_Copy in the original source (the tag decides which "variant" a
// copy is, so one method covers both).
func (d *Distribution) Clone() *Distribution {
	c := &Distribution{
		byIndex:    make(map[int]*entry, len(d.byIndex)),
		totalItems: d.totalItems,
		weighted:   d.weighted,
	}
	for idx, e := range d.byIndex {
		c.byIndex[idx] = &entry{value: e.value, frequency: e.frequency, weight: e.weight}
	}
	return c
}

// sortedEntries returns entries ordered by target index, for determinism.
func (d *Distribution) sortedEntries() []*entry {
	out := make([]*entry, 0, len(d.byIndex))
	for _, e := range d.byIndex {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].value.Index < out[j].value.Index })
	return out
}

// BestTarget returns the predicted target. The unweighted variant picks the
// entry with the largest frequency; the weighted variant picks the largest
// weight, falling back to frequency on a numeric weight tie. Either way
// ties break by the smallest target index and set isTie.
func (d *Distribution) BestTarget(ignoreUnknown bool) (best *target.Value, isTie bool) {
	entries := d.sortedEntries()
	if d.weighted {
		return bestByWeight(entries, ignoreUnknown)
	}
	return bestByFrequency(entries, ignoreUnknown)
}

func bestByFrequency(entries []*entry, ignoreUnknown bool) (*target.Value, bool) {
	var best *entry
	tie := false
	for _, e := range entries {
		if ignoreUnknown && e.value.Index == 0 {
			continue
		}
		switch {
		case best == nil || e.frequency > best.frequency:
			best = e
			tie = false
		case e.frequency == best.frequency:
			tie = true
		}
	}
	if best == nil {
		return nil, false
	}
	return best.value, tie
}

func bestByWeight(entries []*entry, ignoreUnknown bool) (*target.Value, bool) {
	var best *entry
	tie := false
	for _, e := range entries {
		if ignoreUnknown && e.value.Index == 0 {
			continue
		}
		switch {
		case best == nil || e.weight > best.weight:
			best = e
			tie = false
		case e.weight == best.weight:
			tie = true
		}
	}
	if best == nil {
		return nil, false
	}
	if tie {
		// Numeric weight tie: fall back to frequency, per spec.md §4.2.
		return bestByFrequency(entries, ignoreUnknown)
	}
	return best.value, false
}

// Confidence returns weight(tv) / Σweight, or 0 if tv is absent or the
// distribution is empty.
func (d *Distribution) Confidence(tv *target.Value) float64 {
	total := 0.0
	var w float64
	found := false
	for _, e := range d.byIndex {
		total += e.weight
		if e.value.Index == tv.Index {
			w = e.weight
			found = true
		}
	}
	if !found || total == 0 {
		return 0
	}
	return w / total
}

// Entropy computes -Σ pᵢ·log2(pᵢ) over frequency-normalized probabilities,
// using gonum's natural-log Shannon entropy and converting to base 2.
// Returns 0 for an empty distribution rather than raising (spec.md §7,
// ArithmeticError is never actually signalled).
func (d *Distribution) Entropy() float64 {
	if d.totalItems == 0 {
		return 0
	}
	probs := make([]float64, 0, len(d.byIndex))
	for _, e := range d.byIndex {
		if e.frequency <= 0 {
			continue
		}
		probs = append(probs, float64(e.frequency)/float64(d.totalItems))
	}
	if len(probs) == 0 {
		return 0
	}
	return stat.Entropy(probs) / math.Ln2
}

// Normalize scales weights so they sum to 1.
func (d *Distribution) Normalize() {
	total := 0.0
	for _, e := range d.byIndex {
		total += e.weight
	}
	if total == 0 {
		return
	}
	for _, e := range d.byIndex {
		e.weight /= total
	}
	d.weighted = true
}

// Normalize1 applies Lidstone-style add-alpha smoothing: every target in
// targets that has no entry yet is filled with weight factor/|targets|,
// then the whole distribution is renormalized to sum 1.
func (d *Distribution) Normalize1(factor float64, targets []*target.Value) {
	if len(targets) == 0 {
		return
	}
	share := factor / float64(len(targets))
	for _, tv := range targets {
		if _, ok := d.byIndex[tv.Index]; !ok {
			d.byIndex[tv.Index] = &entry{value: tv, weight: share}
		}
	}
	d.weighted = true
	d.Normalize()
}

// Freq returns tv's current frequency, or 0 if absent.
func (d *Distribution) Freq(tv *target.Value) int {
	if e, ok := d.byIndex[tv.Index]; ok {
		return e.frequency
	}
	return 0
}

// Weight returns tv's current weight, or 0 if absent.
func (d *Distribution) Weight(tv *target.Value) float64 {
	if e, ok := d.byIndex[tv.Index]; ok {
		return e.weight
	}
	return 0
}

// ForEach visits every entry in target-index order.
func (d *Distribution) ForEach(fn func(tv *target.Value, freq int, weight float64)) {
	for _, e := range d.sortedEntries() {
		fn(e.value, e.frequency, e.weight)
	}
}

// WithinEpsilon reports whether two distances are tie-equal under the
// system-wide distance epsilon (spec.md §4.6 / Design Notes §9).
func WithinEpsilon(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}
