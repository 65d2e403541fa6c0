// Package decay implements the relative-weight voting rules of spec.md
// §4.7 (Zero/InvDist/InvLinear/ExpDecay), grounded on the Decay/Vote
// hierarchy in original_source/include/timbl/Choppers.h and
// original_source/src/ClassDistribution.cxx's IB1 voting.
package decay

import (
	"math"

	"ibl/pkg/bestarray"
	"ibl/pkg/classdist"
	"ibl/pkg/target"
)

// Type selects how a neighbor's relative vote weight falls off with its
// distance to the query.
type Type int

const (
	// Zero gives every neighbor equal weight regardless of distance:
	// majority voting within the neighbor set (k-NN's plain form).
	Zero Type = iota
	// InvDist weights a neighbor by 1/(distance+eps).
	InvDist
	// InvLinear weights a neighbor by (worst-distance) / (worst-best),
	// the linear position of d within the neighbor set's observed range.
	InvLinear
	// ExpDecay weights a neighbor by exp(-alpha * distance^beta).
	ExpDecay
)

// Options configures ExpDecay; Alpha and Beta are ignored by the other
// Types.
type Options struct {
	Type  Type
	Alpha float64
	Beta  float64
}

const epsDecay = 1e-6

// Weight returns the relative vote weight of a neighbor at distance d,
// given that the neighbor set's observed distances range from best
// (smallest) to worst (largest) — needed by InvLinear to normalize d
// into [0,1] via r = (worst-d)/(worst-best), spec.md §4.7. When worst
// equals best (a single distinct distance, e.g. k=1) that range is zero
// and every neighbor gets the maximum weight of 1.
func Weight(opts Options, d, worst, best float64) float64 {
	switch opts.Type {
	case InvDist:
		return 1.0 / (d + epsDecay)
	case InvLinear:
		denom := worst - best
		if denom <= 0 {
			return 1
		}
		return (worst - d) / denom
	case ExpDecay:
		beta := opts.Beta
		if beta == 0 {
			beta = 1
		}
		return math.Exp(-opts.Alpha * math.Pow(d, beta))
	default:
		return 1.0
	}
}

// Vote merges every neighbor slot in a into a single ClassDistribution,
// weighting each slot's Aggregate (the full, uncapped merge of every
// candidate at that distance, independent of bestarray's max_bests label
// cap) by Weight, matching how IB1 combines a tied neighbor set into one
// prediction (spec.md §4.7).
func Vote(a *bestarray.Array, opts Options) *classdist.Distribution {
	result := classdist.New()
	slots := a.Slots()
	if len(slots) == 0 {
		return result
	}
	worst := slots[len(slots)-1].Distance
	best := slots[0].Distance
	for _, slot := range slots {
		w := Weight(opts, slot.Distance, worst, best)
		result.MergeWeighted(slot.Aggregate, w)
	}
	return result
}

// BestTarget runs Vote and resolves the merged distribution to a single
// predicted target, the final step of classification (spec.md §4.7).
// isTie reports whether the winning weight was shared by more than one
// target, per the tie-merge invariant in spec.md §8.
func BestTarget(a *bestarray.Array, opts Options) (best *target.Value, dist *classdist.Distribution, isTie bool) {
	dist = Vote(a, opts)
	// Target index 0 is an ordinary class (the registry reserves no
	// unknown target), so no entry is skipped here.
	best, isTie = dist.BestTarget(false)
	return best, dist, isTie
}
