// Package ibl wires target, classdist, feature, metric, instance, tester,
// bestarray, decay and option into the end-to-end memory-based classifier
// described in spec.md §4 and §5, grounded on the top-level TimblAPI
// class in original_source/include/timbl/TimblAPI.h.
package ibl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"ibl/pkg/bestarray"
	"ibl/pkg/classdist"
	"ibl/pkg/decay"
	"ibl/pkg/errs"
	"ibl/pkg/feature"
	"ibl/pkg/instance"
	"ibl/pkg/metric"
	"ibl/pkg/option"
	"ibl/pkg/stringtable"
	"ibl/pkg/target"
	"ibl/pkg/tester"
)

// Classifier bundles one feature space, target registry and instance base
// under a single Options registry, and exposes Train/Classify as the two
// operations spec.md §4 builds everything else to support.
type Classifier struct {
	Strings  *stringtable.Table
	Targets  *target.Registry
	Features *feature.List
	Options  *option.Registry

	instances []*instance.Instance
	trained   bool

	distanceTester  *tester.DistanceTester
	similarityTester *tester.SimilarityTester
}

// New returns an untrained Classifier with every option spec.md §5 names
// registered at its documented default.
func New() *Classifier {
	strings := stringtable.New()
	c := &Classifier{
		Strings:  strings,
		Targets:  target.New(strings),
		Features: feature.NewList(),
		Options:  option.New(),
	}
	c.registerDefaultOptions()
	return c
}

func (c *Classifier) registerDefaultOptions() {
	o := c.Options
	o.Add("AlgorithmType", "IB1", func(v string) bool { return v == "IB1" })
	o.Add("WeightType", "GainRatio", func(v string) bool {
		switch v {
		case "Uniform", "GainRatio", "InfoGain", "ChiSquare", "SharedVariance", "StandardDeviation", "User":
			return true
		}
		return false
	})
	o.Add("DecayType", "Zero", func(v string) bool {
		switch v {
		case "Zero", "InvDist", "InvLinear", "ExpDecay":
			return true
		}
		return false
	})
	o.Add("NormType", "None", func(v string) bool {
		switch v {
		case "None", "Probability", "Add1", "AddEps":
			return true
		}
		return false
	})
	o.Add("Alpha", "1.0", isFloat)
	o.Add("Beta", "1.0", isFloat)
	o.Add("K", "1", isPositiveNonZeroInt)
	o.Add("MaxBests", "500", isPositiveInt)
	o.Add("BinSize", "10", isPositiveInt)
	o.Add("MatrixClipFreq", "1", isPositiveInt)
	o.Add("VDThreshold", "1", isPositiveInt)
	o.Add("Epsilon", "1e-9", isFloat)
	o.Add("Verbosity", "0", isPositiveInt)
}

func isFloat(v string) bool { _, err := strconv.ParseFloat(v, 64); return err == nil }
func isPositiveInt(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n >= 0
}

// isPositiveNonZeroInt additionally rejects 0, for options like K that
// spec.md §7 requires to be a ConfigError rather than a legal edge case.
func isPositiveNonZeroInt(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n >= 1
}

// DefineFeature declares one feature column, in table-column order. It
// must be called before Train and, like every structural call, fails with
// errs.ErrState once the classifier is frozen.
func (c *Classifier) DefineFeature(numeric bool, mt metric.Type) (*feature.Feature, error) {
	if err := c.Options.RequireRuntime(); err != nil {
		return nil, err
	}
	f := feature.New(c.Strings, numeric, mt)
	c.Features.Add(f)
	return f, nil
}

// AddInstance ingests one training record: raw, already-tokenized feature
// values aligned 1:1 with c.Features.Features, and a target class name.
// Numeric features expect values parseable as float64.
func (c *Classifier) AddInstance(values []string, targetName string) (*instance.Instance, error) {
	if err := c.Options.RequireRuntime(); err != nil {
		return nil, err
	}
	if len(values) != len(c.Features.Features) {
		return nil, fmt.Errorf("got %d values, want %d: %w", len(values), len(c.Features.Features), errs.ErrSchema)
	}
	// Numeric values are checked before anything is registered, so a
	// rejected row leaves the target and feature counts untouched.
	for i, raw := range values {
		if c.Features.Features[i].IsNumeric() {
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("feature %d value %q: %w", i, raw, errs.ErrSchema)
			}
		}
	}
	tv := c.Targets.AddValue(targetName, 1)

	inst := instance.New(len(values))
	inst.Target = tv
	for i, raw := range values {
		f := c.Features.Features[i]
		if f.IsNumeric() {
			x, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("feature %d value %q: %w", i, raw, errs.ErrSchema)
			}
			fv, err := f.AddNumericValue(x, tv, 1)
			if err != nil {
				return nil, err
			}
			inst.Set(i, fv)
		} else {
			fv, err := f.AddValue(raw, tv, 1)
			if err != nil {
				return nil, err
			}
			inst.Set(i, fv)
		}
	}
	c.instances = append(c.instances, inst)
	return inst, nil
}

// BuildQuery converts raw feature values into an Instance suitable for
// Classify, without registering anything into the training set: unknown
// symbolic values resolve to the feature's unknown sentinel instead of
// being created, matching how a real classifier must handle values never
// seen during training (spec.md §4.3).
func (c *Classifier) BuildQuery(values []string) (*instance.Instance, error) {
	if len(values) != len(c.Features.Features) {
		return nil, fmt.Errorf("got %d values, want %d: %w", len(values), len(c.Features.Features), errs.ErrSchema)
	}
	inst := instance.New(len(values))
	for i, raw := range values {
		f := c.Features.Features[i]
		if f.IsNumeric() {
			x, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("feature %d value %q: %w", i, raw, errs.ErrSchema)
			}
			inst.Set(i, &feature.Value{Numeric: x, Index: unknownQueryIndex})
		} else if fv, ok := f.Lookup(raw); ok {
			inst.Set(i, fv)
		} else {
			inst.Set(i, f.Unknown())
		}
	}
	return inst, nil
}

// Instances returns every instance ingested so far, in ingest order.
func (c *Classifier) Instances() []*instance.Instance { return c.instances }

// LoadInstanceLine parses one "INSTANCE <targetIdx> <occurrences>
// <weight> <fv0idx> <fv1idx> ..." line as written by dataio.SaveModel and
// appends the resulting Instance directly, bypassing AddInstance's
// name-based lookups since every index here is already resolved against
// this classifier's own Targets/Features.
func (c *Classifier) LoadInstanceLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[0] != "INSTANCE" {
		return fmt.Errorf("malformed instance line %q: %w", line, errs.ErrSchema)
	}
	targetIdx, err := strconv.Atoi(fields[1])
	if err != nil {
		return err
	}
	occ, err := strconv.Atoi(fields[2])
	if err != nil {
		return err
	}
	weight, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return err
	}
	tv, ok := c.Targets.ReverseLookup(targetIdx)
	if !ok {
		return fmt.Errorf("instance references unknown target index %d: %w", targetIdx, errs.ErrUnknownValue)
	}

	valueIdxs := fields[4:]
	if len(valueIdxs) != len(c.Features.Features) {
		return fmt.Errorf("instance has %d values, want %d: %w", len(valueIdxs), len(c.Features.Features), errs.ErrSchema)
	}
	inst := instance.New(len(valueIdxs))
	inst.Target = tv
	inst.Occurrences = occ
	inst.SampleWeight = weight
	for i, tok := range valueIdxs {
		idx, err := strconv.Atoi(tok)
		if err != nil {
			return err
		}
		if idx < 0 {
			continue
		}
		values := c.Features.Features[i].Values()
		if idx >= len(values) {
			return fmt.Errorf("instance feature %d value index %d out of range: %w", i, idx, errs.ErrUnknownValue)
		}
		inst.Set(i, values[idx])
	}
	c.instances = append(c.instances, inst)
	return nil
}

// unknownQueryIndex marks a numeric query value that was never interned
// into any Feature's values slice; Distance only reads its Numeric field,
// so the index itself is never dereferenced into a real slot.
const unknownQueryIndex = -1

// Train computes every feature's statistics, derives weights from the
// configured WeightType, builds the permutation and, for storable
// metrics, the value-difference matrix, then freezes Options so the
// trained space can no longer drift out from under concurrent
// classification, matching spec.md §5's Runtime-to-Frozen transition.
func (c *Classifier) Train() error {
	if c.trained {
		return fmt.Errorf("already trained: %w", errs.ErrState)
	}
	targets := c.Targets.All()
	totalEntropy := c.targetEntropy()

	for _, f := range c.Features.Features {
		if f.Ignore {
			continue
		}
		if err := f.ComputeStatistics(targets, totalEntropy); err != nil {
			return err
		}
	}

	wt := weightTypeFromString(c.Options.MustGet("WeightType"))
	c.Features.ApplyWeighting(wt)
	c.Features.CalculatePermutation()

	clipFreq, _ := strconv.Atoi(c.Options.MustGet("MatrixClipFreq"))
	for _, f := range c.Features.Features {
		if f.Ignore || !f.IsStorableMetric() {
			continue
		}
		if err := f.StoreMatrix(clipFreq, targets); err != nil {
			return err
		}
	}

	// VDThreshold is the query-time floor FVDistance applies to a value's
	// own frequency before trusting the stored matrix (spec.md §4.3),
	// distinct from MatrixClipFreq's build-time clipping above.
	vdThreshold, _ := strconv.Atoi(c.Options.MustGet("VDThreshold"))
	for _, f := range c.Features.Features {
		f.VDThreshold = vdThreshold
	}

	c.distanceTester = tester.New(c.Features.Features, c.Features.Permutation())
	c.similarityTester = metricSimilarityTester(c.Features.Features, c.Options.MustGet("AlgorithmType"))

	c.Options.Freeze()
	c.trained = true
	log.Info().Int("instances", len(c.instances)).Int("features", len(c.Features.Features)).
		Int("targets", len(targets)).Msg("training complete")
	return nil
}

func metricSimilarityTester(features []*feature.Feature, _ string) *tester.SimilarityTester {
	for _, f := range features {
		switch f.MetricType {
		case metric.Cosine:
			return tester.NewCosine(features)
		case metric.DotProduct:
			return tester.NewDotProduct(features)
		}
	}
	return nil
}

func (c *Classifier) targetEntropy() float64 {
	dist := c.Targets
	total := dist.TotalValues()
	if total == 0 {
		return 0
	}
	probs := make([]float64, 0, len(dist.All()))
	n := 0
	for _, tv := range dist.All() {
		n += tv.Frequency
	}
	if n == 0 {
		return 0
	}
	for _, tv := range dist.All() {
		if tv.Frequency > 0 {
			probs = append(probs, float64(tv.Frequency)/float64(n))
		}
	}
	if len(probs) == 0 {
		return 0
	}
	return stat.Entropy(probs) / math.Ln2
}

func weightTypeFromString(s string) feature.WeightType {
	switch s {
	case "GainRatio":
		return feature.WeightGainRatio
	case "InfoGain":
		return feature.WeightInfoGain
	case "ChiSquare":
		return feature.WeightChiSquare
	case "SharedVariance":
		return feature.WeightSharedVariance
	case "StandardDeviation":
		return feature.WeightStandardDeviation
	case "User":
		return feature.WeightUser
	default:
		return feature.WeightUniform
	}
}

// Result is the outcome of classifying one query instance.
type Result struct {
	Best         *target.Value
	Distribution *classdist.Distribution
	IsTie        bool
	Neighbors    *bestarray.Array
}

// Classify finds the k nearest stored instances to query under the
// trained metric and permutation, then votes them into a prediction via
// the configured decay rule. Train must have been called first.
func (c *Classifier) Classify(query *instance.Instance) (*Result, error) {
	if !c.trained {
		return nil, fmt.Errorf("classifier not trained: %w", errs.ErrState)
	}
	k, _ := strconv.Atoi(c.Options.MustGet("K"))
	if k < 1 {
		return nil, fmt.Errorf("K must be >= 1, got %d: %w", k, errs.ErrConfig)
	}
	eps, _ := strconv.ParseFloat(c.Options.MustGet("Epsilon"), 64)
	maxBests, _ := strconv.Atoi(c.Options.MustGet("MaxBests"))
	best := bestarray.New(k, eps, maxBests)
	effective := c.Features.EffectiveFeatures()

	for _, inst := range c.instances {
		var d float64
		if c.similarityTester != nil {
			res, err := c.similarityTester.Test(query, inst)
			if err != nil {
				return nil, err
			}
			d = res.Distance
		} else {
			// A partial sum that stopped early at or past the bound is
			// rejected by AddResult unless it lies within eps of the
			// bound, where it would be merged as a tie; such a sum is
			// finished first so that only a real tie is merged.
			bound := best.Bound()
			res, err := c.distanceTester.Test(query, inst, bound)
			if err != nil {
				return nil, err
			}
			if res.Examined < effective && math.Abs(res.Distance-bound) < eps {
				if res, err = c.distanceTester.Test(query, inst, -1); err != nil {
					return nil, err
				}
			}
			d = res.Distance
		}
		best.AddResult(d, inst)
	}

	decayOpts := decay.Options{Type: decayTypeFromString(c.Options.MustGet("DecayType"))}
	decayOpts.Alpha, _ = strconv.ParseFloat(c.Options.MustGet("Alpha"), 64)
	decayOpts.Beta, _ = strconv.ParseFloat(c.Options.MustGet("Beta"), 64)

	tv, dist, isTie := decay.BestTarget(best, decayOpts)
	normalizeDistribution(dist, c.Options.MustGet("NormType"), c.Targets.All())
	return &Result{Best: tv, Distribution: dist, IsTie: isTie, Neighbors: best}, nil
}

// normalizeDistribution rescales dist in place per the NormType option
// family of spec.md §6, applied after the winning target has already
// been decided from the raw vote so normalization only affects the
// reported distribution, never the prediction itself.
func normalizeDistribution(dist *classdist.Distribution, normType string, targets []*target.Value) {
	switch normType {
	case "Probability":
		dist.Normalize()
	case "Add1":
		dist.Normalize1(1.0, targets)
	case "AddEps":
		dist.Normalize1(1e-9, targets)
	}
}

func decayTypeFromString(s string) decay.Type {
	switch s {
	case "InvDist":
		return decay.InvDist
	case "InvLinear":
		return decay.InvLinear
	case "ExpDecay":
		return decay.ExpDecay
	default:
		return decay.Zero
	}
}
