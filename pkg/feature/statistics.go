package feature

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"ibl/pkg/target"
)

// ComputeStatistics fills Entropy, InfoGain, SplitInfo, GainRatio,
// ChiSquare and SharedVariance from f's values against targets, and
// StandardDeviation when f is numeric. totalEntropy is the entropy of the
// target distribution over the whole training set, H(C) in spec.md §4.3's
// information-gain formula. Grounded on Feature::Statistics in the
// original source.
//
// Degenerate cases (no effective values, zero total frequency, a
// zero-variance contingency table) yield 0 rather than an error, matching
// spec.md §7: entropy-family statistics never raise ArithmeticError.
func (f *Feature) ComputeStatistics(targets []*target.Value, totalEntropy float64) error {
	if f.numeric {
		return f.computeNumericStatistics(targets, totalEntropy)
	}
	return f.computeSymbolicStatistics(targets, totalEntropy)
}

func (f *Feature) computeSymbolicStatistics(targets []*target.Value, totalEntropy float64) error {
	rows := effectiveValues(f.values)
	if len(rows) == 0 || len(targets) == 0 {
		return nil
	}

	table := make([][]float64, len(rows))
	rowTotals := make([]float64, len(rows))
	colTotals := make([]float64, len(targets))
	grandTotal := 0.0

	for i, v := range rows {
		table[i] = make([]float64, len(targets))
		for j, tv := range targets {
			c := float64(v.TargetDist.Freq(tv))
			table[i][j] = c
			rowTotals[i] += c
			colTotals[j] += c
			grandTotal += c
		}
	}
	if grandTotal == 0 {
		return nil
	}

	weightedValueEntropy := 0.0
	valueFreqProbs := make([]float64, 0, len(rows))
	for i, v := range rows {
		if rowTotals[i] <= 0 {
			continue
		}
		probs := make([]float64, 0, len(targets))
		for j := range targets {
			if table[i][j] > 0 {
				probs = append(probs, table[i][j]/rowTotals[i])
			}
		}
		h := 0.0
		if len(probs) > 0 {
			h = stat.Entropy(probs) / math.Ln2
		}
		weightedValueEntropy += (rowTotals[i] / grandTotal) * h
		valueFreqProbs = append(valueFreqProbs, float64(v.Frequency)/grandTotal)
	}

	f.InfoGain = totalEntropy - weightedValueEntropy
	if f.InfoGain < 0 {
		f.InfoGain = 0
	}

	// Entropy of this feature's own value-frequency distribution
	// (spec.md §4.3's statistics() first output), independent of the
	// target: -Σ p(v)·log2(p(v)) over the same valueFreqProbs SplitInfo
	// derives from.
	f.Entropy = 0
	if len(valueFreqProbs) > 0 {
		f.Entropy = stat.Entropy(valueFreqProbs) / math.Ln2
	}

	f.SplitInfo = 0
	if len(valueFreqProbs) > 1 {
		f.SplitInfo = stat.Entropy(valueFreqProbs) / math.Ln2
	}
	if f.SplitInfo > 0 {
		f.GainRatio = f.InfoGain / f.SplitInfo
	} else {
		f.GainRatio = 0
	}

	chi := 0.0
	for i := range rows {
		if rowTotals[i] == 0 {
			continue
		}
		for j := range targets {
			if colTotals[j] == 0 {
				continue
			}
			expected := rowTotals[i] * colTotals[j] / grandTotal
			if expected == 0 {
				continue
			}
			d := table[i][j] - expected
			chi += d * d / expected
		}
	}
	f.ChiSquare = chi

	minDim := len(rows)
	if len(targets) < minDim {
		minDim = len(targets)
	}
	if minDim > 1 && grandTotal > 0 {
		f.SharedVariance = chi / (grandTotal * float64(minDim-1))
	} else {
		f.SharedVariance = 0
	}
	return nil
}

func (f *Feature) computeNumericStatistics(targets []*target.Value, totalEntropy float64) error {
	var xs, ws []float64
	for _, v := range f.values {
		if v.Index == unknownIndex || v.Frequency == 0 {
			continue
		}
		xs = append(xs, v.Numeric)
		ws = append(ws, float64(v.Frequency))
	}
	if len(xs) == 0 {
		return nil
	}
	mean := stat.Mean(xs, ws)
	f.StandardDeviation = math.Sqrt(stat.Variance(xs, ws))
	_ = mean

	// Numeric information gain discretizes the observed range into
	// f.BinSize equal-width bins and reuses the symbolic gain machinery
	// over those bins, as TiMBL's compute_numeric_statistics does.
	if f.BinSize < 1 || f.NMax <= f.NMin {
		return nil
	}
	width := (f.NMax - f.NMin) / float64(f.BinSize)
	if width <= 0 {
		return nil
	}
	binTotals := make([]float64, f.BinSize)
	binTargetTotals := make([][]float64, f.BinSize)
	for i := range binTargetTotals {
		binTargetTotals[i] = make([]float64, len(targets))
	}
	grand := 0.0
	for _, v := range f.values {
		if v.Index == unknownIndex || v.Frequency == 0 {
			continue
		}
		bin := int((v.Numeric - f.NMin) / width)
		if bin >= f.BinSize {
			bin = f.BinSize - 1
		}
		if bin < 0 {
			bin = 0
		}
		binTotals[bin] += float64(v.Frequency)
		grand += float64(v.Frequency)
		for j, tv := range targets {
			binTargetTotals[bin][j] += float64(v.TargetDist.Freq(tv))
		}
	}
	if grand == 0 {
		return nil
	}
	weightedBinEntropy := 0.0
	binFreqProbs := make([]float64, 0, f.BinSize)
	for b := 0; b < f.BinSize; b++ {
		if binTotals[b] <= 0 {
			continue
		}
		probs := make([]float64, 0, len(targets))
		for j := range targets {
			if binTargetTotals[b][j] > 0 {
				probs = append(probs, binTargetTotals[b][j]/binTotals[b])
			}
		}
		h := 0.0
		if len(probs) > 0 {
			h = stat.Entropy(probs) / math.Ln2
		}
		weightedBinEntropy += (binTotals[b] / grand) * h
		binFreqProbs = append(binFreqProbs, binTotals[b]/grand)
	}
	f.InfoGain = totalEntropy - weightedBinEntropy
	if f.InfoGain < 0 {
		f.InfoGain = 0
	}

	f.Entropy = 0
	if len(binFreqProbs) > 0 {
		f.Entropy = stat.Entropy(binFreqProbs) / math.Ln2
	}

	f.SplitInfo = 0
	if len(binFreqProbs) > 1 {
		f.SplitInfo = stat.Entropy(binFreqProbs) / math.Ln2
	}
	if f.SplitInfo > 0 {
		f.GainRatio = f.InfoGain / f.SplitInfo
	}
	return nil
}

func effectiveValues(values []*Value) []*Value {
	var out []*Value
	for _, v := range values {
		if v.Index != unknownIndex && v.Frequency > 0 {
			out = append(out, v)
		}
	}
	return out
}
