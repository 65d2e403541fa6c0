package feature

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"ibl/pkg/errs"
	"ibl/pkg/metric"
	"ibl/pkg/target"
)

// matrixStore wraps a gonum SymDense, chosen because it keeps a symmetric
// matrix through its upper triangle (in a full n×n buffer), so no
// hand-rolled triangular indexing is needed to go from "pair of value
// indices" to "matrix cell".
type matrixStore struct {
	dim int
	sym *mat.SymDense
}

// StoreMatrix builds f's value-difference matrix from its values' target
// distributions, aligned against targets (the full, stable set of target
// classes seen during training), skipping (leaving at 0) any pair where
// either value's frequency is below clipFreq, matching
// Feature::matrix_clip_freq in the original source. Values below the clip
// threshold fall back to Overlap at query time (see FVDistance).
func (f *Feature) StoreMatrix(clipFreq int, targets []*target.Value) error {
	if !f.MetricType.Storable() {
		return fmt.Errorf("metric %s does not use a stored matrix: %w", f.MetricType, errs.ErrConfig)
	}
	f.MatrixClipFreq = clipFreq
	n := len(f.values)
	sym := mat.NewSymDense(n, nil)

	dense := make([][]float64, n)
	names := make([]string, n)
	for i, v := range f.values {
		if f.MetricType == metric.Levenshtein {
			names[i] = f.Name(v)
			continue
		}
		if v.SparseProb != nil {
			dense[i] = v.SparseProb.Dense()
		} else {
			dense[i] = denseTargetProbs(v, targets)
		}
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if i == j {
				sym.SetSym(i, j, 0)
				continue
			}
			if f.values[i].Frequency < clipFreq || f.values[j].Frequency < clipFreq {
				continue
			}
			sym.SetSym(i, j, f.pairDistance(i, j, dense, names))
		}
	}
	f.matrix = &matrixStore{dim: n, sym: sym}
	return nil
}

// denseTargetProbs renders v's target distribution as a probability vector
// aligned to targets' order, so any two values' vectors are directly
// comparable regardless of which targets each individually observed.
func denseTargetProbs(v *Value, targets []*target.Value) []float64 {
	out := make([]float64, len(targets))
	total := float64(v.TargetDist.TotalItems())
	if total == 0 {
		return out
	}
	for i, tv := range targets {
		out[i] = float64(v.TargetDist.Freq(tv)) / total
	}
	return out
}

func (f *Feature) pairDistance(i, j int, dense [][]float64, names []string) float64 {
	switch f.MetricType {
	case metric.Levenshtein:
		return float64(metric.LevenshteinDistance(names[i], names[j]))
	case metric.Jeffrey:
		return metric.JeffreyDivergence(dense[i], dense[j])
	case metric.JensenShannon:
		return metric.JensenShannonDivergence(dense[i], dense[j])
	case metric.Dice:
		return metric.DiceDistance(dense[i], dense[j])
	default:
		return metric.AbsoluteDifference(dense[i], dense[j])
	}
}

// FVDistance returns the distance between a and b under f's metric.
// threshold is the query-time vd_threshold (spec.md §4.3/§6): below it,
// below the build-time MatrixClipFreq whose cells StoreMatrix left
// unset, or when no matrix has been built, FVDistance falls back to plain
// Overlap (0 if equal, 1 otherwise), matching the original source's
// behavior for infrequent values. The two frequency floors are checked
// independently of each other.
func (f *Feature) FVDistance(a, b *Value, threshold int) (float64, error) {
	if a.Index == b.Index {
		return 0, nil
	}
	if !f.MetricType.Storable() || f.matrix == nil {
		return 1, nil
	}
	if a.Frequency < threshold || b.Frequency < threshold ||
		a.Frequency < f.MatrixClipFreq || b.Frequency < f.MatrixClipFreq {
		return 1, nil
	}
	if a.Index >= f.matrix.dim || b.Index >= f.matrix.dim {
		return 1, nil
	}
	return f.matrix.sym.At(a.Index, b.Index), nil
}

// PrintMatrix writes the upper triangle (excluding the diagonal) as one
// value per line, row-major, matching Feature::print_matrix.
func (f *Feature) PrintMatrix(w io.Writer) error {
	if f.matrix == nil {
		return fmt.Errorf("matrix not built: %w", errs.ErrState)
	}
	bw := bufio.NewWriter(w)
	n := f.matrix.dim
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if _, err := fmt.Fprintf(bw, "%.10g\n", f.matrix.sym.At(i, j)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// FillMatrix reads a matrix previously written by PrintMatrix, in the same
// row-major upper-triangle order, rebuilding the SymDense without
// recomputing any divergence, for fast model reload (spec.md §6).
func (f *Feature) FillMatrix(r io.Reader) error {
	n := len(f.values)
	sym := mat.NewSymDense(n, nil)
	scanner := bufio.NewScanner(r)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("matrix truncated at (%d,%d): %w", i, j, errs.ErrSchema)
			}
			line := strings.TrimSpace(scanner.Text())
			v, err := strconv.ParseFloat(line, 64)
			if err != nil {
				return fmt.Errorf("malformed matrix entry %q: %w", line, errs.ErrSchema)
			}
			sym.SetSym(i, j, v)
		}
	}
	f.matrix = &matrixStore{dim: n, sym: sym}
	return nil
}

// HasMatrix reports whether a value-difference matrix has been built.
func (f *Feature) HasMatrix() bool { return f.matrix != nil }
