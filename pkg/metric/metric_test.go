package metric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAbsoluteDifferenceOfIdenticalVectorsIsZero(t *testing.T) {
	require.Equal(t, 0.0, AbsoluteDifference([]float64{0.2, 0.8}, []float64{0.2, 0.8}))
}

func TestAbsoluteDifferenceIsSymmetric(t *testing.T) {
	a := []float64{0.1, 0.9}
	b := []float64{0.6, 0.4}
	require.InDelta(t, AbsoluteDifference(a, b), AbsoluteDifference(b, a), 1e-12)
}

func TestLevenshteinKnownDistances(t *testing.T) {
	require.Equal(t, 0, LevenshteinDistance("abc", "abc"))
	require.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	require.Equal(t, 3, LevenshteinDistance("", "abc"))
}

func TestStorableMetrics(t *testing.T) {
	require.True(t, ValueDifference.Storable())
	require.False(t, Overlap.Storable())
	require.False(t, Cosine.Storable())
}

func TestJensenShannonOfIdenticalIsZero(t *testing.T) {
	p := []float64{0.5, 0.5}
	require.InDelta(t, 0.0, JensenShannonDivergence(p, p), 1e-9)
}
