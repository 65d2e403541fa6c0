package feature

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ibl/pkg/metric"
	"ibl/pkg/stringtable"
	"ibl/pkg/target"
)

func newTestFeature(numeric bool, mt metric.Type) (*Feature, *target.Registry) {
	strings := stringtable.New()
	reg := target.New(strings)
	return New(strings, numeric, mt), reg
}

func TestAddValueCreatesOnFirstSightOnly(t *testing.T) {
	f, reg := newTestFeature(false, metric.Overlap)
	a := reg.AddValue("yes", 0)
	v1, err := f.AddValue("red", a, 1)
	require.NoError(t, err)
	v2, err := f.AddValue("red", a, 1)
	require.NoError(t, err)
	require.Same(t, v1, v2)
	require.Equal(t, 2, v1.Frequency)
	require.Equal(t, 1, f.EffectiveValues())
}

func TestUnknownValueIsReservedAtIndexZero(t *testing.T) {
	f, _ := newTestFeature(false, metric.Overlap)
	require.Equal(t, 0, f.Unknown().Index)
	require.True(t, f.Unknown().IsUnknown())
}

func TestNumericFeatureTracksRange(t *testing.T) {
	f, reg := newTestFeature(true, metric.Numeric)
	a := reg.AddValue("a", 0)
	_, err := f.AddNumericValue(3.0, a, 1)
	require.NoError(t, err)
	_, err = f.AddNumericValue(-1.0, a, 1)
	require.NoError(t, err)
	_, err = f.AddNumericValue(5.0, a, 1)
	require.NoError(t, err)
	require.Equal(t, -1.0, f.NMin)
	require.Equal(t, 5.0, f.NMax)
}

func TestAddValueRejectsNumericFeature(t *testing.T) {
	f, _ := newTestFeature(true, metric.Numeric)
	_, err := f.AddValue("x", nil, 1)
	require.Error(t, err)
}

func TestNumericDistanceIsNormalizedByRange(t *testing.T) {
	f, reg := newTestFeature(true, metric.Numeric)
	a := reg.AddValue("a", 0)
	v1, _ := f.AddNumericValue(0.0, a, 1)
	v2, _ := f.AddNumericValue(10.0, a, 1)
	d, err := f.Distance(v1, v2)
	require.NoError(t, err)
	require.InDelta(t, 1.0, d, 1e-9)
}

func TestFVDistanceFallsBackToOverlapWithoutMatrix(t *testing.T) {
	f, reg := newTestFeature(false, metric.ValueDifference)
	a := reg.AddValue("a", 0)
	v1, _ := f.AddValue("x", a, 1)
	v2, _ := f.AddValue("y", a, 1)
	d, err := f.Distance(v1, v2)
	require.NoError(t, err)
	require.Equal(t, 1.0, d)
}

func TestStoreMatrixAndFVDistanceRoundTrip(t *testing.T) {
	f, reg := newTestFeature(false, metric.ValueDifference)
	a := reg.AddValue("a", 0)
	b := reg.AddValue("b", 0)
	v1, _ := f.AddValue("x", a, 5)
	v2, _ := f.AddValue("y", b, 5)

	require.NoError(t, f.StoreMatrix(1, reg.All()))
	d, err := f.Distance(v1, v2)
	require.NoError(t, err)
	require.InDelta(t, 2.0, d, 1e-9) // disjoint one-hot distributions: |1-0|+|0-1|

	same, err := f.Distance(v1, v1)
	require.NoError(t, err)
	require.Equal(t, 0.0, same)
}

func TestFVDistanceThresholdFallsBackToOverlapIndependentlyOfMatrixClipFreq(t *testing.T) {
	f, reg := newTestFeature(false, metric.ValueDifference)
	a := reg.AddValue("a", 0)
	b := reg.AddValue("b", 0)
	v1, _ := f.AddValue("x", a, 5)
	v2, _ := f.AddValue("y", b, 5)

	// MatrixClipFreq of 1 stores every cell, but a query-time threshold
	// above both values' frequency still forces the Overlap fallback.
	require.NoError(t, f.StoreMatrix(1, reg.All()))
	d, err := f.FVDistance(v1, v2, 10)
	require.NoError(t, err)
	require.Equal(t, 1.0, d)

	d, err = f.FVDistance(v1, v2, 1)
	require.NoError(t, err)
	require.InDelta(t, 2.0, d, 1e-9)
}
