package classdist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ibl/pkg/stringtable"
	"ibl/pkg/target"
)

func newTargets() (*target.Registry, *target.Value, *target.Value) {
	reg := target.New(stringtable.New())
	a := reg.AddValue("a", 0)
	b := reg.AddValue("b", 0)
	return reg, a, b
}

func TestUnweightedBestTargetByFrequency(t *testing.T) {
	_, a, b := newTargets()
	d := New()
	d.IncFreq(a, 5, 5)
	d.IncFreq(b, 2, 2)
	best, tie := d.BestTarget(false)
	require.False(t, tie)
	require.Equal(t, a, best)
}

func TestWeightedBestTargetByWeight(t *testing.T) {
	_, a, b := newTargets()
	d := New()
	d.SetFreq(a, 1, 0.2)
	d.SetFreq(b, 1, 0.9)
	require.True(t, d.IsWeighted())
	best, tie := d.BestTarget(false)
	require.False(t, tie)
	require.Equal(t, b, best)
}

func TestMergeIsCommutative(t *testing.T) {
	_, a, b := newTargets()
	d1 := New()
	d1.IncFreq(a, 3, 3)
	d2 := New()
	d2.IncFreq(b, 4, 4)

	left := d1.Clone()
	left.Merge(d2)
	right := d2.Clone()
	right.Merge(d1)

	require.Equal(t, left.Freq(a), right.Freq(a))
	require.Equal(t, left.Freq(b), right.Freq(b))
	require.Equal(t, left.TotalItems(), right.TotalItems())
}

func TestEntropyOfUniformTwoWayIsOneBit(t *testing.T) {
	_, a, b := newTargets()
	d := New()
	d.IncFreq(a, 1, 1)
	d.IncFreq(b, 1, 1)
	require.InDelta(t, 1.0, d.Entropy(), 1e-9)
}

func TestEntropyOfEmptyIsZero(t *testing.T) {
	d := New()
	require.Equal(t, 0.0, d.Entropy())
}

func TestSaveAndReadDistributionRoundTrip(t *testing.T) {
	reg, a, b := newTargets()
	d := New()
	d.IncFreq(a, 3, 3)
	d.IncFreq(b, 1, 1)

	saved := d.Save()
	reloaded, err := ReadDistribution(saved, reg, false)
	require.NoError(t, err)
	require.Equal(t, d.Freq(a), reloaded.Freq(a))
	require.Equal(t, d.Freq(b), reloaded.Freq(b))
}

func TestReadDistributionUnknownValueErrors(t *testing.T) {
	reg := target.New(stringtable.New())
	_, err := ReadDistribution("99 1", reg, false)
	require.Error(t, err)
}
