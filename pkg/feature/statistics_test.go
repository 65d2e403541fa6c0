package feature

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ibl/pkg/metric"
	"ibl/pkg/stringtable"
	"ibl/pkg/target"
)

// TestInfoGainIsPositiveWhenFeaturePerfectlyPredictsClass checks that a
// feature whose every value occurs with a single class gains the whole
// class entropy as information gain.
func TestInfoGainIsPositiveWhenFeaturePerfectlyPredictsClass(t *testing.T) {
	strings := stringtable.New()
	reg := target.New(strings)
	a := reg.AddValue("a", 2)
	b := reg.AddValue("b", 2)

	f := New(strings, false, metric.Overlap)
	_, err := f.AddValue("x", a, 2)
	require.NoError(t, err)
	_, err = f.AddValue("y", b, 2)
	require.NoError(t, err)

	totalEntropy := 1.0 // two equally frequent classes
	require.NoError(t, f.ComputeStatistics(reg.All(), totalEntropy))
	require.InDelta(t, 1.0, f.InfoGain, 1e-9)
	require.Greater(t, f.GainRatio, 0.0)
	// "x" and "y" each carry half the feature's own frequency mass, so
	// the feature's value-frequency entropy is 1 bit, same as the
	// perfectly balanced two-class target distribution above.
	require.InDelta(t, 1.0, f.Entropy, 1e-9)
}

func TestComputeStatisticsNoOpOnEmptyFeature(t *testing.T) {
	strings := stringtable.New()
	reg := target.New(strings)
	f := New(strings, false, metric.Overlap)
	require.NoError(t, f.ComputeStatistics(reg.All(), 0))
	require.Equal(t, 0.0, f.InfoGain)
}
