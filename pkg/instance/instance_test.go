package instance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ibl/pkg/feature"
	"ibl/pkg/target"
)

func TestNewInstanceStartsAllUnset(t *testing.T) {
	inst := New(3)
	require.Equal(t, 3, inst.Width())
	require.Nil(t, inst.At(0))
	require.Equal(t, 1, inst.Occurrences)
}

func TestMergeAccumulatesOccurrencesAndWeight(t *testing.T) {
	inst := New(1)
	inst.Merge(2, 0.5)
	require.Equal(t, 3, inst.Occurrences)
	require.InDelta(t, 1.5, inst.SampleWeight, 1e-9)
}

func TestEqualComparesValuesAndTarget(t *testing.T) {
	tv := &target.Value{Index: 0}
	v := &feature.Value{Index: 1}
	a := New(1)
	a.Set(0, v)
	a.Target = tv
	b := New(1)
	b.Set(0, v)
	b.Target = tv

	require.True(t, Equal(a, b))

	c := New(1)
	c.Set(0, &feature.Value{Index: 2})
	c.Target = tv
	require.False(t, Equal(a, c))
}
