package target

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ibl/pkg/stringtable"
)

func TestAddValueIsIdempotentOnIdentity(t *testing.T) {
	reg := New(stringtable.New())
	a := reg.AddValue("yes", 3)
	b := reg.AddValue("yes", 2)
	require.Same(t, a, b)
	require.Equal(t, 5, a.Frequency)
	require.Equal(t, 1, reg.TotalValues())
}

func TestMajorityClassBreaksTiesBySmallestIndex(t *testing.T) {
	reg := New(stringtable.New())
	a := reg.AddValue("a", 2)
	reg.AddValue("b", 2)
	require.Equal(t, a, reg.MajorityClass())
}

func TestDecrementNeverGoesNegative(t *testing.T) {
	reg := New(stringtable.New())
	v := reg.AddValue("a", 0)
	reg.Decrement(v)
	require.Equal(t, 0, v.Frequency)
}

func TestReverseLookup(t *testing.T) {
	reg := New(stringtable.New())
	v := reg.AddValue("a", 1)
	got, ok := reg.ReverseLookup(v.Index)
	require.True(t, ok)
	require.Equal(t, v, got)
	_, ok = reg.ReverseLookup(99)
	require.False(t, ok)
}
