package stringtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternIsIdempotent(t *testing.T) {
	tab := New()
	a := tab.Intern("red")
	b := tab.Intern("red")
	require.Equal(t, a, b)
	require.Equal(t, 1, tab.Size())
}

func TestReverseRoundTrip(t *testing.T) {
	tab := New()
	id := tab.Intern("blue")
	s, ok := tab.Reverse(id)
	require.True(t, ok)
	require.Equal(t, "blue", s)
}

func TestLookupMissing(t *testing.T) {
	tab := New()
	_, ok := tab.Lookup("nope")
	require.False(t, ok)
}

func TestDistinctStringsGetDistinctIDs(t *testing.T) {
	tab := New()
	a := tab.Intern("red")
	b := tab.Intern("green")
	require.NotEqual(t, a, b)
	require.Equal(t, 2, tab.Size())
}
