package option

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func isPositiveInt(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func TestAddAndGetRoundTripsDefault(t *testing.T) {
	r := New()
	r.Add("K", "1", isPositiveInt)
	v, ok := r.Get("K")
	require.True(t, ok)
	require.Equal(t, "1", v)
}

func TestSetRejectsUnknownOption(t *testing.T) {
	r := New()
	require.Equal(t, Unknown, r.Set("DoesNotExist", "1"))
}

func TestSetRejectsInvalidValue(t *testing.T) {
	r := New()
	r.Add("K", "1", isPositiveInt)
	require.Equal(t, IllegalValue, r.Set("K", "not-a-number"))
	v := r.MustGet("K")
	require.Equal(t, "1", v)
}

func TestSetSucceedsInRuntimePhase(t *testing.T) {
	r := New()
	r.Add("K", "1", isPositiveInt)
	require.Equal(t, OK, r.Set("K", "5"))
	require.Equal(t, "5", r.MustGet("K"))
}

func TestFreezeBlocksFurtherSets(t *testing.T) {
	r := New()
	r.Add("K", "1", isPositiveInt)
	r.Freeze()
	require.True(t, r.IsFrozen())
	require.Equal(t, ResultFrozen, r.Set("K", "5"))
	require.NoError(t, func() error { return nil }())
	require.Error(t, r.RequireRuntime())
}

func TestUnfreezeRestoresRuntimePhase(t *testing.T) {
	r := New()
	r.Add("K", "1", isPositiveInt)
	r.Freeze()
	r.Unfreeze()
	require.NoError(t, r.RequireRuntime())
	require.Equal(t, OK, r.Set("K", "2"))
}

func TestShowListsOptionsInSortedOrder(t *testing.T) {
	r := New()
	r.Add("Beta", "0", nil)
	r.Add("Alpha", "1", nil)
	out := r.Show()
	require.Less(t, indexOf(out, "Alpha"), indexOf(out, "Beta"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
