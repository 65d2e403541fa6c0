package bestarray

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ibl/pkg/instance"
	"ibl/pkg/stringtable"
	"ibl/pkg/target"
)

// labeled returns a width-0 instance bound to a target, since every slot's
// Aggregate counts the candidates merged into it by target.
func labeled() *instance.Instance {
	inst := instance.New(0)
	inst.Target = target.New(stringtable.New()).AddValue("X", 0)
	return inst
}

func TestNewSeedsSentinelsInStrictlyIncreasingOrder(t *testing.T) {
	a := New(3, 1e-6, 0)
	require.Equal(t, 0, a.Filled())
	bound := a.Bound()
	require.Less(t, a.recs[0].Distance, a.recs[1].Distance)
	require.Less(t, a.recs[1].Distance, a.recs[2].Distance)
	require.Equal(t, a.recs[2].Distance, bound)
}

func TestAddResultFillsSlotsInAscendingOrder(t *testing.T) {
	a := New(2, 1e-6, 0)
	i1 := labeled()
	i2 := labeled()

	a.AddResult(3.0, i1)
	a.AddResult(1.0, i2)

	require.Equal(t, 2, a.Filled())
	slots := a.Slots()
	require.Equal(t, 1.0, slots[0].Distance)
	require.Equal(t, 3.0, slots[1].Distance)
}

func TestAddResultMergesTiesWithinEpsilon(t *testing.T) {
	a := New(1, 1e-6, 0)
	i1 := labeled()
	i2 := labeled()

	a.AddResult(1.0, i1)
	a.AddResult(1.0+1e-9, i2)

	require.Equal(t, 1, a.Filled())
	require.Len(t, a.Slots()[0].Instances, 2)
}

func TestAddResultDropsCandidateWorseThanEveryFilledSlot(t *testing.T) {
	a := New(1, 1e-6, 0)
	best := labeled()
	a.AddResult(0.5, best)

	worse := labeled()
	a.AddResult(10.0, worse)

	require.Equal(t, 1, a.Filled())
	require.Equal(t, 0.5, a.Slots()[0].Distance)
}

func TestTotalSumsOccurrencesAcrossSlots(t *testing.T) {
	a := New(2, 1e-6, 0)
	i1 := labeled()
	i1.Occurrences = 3
	i2 := labeled()
	i2.Occurrences = 2

	a.AddResult(1.0, i1)
	a.AddResult(2.0, i2)

	require.Equal(t, 5, a.Total())
}

func TestLimitedReportsFalseWithoutACap(t *testing.T) {
	a := New(1, 1e-6, 0)
	require.False(t, a.Limited())
}

func TestMaxBestsCapsRetainedInstancesButNotAggregate(t *testing.T) {
	strings := stringtable.New()
	reg := target.New(strings)
	x := reg.AddValue("X", 0)
	y := reg.AddValue("Y", 0)

	a := New(1, 1e-6, 2)
	for i := 0; i < 4; i++ {
		inst := instance.New(0)
		inst.Target = x
		a.AddResult(1.0, inst)
	}
	for i := 0; i < 2; i++ {
		inst := instance.New(0)
		inst.Target = y
		a.AddResult(1.0, inst)
	}

	require.True(t, a.Limited())
	slot := a.Slots()[0]
	require.Len(t, slot.Instances, 2)
	require.Equal(t, 4, slot.Aggregate.Freq(x))
	require.Equal(t, 2, slot.Aggregate.Freq(y))
	require.Equal(t, 6, a.Total())
}

func TestMaxBestsZeroMeansUnbounded(t *testing.T) {
	a := New(1, 1e-6, 0)
	for i := 0; i < 10; i++ {
		a.AddResult(1.0, labeled())
	}
	require.False(t, a.Limited())
	require.Len(t, a.Slots()[0].Instances, 10)
}
