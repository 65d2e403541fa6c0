package tester

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ibl/pkg/feature"
	"ibl/pkg/instance"
	"ibl/pkg/metric"
	"ibl/pkg/stringtable"
	"ibl/pkg/target"
)

func newOverlapFeature(strings *stringtable.Table) *feature.Feature {
	f := feature.New(strings, false, metric.Overlap)
	f.Weight = 1.0
	return f
}

func TestDistanceTesterSumsMismatchesInPermutationOrder(t *testing.T) {
	strings := stringtable.New()
	reg := target.New(strings)
	a := reg.AddValue("a", 0)

	f0 := newOverlapFeature(strings)
	f1 := newOverlapFeature(strings)
	q0, _ := f0.AddValue("x", a, 1)
	e0, _ := f0.AddValue("y", a, 1)
	q1, _ := f1.AddValue("z", a, 1)

	dt := New([]*feature.Feature{f0, f1}, []int{0, 1})

	query := instance.New(2)
	query.Set(0, q0)
	query.Set(1, q1)
	exemplar := instance.New(2)
	exemplar.Set(0, e0)
	exemplar.Set(1, q1)

	res, err := dt.Test(query, exemplar, -1)
	require.NoError(t, err)
	require.Equal(t, 1.0, res.Distance)
	require.Equal(t, 2, res.Examined)
}

func TestDistanceTesterStopsEarlyOnceBoundReached(t *testing.T) {
	strings := stringtable.New()
	reg := target.New(strings)
	a := reg.AddValue("a", 0)

	f0 := newOverlapFeature(strings)
	f1 := newOverlapFeature(strings)
	q0, _ := f0.AddValue("x", a, 1)
	e0, _ := f0.AddValue("y", a, 1)
	q1, _ := f1.AddValue("z", a, 1)

	dt := New([]*feature.Feature{f0, f1}, []int{0, 1})

	query := instance.New(2)
	query.Set(0, q0)
	query.Set(1, q1)
	exemplar := instance.New(2)
	exemplar.Set(0, e0)
	exemplar.Set(1, q1)

	res, err := dt.Test(query, exemplar, 1.0)
	require.NoError(t, err)
	require.Equal(t, 1.0, res.Distance)
	require.Equal(t, 1, res.Examined)
}

func TestDistanceTesterSkipsIgnoredFeatures(t *testing.T) {
	strings := stringtable.New()
	reg := target.New(strings)
	a := reg.AddValue("a", 0)

	f0 := newOverlapFeature(strings)
	f0.Ignore = true
	f1 := newOverlapFeature(strings)
	q0, _ := f0.AddValue("x", a, 1)
	e0, _ := f0.AddValue("y", a, 1)
	q1, _ := f1.AddValue("z", a, 1)

	dt := New([]*feature.Feature{f0, f1}, []int{0, 1})

	query := instance.New(2)
	query.Set(0, q0)
	query.Set(1, q1)
	exemplar := instance.New(2)
	exemplar.Set(0, e0)
	exemplar.Set(1, q1)

	res, err := dt.Test(query, exemplar, -1)
	require.NoError(t, err)
	require.Equal(t, 0.0, res.Distance)
	require.Equal(t, 1, res.Examined)
}
