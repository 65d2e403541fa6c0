package dataio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ibl/pkg/ibl"
	"ibl/pkg/metric"
)

const toyCSV = `color,shape,size,label
red,round,1.0,apple
yellow,long,9.0,banana
red,round,1.5,apple
yellow,long,8.5,banana
`

func TestLoadDataFromDefinesFeaturesAndIngestsEveryRow(t *testing.T) {
	c := ibl.New()
	params := DataParameters{
		TargetColumn:   "label",
		NumericColumns: NewSet("size"),
		DefaultMetric:  metric.Overlap,
		NumericMetric:  metric.Numeric,
	}
	errs, err := LoadDataFrom(strings.NewReader(toyCSV), params, c)
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, c.Features.Features, 3)
	require.True(t, c.Features.Features[2].IsNumeric())
	require.Len(t, c.Instances(), 4)
}

func TestLoadDataFromRejectsMissingTargetColumn(t *testing.T) {
	c := ibl.New()
	params := DataParameters{TargetColumn: "nope"}
	_, err := LoadDataFrom(strings.NewReader(toyCSV), params, c)
	require.Error(t, err)
}

func TestLoadDataFromCollectsRowErrorsWithoutAborting(t *testing.T) {
	c := ibl.New()
	badCSV := "color,size,label\nred,notanumber,apple\nred,2.0,apple\n"
	params := DataParameters{
		TargetColumn:   "label",
		NumericColumns: NewSet("size"),
		DefaultMetric:  metric.Overlap,
		NumericMetric:  metric.Numeric,
	}
	dataErrs, err := LoadDataFrom(strings.NewReader(badCSV), params, c)
	require.NoError(t, err)
	require.Len(t, dataErrs, 1)
	require.Equal(t, 1, dataErrs[0].Line)
	require.Len(t, c.Instances(), 1)
}
