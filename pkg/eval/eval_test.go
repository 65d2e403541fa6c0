package eval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccuracyOverAllCorrectPredictions(t *testing.T) {
	e := New()
	e.Record("apple", "apple")
	e.Record("banana", "banana")
	require.Equal(t, 1.0, e.Accuracy())
}

func TestAccuracyCountsMisclassifications(t *testing.T) {
	e := New()
	e.Record("apple", "apple")
	e.Record("banana", "apple")
	require.InDelta(t, 0.5, e.Accuracy(), 1e-9)
}

func TestClassMetricsComputesPrecisionAndRecallPerClass(t *testing.T) {
	e := New()
	e.Record("apple", "apple")
	e.Record("apple", "banana")
	e.Record("banana", "banana")

	var apple, banana ClassMetrics
	for _, cm := range e.ClassMetrics() {
		switch cm.Name {
		case "apple":
			apple = cm
		case "banana":
			banana = cm
		}
	}
	require.Equal(t, 1, apple.TruePositives)
	require.Equal(t, 1, apple.FalseNegatives)
	require.InDelta(t, 1.0, apple.Precision, 1e-9)
	require.InDelta(t, 0.5, apple.Recall, 1e-9)

	require.Equal(t, 1, banana.TruePositives)
	require.Equal(t, 1, banana.FalsePositives)
	require.InDelta(t, 0.5, banana.Precision, 1e-9)
	require.InDelta(t, 1.0, banana.Recall, 1e-9)
}

func TestMacroF1OfEmptyEvaluatorIsZero(t *testing.T) {
	e := New()
	require.Equal(t, 0.0, e.MacroF1())
}

func TestReportIncludesHeaderAndSummaryLine(t *testing.T) {
	e := New()
	e.Record("apple", "apple")
	out := e.Report()
	require.Contains(t, out, "class")
	require.Contains(t, out, "accuracy=1.0000")
}
