// Package eval implements the per-class precision/recall/F1 evaluator
// used to report test-set accuracy, adapted from the teacher's
// classificationEvaluator in pkg/test.go (now generalized from a single
// continuous-target accuracy figure to TiMBL-style per-class metrics).
package eval

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ClassMetrics holds one target class's contribution to a confusion
// matrix.
type ClassMetrics struct {
	Name               string
	TruePositives      int
	FalsePositives     int
	FalseNegatives      int
	Precision, Recall, F1 float64
}

// Evaluator accumulates predicted/actual target pairs and derives
// per-class and overall metrics from them. Names are recorded as plain
// strings rather than *target.Value, since the gold label and the
// predicted label often come from two different classifiers' (and hence
// two different Registries') index spaces — a test set loaded fresh has
// no reason to share indices with the model it is being scored against.
type Evaluator struct {
	confusion map[string]map[string]int
	total     int
	correct   int
}

// New returns an empty Evaluator.
func New() *Evaluator {
	return &Evaluator{confusion: make(map[string]map[string]int)}
}

// Record adds one prediction outcome: actual is the gold class name, got
// is the name the classifier predicted.
func (e *Evaluator) Record(actual, got string) {
	row, ok := e.confusion[actual]
	if !ok {
		row = make(map[string]int)
		e.confusion[actual] = row
	}
	row[got]++
	e.total++
	if actual == got {
		e.correct++
	}
}

// Accuracy returns the overall fraction of correct predictions.
func (e *Evaluator) Accuracy() float64 {
	if e.total == 0 {
		return 0
	}
	return float64(e.correct) / float64(e.total)
}

// ClassMetrics computes precision, recall and F1 for every target class
// that appeared as either an actual or a predicted label.
func (e *Evaluator) ClassMetrics() []ClassMetrics {
	names := make(map[string]bool)
	for a, row := range e.confusion {
		names[a] = true
		for p := range row {
			names[p] = true
		}
	}

	var out []ClassMetrics
	for name := range names {
		tp, fp, fn := 0, 0, 0
		for a, row := range e.confusion {
			for p, n := range row {
				switch {
				case a == name && p == name:
					tp += n
				case a != name && p == name:
					fp += n
				case a == name && p != name:
					fn += n
				}
			}
		}
		cm := ClassMetrics{Name: name, TruePositives: tp, FalsePositives: fp, FalseNegatives: fn}
		if tp+fp > 0 {
			cm.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			cm.Recall = float64(tp) / float64(tp+fn)
		}
		if cm.Precision+cm.Recall > 0 {
			cm.F1 = 2 * cm.Precision * cm.Recall / (cm.Precision + cm.Recall)
		}
		out = append(out, cm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MacroF1 returns the unweighted mean of every class's F1, via gonum's
// plain Mean rather than hand-rolled summation.
func (e *Evaluator) MacroF1() float64 {
	cms := e.ClassMetrics()
	if len(cms) == 0 {
		return 0
	}
	f1s := make([]float64, len(cms))
	for i, cm := range cms {
		f1s[i] = cm.F1
	}
	return stat.Mean(f1s, nil)
}

// Report renders a human-readable table, matching the teacher's style of
// printing a per-class breakdown followed by an overall summary line.
func (e *Evaluator) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %10s %10s %10s %8s\n", "class", "precision", "recall", "f1", "support")
	for _, cm := range e.ClassMetrics() {
		fmt.Fprintf(&b, "%-20s %10.4f %10.4f %10.4f %8d\n", cm.Name, cm.Precision, cm.Recall, cm.F1, cm.TruePositives+cm.FalseNegatives)
	}
	fmt.Fprintf(&b, "\naccuracy=%.4f macro-f1=%.4f n=%d\n", e.Accuracy(), e.MacroF1(), e.total)
	return b.String()
}
