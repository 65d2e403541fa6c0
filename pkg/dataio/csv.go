// Package dataio loads training/test data into a *ibl.Classifier and
// persists trained models to disk, grounded on the teacher's
// pkg/io/io.go CSV loader (DataParameters/DataError/Set) generalized from
// golem's tensor-feature model to IBL's symbolic+numeric feature space,
// and on the persisted-model layout in spec.md §6.
package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"ibl/pkg/ibl"
	"ibl/pkg/metric"
)

type void struct{}

// Set is a small string-membership set, used to mark which CSV columns
// are numeric vs. symbolic.
type Set map[string]void

// NewSet builds a Set from its arguments.
func NewSet(values ...string) Set {
	s := Set{}
	for _, v := range values {
		s[v] = void{}
	}
	return s
}

// DataParameters describes one CSV training/test file's shape.
type DataParameters struct {
	DataFile        string
	TargetColumn    string
	NumericColumns  Set
	DefaultMetric   metric.Type
	NumericMetric   metric.Type
}

// DataError records one unparseable row without aborting the whole load,
// matching the teacher's accumulate-and-continue error handling.
type DataError struct {
	Line  int
	Error string
}

// LoadData reads p.DataFile's header to define features on c (skipping
// the target column), then ingests every remaining row via
// c.AddInstance, collecting a DataError per row that fails to parse
// rather than aborting the load.
func LoadData(p DataParameters, c *ibl.Classifier) ([]DataError, error) {
	f, err := os.Open(p.DataFile)
	if err != nil {
		return nil, errors.Wrap(err, "opening data file")
	}
	defer f.Close()
	return LoadDataFrom(f, p, c)
}

// LoadDataFrom is LoadData over an already-open reader, split out so
// tests can exercise it against an in-memory buffer.
func LoadDataFrom(r io.Reader, p DataParameters, c *ibl.Classifier) ([]DataError, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}

	targetCol := -1
	featureCols := make([]int, 0, len(header))
	for i, col := range header {
		if col == p.TargetColumn {
			targetCol = i
			continue
		}
		featureCols = append(featureCols, i)
	}
	if targetCol < 0 {
		return nil, fmt.Errorf("target column %q not found in header", p.TargetColumn)
	}

	for _, col := range featureCols {
		name := header[col]
		_, numeric := p.NumericColumns[name]
		mt := p.DefaultMetric
		if numeric {
			mt = p.NumericMetric
		}
		if _, err := c.DefineFeature(numeric, mt); err != nil {
			return nil, errors.Wrapf(err, "defining feature %q", name)
		}
	}

	var dataErrors []DataError
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dataErrors = append(dataErrors, DataError{Line: line, Error: err.Error()})
			line++
			continue
		}
		values := make([]string, len(featureCols))
		for i, col := range featureCols {
			values[i] = record[col]
		}
		if _, err := c.AddInstance(values, record[targetCol]); err != nil {
			dataErrors = append(dataErrors, DataError{Line: line, Error: err.Error()})
		}
		line++
	}
	return dataErrors, nil
}
