package bestarray

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"ibl/pkg/target"
)

// neighborSetXML mirrors the <neighborset> schema from spec.md §6,
// grounded on BestArray::toXML / operator<< in the original source.
type neighborSetXML struct {
	XMLName xml.Name     `xml:"neighborset"`
	K       int          `xml:"k,attr"`
	Distance float64     `xml:"distance,attr"`
	Total   int          `xml:"total,attr"`
	Limited bool         `xml:"limited,attr,omitempty"`
	Neighbors []neighborXML `xml:"neighbor"`
}

type neighborXML struct {
	Instance     string `xml:"instance"`
	Distribution string `xml:"distribution"`
}

// ToXML renders a's contents as spec.md §6's <neighborset> document. reg
// resolves target display names for each neighbor's distribution.
func (a *Array) ToXML(reg *target.Registry) ([]byte, error) {
	doc := neighborSetXML{
		K:       a.k,
		Total:   a.Total(),
		Limited: a.Limited(),
	}
	if a.Filled() > 0 {
		doc.Distance = a.Slots()[a.Filled()-1].Distance
	}
	for _, slot := range a.Slots() {
		doc.Neighbors = append(doc.Neighbors, neighborXML{
			Instance:     instanceSummary(slot),
			Distribution: slot.Aggregate.DistToStringW(reg),
		})
	}
	return xml.MarshalIndent(doc, "", "  ")
}

func instanceSummary(r Rec) string {
	var b strings.Builder
	for i, inst := range r.Instances {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "occ=%d weight=%.4g", inst.Occurrences, inst.SampleWeight)
	}
	return b.String()
}

// WriteText writes a's contents as the plain-text dump matching
// BestArray::operator<<: one line per filled slot, distance then the
// target distribution of instances tied at it.
func (a *Array) WriteText(w io.Writer, reg *target.Registry) error {
	for _, slot := range a.Slots() {
		if _, err := fmt.Fprintf(w, "%.10g\t%s\n", slot.Distance, slot.Aggregate.DistToStringW(reg)); err != nil {
			return err
		}
	}
	return nil
}
