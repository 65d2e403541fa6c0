package classdist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ibl/pkg/errs"
	"ibl/pkg/target"
)

// DistToString renders "{ idx freq, idx freq, ... }" by target index,
// mirroring ValueDistribution::DistToString in the original source.
func (d *Distribution) DistToString() string {
	var b strings.Builder
	b.WriteString("{ ")
	for i, e := range d.sortedEntries() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d %d", e.value.Index, e.frequency)
	}
	b.WriteString(" }")
	return b.String()
}

// DistToStringW is the name-keyed counterpart of DistToString, resolving
// each target's display name through reg.
func (d *Distribution) DistToStringW(reg *target.Registry) string {
	var b strings.Builder
	b.WriteString("{ ")
	for i, e := range d.sortedEntries() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %d", reg.Name(e.value), e.frequency)
	}
	b.WriteString(" }")
	return b.String()
}

// DistToStringWW pads the value column to width characters, for columnar
// display, matching WValueDistribution::DistToStringWW.
func (d *Distribution) DistToStringWW(reg *target.Registry, width int) string {
	var b strings.Builder
	b.WriteString("{ ")
	for i, e := range d.sortedEntries() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%-*s %.6f", width, reg.Name(e.value), e.weight)
	}
	b.WriteString(" }")
	return b.String()
}

// Save emits "idx freq[, idx freq]..." by target index, with a third,
// weight field per entry when d is weighted, and without the enclosing
// braces DistToString uses: the name-agnostic, hash-independent on-disk
// form.
func (d *Distribution) Save() string {
	var b strings.Builder
	for i, e := range d.sortedEntries() {
		if i > 0 {
			b.WriteString(", ")
		}
		if d.weighted {
			fmt.Fprintf(&b, "%d %d %.10g", e.value.Index, e.frequency, e.weight)
		} else {
			fmt.Fprintf(&b, "%d %d", e.value.Index, e.frequency)
		}
	}
	return b.String()
}

// SaveHashed is the name of Save using interned ids instead of dense
// indices, so it can be re-read against a different (but string-table
// compatible) Registry.
func (d *Distribution) SaveHashed() string {
	var b strings.Builder
	for i, e := range d.sortedEntries() {
		if i > 0 {
			b.WriteString(", ")
		}
		if d.weighted {
			fmt.Fprintf(&b, "%d %d %.10g", e.value.NameID, e.frequency, e.weight)
		} else {
			fmt.Fprintf(&b, "%d %d", e.value.NameID, e.frequency)
		}
	}
	return b.String()
}

// ReadDistribution parses the form produced by Save against reg, looking
// targets up by dense index. If allowCreate is false and an index is not
// yet registered, it returns errs.ErrUnknownValue.
func ReadDistribution(s string, reg *target.Registry, allowCreate bool) (*Distribution, error) {
	return readDistribution(s, reg, allowCreate, false)
}

// ReadDistributionHashed is the counterpart of ReadDistribution for the
// SaveHashed form: tokens are interned string-table ids, not dense indices.
func ReadDistributionHashed(s string, reg *target.Registry, allowCreate bool) (*Distribution, error) {
	return readDistribution(s, reg, allowCreate, true)
}

func readDistribution(s string, reg *target.Registry, allowCreate, hashed bool) (*Distribution, error) {
	d := New()
	s = strings.TrimSpace(s)
	if s == "" {
		return d, nil
	}
	for _, field := range strings.Split(s, ",") {
		parts := strings.Fields(field)
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed distribution field %q: %w", field, errs.ErrSchema)
		}
		key, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("malformed distribution key %q: %w", parts[0], errs.ErrSchema)
		}
		freq, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("malformed distribution frequency %q: %w", parts[1], errs.ErrSchema)
		}
		weight := float64(freq)
		if len(parts) >= 3 {
			weight, err = strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("malformed distribution weight %q: %w", parts[2], errs.ErrSchema)
			}
		}

		var tv *target.Value
		var ok bool
		if hashed {
			tv, ok = lookupByNameID(reg, uint32(key))
		} else {
			tv, ok = reg.ReverseLookup(key)
		}
		if !ok {
			if !allowCreate {
				return nil, fmt.Errorf("target id %d: %w", key, errs.ErrUnknownValue)
			}
			tv = reg.AddValueID(uint32(key), 0)
		}
		d.SetFreq(tv, freq, weight)
	}
	return d, nil
}

func lookupByNameID(reg *target.Registry, nameID uint32) (*target.Value, bool) {
	for _, v := range reg.All() {
		if v.NameID == nameID {
			return v, true
		}
	}
	return nil, false
}

// WriteSaved writes one distribution per line via Save, used by the
// persisted-model writer (pkg/dataio).
func WriteSaved(w io.Writer, dists []*Distribution) error {
	bw := bufio.NewWriter(w)
	for _, d := range dists {
		if _, err := bw.WriteString(d.Save()); err != nil {
			return err
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
