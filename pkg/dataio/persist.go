package dataio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"

	"ibl/pkg/classdist"
	"ibl/pkg/feature"
	"ibl/pkg/ibl"
	"ibl/pkg/instance"
	"ibl/pkg/metric"
	"ibl/pkg/target"
)

// modelMagic tags the format version, so a future incompatible layout
// change fails loudly instead of silently misparsing.
const modelMagic = "IBLMODEL 1"

// SaveModel writes c's state — options, targets, features (with values
// and, for storable metrics, the value-difference matrix) and every
// training instance — to w, zstd-compressed. Symbolic values carry their
// target distributions; numeric values are written with their frequency
// only. named selects between
// spec.md §6's two serialized forms: true emits the plain-name form
// (human-diffable, independent of any particular string table's id
// assignment), false emits the hashed form (interned ids, smaller and
// faster to reload against the same string table). Either form is
// accepted by LoadModel.
func SaveModel(c *ibl.Classifier, w io.Writer, named bool) error {
	var buf strings.Builder
	if err := writeModel(&buf, c, named); err != nil {
		return errors.Wrap(err, "encoding model")
	}
	zw := zstd.NewWriter(w)
	defer zw.Close()
	if _, err := zw.Write([]byte(buf.String())); err != nil {
		return errors.Wrap(err, "compressing model")
	}
	return nil
}

func writeModel(b *strings.Builder, c *ibl.Classifier, named bool) error {
	fmt.Fprintln(b, modelMagic)
	fmt.Fprintf(b, "FORM %s\n", formTag(named))
	fmt.Fprintln(b, "OPTIONS")
	fmt.Fprint(b, c.Options.Show())
	fmt.Fprintln(b, "ENDOPTIONS")

	targets := c.Targets.All()
	fmt.Fprintf(b, "TARGETS %d\n", len(targets))
	for _, tv := range targets {
		writeTargetLine(b, c, tv, named)
	}

	fmt.Fprintf(b, "FEATURES %d\n", len(c.Features.Features))
	for i, f := range c.Features.Features {
		if err := writeFeature(b, c, i, f, named); err != nil {
			return err
		}
	}

	instances := c.Instances()
	fmt.Fprintf(b, "INSTANCES %d\n", len(instances))
	for _, inst := range instances {
		writeInstance(b, inst)
	}
	return nil
}

func formTag(named bool) string {
	if named {
		return "named"
	}
	return "hashed"
}

func writeTargetLine(b *strings.Builder, c *ibl.Classifier, tv *target.Value, named bool) {
	if named {
		fmt.Fprintf(b, "%s %d\n", c.Targets.Name(tv), tv.Frequency)
	} else {
		fmt.Fprintf(b, "%d %d\n", tv.NameID, tv.Frequency)
	}
}

func writeFeature(b *strings.Builder, c *ibl.Classifier, index int, f *feature.Feature, named bool) error {
	fmt.Fprintf(b, "FEATURE %d ignore=%t numeric=%t metric=%s weight=%.10g nmin=%.10g nmax=%.10g\n",
		index, f.Ignore, f.IsNumeric(), f.MetricType, f.Weight, f.NMin, f.NMax)

	values := f.Values()
	fmt.Fprintf(b, "VALUES %d\n", len(values)-1)
	for _, v := range values {
		if v.Index == 0 {
			continue
		}
		if f.IsNumeric() {
			fmt.Fprintf(b, "VALUE %.10g %d\n", v.Numeric, v.Frequency)
		} else if named {
			fmt.Fprintf(b, "VALUE %s %d %s\n", f.Name(v), v.Frequency, v.TargetDist.Save())
		} else {
			fmt.Fprintf(b, "VALUE %d %d %s\n", v.NameID, v.Frequency, v.TargetDist.SaveHashed())
		}
	}

	if f.IsStorableMetric() && f.HasMatrix() {
		fmt.Fprintln(b, "MATRIX")
		if err := f.PrintMatrix(&stringWriter{b}); err != nil {
			return err
		}
		fmt.Fprintln(b, "ENDMATRIX")
	}
	return nil
}

// stringWriter adapts *strings.Builder to io.Writer for PrintMatrix,
// which expects a plain io.Writer rather than anything strings.Builder
// specific.
type stringWriter struct{ b *strings.Builder }

func (s *stringWriter) Write(p []byte) (int, error) { return s.b.Write(p) }

func writeInstance(b *strings.Builder, inst *instance.Instance) {
	fmt.Fprintf(b, "INSTANCE %d %d %.10g", inst.Target.Index, inst.Occurrences, inst.SampleWeight)
	for i := 0; i < inst.Width(); i++ {
		v := inst.At(i)
		if v == nil {
			fmt.Fprint(b, " -1")
		} else {
			fmt.Fprintf(b, " %d", v.Index)
		}
	}
	fmt.Fprintln(b)
}

// LoadModel rebuilds a *ibl.Classifier from a stream written by
// SaveModel, transparently handling both the named and hashed forms. The
// returned classifier is trained and carries the saved feature weights.
func LoadModel(r io.Reader) (*ibl.Classifier, error) {
	zr := zstd.NewReader(r)
	defer zr.Close()
	return readModel(bufio.NewScanner(zr))
}

func readModel(sc *bufio.Scanner) (*ibl.Classifier, error) {
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() || sc.Text() != modelMagic {
		return nil, fmt.Errorf("not an ibl model stream")
	}
	if !sc.Scan() {
		return nil, fmt.Errorf("truncated model stream")
	}
	named := strings.TrimPrefix(sc.Text(), "FORM ") == "named"

	c := ibl.New()

	if !expect(sc, "OPTIONS") {
		return nil, fmt.Errorf("malformed model: missing OPTIONS")
	}
	for sc.Scan() && sc.Text() != "ENDOPTIONS" {
		parts := strings.Fields(sc.Text())
		if len(parts) == 2 {
			c.Options.Set(parts[0], parts[1])
		}
	}

	if err := readTargets(sc, c, named); err != nil {
		return nil, err
	}
	if err := readFeatures(sc, c, named); err != nil {
		return nil, err
	}
	if err := readInstances(sc, c); err != nil {
		return nil, err
	}
	// Train builds the testers and freezes the options so the model can
	// Classify; the saved weights are put back afterwards, since numeric
	// values are stored without the target distributions they came from.
	weights := make([]float64, len(c.Features.Features))
	for i, f := range c.Features.Features {
		weights[i] = f.Weight
	}
	if err := c.Train(); err != nil {
		return nil, err
	}
	for i, f := range c.Features.Features {
		f.Weight = weights[i]
	}
	return c, nil
}

func expect(sc *bufio.Scanner, prefix string) bool {
	return sc.Scan() && strings.HasPrefix(sc.Text(), prefix)
}

func readTargets(sc *bufio.Scanner, c *ibl.Classifier, named bool) error {
	if !sc.Scan() {
		return fmt.Errorf("malformed model: missing TARGETS")
	}
	n, err := countFrom(sc.Text(), "TARGETS")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return fmt.Errorf("truncated targets")
		}
		parts := strings.Fields(sc.Text())
		if len(parts) != 2 {
			return fmt.Errorf("malformed target line %q", sc.Text())
		}
		freq, err := strconv.Atoi(parts[1])
		if err != nil {
			return err
		}
		if named {
			c.Targets.AddValue(parts[0], freq)
		} else {
			id, err := strconv.ParseUint(parts[0], 10, 32)
			if err != nil {
				return err
			}
			c.Targets.AddValueID(uint32(id), freq)
		}
	}
	return nil
}

func readFeatures(sc *bufio.Scanner, c *ibl.Classifier, named bool) error {
	if !sc.Scan() {
		return fmt.Errorf("malformed model: missing FEATURES")
	}
	n, err := countFrom(sc.Text(), "FEATURES")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := readOneFeature(sc, c, named); err != nil {
			return err
		}
	}
	return nil
}

func readOneFeature(sc *bufio.Scanner, c *ibl.Classifier, named bool) error {
	if !sc.Scan() {
		return fmt.Errorf("truncated feature block")
	}
	line := sc.Text()
	if !strings.HasPrefix(line, "FEATURE ") {
		return fmt.Errorf("expected FEATURE, got %q", line)
	}
	fields := parseKV(line)
	numeric := fields["numeric"] == "true"
	mt := metricFromString(fields["metric"])

	f, err := c.DefineFeature(numeric, mt)
	if err != nil {
		return err
	}
	f.Ignore = fields["ignore"] == "true"
	f.Weight, _ = strconv.ParseFloat(fields["weight"], 64)
	f.NMin, _ = strconv.ParseFloat(fields["nmin"], 64)
	f.NMax, _ = strconv.ParseFloat(fields["nmax"], 64)

	if !sc.Scan() {
		return fmt.Errorf("truncated feature: missing VALUES")
	}
	nv, err := countFrom(sc.Text(), "VALUES")
	if err != nil {
		return err
	}
	for i := 0; i < nv; i++ {
		if !sc.Scan() {
			return fmt.Errorf("truncated values")
		}
		if err := readOneValue(sc.Text(), c, f, named); err != nil {
			return err
		}
	}

	if f.IsStorableMetric() {
		if !sc.Scan() {
			return fmt.Errorf("truncated feature: missing MATRIX")
		}
		if sc.Text() == "MATRIX" {
			var body strings.Builder
			for sc.Scan() && sc.Text() != "ENDMATRIX" {
				body.WriteString(sc.Text())
				body.WriteByte('\n')
			}
			if err := f.FillMatrix(strings.NewReader(body.String())); err != nil {
				return err
			}
		}
	}
	return nil
}

func readOneValue(line string, c *ibl.Classifier, f *feature.Feature, named bool) error {
	rest := strings.TrimPrefix(line, "VALUE ")
	parts := strings.SplitN(rest, " ", 3)
	if len(parts) < 2 {
		return fmt.Errorf("malformed value line %q", line)
	}
	if f.IsNumeric() {
		x, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return err
		}
		freq, err := strconv.Atoi(parts[1])
		if err != nil {
			return err
		}
		_, err = f.AddNumericValue(x, nil, freq)
		return err
	}

	freq, err := strconv.Atoi(parts[1])
	if err != nil {
		return err
	}

	var v *feature.Value
	if named {
		v, err = f.AddValue(parts[0], nil, freq)
	} else {
		id, idErr := strconv.ParseUint(parts[0], 10, 32)
		if idErr != nil {
			return idErr
		}
		v, err = f.AddValueID(uint32(id), nil, freq)
	}
	if err != nil {
		return err
	}
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		var dist *classdist.Distribution
		if named {
			dist, err = classdist.ReadDistribution(parts[2], c.Targets, true)
		} else {
			dist, err = classdist.ReadDistributionHashed(parts[2], c.Targets, true)
		}
		if err != nil {
			return err
		}
		v.TargetDist = dist
	}
	return nil
}

func readInstances(sc *bufio.Scanner, c *ibl.Classifier) error {
	if !sc.Scan() {
		return fmt.Errorf("malformed model: missing INSTANCES")
	}
	n, err := countFrom(sc.Text(), "INSTANCES")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return fmt.Errorf("truncated instances")
		}
		if err := c.LoadInstanceLine(sc.Text()); err != nil {
			return err
		}
	}
	return nil
}

func countFrom(line, prefix string) (int, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	return strconv.Atoi(rest)
}

func parseKV(line string) map[string]string {
	out := make(map[string]string)
	for _, tok := range strings.Fields(line)[2:] {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) == 2 {
			out[kv[0]] = kv[1]
		}
	}
	return out
}

func metricFromString(s string) metric.Type {
	types := []metric.Type{
		metric.Overlap, metric.ValueDifference, metric.Numeric, metric.Cosine,
		metric.DotProduct, metric.Jeffrey, metric.JensenShannon, metric.Dice, metric.Levenshtein,
	}
	for _, t := range types {
		if t.String() == s {
			return t
		}
	}
	return metric.Overlap
}
