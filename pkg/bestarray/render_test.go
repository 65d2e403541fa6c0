package bestarray

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"ibl/pkg/instance"
	"ibl/pkg/stringtable"
	"ibl/pkg/target"
)

func TestToXMLReportsKTotalAndOneNeighborPerFilledSlot(t *testing.T) {
	strings := stringtable.New()
	reg := target.New(strings)
	tv := reg.AddValue("yes", 0)

	a := New(2, 1e-6, 0)
	inst := instance.New(0)
	inst.Target = tv
	inst.Occurrences = 1
	a.AddResult(0.5, inst)

	out, err := a.ToXML(reg)
	require.NoError(t, err)
	require.Contains(t, string(out), `k="2"`)
	require.Contains(t, string(out), `total="1"`)
	require.Contains(t, string(out), "<neighbor>")
}

func TestWriteTextEmitsOneLinePerFilledSlot(t *testing.T) {
	strings := stringtable.New()
	reg := target.New(strings)
	tv := reg.AddValue("yes", 0)

	a := New(2, 1e-6, 0)
	inst := instance.New(0)
	inst.Target = tv
	a.AddResult(0.25, inst)

	var buf bytes.Buffer
	require.NoError(t, a.WriteText(&buf, reg))
	require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
	require.Contains(t, buf.String(), "yes")
}
