package output

import (
	"bytes"
	"testing"

	"github.com/olekukonko/tablewriter/tw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColors(t *testing.T) {
	on, err := ResolveColors("always")
	require.NoError(t, err)
	assert.True(t, on)

	off, err := ResolveColors("never")
	require.NoError(t, err)
	assert.False(t, off)

	t.Setenv("NO_COLOR", "1")
	auto, err := ResolveColors("auto")
	require.NoError(t, err)
	assert.False(t, auto)

	_, err = ResolveColors("rainbow")
	assert.Error(t, err)
}

func TestPrinter_Quiet(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false, true)

	p.Info("hidden")
	p.Warning("hidden")
	p.Header("hidden")
	p.Error("shown %d", 1)

	assert.Empty(t, out.String())
	assert.Equal(t, "[ERROR] shown 1\n", errOut.String())
}

func TestPrinter_HeaderAndScore(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &out, false, false)

	p.Header("Top hotels")

	assert.Equal(t, "\nTop hotels\n----------\n", out.String())
	assert.Equal(t, " 92", p.Score(92))
}

func TestTable_Render(t *testing.T) {
	var out bytes.Buffer
	tbl := NewTable(&out, []string{"ID", "Name"})
	tbl.AddRow([]string{"2395", "Sochi"})

	require.NoError(t, tbl.Render())
	assert.Contains(t, out.String(), "Sochi")
	assert.Contains(t, out.String(), "ID")
}

func TestTable_RightAlignedColumns(t *testing.T) {
	var out bytes.Buffer
	tbl := NewTable(&out, []string{"#", "Score"}, 1)
	tbl.AddRow([]string{"1", "7"})
	tbl.AddRow([]string{"2", "100"})

	require.NoError(t, tbl.Render())
	assert.Equal(t, []tw.Align{tw.AlignLeft, tw.AlignRight}, tbl.alignment().PerColumn)
	assert.Contains(t, out.String(), "100")
}
