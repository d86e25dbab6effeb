package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Table collects rows and renders them without borders once complete.
type Table struct {
	w       io.Writer
	headers []string
	right   map[int]bool
	rows    [][]string
}

// NewTable starts a left-aligned table. Columns listed in rightAligned are aligned right.
func NewTable(w io.Writer, headers []string, rightAligned ...int) *Table {
	right := make(map[int]bool, len(rightAligned))
	for _, col := range rightAligned {
		right[col] = true
	}
	return &Table{w: w, headers: headers, right: right}
}

func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

func (t *Table) alignment() tw.CellAlignment {
	per := make([]tw.Align, len(t.headers))
	for i := range per {
		per[i] = tw.AlignLeft
		if t.right[i] {
			per[i] = tw.AlignRight
		}
	}
	return tw.CellAlignment{Global: tw.AlignLeft, PerColumn: per}
}

func (t *Table) Render() error {
	table := tablewriter.NewTable(t.w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  t.alignment(),
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.BorderNone,
			Settings: tw.Settings{Separators: tw.Separators{ShowHeader: tw.Off}},
		}),
	)
	table.Header(t.headers)
	if err := table.Bulk(t.rows); err != nil {
		return err
	}
	return table.Render()
}
