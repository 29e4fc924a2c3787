package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/grafana/grafana-cube-datasource/internal/client"
	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

// renderReasons prints the capability verdict as a table.
func renderReasons(w io.Writer, verdict cube.CapabilityVerdict) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Reason"})
	for i, reason := range verdict.Reasons {
		t.AppendRow(table.Row{i + 1, reason})
	}
	t.Render()
}

// renderResultTable prints execution results with one column per member,
// in the query's member order.
func renderResultTable(w io.Writer, columns []string, result *client.LoadResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range result.Data {
		cells := make(table.Row, len(columns))
		for i, col := range columns {
			cells[i] = row[col]
		}
		t.AppendRow(cells)
	}
	t.Render()
}
