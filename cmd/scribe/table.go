package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// maxCellWidth keeps free-form detail text from blowing out the table on
// narrow terminals.
const maxCellWidth = 60

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		cells := make(table.Row, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		tw.AppendRow(cells)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, WidthMax: maxCellWidth}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
