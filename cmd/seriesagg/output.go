package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// CSV OUTPUT — chart data ready for a spreadsheet
// ============================================================================

// writeChartCSV writes one row per bucket with one column per dataset.
// A single dataset gives the two-column label/value layout.
func writeChartCSV(w io.Writer, axisTitle string, chart *engine.ChartData) error {
	cw := csv.NewWriter(w)

	if axisTitle == "" {
		axisTitle = "Label"
	}
	headers := []string{axisTitle}
	for _, ds := range chart.Datasets {
		headers = append(headers, ds.Label)
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for i, label := range chart.Labels {
		row := []string{label}
		for _, ds := range chart.Datasets {
			if i < len(ds.Data) {
				row = append(row, fmtNum(ds.Data[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeTableText prints a TableData as aligned columns.
func writeTableText(w io.Writer, table *engine.TableData) error {
	if table == nil {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}
	widths := make([]int, len(table.Columns))
	for i, c := range table.Columns {
		widths[i] = len([]rune(c.Label))
	}
	for _, row := range table.Rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			pad := 0
			if i < len(widths) {
				pad = widths[i] - len([]rune(cell))
			}
			if i < len(table.Columns) && table.Columns[i].Align == "right" {
				parts[i] = strings.Repeat(" ", pad) + cell
			} else {
				parts[i] = cell + strings.Repeat(" ", pad)
			}
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Label
	}
	if _, err := fmt.Fprintln(w, line(headers)); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if _, err := fmt.Fprintln(w, line(row)); err != nil {
			return err
		}
	}
	return nil
}

// fmtNum writes whole numbers bare and fractions with two decimals.
func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
