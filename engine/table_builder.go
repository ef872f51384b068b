package engine

// ============================================================================
// TABLE BUILDER — Produces TableData from a SeriesTable
// ============================================================================
// One row per bucket, one column per metric, totals in the summary.
// ============================================================================

// BuildTable produces TableData with the axis as the first column.
func BuildTable(t *SeriesTable, axis Field, title string) *TableData {
	columns := make([]Column, 0, len(t.Metrics)+1)
	axisKey, axisLabel := "bucket", "Bucket"
	if axis != nil {
		axisKey, axisLabel = axis.Name(), axis.Title()
	}
	columns = append(columns, Column{
		Key:   axisKey,
		Label: axisLabel,
		Type:  "text",
		Align: "left",
	})
	for _, m := range t.Metrics {
		columns = append(columns, Column{
			Key:   m.Name(),
			Label: m.Title(),
			Type:  "number",
			Align: "right",
		})
	}

	rows := make([][]string, 0, len(t.Buckets))
	for b, key := range t.Buckets {
		row := make([]string, 0, len(columns))
		row = append(row, key)
		for m, metric := range t.Metrics {
			row = append(row, formatCell(t.Values[m][b], metric.Meta()))
		}
		rows = append(rows, row)
	}

	summary := &Summary{
		Label:  "Total",
		Values: make(map[string]string, len(t.Metrics)),
	}
	for m, metric := range t.Metrics {
		summary.Values[metric.Name()] = formatCell(t.Total(m), metric.Meta())
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: summary,
	}
}

// formatCell renders a table number: meta decimals when given, otherwise
// thousands separators with at most two decimals.
func formatCell(v float64, meta Meta) string {
	if meta.Decimals != nil {
		return formatNumber(v, meta)
	}
	s := meta.Prefix + FormatNumber(RoundTo2(v))
	if meta.Unit != "" {
		s += " " + meta.Unit
	}
	return s
}
