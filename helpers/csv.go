package helpers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// CSV HELPER — Parses CSV data into a ResultSet
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, S3, Sheets).
// This helper converts the raw bytes into rows: headers become snake_case
// keys, numeric cells become float64, empty cells become nil.
// ============================================================================

// ParseCSV parses CSV bytes into a ResultSet. Malformed rows are skipped.
func ParseCSV(data []byte) (*ResultSet, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	// Read header
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = toSnakeCase(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	// Read rows
	rs := &ResultSet{Columns: keys}
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		row := make(engine.Row, len(keys))
		for i, key := range keys {
			if i >= len(record) {
				row[key] = nil
				continue
			}
			row[key] = parseCell(record[i])
		}
		rs.Rows = append(rs.Rows, row)
	}

	if skipped > 0 {
		log.Printf("⚠️ csv: skipped %d malformed rows", skipped)
	}
	return rs, nil
}

// parseCell tries numeric first, then keeps the trimmed text.
func parseCell(val string) any {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	return val
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
