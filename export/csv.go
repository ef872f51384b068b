package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/spektr-org/seriesagg/engine"
)

// DefaultPrefix starts every export file name.
const DefaultPrefix = "seriesagg"

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)

// FileName builds "<prefix>-<chart name>-<YYYY-MM-DD>". Runs of characters
// other than letters, digits and spaces in the chart name become "-".
func FileName(prefix, chartName string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	name := unsafeName.ReplaceAllString(chartName, "-")
	return fmt.Sprintf("%s-%s-%s", prefix, name, now.UTC().Format("2006-01-02"))
}

// WriteCSV writes a header row and one record per row in column order.
func WriteCSV(w io.Writer, rows []engine.Row, columns []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	record := make([]string, len(columns))
	for i, r := range rows {
		for j, c := range columns {
			record[j] = FormatCell(r[c])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export sanitizes rows and writes them as CSV.
func Export(w io.Writer, rows []engine.Row, columns ...string) error {
	cleaned, order := SanitizeForExport(rows, columns...)
	return WriteCSV(w, cleaned, order)
}

// ExportView sanitizes a view and writes it as CSV. Without columns the
// view's own column order is kept, so duplicates resolve to the column
// that comes first in the source.
func ExportView(w io.Writer, view engine.RowView, columns ...string) error {
	if len(columns) == 0 {
		cleaned, order := SanitizeView(view)
		return WriteCSV(w, cleaned, order)
	}
	return Export(w, engine.Materialize(view), columns...)
}

// ContentDisposition is the attachment header value for a CSV download.
func ContentDisposition(fileName string) string {
	if !strings.HasSuffix(fileName, ".csv") {
		fileName += ".csv"
	}
	return fmt.Sprintf(`attachment; filename="%s"`, fileName)
}
