package export

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/samber/lo"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// COLUMN SANITIZER — result rows → clean, de-duplicated export table
// ============================================================================
// Pipeline per column (in column order):
//   1. Transform every value (TransformValue)
//   2. Drop technical columns (agg / sort / tftf)
//   3. Drop columns with no non-empty value
//   4. Rename (BeautifyHeader, then CleanColumnName)
//   5. Drop columns whose values repeat an earlier column exactly
//   6. Suffix names that collide with an earlier column: "Sales (2)"
// ============================================================================

// Drop reasons reported on ExportColumn.
const (
	ReasonTechnical = "technical"
	ReasonEmpty     = "empty"
	ReasonDuplicate = "duplicate"
)

// ExportColumn is the sanitizer's decision for one source column.
type ExportColumn struct {
	Source    string `json:"source"`
	Name      string `json:"name"`
	Signature string `json:"-"`
	Included  bool   `json:"included"`
	Reason    string `json:"reason,omitempty"` // why the column was dropped
}

// PlanColumns decides, per source column, whether and under which name it
// is exported. columns fixes the order; without it the sorted union of row
// keys is used.
func PlanColumns(rows []engine.Row, columns ...string) []ExportColumn {
	if len(columns) == 0 {
		columns = engine.KeysOf(rows)
	}

	plan := make([]ExportColumn, 0, len(columns))
	seenSig := make(map[string]bool)
	seenName := make(map[string]int)

	for _, key := range columns {
		display := BeautifyHeader(key)
		col := ExportColumn{Source: key, Name: display}

		if IsTechnical(display) || IsTechnical(key) {
			col.Reason = ReasonTechnical
			plan = append(plan, col)
			continue
		}

		values := lo.Map(rows, func(r engine.Row, _ int) any {
			return TransformValue(key, r[key])
		})
		if !lo.SomeBy(values, func(v any) bool { return !engine.IsNull(v) }) {
			col.Reason = ReasonEmpty
			plan = append(plan, col)
			continue
		}

		col.Name = CleanColumnName(display)
		col.Signature = signature(values)
		if seenSig[col.Signature] {
			col.Reason = ReasonDuplicate
			plan = append(plan, col)
			continue
		}
		seenSig[col.Signature] = true

		seenName[col.Name]++
		if n := seenName[col.Name]; n > 1 {
			col.Name = fmt.Sprintf("%s (%d)", col.Name, n)
		}
		col.Included = true
		plan = append(plan, col)
	}
	return plan
}

// signature serializes a column's values so identical columns compare equal.
func signature(values []any) string {
	b, err := json.Marshal(values)
	if err != nil {
		return fmt.Sprint(values)
	}
	return string(b)
}

// SanitizeForExport cleans rows for a CSV download and returns them with
// the export column order. The input rows are not modified.
func SanitizeForExport(rows []engine.Row, columns ...string) ([]engine.Row, []string) {
	all := PlanColumns(rows, columns...)
	plan := lo.Filter(all, func(c ExportColumn, _ int) bool {
		return c.Included
	})
	order := lo.Map(plan, func(c ExportColumn, _ int) string { return c.Name })

	cleaned := make([]engine.Row, len(rows))
	for i, r := range rows {
		out := make(engine.Row, len(plan))
		for _, c := range plan {
			out[c.Name] = TransformValue(c.Source, r[c.Source])
		}
		cleaned[i] = out
	}

	log.Printf("📄 export: %d rows, %d of %d columns kept", len(rows), len(order), len(all))
	return cleaned, order
}

// SanitizeView materializes a view (e.g. engine.Concat of several result
// sets) and sanitizes it in the view's column order.
func SanitizeView(view engine.RowView) ([]engine.Row, []string) {
	return SanitizeForExport(engine.Materialize(view), view.Keys()...)
}

// Concat appends several result sets into one row slice.
func Concat(sets ...[]engine.Row) []engine.Row {
	return lo.Flatten(sets)
}
