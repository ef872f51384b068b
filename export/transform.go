package export

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// VALUE TRANSFORM — one cell, keyed by its source column
// ============================================================================
// Timestamps:
//   midnight                   → "2006-01-02"
//   column name has "hour"     → zero-padded hour "08"
//   column name has "timestamp"→ "2006-01-02"
//   anything else              → unchanged
// Numbers (numeric strings included):
//   column name has "impression" → rounded to an integer
//   integral                     → float64, printed bare
//   otherwise                    → string with two decimals
// ============================================================================

var isoDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)

// TransformValue prepares v, read from column key, for export.
func TransformValue(key string, v any) any {
	lower := strings.ToLower(key)

	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		return t
	case time.Time:
		return transformTime(lower, t, t.Format(time.RFC3339Nano))
	case string:
		if isoDateTime.MatchString(t) {
			ts, ok := engine.ToTime(t)
			if !ok {
				return t
			}
			return transformTime(lower, ts, t)
		}
	}

	if engine.IsNull(v) {
		return v
	}
	f, ok := engine.ToFloat(v)
	if !ok {
		return v
	}
	if strings.Contains(lower, "impression") {
		return math.Round(f)
	}
	if f == math.Trunc(f) {
		return f
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func transformTime(lowerKey string, t time.Time, raw string) any {
	switch {
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0:
		return t.Format("2006-01-02")
	case strings.Contains(lowerKey, "hour"):
		return t.Format("15")
	case strings.Contains(lowerKey, "timestamp"):
		return t.Format("2006-01-02")
	}
	return raw
}

// FormatCell renders a transformed value as CSV text.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	}
	return engine.FormatValue(v, engine.Meta{})
}
