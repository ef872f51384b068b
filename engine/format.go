package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

var numberPrinter = message.NewPrinter(language.English)

// FormatValue is the type-aware default formatter: numbers honour meta,
// timestamps render as dates (with HH:MM when not midnight), strings are
// trimmed.
func FormatValue(v any, meta Meta) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(t)
		if ts, ok := ToTime(s); ok {
			return formatTime(ts)
		}
		if f, ok := ToFloat(s); ok {
			return formatNumber(f, meta)
		}
		return s
	case bool:
		return strconv.FormatBool(t)
	case time.Time, *time.Time:
		if ts, ok := ToTime(t); ok {
			return formatTime(ts)
		}
		return ""
	}
	if f, ok := ToFloat(v); ok {
		return formatNumber(f, meta)
	}
	return fmt.Sprint(v)
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

func formatNumber(f float64, meta Meta) string {
	var s string
	switch {
	case meta.Decimals != nil:
		s = strconv.FormatFloat(f, 'f', *meta.Decimals, 64)
	case isIntegral(f):
		s = strconv.FormatFloat(f, 'f', 0, 64)
	default:
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	s = meta.Prefix + s
	if meta.Unit != "" {
		s += " " + meta.Unit
	}
	return s
}

// FormatNumber formats with thousands separators: 1234.5 → "1,234.5".
// Integral values get no decimals, others at most two.
func FormatNumber(v float64) string {
	if isIntegral(v) {
		return numberPrinter.Sprintf("%d", int64(v))
	}
	s := numberPrinter.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ============================================================================
// AXIS TICKS
// ============================================================================

// TickScale picks the abbreviation unit and divisor for an axis whose
// largest value is max. Below the k threshold the unit is empty.
func TickScale(max float64) (string, float64) {
	switch {
	case max >= 1_000_000_000:
		return "B", 1_000_000_000
	case max >= 5_000_000:
		return "M", 1_000_000
	case max > 5000:
		return "k", 1000
	}
	return "", 1
}

// AbbreviateTick formats an axis tick: k above 5,000, M from 5,000,000,
// B from 1,000,000,000, always zero decimals.
func AbbreviateTick(value, max float64) string {
	unit, divisor := TickScale(max)
	return strconv.FormatFloat(value/divisor, 'f', 0, 64) + unit
}

// FormatTicks abbreviates a tick sequence, blanking any tick whose text
// repeats the one before it.
func FormatTicks(values []float64, max float64) []string {
	out := make([]string, len(values))
	prev := ""
	for i, v := range values {
		s := AbbreviateTick(v, max)
		if i > 0 && s == prev {
			out[i] = ""
		} else {
			out[i] = s
		}
		prev = s
	}
	return out
}

// ============================================================================
// LABEL WRAPPING
// ============================================================================

const maxLabelLine = 15

// WrapLabel splits an axis label for display. Week-range labels become
// ["Week N", "<monday> to <sunday>"]; labels over 15 characters are split
// greedily into two lines.
func WrapLabel(label string) []string {
	parts := strings.Fields(label)
	if len(parts) == 4 && parts[0] == "Week" && LooksLikeTimestamp(parts[2]) && LooksLikeTimestamp(parts[3]) {
		return []string{"Week " + parts[1], parts[2] + " to " + parts[3]}
	}
	if len(label) <= maxLabelLine {
		return []string{label}
	}

	var first, second strings.Builder
	for _, word := range parts {
		if first.Len()+len(word)+1 <= maxLabelLine {
			if first.Len() > 0 {
				first.WriteByte(' ')
			}
			first.WriteString(word)
			continue
		}
		if second.Len() > 0 {
			second.WriteByte(' ')
		}
		second.WriteString(word)
	}
	return []string{first.String(), second.String()}
}

// LabelForField returns a capitalized label for a field name.
// "store_sales" → "Store sales"
func LabelForField(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if len(name) == 0 {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
