package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// LABEL DERIVER — raw axis value + granularity → bucket key
// ============================================================================
// Every raw value that lands in the same bucket must produce the same label
// byte-for-byte; the aggregator keys buckets on the label string alone.
// Labels are built from fixed English tables, never from the runtime locale.
// ============================================================================

// Granularity is the bucketing resolution applied to the axis field.
type Granularity int

const (
	GranularityDefault Granularity = iota
	GranularityHour
	GranularityHourGroup
	GranularityDay
	GranularityWeek
	GranularityMonth
	GranularityTotal
)

var granularityNames = map[Granularity]string{
	GranularityDefault:   "default",
	GranularityHour:      "hour",
	GranularityHourGroup: "hour_group",
	GranularityDay:       "day",
	GranularityWeek:      "week",
	GranularityMonth:     "month",
	GranularityTotal:     "total",
}

func (g Granularity) String() string {
	if name, ok := granularityNames[g]; ok {
		return name
	}
	return "default"
}

// ParseGranularity maps a granularity name to its value.
// Unknown names fall back to GranularityDefault.
func ParseGranularity(s string) Granularity {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	for g, name := range granularityNames {
		if name == key {
			return g
		}
	}
	return GranularityDefault
}

// MarshalText implements encoding.TextMarshaler.
func (g Granularity) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Granularity) UnmarshalText(b []byte) error {
	*g = ParseGranularity(string(b))
	return nil
}

// Business window applied by hour, hour_group and total.
const (
	FirstBusinessHour = 8
	LastBusinessHour  = 21
)

// HourGroups are the fixed hour bands in display order.
var HourGroups = []string{
	"8:00 - 10:59",
	"11:00 - 12:59",
	"13:00 - 14:59",
	"15:00 - 16:59",
	"17:00 - 18:59",
	"19:00 - 21:59",
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthAbbrev = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// LabelOptions tune label derivation.
type LabelOptions struct {
	WeekRange bool // "Week N <monday> <sunday>" instead of "Week N"
	Meta      Meta // formatting hints for the default formatter
}

// DeriveLabel returns the bucket key for row[axis] under g.
// ok is false when the row must be skipped.
func DeriveLabel(row Row, axis string, g Granularity) (string, bool) {
	return LabelOf(row[axis], g, LabelOptions{})
}

// LabelOf derives the bucket key for a raw axis value.
func LabelOf(v any, g Granularity, opts LabelOptions) (string, bool) {
	if IsNull(v) {
		return "", false
	}

	switch g {
	case GranularityDay:
		t, ok := instantOf(v)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%d %s", t.Day(), monthAbbrev[t.Month()-1]), true

	case GranularityWeek:
		t, ok := instantOf(v)
		if !ok {
			return "", false
		}
		return WeekLabel(t, opts.WeekRange), true

	case GranularityMonth:
		t, ok := instantOf(v)
		if !ok {
			return "", false
		}
		return monthNames[t.Month()-1], true

	case GranularityHour:
		h, ok := hourOf(v)
		if !ok || !inBusinessWindow(h) {
			return "", false
		}
		return strconv.Itoa(h), true

	case GranularityHourGroup:
		h, ok := hourOf(v)
		if !ok || !inBusinessWindow(h) {
			return "", false
		}
		return HourGroupFor(h), true

	case GranularityTotal:
		t, ok := instantOf(v)
		if !ok || !inBusinessWindow(t.Hour()) {
			return "", false
		}
		return fmt.Sprintf("%s %02d", t.Format("2006-01-02"), t.Hour()), true
	}

	return FormatValue(v, opts.Meta), true
}

// WeekLabel formats the ISO week of t. With withRange the Monday and Sunday
// of that week are appended as dates.
func WeekLabel(t time.Time, withRange bool) string {
	_, week := t.ISOWeek()
	if !withRange {
		return fmt.Sprintf("Week %d", week)
	}
	day := civilDate(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	monday := day.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return fmt.Sprintf("Week %d %s %s", week, monday.Format("2006-01-02"), sunday.Format("2006-01-02"))
}

// HourGroupFor returns the band containing hour h. h must be within the
// business window.
func HourGroupFor(h int) string {
	switch {
	case h <= 10:
		return HourGroups[0]
	case h <= 12:
		return HourGroups[1]
	case h <= 14:
		return HourGroups[2]
	case h <= 16:
		return HourGroups[3]
	case h <= 18:
		return HourGroups[4]
	default:
		return HourGroups[5]
	}
}

func inBusinessWindow(h int) bool {
	return h >= FirstBusinessHour && h <= LastBusinessHour
}

// hourOf reads an hour-of-day from a bare integer 0–23 or from a timestamp.
func hourOf(v any) (int, bool) {
	if f, ok := ToFloat(v); ok && isIntegral(f) && f >= 0 && f <= 23 {
		return int(f), true
	}
	if t, ok := instantOf(v); ok {
		return t.Hour(), true
	}
	return 0, false
}

// instantOf reads v as a time in UTC so equal instants written with
// different offsets share a bucket.
func instantOf(v any) (time.Time, bool) {
	t, ok := ToTime(v)
	if !ok {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// civilDate drops the clock so date arithmetic never crosses DST edges.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
