package schema

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic Column Classification
// ============================================================================
// Inspects loaded rows and generates a schema.Config automatically.
//
// Classification pipeline per column:
//   1. Sample values → detect type (numeric, date, bool, string)
//   2. Type + cardinality → classify role (dimension, measure, skip)
//   3. Pattern matching → temporal formats, rank tables (weekday, month,
//      hour, hour group)
//   4. Temporal span → suggested granularity
//   5. Pick the default chart: axis, metrics, granularity, ordering
// ============================================================================

var (
	// ErrNoColumns is returned for a view without fields.
	ErrNoColumns = errors.New("result set has no columns")
	// ErrNoRows is returned for a view without rows.
	ErrNoRows = errors.New("result set has no data rows")
)

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize     int      // Max rows to inspect (0 = all). Default: 1000
	RecoverColumns []string // Force-include columns that were auto-skipped
	Name           string   // Dataset name override (otherwise inferred)
	Source         string   // Recorded as DiscoveredFrom
	MaxMetrics     int      // Metrics in the suggestion. Default: 3
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
		MaxMetrics: 3,
	}
}

// DiscoverFromView generates a schema.Config by inspecting rows.
func DiscoverFromView(view engine.RowView, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.MaxMetrics <= 0 {
		opt.MaxMetrics = 3
	}

	keys := view.Keys()
	if len(keys) == 0 {
		return nil, ErrNoColumns
	}

	totalRows := view.Len()
	if opt.SampleSize > 0 && totalRows > opt.SampleSize {
		totalRows = opt.SampleSize
	}
	if totalRows == 0 {
		return nil, ErrNoRows
	}

	// 1. Analyze each column
	columns := make([]columnAnalysis, len(keys))
	for i, key := range keys {
		columns[i] = analyzeColumn(view, key, totalRows)
	}

	// 2. Apply recovery overrides
	recoverSet := make(map[string]bool)
	for _, col := range opt.RecoverColumns {
		recoverSet[strings.ToLower(col)] = true
	}

	// 3. Build schema
	config := &Config{
		Name:           opt.Name,
		Version:        "1.0",
		DiscoveredFrom: opt.Source,
		DiscoveredAt:   time.Now().Format(time.RFC3339),
		RowCount:       view.Len(),
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}

	for _, col := range columns {
		switch col.role {
		case roleDimension:
			config.Dimensions = append(config.Dimensions, col.toDimension())

		case roleMeasure:
			m := col.toMeasure()
			m.Total = engine.SumField(view, col.key)
			config.Measures = append(config.Measures, m)

		case roleSkipped:
			if recoverSet[strings.ToLower(col.key)] && col.recoverable {
				config.Dimensions = append(config.Dimensions, col.toDimension())
				continue
			}
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column:      col.key,
				Reason:      col.skipReason,
				Recoverable: col.recoverable,
			})
		}
	}

	// 4. Suggest the default chart
	config.Suggestion = suggest(config, opt.MaxMetrics)

	log.Printf("🔍 schema: %d dimensions, %d measures, %d skipped from %d rows",
		len(config.Dimensions), len(config.Measures), len(config.SkippedColumns), config.RowCount)
	return config, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnRole int

const (
	roleDimension columnRole = iota
	roleMeasure
	roleSkipped
)

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeDate
	typeBool
)

type columnAnalysis struct {
	key         string
	colType     columnType
	role        columnRole
	skipReason  string
	recoverable bool

	// Stats
	uniqueCount int
	totalCount  int
	nullCount   int
	sampleVals  []string
	uniqueVals  []string
	minTime     time.Time
	maxTime     time.Time
	hasClock    bool

	// Special type detection
	isTemporal      bool
	temporalFormat  string
	hasDecimals     bool
	cardinalityHint string
	granularity     engine.Granularity
	ordering        engine.OrderingPolicy
}

// analyzeColumn inspects the first totalRows values of a column and
// classifies it.
func analyzeColumn(view engine.RowView, key string, totalRows int) columnAnalysis {
	col := columnAnalysis{
		key:        key,
		totalCount: totalRows,
	}

	// Collect values
	values := make([]any, 0, totalRows)
	uniqueSet := make(map[string]bool)

	for i := 0; i < totalRows; i++ {
		v := view.Value(i, key)
		if isNull(v) {
			col.nullCount++
			continue
		}
		values = append(values, v)
		s := engine.FormatValue(v, engine.Meta{})
		if !uniqueSet[s] {
			uniqueSet[s] = true
			col.uniqueVals = append(col.uniqueVals, s)
		}
	}

	col.uniqueCount = len(uniqueSet)

	if len(values) == 0 {
		col.role = roleSkipped
		col.skipReason = "All values are empty/null"
		col.recoverable = false
		return col
	}

	// Collect sample values (up to 10, sorted)
	col.sampleVals = collectSamples(uniqueSet, 10)

	// Step 1: Detect type
	col.colType = detectType(values)

	// Detect decimals in numeric columns (signals continuous data → measure)
	if col.colType == typeNumeric {
		col.hasDecimals = lo.SomeBy(values, func(v any) bool {
			f, ok := toNumber(v)
			return ok && f != float64(int64(f))
		})
	}

	// Step 2: Detect special patterns BEFORE role classification
	switch col.colType {
	case typeString:
		col.isTemporal, col.temporalFormat = detectTemporalPattern(col.sampleVals)
	case typeDate:
		col.isTemporal = true
		col.scanTimes(values)
	}

	// Step 3: Classify role based on type + cardinality
	col.classifyRole(totalRows)

	// Step 4: Set cardinality hint
	switch {
	case col.uniqueCount <= 10:
		col.cardinalityHint = "low"
	case col.uniqueCount <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}

	// Step 5: Axis behaviour
	if col.role != roleMeasure {
		col.granularity, col.ordering = col.detectAxis()
	}
	return col
}

// classifyRole determines dimension vs measure vs skip.
func (col *columnAnalysis) classifyRole(totalRows int) {
	switch col.colType {

	case typeNumeric:
		if col.uniqueCount == totalRows && totalRows > 10 && !col.hasDecimals {
			// Every value unique → likely an ID
			col.role = roleSkipped
			col.skipReason = "Unique per row — likely an ID column"
			col.recoverable = false
			return
		}
		// Check if values contain decimals (continuous data → always a measure)
		if col.hasDecimals {
			col.role = roleMeasure
			return
		}
		// Ranked codes (weekday 1-7, hour 0-23) are axes
		if hintsWeekday(col.key) || hintsHour(col.key) {
			col.role = roleDimension
			return
		}
		// Ratio-based: if few unique values AND low ratio → coded dimension (e.g., priority 1-5)
		uniqueRatio := float64(col.uniqueCount) / float64(totalRows)
		if col.uniqueCount < 20 && uniqueRatio < 0.3 {
			col.role = roleDimension
			return
		}
		// Many unique numeric values or high ratio → measure
		col.role = roleMeasure

	case typeDate:
		// Dates are always temporal dimensions
		col.role = roleDimension

	case typeBool:
		col.role = roleDimension

	case typeString:
		if col.uniqueCount == totalRows && totalRows > 10 {
			// Every value unique → likely an ID or free text
			col.role = roleSkipped
			col.skipReason = "Unique per row — likely an identifier"
			col.recoverable = false
			return
		}
		if col.uniqueCount > totalRows/2 && col.uniqueCount > 50 {
			// High cardinality string
			col.role = roleSkipped
			col.skipReason = fmt.Sprintf("High cardinality (%d unique values) — not useful for grouping", col.uniqueCount)
			col.recoverable = true
			return
		}
		col.role = roleDimension
	}
}

// scanTimes records the time span of a date column.
func (col *columnAnalysis) scanTimes(values []any) {
	for _, v := range values {
		t, ok := engine.ToTime(v)
		if !ok {
			continue
		}
		if col.minTime.IsZero() || t.Before(col.minTime) {
			col.minTime = t
		}
		if t.After(col.maxTime) {
			col.maxTime = t
		}
		if t.Hour() != 0 || t.Minute() != 0 {
			col.hasClock = true
		}
	}
}

// detectAxis picks the granularity and bucket ordering for a dimension.
func (col *columnAnalysis) detectAxis() (engine.Granularity, engine.OrderingPolicy) {
	if col.colType == typeDate && !col.minTime.IsZero() {
		g := granularityForSpan(col.maxTime.Sub(col.minTime), col.hasClock)
		return g, engine.PolicyFor(g)
	}

	switch col.temporalFormat {
	case "yyyy-MM", "yyyy":
		return engine.GranularityDefault, engine.OrderGeneric
	case "":
	default:
		return engine.GranularityDefault, engine.OrderInsertion
	}

	for _, p := range []engine.OrderingPolicy{engine.OrderHourGroup, engine.OrderMonth} {
		if allRanked(col.uniqueVals, p) {
			return engine.GranularityDefault, p
		}
	}
	if allRanked(col.uniqueVals, engine.OrderWeekday) && (col.colType == typeString || hintsWeekday(col.key)) {
		return engine.GranularityDefault, engine.OrderWeekday
	}
	if col.colType == typeNumeric && hintsHour(col.key) && allRanked(col.uniqueVals, engine.OrderHour) {
		return engine.GranularityDefault, engine.OrderHour
	}
	return engine.GranularityDefault, engine.OrderGeneric
}

// granularityForSpan maps a time span to the granularity that yields a
// readable number of buckets.
func granularityForSpan(span time.Duration, hasClock bool) engine.Granularity {
	const day = 24 * time.Hour
	switch {
	case hasClock && span < 2*day:
		return engine.GranularityHour
	case span <= 31*day:
		return engine.GranularityDay
	case span <= 26*7*day:
		return engine.GranularityWeek
	}
	return engine.GranularityMonth
}

func allRanked(values []string, p engine.OrderingPolicy) bool {
	return len(values) > 0 && lo.EveryBy(values, func(v string) bool { return engine.Ranked(v, p) })
}

func hintsWeekday(key string) bool {
	k := strings.ToLower(key)
	return k == "dow" || strings.HasSuffix(k, "_dow") || strings.HasPrefix(k, "dow_") ||
		strings.Contains(k, "weekday") || strings.Contains(k, "day_of_week")
}

func hintsHour(key string) bool {
	return strings.Contains(strings.ToLower(key), "hour")
}

// ============================================================================
// SUGGESTION
// ============================================================================

// suggest picks the default chart: a temporal axis first, then a ranked
// axis, then the first low-cardinality dimension.
func suggest(c *Config, maxMetrics int) *Suggestion {
	if len(c.Dimensions) == 0 || len(c.Measures) == 0 {
		return nil
	}

	axis := c.Dimensions[0]
	found := false
	for _, d := range c.Dimensions {
		if d.IsTemporal && d.Granularity != engine.GranularityDefault {
			axis, found = d, true
			break
		}
	}
	if !found {
		for _, d := range c.Dimensions {
			if d.Ordering != engine.OrderGeneric && d.Ordering != engine.OrderInsertion {
				axis, found = d, true
				break
			}
		}
	}
	if !found {
		if d, ok := lo.Find(c.Dimensions, func(d DimensionMeta) bool {
			return d.CardinalityHint == "low" && len(d.SampleValues) > 1
		}); ok {
			axis = d
		}
	}

	metrics := lo.Map(c.Measures, func(m MeasureMeta, _ int) string { return m.Key })
	if len(metrics) > maxMetrics {
		metrics = metrics[:maxMetrics]
	}
	return &Suggestion{
		Axis:        axis.Key,
		Metrics:     metrics,
		Granularity: axis.Granularity,
		Ordering:    axis.Ordering,
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType inspects values to determine column type.
// Requires 80%+ of non-null values to match for numeric/date/bool.
func detectType(values []any) columnType {
	if len(values) == 0 {
		return typeString
	}

	numCount := 0
	dateCount := 0
	boolCount := 0

	for _, v := range values {
		if _, ok := toNumber(v); ok {
			numCount++
		}
		if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)

	if boolCount >= threshold && boolCount > 0 {
		return typeBool
	}
	if dateCount >= threshold && dateCount > 0 {
		return typeDate
	}
	if numCount >= threshold && numCount > 0 {
		return typeNumeric
	}
	return typeString
}

func isNull(v any) bool {
	if engine.IsNull(v) {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	switch strings.TrimSpace(s) {
	case "null", "NULL", "N/A", "n/a":
		return true
	}
	return false
}

// toNumber reads numbers and numeric text, including "1,234.56" and
// currency-prefixed amounts.
func toNumber(v any) (float64, bool) {
	if _, ok := v.(bool); ok {
		return 0, false
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		s = strings.ReplaceAll(s, ",", "") // handle "1,234.56"
		s = strings.TrimPrefix(s, "$")
		s = strings.TrimPrefix(s, "€")
		s = strings.TrimPrefix(s, "£")
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return engine.ToFloat(v)
}

var dateFormats = []string{
	"01/02/2006",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func isDate(v any) bool {
	if _, ok := v.(time.Time); ok {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	if _, ok := engine.ToTime(s); ok {
		return true
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return true
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "false" || s == "yes" || s == "no"
	}
	return false
}

// ============================================================================
// SPECIAL PATTERN DETECTION
// ============================================================================

var monthPatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`^[A-Z][a-z]{2}-\d{4}$`), "MMM-yyyy"}, // Jan-2026
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "yyyy-MM"},          // 2026-01
	{regexp.MustCompile(`^Q[1-4]-\d{4}$`), "QN-yyyy"},         // Q1-2026
	{regexp.MustCompile(`^Q[1-4]\s+\d{4}$`), "QN yyyy"},       // Q1 2026
	{regexp.MustCompile(`^[A-Z][a-z]+ \d{4}$`), "MMMM yyyy"},  // January 2026
	{regexp.MustCompile(`^Week \d{1,2}( |$)`), "Week N"},      // Week 12
}

// detectTemporalPattern checks if values match known month/quarter/week patterns.
func detectTemporalPattern(samples []string) (bool, string) {
	if len(samples) == 0 {
		return false, ""
	}

	for _, pattern := range monthPatterns {
		matches := 0
		for _, s := range samples {
			if pattern.re.MatchString(strings.TrimSpace(s)) {
				matches++
			}
		}
		if float64(matches)/float64(len(samples)) >= 0.8 {
			return true, pattern.format
		}
	}

	return false, ""
}

// ============================================================================
// CONVERSION HELPERS
// ============================================================================

// toDimension converts a column analysis into DimensionMeta.
func (col *columnAnalysis) toDimension() DimensionMeta {
	return DimensionMeta{
		Key:             col.key,
		DisplayName:     toDisplayName(col.key),
		SampleValues:    col.sampleVals,
		Groupable:       true,
		Filterable:      true,
		IsTemporal:      col.isTemporal,
		TemporalFormat:  col.temporalFormat,
		Granularity:     col.granularity,
		Ordering:        col.ordering,
		CardinalityHint: col.cardinalityHint,
	}
}

// toMeasure converts a column analysis into MeasureMeta.
func (col *columnAnalysis) toMeasure() MeasureMeta {
	m := MeasureMeta{
		Key:         col.key,
		DisplayName: toDisplayName(col.key),
		Unit:        unitFor(col.key),
	}
	m.Format.Unit = m.Unit
	if col.hasDecimals {
		decimals := 2
		m.Format.Decimals = &decimals
	}
	return m
}

// unitFor guesses a display unit from the column name.
func unitFor(key string) string {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "percent"), strings.Contains(k, "pct"), strings.Contains(k, "ratio"):
		return "%"
	case strings.Contains(k, "minute"):
		return "min"
	case strings.Contains(k, "second"), strings.Contains(k, "duration"):
		return "s"
	case strings.Contains(k, "euro"):
		return "EUR"
	}
	return ""
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toDisplayName cleans a header for human display.
// "store_visits" → "Store Visits", "footfall" → "Footfall"
func toDisplayName(s string) string {
	// If already has spaces/mixed case, just trim
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	// Convert snake_case to Title Case
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
