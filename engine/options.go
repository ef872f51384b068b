package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute() and BuildChart()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Ordering      OrderingPolicy
	OrderingSet   bool // false = derive from granularity
	Reverse       bool
	Normalization NormalizationMode
	Round         bool
	TotalBucket   bool
	WeekRange     bool
	MetricLimit   int      // 0 = all metrics
	Hidden        []string // metric names left out of stacked totals
	LineMetrics   []Field
	Palette       []string
}

// WithOrdering overrides the ordering derived from the granularity.
func WithOrdering(p OrderingPolicy) Option {
	return func(c *config) {
		c.Ordering = p
		c.OrderingSet = true
	}
}

// WithReverse reverses the final bucket order.
func WithReverse() Option {
	return func(c *config) {
		c.Reverse = true
	}
}

// WithNormalization selects raw values or a percentage mode.
// There is no implicit percentage default; see AutoPercentMode.
func WithNormalization(m NormalizationMode) Option {
	return func(c *config) {
		c.Normalization = m
	}
}

// WithRounding rounds every emitted value to an integer.
func WithRounding() Option {
	return func(c *config) {
		c.Round = true
	}
}

// WithTotalBucket appends a "Total" bucket holding each bar series' sum.
func WithTotalBucket() Option {
	return func(c *config) {
		c.TotalBucket = true
	}
}

// WithWeekRange adds the Monday/Sunday dates to week labels.
func WithWeekRange() Option {
	return func(c *config) {
		c.WeekRange = true
	}
}

// WithMetricLimit keeps only the first n metrics of the request.
func WithMetricLimit(n int) Option {
	return func(c *config) {
		c.MetricLimit = n
	}
}

// WithHiddenMetrics marks metrics as hidden: their datasets are flagged and
// they do not count towards stacked totals.
func WithHiddenMetrics(names ...string) Option {
	return func(c *config) {
		c.Hidden = append(c.Hidden, names...)
	}
}

// WithLineMetrics overlays a line dataset per field, reusing the matching
// bar series.
func WithLineMetrics(fields ...Field) Option {
	return func(c *config) {
		c.LineMetrics = append(c.LineMetrics, fields...)
	}
}

// WithPalette replaces the bar colour ramp.
func WithPalette(colors ...string) Option {
	return func(c *config) {
		c.Palette = colors
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Normalization: NormalizeRaw,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
