package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ============================================================================
// EXECUTOR — rows → ordered, normalized, render-ready series
// ============================================================================
// Entry point: Execute(ctx, req, view, opts...)
//
// Pipeline:
//   1. Apply filters → SubView
//   2. Derive bucket labels and aggregate (metric × bucket)
//   3. Order buckets (granularity policy or explicit override, optional reverse)
//   4. Normalize (raw / percent of global total / percent of bucket total)
//   5. Build ChartData + TableData
//
// Data problems never fail a request: unusable axis values skip the row and
// non-numeric metric values count as 0. Only a request with nothing to
// aggregate is an error.
// ============================================================================

var (
	// ErrNoMetrics is returned when a request names no metrics.
	ErrNoMetrics = errors.New("no metrics requested")
	// ErrNoAxis is returned when a request names no axis field.
	ErrNoAxis = errors.New("no axis field requested")
)

// Execute runs req against view and returns a render-ready Result.
func Execute(ctx context.Context, req SeriesRequest, view RowView, opts ...Option) (*Result, error) {
	if req.Axis == nil || req.Axis.Name() == "" {
		return nil, fmt.Errorf("execute: %w", ErrNoAxis)
	}
	if len(req.Metrics) == 0 {
		return nil, fmt.Errorf("execute: %w", ErrNoMetrics)
	}
	cfg := applyOptions(opts)

	metrics := req.Metrics
	if cfg.MetricLimit > 0 && len(metrics) > cfg.MetricLimit {
		metrics = metrics[:cfg.MetricLimit]
	}

	log.Printf("📊 seriesagg: %d rows, axis=%s, granularity=%s, metrics=%v",
		view.Len(), req.Axis.Name(), req.Granularity, FieldNames(metrics))

	// 1. Filters → SubView (zero-copy)
	filtered := ApplyFilters(view, req.Filters)
	if filtered.Len() != view.Len() {
		log.Printf("📊 seriesagg: %d rows after filtering (from %d)", filtered.Len(), view.Len())
	}

	// 2. Aggregate
	table, skipped := aggregate(filtered, metrics, req.Axis.Name(), req.Granularity, LabelOptions{
		WeekRange: cfg.WeekRange,
		Meta:      req.Axis.Meta(),
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	// 3. Order
	policy := PolicyFor(req.Granularity)
	if cfg.OrderingSet {
		policy = cfg.Ordering
	}
	table = Reorder(table, policy, cfg.Reverse)

	// 4. Normalize
	table = Normalize(table, cfg.Normalization)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	// 5. Build
	result := &Result{
		Success:      true,
		Type:         "chart",
		Title:        req.Title,
		Chart:        buildChart(table, cfg),
		Table:        BuildTable(table, req.Axis, req.Title),
		RowCount:     filtered.Len(),
		SkippedCount: skipped,
		Series:       table,
	}
	result.Summary = fmt.Sprintf("%d %s across %d %s from %d rows",
		len(metrics), plural(len(metrics), "metric", "metrics"),
		table.Len(), plural(table.Len(), "bucket", "buckets"),
		filtered.Len())
	if skipped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d rows skipped: no usable %s value for granularity %s", skipped, req.Axis.Name(), req.Granularity))
	}

	log.Printf("✅ seriesagg: %s (ordering=%s, normalization=%s)", result.Summary, policy, cfg.Normalization)
	return result, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
