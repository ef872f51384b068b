// Package seriesagg turns tabular rows into chart-ready categorical series.
//
// Usage:
//
//	import "github.com/spektr-org/seriesagg/engine"
//
//	result, err := engine.Execute(ctx, engine.SeriesRequest{
//	    Axis:        engine.Named("visit_date"),
//	    Metrics:     []engine.Field{engine.Named("shoppers")},
//	    Granularity: engine.GranularityWeek,
//	}, view, engine.WithWeekRange())
//
// The engine groups rows by an axis (raw value or time bucket), sums each
// metric per bucket, orders and normalizes the buckets, and returns chart
// datasets, a table and a text summary. Rows come from the helpers package
// (CSV, JSON, SQLite, Postgres); export, render, translator and server wrap
// the result for downloads, terminals, HTML and HTTP clients.
//
// The engine never calls any external service. All computation is local.
package seriesagg
