package schema

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// DISCOVERY TESTS
// ============================================================================

var footfallColumns = []string{
	"visit_id", "visit_date", "store", "dow", "hour_group", "shoppers", "dwell_minutes", "note",
}

// footfallRows builds twelve weekly store visits.
func footfallRows() []engine.Row {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]engine.Row, 12)
	for i := range rows {
		rows[i] = engine.Row{
			"visit_id":      float64(1000 + i),
			"visit_date":    start.AddDate(0, 0, 7*i).Format("2006-01-02"),
			"store":         []string{"A", "B", "C"}[i%3],
			"dow":           float64(i%7 + 1),
			"hour_group":    engine.HourGroups[i%len(engine.HourGroups)],
			"shoppers":      float64(i%5*10 + 5),
			"dwell_minutes": 1.5 + float64(i),
			"note":          "",
		}
	}
	return rows
}

func TestDiscoverFootfall(t *testing.T) {
	view := engine.NewSliceView(footfallRows(), footfallColumns...)
	config, err := DiscoverFromView(view, DiscoverOptions{Name: "Footfall", Source: "test"})
	require.NoError(t, err)

	assert.Equal(t, "Footfall", config.Name)
	assert.Equal(t, 12, config.RowCount)
	assert.Equal(t, []string{"visit_date", "store", "dow", "hour_group"}, config.DimensionKeys())
	assert.Equal(t, []string{"shoppers", "dwell_minutes"}, config.MeasureKeys())

	skipped := make(map[string]string)
	for _, s := range config.SkippedColumns {
		skipped[s.Column] = s.Reason
	}
	assert.Contains(t, skipped["visit_id"], "ID")
	assert.Contains(t, skipped["note"], "empty")

	date, ok := config.Dimension("visit_date")
	require.True(t, ok)
	assert.True(t, date.IsTemporal)
	assert.Equal(t, engine.GranularityWeek, date.Granularity)

	dow, _ := config.Dimension("dow")
	assert.Equal(t, engine.OrderWeekday, dow.Ordering)

	hg, _ := config.Dimension("hour_group")
	assert.Equal(t, engine.OrderHourGroup, hg.Ordering)

	store, _ := config.Dimension("store")
	assert.Equal(t, engine.OrderGeneric, store.Ordering)
	assert.Equal(t, "low", store.CardinalityHint)
	assert.Equal(t, []string{"A", "B", "C"}, store.SampleValues)

	dwell, _ := config.Measure("dwell_minutes")
	assert.Equal(t, "Dwell Minutes", dwell.DisplayName)
	assert.Equal(t, "min", dwell.Unit)
	require.NotNil(t, dwell.Format.Decimals)
	assert.Equal(t, 2, *dwell.Format.Decimals)
	assert.InDelta(t, 84, dwell.Total, 1e-9)

	require.NotNil(t, config.Suggestion)
	assert.Equal(t, "visit_date", config.Suggestion.Axis)
	assert.Equal(t, []string{"shoppers", "dwell_minutes"}, config.Suggestion.Metrics)
	assert.Equal(t, engine.GranularityWeek, config.Suggestion.Granularity)
}

func TestSuggestedRequestRuns(t *testing.T) {
	rows := footfallRows()
	view := engine.NewSliceView(rows, "store", "dow", "shoppers")
	config, err := DiscoverFromView(view)
	require.NoError(t, err)

	req, opts, ok := config.Request()
	require.True(t, ok)
	assert.Equal(t, "dow", req.Axis.Name())
	assert.Len(t, opts, 1)

	res, err := engine.Execute(context.Background(), req, view, opts...)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7"}, res.Chart.Labels)
}

func TestDiscoverWithRecovery(t *testing.T) {
	rows := make([]engine.Row, 60)
	for i := range rows {
		rows[i] = engine.Row{"customer": fmt.Sprintf("Customer %d", i%55), "spend": float64(i%7) + 0.5}
	}
	view := engine.NewSliceView(rows, "customer", "spend")

	config, err := DiscoverFromView(view)
	require.NoError(t, err)
	assert.NotContains(t, config.DimensionKeys(), "customer")
	require.Len(t, config.SkippedColumns, 1)
	assert.True(t, config.SkippedColumns[0].Recoverable)
	assert.Nil(t, config.Suggestion)

	config, err = DiscoverFromView(view, DiscoverOptions{RecoverColumns: []string{"Customer"}})
	require.NoError(t, err)
	assert.Contains(t, config.DimensionKeys(), "customer")
}

func TestDiscoverErrors(t *testing.T) {
	_, err := DiscoverFromView(engine.NewSliceView(nil))
	assert.ErrorIs(t, err, ErrNoColumns)

	_, err = DiscoverFromView(engine.NewSliceView(nil, "a"))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestGranularityForSpan(t *testing.T) {
	day := 24 * time.Hour
	assert.Equal(t, engine.GranularityHour, granularityForSpan(10*time.Hour, true))
	assert.Equal(t, engine.GranularityDay, granularityForSpan(10*time.Hour, false))
	assert.Equal(t, engine.GranularityDay, granularityForSpan(20*day, true))
	assert.Equal(t, engine.GranularityWeek, granularityForSpan(90*day, false))
	assert.Equal(t, engine.GranularityMonth, granularityForSpan(400*day, false))
}

func TestTemporalDetection(t *testing.T) {
	tests := []struct {
		samples []string
		want    string
	}{
		{[]string{"Jan-2026", "Feb-2026", "Mar-2026"}, "MMM-yyyy"},
		{[]string{"2026-01", "2026-02"}, "yyyy-MM"},
		{[]string{"Q1-2026", "Q2-2026"}, "QN-yyyy"},
		{[]string{"Week 1", "Week 2 2024-01-08 2024-01-14"}, "Week N"},
		{[]string{"Berlin", "Hamburg"}, ""},
	}
	for _, tt := range tests {
		_, got := detectTemporalPattern(tt.samples)
		assert.Equal(t, tt.want, got, "%v", tt.samples)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Store Visits", toDisplayName("store_visits"))
	assert.Equal(t, "Footfall", toDisplayName("footfall"))
	assert.Equal(t, "Already Nice", toDisplayName(" Already Nice "))
}

func TestUnitFor(t *testing.T) {
	assert.Equal(t, "%", unitFor("conversion_ratio"))
	assert.Equal(t, "min", unitFor("dwell_minutes"))
	assert.Equal(t, "", unitFor("shoppers"))
}
