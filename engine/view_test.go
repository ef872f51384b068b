package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visit struct {
	At       time.Time
	Store    string
	Shoppers int
}

func TestDomainAdapter(t *testing.T) {
	adapter := NewDomainAdapter[visit]().
		Field("visited_at", func(v visit) any { return v.At }).
		Field("store", func(v visit) any { return v.Store }).
		Field("shoppers", func(v visit) any { return v.Shoppers })

	visits := []visit{
		{At: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), Store: "A", Shoppers: 3},
		{At: time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC), Store: "B", Shoppers: 7},
		{At: time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC), Store: "A", Shoppers: 1},
	}
	view := adapter.Bind(visits)

	assert.Equal(t, 3, view.Len())
	assert.Equal(t, []string{"visited_at", "store", "shoppers"}, view.Keys())
	assert.Nil(t, view.Value(0, "unknown"))
	assert.Nil(t, view.Value(9, "store"))

	req := SeriesRequest{Axis: Named("visited_at"), Metrics: []Field{Named("shoppers")}, Granularity: GranularityMonth}
	res, err := Execute(context.Background(), req, view)
	require.NoError(t, err)
	assert.Equal(t, []string{"January", "March"}, res.Chart.Labels)
	assert.Equal(t, []float64{4, 7}, res.Chart.Datasets[0].Data)
}

func TestConcat(t *testing.T) {
	a := NewSliceView([]Row{{"x": 1, "y": "a"}}, "x", "y")
	b := NewSliceView([]Row{{"x": 2, "z": true}, {"x": 3}}, "x", "z")

	v := Concat(a, b)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, []string{"x", "y", "z"}, v.Keys())
	assert.Equal(t, 1, v.Value(0, "x"))
	assert.Equal(t, 2, v.Value(1, "x"))
	assert.Equal(t, 3, v.Value(2, "x"))
	assert.Nil(t, v.Value(3, "x"))
	assert.Nil(t, v.Value(0, "z"))

	assert.Same(t, a, Concat(a))
}

func TestSliceViewKeys(t *testing.T) {
	v := NewSliceView([]Row{{"b": 1}, {"a": 2, "c": 3}})
	assert.Equal(t, []string{"a", "b", "c"}, v.Keys())

	ordered := NewSliceView([]Row{{"b": 1}}, "b", "a")
	assert.Equal(t, []string{"b", "a"}, ordered.Keys())
}

func TestMaterialize(t *testing.T) {
	v := NewSliceView([]Row{{"a": 1, "b": 2}}, "a")
	assert.Equal(t, []Row{{"a": 1}}, Materialize(v))
}

func TestApplyFilters(t *testing.T) {
	rows := []Row{
		{"region": "North", "tier": 1},
		{"region": "South", "tier": 2},
		{"region": "North", "tier": 2},
	}
	view := NewSliceView(rows)

	assert.Same(t, view, ApplyFilters(view, Filters{}))

	got := ApplyFilters(view, Filters{Fields: map[string][]string{
		"region": {" north "},
		"tier":   {"2", "3"},
	}})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "North", got.Value(0, "region"))
	assert.Equal(t, 2, got.Value(0, "tier"))
}

func TestResolveField(t *testing.T) {
	assert.Equal(t, Named("sales"), ResolveField("sales"))
	assert.Nil(t, ResolveField("  "))
	assert.Nil(t, ResolveField(42))
	assert.Equal(t, Named("sales"), ResolveField(map[string]any{"name": "sales"}))

	f := ResolveField(map[string]any{
		"name":  "dwell",
		"title": "Dwell time",
		"meta":  map[string]any{"decimals": 1, "unit": "s"},
	})
	require.NotNil(t, f)
	assert.Equal(t, "dwell", f.Name())
	assert.Equal(t, "Dwell time", f.Title())
	require.NotNil(t, f.Meta().Decimals)
	assert.Equal(t, 1, *f.Meta().Decimals)
	assert.Equal(t, "s", f.Meta().Unit)
}
