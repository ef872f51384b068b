package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeatmap(t *testing.T) {
	rows := []Row{
		{"hour": 1, "day": "Mon", "visits": 12},
		{"hour": 1, "day": "Mon", "visits": 8},
		{"hour": 2, "day": "Mon", "visits": 5},
		{"hour": 10, "day": "Tue", "visits": 20},
		{"hour": 0, "day": "Tue", "visits": 99},
		{"hour": 3, "day": nil, "visits": 99},
	}
	hm := BuildHeatmap(NewSliceView(rows), Named("hour"), Named("day"), Named("visits"))

	assert.Equal(t, []string{"1", "2", "10"}, hm.XLabels)
	assert.Equal(t, []string{"Mon", "Tue"}, hm.YLabels)
	assert.Equal(t, float64(20), hm.Max)

	require.Len(t, hm.Cells, 3)
	assert.Equal(t, HeatCell{X: "1", Y: "Mon", Value: 20, Label: "20", Fill: "#f04b55", TextColor: "white"}, hm.Cells[0])
	assert.Equal(t, HeatCell{X: "2", Y: "Mon", Value: 5, Label: "5", Fill: "#f9b3b8", TextColor: "black"}, hm.Cells[1])
	assert.Equal(t, HeatCell{X: "10", Y: "Tue", Value: 20, Label: "20", Fill: "#f04b55", TextColor: "white"}, hm.Cells[2])
}

func TestBuildHeatmapEmpty(t *testing.T) {
	hm := BuildHeatmap(NewSliceView(nil), Named("x"), Named("y"), Named("v"))
	assert.Empty(t, hm.Cells)
	assert.Zero(t, hm.Max)
}

func TestHeatColor(t *testing.T) {
	assert.Equal(t, HeatmapLow, HeatColor(0, 10))
	assert.Equal(t, HeatmapHigh, HeatColor(10, 10))
	assert.Equal(t, HeatmapHigh, HeatColor(50, 10))
	assert.Equal(t, HeatmapLow, HeatColor(3, 0))
}

func TestTextColorOn(t *testing.T) {
	assert.Equal(t, "black", TextColorOn("#ffffff"))
	assert.Equal(t, "white", TextColorOn("#000"))
	assert.Equal(t, "black", TextColorOn(HeatmapLow))
	assert.Equal(t, "white", TextColorOn(HeatmapHigh))
}
