package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatrix(t *testing.T) {
	rows := []Row{
		{"reach": 1200, "ctr": "0.5", "spend": 300, "campaign": "Spring"},
		{"reach": 9000, "ctr": 1.5, "spend": nil, "campaign": "Summer"},
		{"reach": "n/a", "ctr": 2.0, "spend": 10, "campaign": "Broken"},
		{"reach": 400, "ctr": -0.25, "spend": "12", "campaign": "Autumn"},
	}
	m := BuildMatrix(NewSliceView(rows), Named("reach"), Named("ctr"), Named("spend"), Named("campaign"))

	require.Len(t, m.Points, 3)
	assert.Equal(t, Point{X: 1200, Y: 0.5, Z: 300, Label: "Spring"}, m.Points[0])
	assert.Equal(t, Point{X: 9000, Y: 1.5, Z: 0, Label: "Summer"}, m.Points[1])
	assert.Equal(t, Point{X: 400, Y: -0.25, Z: 12, Label: "Autumn"}, m.Points[2])

	assert.Equal(t, AxisSpan{Min: 400, Max: 9000}, m.X)
	assert.Equal(t, AxisSpan{Min: -0.25, Max: 1.5}, m.Y)
	assert.Equal(t, "9k", m.X.Tick(9000))
}

func TestBuildMatrixOptionalFields(t *testing.T) {
	rows := []Row{{"x": 1, "y": 2}}
	m := BuildMatrix(NewSliceView(rows), Named("x"), Named("y"), nil, nil)
	require.Len(t, m.Points, 1)
	assert.Equal(t, Point{X: 1, Y: 2}, m.Points[0])
}

func TestBuildMatrixEmpty(t *testing.T) {
	m := BuildMatrix(NewSliceView([]Row{{"x": "a", "y": 1}}), Named("x"), Named("y"), nil, nil)
	assert.Empty(t, m.Points)
	assert.Equal(t, AxisSpan{}, m.X)
}
