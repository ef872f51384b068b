package engine

import (
	"math"
)

// ============================================================================
// MATRIX — scatter points (x, y, z) with axis bounds
// ============================================================================

// Matrix is a scatter plot of rows.
type Matrix struct {
	Points []Point  `json:"points"`
	X      AxisSpan `json:"x"`
	Y      AxisSpan `json:"y"`
}

// Point is one plotted row. Z sizes or colours the point.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Label string  `json:"label,omitempty"`
}

// AxisSpan is the observed range of one axis.
type AxisSpan struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Tick formats an axis value with the k/M/B abbreviation for this span.
func (s AxisSpan) Tick(v float64) string {
	return AbbreviateTick(v, s.Max)
}

// BuildMatrix turns rows into points. Rows whose x or y is not numeric are
// dropped; a missing z counts as 0. label may be nil.
func BuildMatrix(view RowView, x, y, z, label Field) *Matrix {
	m := &Matrix{Points: make([]Point, 0, view.Len())}
	for i := 0; i < view.Len(); i++ {
		xv, okx := ToFloat(view.Value(i, x.Name()))
		yv, oky := ToFloat(view.Value(i, y.Name()))
		if !okx || !oky {
			continue
		}
		p := Point{X: xv, Y: yv}
		if z != nil {
			p.Z = NumberOr(view.Value(i, z.Name()))
		}
		if label != nil {
			p.Label = FormatValue(view.Value(i, label.Name()), label.Meta())
		}
		m.Points = append(m.Points, p)
	}

	if len(m.Points) == 0 {
		return m
	}
	m.X = AxisSpan{Min: math.Inf(1), Max: math.Inf(-1)}
	m.Y = AxisSpan{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, p := range m.Points {
		m.X.Min = math.Min(m.X.Min, p.X)
		m.X.Max = math.Max(m.X.Max, p.X)
		m.Y.Min = math.Min(m.Y.Min, p.Y)
		m.Y.Max = math.Max(m.Y.Max, p.Y)
	}
	return m
}
