package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// HEATMAP — two categorical axes, one value per cell
// ============================================================================
// Rows whose x or y is zero are dropped (zero marks "no bucket" in the
// source queries). Both axes sort numerically when they can, lexically
// otherwise. Cell colours scale linearly from HeatmapLow at 0 to
// HeatmapHigh at the largest value.
// ============================================================================

const (
	HeatmapLow  = "#fcd5d9"
	HeatmapHigh = "#f04b55"
)

// Heatmap is a grid of cells with its axis labels.
type Heatmap struct {
	XLabels []string   `json:"xLabels"`
	YLabels []string   `json:"yLabels"`
	Cells   []HeatCell `json:"cells"`
	Max     float64    `json:"max"`
}

// HeatCell is one populated cell.
type HeatCell struct {
	X         string  `json:"x"`
	Y         string  `json:"y"`
	Value     float64 `json:"value"`
	Label     string  `json:"label"`
	Fill      string  `json:"fill"`
	TextColor string  `json:"textColor"`
}

// BuildHeatmap sums value per (x, y) and colours each cell.
func BuildHeatmap(view RowView, x, y, value Field) *Heatmap {
	type cellKey struct{ x, y string }
	sums := make(map[cellKey]float64)
	var order []cellKey
	var xs, ys []string
	seenX := make(map[string]bool)
	seenY := make(map[string]bool)

	for i := 0; i < view.Len(); i++ {
		xv, yv := view.Value(i, x.Name()), view.Value(i, y.Name())
		if IsNull(xv) || IsNull(yv) || isZero(xv) || isZero(yv) {
			continue
		}
		k := cellKey{FormatValue(xv, x.Meta()), FormatValue(yv, y.Meta())}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] += NumberOr(view.Value(i, value.Name()))
		if !seenX[k.x] {
			seenX[k.x] = true
			xs = append(xs, k.x)
		}
		if !seenY[k.y] {
			seenY[k.y] = true
			ys = append(ys, k.y)
		}
	}

	hm := &Heatmap{
		XLabels: OrderBuckets(xs, OrderGeneric, false),
		YLabels: OrderBuckets(ys, OrderGeneric, false),
		Cells:   make([]HeatCell, 0, len(order)),
	}
	for _, k := range order {
		hm.Max = math.Max(hm.Max, sums[k])
	}

	for _, yl := range hm.YLabels {
		for _, xl := range hm.XLabels {
			v, ok := sums[cellKey{xl, yl}]
			if !ok {
				continue
			}
			fill := HeatColor(v, hm.Max)
			hm.Cells = append(hm.Cells, HeatCell{
				X:         xl,
				Y:         yl,
				Value:     v,
				Label:     FormatNumber(math.Round(v)),
				Fill:      fill,
				TextColor: TextColorOn(fill),
			})
		}
	}
	return hm
}

// isZero reports whether v is numerically zero (0, 0.0 or "0").
func isZero(v any) bool {
	f, ok := ToFloat(v)
	return ok && f == 0
}

// HeatColor interpolates between HeatmapLow (0) and HeatmapHigh (max).
// Values outside [0, max] are clamped.
func HeatColor(v, max float64) string {
	t := 0.0
	if max > 0 {
		t = math.Min(math.Max(v/max, 0), 1)
	}
	lr, lg, lb := parseHex(HeatmapLow)
	hr, hg, hb := parseHex(HeatmapHigh)
	lerp := func(a, b int) int {
		return int(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(lr, hr), lerp(lg, hg), lerp(lb, hb))
}

// TextColorOn picks black or white text for legibility on fill, using
// relative luminance 0.2126r + 0.7152g + 0.0722b.
func TextColorOn(fill string) string {
	r, g, b := parseHex(fill)
	if 0.2126*float64(r)+0.7152*float64(g)+0.0722*float64(b) > 128 {
		return "black"
	}
	return "white"
}

func parseHex(c string) (int, int, int) {
	c = strings.TrimPrefix(c, "#")
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	if len(c) != 6 {
		return 0, 0, 0
	}
	n, err := strconv.ParseUint(c, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)
}
