package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/seriesagg/engine"
	"github.com/spektr-org/seriesagg/helpers"
)

// ============================================================================
// HANDLER TESTS
// ============================================================================

// prefixTranslator tags every label with its target language.
type prefixTranslator struct{}

func (prefixTranslator) Translate(_ context.Context, text, target string) (string, error) {
	return target + ":" + text, nil
}

func setupApp(t *testing.T, datasets Datasets) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := NewHandler(datasets, prefixTranslator{}, "shop")
	h.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	h.Register(app)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

const visitRows = `[
	{"day": "Tuesday", "store": "A", "shoppers": 3, "sales": 10},
	{"day": "Monday", "store": "B", "shoppers": 5, "sales": 2},
	{"day": "Monday", "store": "A", "shoppers": 1, "sales": 4}
]`

func TestSeries(t *testing.T) {
	app := setupApp(t, nil)
	resp, body := post(t, app, "/api/series", `{
		"rows": `+visitRows+`,
		"axis": "day",
		"metrics": ["shoppers", {"name": "sales", "title": "Sales", "meta": {"prefix": "$"}}],
		"ordering": "weekday",
		"normalization": "percent_bucket",
		"round": true
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out SeriesResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"Monday", "Tuesday"}, out.Chart.Labels)
	require.Len(t, out.Chart.Datasets, 2)
	assert.Equal(t, "Sales", out.Chart.Datasets[1].Label)
	assert.Equal(t, []float64{50, 23}, out.Chart.Datasets[0].Data)
	assert.Equal(t, []float64{50, 77}, out.Chart.Datasets[1].Data)
	assert.Equal(t, 3, out.RowCount)
}

func TestSeriesTranslated(t *testing.T) {
	app := setupApp(t, nil)
	resp, body := post(t, app, "/api/series", `{
		"rows": `+visitRows+`, "axis": "store", "metrics": ["shoppers"], "language": "de"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out SeriesResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"de:A", "de:B"}, out.Chart.Labels)
	assert.Equal(t, "de:Shoppers", out.Chart.Datasets[0].Label)
}

func TestSeriesErrors(t *testing.T) {
	app := setupApp(t, nil)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"no data", `{"axis": "day", "metrics": ["sales"]}`, http.StatusBadRequest},
		{"no axis", `{"rows": ` + visitRows + `, "metrics": ["sales"]}`, http.StatusBadRequest},
		{"no metrics", `{"rows": ` + visitRows + `, "axis": "day"}`, http.StatusBadRequest},
		{"unknown dataset", `{"dataset": "nope", "axis": "day", "metrics": ["sales"]}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, app, "/api/series", tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)

			var e ErrorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestSeriesFromDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visits.csv")
	require.NoError(t, os.WriteFile(path, []byte("day,sales\nMonday,4\nMonday,6\nSunday,1\n"), 0o644))
	app := setupApp(t, SourceDatasets{"visits": {{Path: path}}})

	resp, body := post(t, app, "/api/series", `{"dataset": "visits", "axis": "day", "metrics": ["sales"], "ordering": "weekday"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out SeriesResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"Monday", "Sunday"}, out.Chart.Labels)
	assert.Equal(t, []float64{10, 1}, out.Chart.Datasets[0].Data)

	broken := setupApp(t, SourceDatasets{"broken": {{Path: filepath.Join(t.TempDir(), "gone.csv")}}})
	resp, _ = post(t, broken, "/api/series", `{"dataset": "broken", "axis": "day", "metrics": ["sales"]}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestExport(t *testing.T) {
	app := setupApp(t, nil)
	resp, body := post(t, app, "/api/export", `{
		"name": "Weekly footfall",
		"rows": [{"store_id": 1, "sales": 10.5, "agg_sort": 1}, {"store_id": 2, "sales": 4, "agg_sort": 2}]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="shop-Weekly footfall-2024-03-05.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.NotContains(t, lines[0], "Agg")
	assert.Contains(t, lines[0], "Sales")
	assert.Contains(t, string(body), "10.50")
}

func TestExportDatasetKeepsColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, os.WriteFile(path, []byte("zeta,store,alpha\n1,A,1\n2,B,2\n"), 0o644))
	app := setupApp(t, SourceDatasets{"dup": {{Path: path}}})

	resp, body := post(t, app, "/api/export", `{"dataset": "dup"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "Zeta,Store\n1,A\n2,B\n", string(body))
}

func TestHeatmap(t *testing.T) {
	app := setupApp(t, nil)
	resp, body := post(t, app, "/api/heatmap", `{
		"rows": [{"week": 1, "dow": "Mon", "n": 4}, {"week": 1, "dow": "Mon", "n": 6}, {"week": 2, "dow": "Tue", "n": 5}],
		"x": "week", "y": "dow", "value": "n"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var hm engine.Heatmap
	require.NoError(t, json.Unmarshal(body, &hm))
	assert.Equal(t, []string{"1", "2"}, hm.XLabels)
	assert.Equal(t, 10.0, hm.Max)

	resp, _ = post(t, app, "/api/heatmap", `{"rows": [{"a": 1}], "x": "a", "y": "a"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMatrix(t *testing.T) {
	app := setupApp(t, nil)
	resp, body := post(t, app, "/api/matrix", `{
		"rows": [{"x": 1, "y": 2, "z": 3, "name": "A"}, {"x": "n/a", "y": 1, "z": 1}, {"x": 4, "y": 8, "z": 0, "name": "B"}],
		"x": "x", "y": "y", "z": "z", "label": "name"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m engine.Matrix
	require.NoError(t, json.Unmarshal(body, &m))
	require.Len(t, m.Points, 2)
	assert.Equal(t, "A", m.Points[0].Label)
	assert.Equal(t, engine.AxisSpan{Min: 1, Max: 4}, m.X)
}

func TestKPI(t *testing.T) {
	app := setupApp(t, nil)
	resp, body := post(t, app, "/api/kpi", `{
		"rows": [{"store": "A", "sales": 50, "target": 40}, {"store": "B", "sales": 80, "target": 40}],
		"axis": "store", "metric": "sales",
		"metrics": ["sales", "target"], "reference": "target"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out KPIResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Ranking.Top)
	assert.Equal(t, "B", out.Ranking.Top.Label)
	require.Len(t, out.Uplift, 2)
	assert.Equal(t, "125%", out.Uplift[0].Display)
	assert.Equal(t, "100%", out.Uplift[1].Display)
}

func TestHealthAndMiddleware(t *testing.T) {
	app := New(Options{AllowOrigins: "*", Datasets: SourceDatasets{"x": {{Path: "x.csv"}}}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestSourceDatasetsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"a": 1}, {"a": 2}]`), 0o644))

	view, err := SourceDatasets{"a": {helpers.Source{Path: path}}}.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())

	_, err = SourceDatasets{}.Load(context.Background(), "a")
	assert.ErrorIs(t, err, ErrUnknownDataset)
}
