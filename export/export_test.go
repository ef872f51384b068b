package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// EXPORT TESTS
// ============================================================================
// Tests cover:
//   1. Header beautification and rename rules
//   2. Value transform (timestamps, impressions, decimals)
//   3. Column dropping, de-duplication and name collisions
//   4. CSV writing and file names
// ============================================================================

func TestBeautifyHeader(t *testing.T) {
	tests := map[string]string{
		"kpi.total_impressions": "Total Impressions",
		"store_id":              "Store ID",
		"a.b.dwell__time":       "Dwell Time",
		"week of year":          "Week OF Year",
		"":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, BeautifyHeader(in), in)
	}
}

func TestCleanColumnName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Total Impressions", "Impressions"},
		{"Impression Unfiltered Calculation", "Impressions"},
		{"Date Min", "Start Date"},
		{"Date Max", "End Date"},
		{"Dow", "Weekday"},
		{"Visit Dow", "Visit Weekday"},
		{"Window", "Window"},
		{"Temp", "Temperature"},
		{"Temperature", "Temperature"},
		{"Sales Round", "Sales"},
		{"Store Base", "Store"},
		{"Quote Used Percent", "Used Ratio"},
		{"Quote Unused Percent", "Unused Ratio"},
		{"Content Name", "Visual"},
		{"Name Campaign Measure", "Name Campaign"},
		{"Visits 2024", "Visits"},
		{"Uplift Percentage ED", "Uplift (in %)"},
		{"Round", "Round"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanColumnName(tt.in))
		})
	}
}

func TestIsTechnical(t *testing.T) {
	assert.True(t, IsTechnical("sales_agg"))
	assert.True(t, IsTechnical("SortKey"))
	assert.True(t, IsTechnical("tftf_flag"))
	assert.False(t, IsTechnical("sales"))
}

func TestTransformValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  any
	}{
		{"midnight to date", "date", "2024-01-01T00:00:00.000", "2024-01-01"},
		{"hour column", "visit_hour", "2024-01-01T08:30:00.000", "08"},
		{"timestamp column", "event_timestamp", "2024-01-01T08:30:00.000", "2024-01-01"},
		{"other timestamp kept", "created", "2024-01-01T08:30:00.000", "2024-01-01T08:30:00.000"},
		{"time value at midnight", "day", time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), "2024-02-03"},
		{"impressions rounded", "total_impressions", "1234.6", float64(1235)},
		{"fraction fixed", "ratio", 1.5, "1.50"},
		{"fraction rounded", "ratio", 0.126, "0.13"},
		{"integral string", "count", "10", float64(10)},
		{"integral int", "count", 7, float64(7)},
		{"text kept", "name", "Berlin", "Berlin"},
		{"blank kept", "name", "", ""},
		{"bool kept", "flag", true, true},
		{"nil", "x", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransformValue(tt.key, tt.value))
		})
	}
}

func exportRows() ([]engine.Row, []string) {
	columns := []string{
		"store_id", "sales_round", "sales", "sales_copy", "agg_total",
		"empty", "kpi.total_impressions", "store",
	}
	rows := []engine.Row{
		{
			"store_id": 1, "sales_round": 10.5, "sales": 1, "sales_copy": 10.5, "agg_total": 3,
			"empty": "", "kpi.total_impressions": 99.6, "store": "A",
		},
		{
			"store_id": 2, "sales_round": 4, "sales": 1, "sales_copy": 4, "agg_total": 4,
			"empty": nil, "kpi.total_impressions": 100.2, "store": "B",
		},
	}
	return rows, columns
}

func TestPlanColumns(t *testing.T) {
	rows, columns := exportRows()
	plan := PlanColumns(rows, columns...)
	require.Len(t, plan, len(columns))

	type decision struct {
		Source, Name, Reason string
		Included             bool
	}
	got := make([]decision, len(plan))
	for i, c := range plan {
		got[i] = decision{c.Source, c.Name, c.Reason, c.Included}
	}
	want := []decision{
		{"store_id", "Store ID", "", true},
		{"sales_round", "Sales", "", true},
		{"sales", "Sales (2)", "", true},
		{"sales_copy", "Sales Copy", ReasonDuplicate, false},
		{"agg_total", "Agg Total", ReasonTechnical, false},
		{"empty", "Empty", ReasonEmpty, false},
		{"kpi.total_impressions", "Impressions", "", true},
		{"store", "Store", "", true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeForExport(t *testing.T) {
	rows, columns := exportRows()
	cleaned, order := SanitizeForExport(rows, columns...)

	assert.Equal(t, []string{"Store ID", "Sales", "Sales (2)", "Impressions", "Store"}, order)
	require.Len(t, cleaned, 2)
	assert.Equal(t, engine.Row{
		"Store ID":    float64(1),
		"Sales":       "10.50",
		"Sales (2)":   float64(1),
		"Impressions": float64(100),
		"Store":       "A",
	}, cleaned[0])

	// input untouched
	assert.Equal(t, 10.5, rows[0]["sales_round"])
}

func TestSanitizeForExportEmpty(t *testing.T) {
	cleaned, order := SanitizeForExport(nil)
	assert.Empty(t, cleaned)
	assert.Empty(t, order)
}

func TestSanitizeView(t *testing.T) {
	a := engine.NewSliceView([]engine.Row{{"store": "A", "visits": 3}}, "store", "visits")
	b := engine.NewSliceView([]engine.Row{{"store": "B", "visits": 2.25}}, "store", "visits")

	cleaned, order := SanitizeView(engine.Concat(a, b))
	assert.Equal(t, []string{"Store", "Visits"}, order)
	assert.Equal(t, "2.25", cleaned[1]["Visits"])
	assert.Len(t, Concat([]engine.Row{{}}, []engine.Row{{}, {}}), 3)
}

func TestExportViewKeepsSourceOrder(t *testing.T) {
	view := engine.NewSliceView([]engine.Row{
		{"zeta": 1, "alpha": 1, "store": "A"},
		{"zeta": 2, "alpha": 2, "store": "B"},
	}, "zeta", "store", "alpha")

	var buf bytes.Buffer
	require.NoError(t, ExportView(&buf, view))
	assert.Equal(t, "Zeta,Store\n1,A\n2,B\n", buf.String())

	buf.Reset()
	require.NoError(t, ExportView(&buf, view, "alpha", "zeta"))
	assert.Equal(t, "Alpha\n1\n2\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	rows, columns := exportRows()
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, rows, columns...))

	want := "Store ID,Sales,Sales (2),Impressions,Store\n" +
		"1,10.50,1,100,A\n" +
		"2,4,1,100,B\n"
	assert.Equal(t, want, buf.String())
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 7, 31, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "Cyreen-CAP-Explorer-Sales - Region -2024--2025-07-31",
		FileName("Cyreen-CAP-Explorer", "Sales / Region (2024)", now))
	assert.Equal(t, "seriesagg-Visits-2025-07-31", FileName("", "Visits", now))
	assert.Equal(t, `attachment; filename="x.csv"`, ContentDisposition("x"))
}
