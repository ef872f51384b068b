package helpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// RESULT SET — rows plus the column order of their source
// ============================================================================

// ResultSet is one loaded query result. Columns keeps the source order,
// which a map-based Row cannot.
type ResultSet struct {
	Columns []string     `json:"columns"`
	Rows    []engine.Row `json:"rows"`
}

// View wraps the result set as an engine.RowView.
func (rs *ResultSet) View() engine.RowView {
	return engine.NewSliceView(rs.Rows, rs.Columns...)
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int { return len(rs.Rows) }

// Source describes where rows are loaded from.
type Source struct {
	Path     string `json:"path,omitempty"`      // CSV, JSON or SQLite file
	JSONPath string `json:"json_path,omitempty"` // gjson path to the row array inside a JSON document
	Driver   string `json:"driver,omitempty"`    // "sqlite3" or "postgres"; derived from Path/DSN when empty
	DSN      string `json:"dsn,omitempty"`
	Query    string `json:"query,omitempty"`
}

// Load reads a Source. A Query selects the SQL path; otherwise the file
// extension decides between CSV, JSON and SQLite.
func Load(ctx context.Context, src Source) (*ResultSet, error) {
	if src.Query != "" {
		dsn := src.DSN
		if dsn == "" {
			dsn = src.Path
		}
		driver := src.Driver
		if driver == "" {
			driver = DriverFor(dsn)
		}
		return QueryRows(ctx, driver, dsn, src.Query)
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src.Path, err)
	}

	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".csv", ".tsv", ".txt":
		return ParseCSV(data)
	case ".json", ".jsonl":
		return ParseJSON(data, src.JSONPath)
	case ".db", ".sqlite", ".sqlite3":
		return nil, fmt.Errorf("%s: %w", src.Path, ErrQueryRequired)
	}
	return nil, fmt.Errorf("%s: %w", src.Path, ErrUnsupportedSource)
}

// LoadAll loads several sources and concatenates them in order.
func LoadAll(ctx context.Context, sources ...Source) (engine.RowView, error) {
	views := make([]engine.RowView, 0, len(sources))
	for _, src := range sources {
		rs, err := Load(ctx, src)
		if err != nil {
			return nil, err
		}
		views = append(views, rs.View())
	}
	if len(views) == 0 {
		return engine.NewSliceView(nil), nil
	}
	return engine.Concat(views...), nil
}
