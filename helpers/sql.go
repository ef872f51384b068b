package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// SQL HELPER — runs a query and returns its rows
// ============================================================================
// Drivers: "sqlite3" (mattn/go-sqlite3) for local files, "postgres"
// (lib/pq) for warehouse DSNs. SQLite files are opened read-only.
// ============================================================================

// DriverFor guesses the database/sql driver name from a DSN.
func DriverFor(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=") || strings.Contains(lower, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}

// openDB opens dsn with driver; SQLite paths get read-only flags.
func openDB(driver, dsn string) (*sql.DB, error) {
	if driver == "sqlite3" && !strings.Contains(dsn, "?") && !strings.HasPrefix(dsn, ":memory:") {
		dsn += "?mode=ro&_busy_timeout=3000"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	return db, nil
}

// QueryRows opens the database, runs query and returns its rows.
func QueryRows(ctx context.Context, driver, dsn, query string, args ...any) (*ResultSet, error) {
	db, err := openDB(driver, dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return QueryDB(ctx, db, query, args...)
}

// QueryDB runs query on an open database. Column order follows the query.
func QueryDB(ctx context.Context, db *sql.DB, query string, args ...any) (*ResultSet, error) {
	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", len(rs.Rows)+1, err)
		}
		row := make(engine.Row, len(cols))
		for i, c := range cols {
			row[c] = sqlValue(values[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	log.Printf("🗄️ sql: %d rows, %d columns in %s", len(rs.Rows), len(cols), time.Since(start).Round(time.Millisecond))
	return rs, nil
}

// sqlValue converts driver values to engine scalars. Byte slices are text
// (postgres numerics arrive that way) and parse as numbers when they can.
func sqlValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return parseCell(string(t))
	case string:
		return t
	}
	return v
}
