package helpers

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/spektr-org/seriesagg/engine"
)

var (
	// ErrInvalidJSON is returned for input that is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrNotRowArray is returned when the selected value is not an array of objects.
	ErrNotRowArray = errors.New("expected an array of objects")
	// ErrUnsupportedSource is returned for file types Load cannot read.
	ErrUnsupportedSource = errors.New("unsupported source type")
	// ErrQueryRequired is returned for database files loaded without a query.
	ErrQueryRequired = errors.New("database source needs a query")
)

// ParseJSON reads an array of row objects. path selects the array inside
// a larger document using gjson syntax ("data", "results.0.data");
// an empty path means the document itself. A JSON-lines document (one
// object per line) is accepted too.
//
// Columns are collected in first-seen key order. Nested objects and arrays
// are kept as raw JSON text.
func ParseJSON(data []byte, path string) (*ResultSet, error) {
	var arr gjson.Result
	switch {
	case gjson.ValidBytes(data):
		if path != "" {
			arr = gjson.GetBytes(data, path)
		} else {
			arr = gjson.ParseBytes(data)
		}
	case path == "":
		// JSON lines
		rs := &ResultSet{}
		seen := make(map[string]bool)
		var bad int
		gjson.ForEachLine(string(data), func(line gjson.Result) bool {
			if !line.IsObject() {
				bad++
				return true
			}
			rs.Rows = append(rs.Rows, objectRow(line, rs, seen))
			return true
		})
		if len(rs.Rows) == 0 {
			return nil, ErrInvalidJSON
		}
		if bad > 0 {
			return nil, fmt.Errorf("%d lines: %w", bad, ErrNotRowArray)
		}
		return rs, nil
	default:
		return nil, ErrInvalidJSON
	}

	if arr.IsObject() && path == "" {
		rs := &ResultSet{}
		rs.Rows = append(rs.Rows, objectRow(arr, rs, make(map[string]bool)))
		return rs, nil
	}
	if !arr.IsArray() {
		return nil, fmt.Errorf("path %q: %w", path, ErrNotRowArray)
	}

	rs := &ResultSet{}
	seen := make(map[string]bool)
	var err error
	arr.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			err = fmt.Errorf("path %q item %d: %w", path, len(rs.Rows), ErrNotRowArray)
			return false
		}
		rs.Rows = append(rs.Rows, objectRow(item, rs, seen))
		return true
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// objectRow converts one JSON object, registering new keys as columns.
func objectRow(obj gjson.Result, rs *ResultSet, seen map[string]bool) engine.Row {
	row := make(engine.Row)
	obj.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if !seen[key] {
			seen[key] = true
			rs.Columns = append(rs.Columns, key)
		}
		row[key] = jsonValue(v)
		return true
	})
	return row
}

func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False, gjson.True:
		return v.Bool()
	case gjson.Number:
		return v.Float()
	case gjson.String:
		return v.Str
	}
	return v.Raw
}
