package engine

import (
	"sort"
)

// ============================================================================
// ROW VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns consumer data. It reads through this interface.
//
// Implementations:
//   SliceView      — wraps []Row (CSV, JSON, SQL result sets)
//   DomainView[T]  — reads typed structs via accessor functions (zero-copy)
//   SubView        — filtered subset (indices into parent, zero-copy)
//   ConcatView     — virtual concatenation of several result sets
// ============================================================================

// RowView provides indexed access to a result set.
// The engine calls Value in tight loops — keep implementations fast.
type RowView interface {
	Len() int
	Value(index int, key string) any
	Keys() []string // available field names, in column order
}

// ============================================================================
// SLICE VIEW — wraps []Row
// ============================================================================

// SliceView wraps a []Row slice as a RowView.
type SliceView struct {
	rows []Row
	keys []string
}

// NewSliceView creates a RowView from rows. columns fixes the column order;
// without it the union of row keys is used, sorted.
func NewSliceView(rows []Row, columns ...string) RowView {
	v := &SliceView{rows: rows, keys: columns}
	if len(v.keys) == 0 {
		v.keys = KeysOf(rows)
	}
	return v
}

// KeysOf returns the sorted union of keys across rows.
func KeysOf(rows []Row) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func (v *SliceView) Len() int { return len(v.rows) }

func (v *SliceView) Value(i int, key string) any {
	if i < 0 || i >= len(v.rows) {
		return nil
	}
	return v.rows[i][key]
}

func (v *SliceView) Keys() []string { return v.keys }

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RowView.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  RowView
	indices []int
}

func newSubView(parent RowView, indices []int) RowView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Value(i int, key string) any {
	if i < 0 || i >= len(v.indices) {
		return nil
	}
	return v.parent.Value(v.indices[i], key)
}

func (v *SubView) Keys() []string { return v.parent.Keys() }

// ============================================================================
// CONCAT VIEW — several result sets read as one
// ============================================================================

// ConcatView logically concatenates RowViews in order.
type ConcatView struct {
	parts []RowView
	keys  []string
	n     int
}

// Concat joins result sets without copying. Keys are the union in first-seen
// order.
func Concat(views ...RowView) RowView {
	if len(views) == 1 {
		return views[0]
	}
	v := &ConcatView{parts: views}
	seen := make(map[string]bool)
	for _, p := range views {
		v.n += p.Len()
		for _, k := range p.Keys() {
			if !seen[k] {
				seen[k] = true
				v.keys = append(v.keys, k)
			}
		}
	}
	return v
}

func (v *ConcatView) Len() int { return v.n }

func (v *ConcatView) Value(i int, key string) any {
	if i < 0 {
		return nil
	}
	for _, p := range v.parts {
		if i < p.Len() {
			return p.Value(i, key)
		}
		i -= p.Len()
	}
	return nil
}

func (v *ConcatView) Keys() []string { return v.keys }

// Materialize copies a view into plain rows, keeping only its Keys.
func Materialize(view RowView) []Row {
	keys := view.Keys()
	rows := make([]Row, view.Len())
	for i := range rows {
		r := make(Row, len(keys))
		for _, k := range keys {
			r[k] = view.Value(i, k)
		}
		rows[i] = r
	}
	return rows
}

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[Visit]().
//	    Field("visited_at", func(v Visit) any { return v.At }).
//	    Field("shoppers", func(v Visit) any { return v.Shoppers })
//
//	view := adapter.Bind(visits)
//	result, _ := engine.Execute(ctx, req, view, opts...)
//
// ============================================================================

// DomainAdapter builds a RowView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	order  []string
	fields map[string]func(T) any
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		fields: make(map[string]func(T) any),
	}
}

// Field registers a field accessor.
func (a *DomainAdapter[T]) Field(key string, fn func(T) any) *DomainAdapter[T] {
	if _, exists := a.fields[key]; !exists {
		a.order = append(a.order, key)
	}
	a.fields[key] = fn
	return a
}

// Bind creates a RowView from a data slice. Zero-copy — holds reference.
func (a *DomainAdapter[T]) Bind(data []T) RowView {
	return &DomainView[T]{
		data:   data,
		fields: a.fields,
		keys:   a.order,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data   []T
	fields map[string]func(T) any
	keys   []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Value(i int, key string) any {
	if i < 0 || i >= len(v.data) {
		return nil
	}
	if fn, ok := v.fields[key]; ok {
		return fn(v.data[i])
	}
	return nil
}

func (v *DomainView[T]) Keys() []string { return v.keys }
