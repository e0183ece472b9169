// Package datatable derives a searched, filtered, sorted and paginated view
// over rows that are already in memory.
package datatable

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"HospitalMS/pagination"
)

// Accessor extracts the value of one column from a row.
type Accessor[T any] func(row T) any

// Filter restricts rows by one column. Contains switches from equality to substring match.
type Filter struct {
	Key      string
	Value    string
	Contains bool
}

// Query describes the view to derive.
type Query struct {
	Search       string
	Filters      []Filter
	SortKey      string
	SortDesc     bool
	Page         int
	ItemsPerPage int
}

// Result is a page of derived rows.
type Result[T any] struct {
	Rows []T
	Meta pagination.Meta
}

// Table knows how to read columns of T.
type Table[T any] struct {
	columns      map[string]Accessor[T]
	searchFields []string
}

// New creates a table over the given columns; searchFields must name columns.
func New[T any](columns map[string]Accessor[T], searchFields ...string) *Table[T] {
	return &Table[T]{columns: columns, searchFields: searchFields}
}

// HasColumn reports whether key names a column.
func (t *Table[T]) HasColumn(key string) bool {
	_, ok := t.columns[key]
	return ok
}

// Apply runs filtered → sorted → paginated over rows. The input slice is not modified.
func (t *Table[T]) Apply(rows []T, q Query) Result[T] {
	filtered := t.filter(rows, q)
	t.sort(filtered, q)

	params := pagination.New(q.Page, q.ItemsPerPage)
	meta := params.Meta(int64(len(filtered)))

	start := params.Offset()
	if start >= len(filtered) {
		return Result[T]{Rows: []T{}, Meta: meta}
	}
	end := start + params.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return Result[T]{Rows: filtered[start:end], Meta: meta}
}

func (t *Table[T]) filter(rows []T, q Query) []T {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if search != "" && !t.matchesSearch(row, search) {
			continue
		}
		if !t.matchesFilters(row, q.Filters) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (t *Table[T]) matchesSearch(row T, search string) bool {
	for _, field := range t.searchFields {
		get, ok := t.columns[field]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(stringify(get(row))), search) {
			return true
		}
	}
	return false
}

func (t *Table[T]) matchesFilters(row T, filters []Filter) bool {
	for _, f := range filters {
		if f.Value == "" {
			continue
		}
		get, ok := t.columns[f.Key]
		if !ok {
			continue
		}
		value := strings.ToLower(stringify(get(row)))
		want := strings.ToLower(f.Value)
		if f.Contains {
			if !strings.Contains(value, want) {
				return false
			}
		} else if value != want {
			return false
		}
	}
	return true
}

func (t *Table[T]) sort(rows []T, q Query) {
	get, ok := t.columns[q.SortKey]
	if !ok {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(get(rows[i]), get(rows[j]))
		if q.SortDesc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b any) int {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(strings.ToLower(stringify(a)), strings.ToLower(stringify(b)))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case *string:
		if s == nil {
			return ""
		}
		return *s
	case time.Time:
		return s.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
