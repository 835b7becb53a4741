// Package table implements the ordered, column-named row container that
// player statistics travel in.
package table

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Row maps column names to cell values.
type Row map[string]any

// Table is an ordered set of rows sharing one ordered column list.
// A row may lack a value for a listed column; readers see it as absent.
type Table struct {
	columns []string
	rows    []Row
}

// New builds a table from columns and rows. Keys present in rows but not
// listed in columns are appended to the column list in sorted order.
// Rows are copied, so later changes by the caller do not leak in.
func New(columns []string, rows ...Row) *Table {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		rows:    make([]Row, len(rows)),
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		t.columns = append(t.columns, c)
	}

	var extra []string
	for i, r := range rows {
		t.rows[i] = maps.Clone(r)
		if t.rows[i] == nil {
			t.rows[i] = Row{}
		}
		for k := range r {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	t.columns = append(t.columns, extra...)
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.columns, name)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of row i. It panics when i is out of range, like a
// slice index.
func (t *Table) Row(i int) Row {
	return maps.Clone(t.rows[i])
}

// Rows returns copies of all rows in order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = maps.Clone(r)
	}
	return out
}

// Value returns the cell at row i, column col.
func (t *Table) Value(i int, col string) (any, bool) {
	if i < 0 || i >= len(t.rows) {
		return nil, false
	}
	v, ok := t.rows[i][col]
	return v, ok
}

// Clone returns a deep copy of the table structure. Cell values are copied
// by assignment.
func (t *Table) Clone() *Table {
	return &Table{columns: slices.Clone(t.columns), rows: t.Rows()}
}

// SetColumn writes values into column name, one per row. A new column is
// appended at the end; an existing one is overwritten in place.
func (t *Table) SetColumn(name string, values []any) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("%w: column %q has %d values for %d rows", ErrLengthMismatch, name, len(values), len(t.rows))
	}
	if !t.HasColumn(name) {
		t.columns = append(t.columns, name)
	}
	for i, v := range values {
		t.rows[i][name] = v
	}
	return nil
}

// Select projects the table onto cols, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	out := &Table{columns: slices.Clone(cols), rows: make([]Row, len(t.rows))}
	for i, r := range t.rows {
		row := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				row[c] = v
			}
		}
		out.rows[i] = row
	}
	return out, nil
}
