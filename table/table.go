// Package table holds the canonical in-memory dataset: ordered, uniquely named columns of equal
// length whose scalar type is inferred when the column is built.
package table

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

var (
	ErrNoColumns          = errors.New("table has no columns")
	ErrDuplicateColumn    = errors.New("duplicate column name")
	ErrColumnLenMismatch  = errors.New("column has a different length than the table")
	ErrRowLenMismatch     = errors.New("row has a different length than the header")
	ErrUnknownColumnType  = errors.New("unknown column type")
	ErrRowOutOfBounds     = errors.New("row is out of bounds")
	ErrColumnDoesNotExist = errors.New("column does not exist")
)

// Table is a set of equally sized columns in a stable order
type Table struct {
	Columns []Column `json:"columns"`
}

// New builds a table from a header and row major cells. Every row must have exactly one cell per
// header name.
func New(names []string, rows [][]Value) (*Table, error) {
	cols := make([]Column, len(names))
	for j := range names {
		cols[j].Name = names[j]
		cols[j].Values = make([]Value, 0, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d has %d cells for %d columns, %w", i, len(row), len(names), ErrRowLenMismatch)
		}
		for j, v := range row {
			cols[j].Values = append(cols[j].Values, v)
		}
	}
	for j := range cols {
		cols[j].Reinfer()
	}
	return FromColumns(cols)
}

// FromColumns builds a table from already constructed columns. Column types are taken as given.
func FromColumns(cols []Column) (*Table, error) {
	t := &Table{Columns: cols}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the table invariants: at least one column, unique names and equal lengths
func (t *Table) Validate() error {
	if t == nil || len(t.Columns) == 0 {
		return ErrNoColumns
	}
	seen := make(map[string]struct{}, len(t.Columns))
	n := len(t.Columns[0].Values)
	for _, c := range t.Columns {
		if _, exists := seen[c.Name]; exists {
			return fmt.Errorf("column %q, %w", c.Name, ErrDuplicateColumn)
		}
		seen[c.Name] = struct{}{}
		if len(c.Values) != n {
			return fmt.Errorf("column %q has %d rows, expected %d, %w", c.Name, len(c.Values), n, ErrColumnLenMismatch)
		}
	}
	return nil
}

// NumRows returns the shared length of every column
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the number of columns
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Names returns the column names in table order
func (t *Table) Names() []string {
	names := make([]string, 0, t.NumCols())
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Index returns the position of the named column or -1
func (t *Table) Index(name string) int {
	for j, c := range t.Columns {
		if c.Name == name {
			return j
		}
	}
	return -1
}

// Column returns the named column so callers may mutate it in place
func (t *Table) Column(name string) (*Column, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, fmt.Errorf("column %q, %w", name, ErrColumnDoesNotExist)
	}
	return &t.Columns[j], nil
}

// Cell returns the value at a row of the named column
func (t *Table) Cell(row int, name string) (Value, error) {
	c, err := t.Column(name)
	if err != nil {
		return Value{}, err
	}
	if row < 0 || row >= len(c.Values) {
		return Value{}, fmt.Errorf("row %d of %d, %w", row, len(c.Values), ErrRowOutOfBounds)
	}
	return c.Values[row], nil
}

// DropRows removes the given row indexes from every column, keeping the relative order of the
// remaining rows. Indexes out of range are ignored.
func (t *Table) DropRows(rows map[int]struct{}) {
	if len(rows) == 0 {
		return
	}
	for j := range t.Columns {
		vals := t.Columns[j].Values
		kept := vals[:0]
		for i, v := range vals {
			if _, drop := rows[i]; drop {
				continue
			}
			kept = append(kept, v)
		}
		t.Columns[j].Values = kept
	}
}

// Copy returns a deep copy that shares no cell storage with t
func (t *Table) Copy() *Table {
	if t == nil {
		return nil
	}
	cols := make([]Column, len(t.Columns))
	for j, c := range t.Columns {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		cols[j] = Column{Name: c.Name, Type: c.Type, Values: vals}
	}
	return &Table{Columns: cols}
}

// Summary writes the table shape followed by one line per column with its type and number of
// absent cells
func (t *Table) Summary(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Rows: %d    Columns: %d\n", t.NumRows(), t.NumCols()); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tbl, "Column\tType\tNull\t"); err != nil {
		return err
	}
	for _, c := range t.Columns {
		var nulls int
		for _, v := range c.Values {
			if v.IsNull() {
				nulls++
			}
		}
		if _, err := fmt.Fprintf(tbl, "%s\t%s\t%d\t\n", c.Name, c.Type, nulls); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// Head writes the header and up to n leading rows as aligned text
func (t *Table) Head(w io.Writer, n int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tbl, strings.Join(t.Names(), "\t")+"\t"); err != nil {
		return err
	}
	if n > t.NumRows() {
		n = t.NumRows()
	}
	cells := make([]string, t.NumCols())
	for i := 0; i < n; i++ {
		for j, c := range t.Columns {
			cells[j] = c.Values[i].String()
		}
		if _, err := fmt.Fprintln(tbl, strings.Join(cells, "\t")+"\t"); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
