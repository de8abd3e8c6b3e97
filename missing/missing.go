// Package missing detects and resolves absent cells in a set of columns of a table. Tables are
// changed in place.
package missing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/stats"
	"github.com/aouyang1/go-tabreg/table"
)

// Strategy is how absent cells are resolved
type Strategy uint8

const (
	RemoveRows Strategy = iota
	FillMean
	FillMedian
	FillConstant
)

func (s Strategy) String() string {
	switch s {
	case RemoveRows:
		return "remove-rows"
	case FillMean:
		return "fill-mean"
	case FillMedian:
		return "fill-median"
	case FillConstant:
		return "fill-constant"
	default:
		return "unknown"
	}
}

// ParseStrategy accepts the String form of a strategy as well as the labels the strategies are
// offered under, case and separator insensitive
func ParseStrategy(s string) (Strategy, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "removerows", "remove", "drop":
		return RemoveRows, nil
	case "fillmean", "mean":
		return FillMean, nil
	case "fillmedian", "median":
		return FillMedian, nil
	case "fillconstant", "constant":
		return FillConstant, nil
	default:
		return 0, fmt.Errorf("unknown missing value strategy %q", s)
	}
}

// Coord addresses one cell
type Coord struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
}

// Result describes what Apply changed
type Result struct {
	Strategy    Strategy `json:"strategy"`
	Affected    int      `json:"affected"`
	RowsRemoved int      `json:"rows_removed"`
}

// IsMissing reports whether v counts as missing in a column of type ct. Beyond the absent
// marker, text columns also treat an empty string and "nan" in any case as missing.
func IsMissing(v table.Value, ct table.ColumnType) bool {
	if v.IsNull() {
		return true
	}
	if ct != table.TypeText || v.Kind != table.Text {
		return false
	}
	s := strings.TrimSpace(v.Str)
	return s == "" || strings.EqualFold(s, "nan")
}

func resolve(t *table.Table, columns []string) ([]*table.Column, error) {
	cols := make([]*table.Column, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		c, err := t.Column(name)
		if err != nil {
			return nil, fmt.Errorf("%v, %w", err, errkind.ErrUnknownColumn)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// Detect returns every missing cell in the given columns ordered by row, then by the order the
// columns were given in. A column named twice is scanned once.
func Detect(t *table.Table, columns []string) ([]Coord, error) {
	cols, err := resolve(t, columns)
	if err != nil {
		return nil, err
	}
	var coords []Coord
	for i := 0; i < t.NumRows(); i++ {
		for _, c := range cols {
			if IsMissing(c.Values[i], c.Type) {
				coords = append(coords, Coord{Row: i, Column: c.Name})
			}
		}
	}
	return coords, nil
}

// Apply resolves the missing cells of the given columns with strategy. The constant is only read
// by FillConstant, which fails with MissingConstant when it is empty. Applying a strategy to
// columns without missing cells changes nothing.
func Apply(t *table.Table, columns []string, strategy Strategy, constant string) (Result, error) {
	res := Result{Strategy: strategy}
	cols, err := resolve(t, columns)
	if err != nil {
		return res, err
	}

	switch strategy {
	case RemoveRows:
		drop := make(map[int]struct{})
		for i := 0; i < t.NumRows(); i++ {
			for _, c := range cols {
				if IsMissing(c.Values[i], c.Type) {
					drop[i] = struct{}{}
					break
				}
			}
		}
		t.DropRows(drop)
		res.RowsRemoved = len(drop)
		res.Affected = len(drop)
	case FillMean, FillMedian:
		for _, c := range cols {
			if !c.Type.IsNumeric() {
				continue
			}
			n, err := fillStatistic(c, strategy)
			if err != nil {
				return res, err
			}
			res.Affected += n
		}
	case FillConstant:
		if constant == "" {
			return res, fmt.Errorf("%s, %w", strategy, errkind.ErrMissingConstant)
		}
		fill := table.TextValue(constant)
		if f, ok := table.ParseNumber(constant); ok {
			fill = table.NumberValue(f)
		}
		for _, c := range cols {
			res.Affected += fillWith(c, fill)
		}
	default:
		return res, fmt.Errorf("unknown missing value strategy %d", strategy)
	}
	return res, nil
}

func fillStatistic(c *table.Column, strategy Strategy) (int, error) {
	var (
		v   float64
		err error
	)
	x := c.Float64s()
	if strategy == FillMedian {
		v, err = stats.Median(x)
	} else {
		v, err = stats.Mean(x)
	}
	if err != nil {
		// a numeric column always has a present value
		return 0, fmt.Errorf("column %q, %v", c.Name, err)
	}
	return fillWith(c, table.NumberValue(v)), nil
}

func fillWith(c *table.Column, v table.Value) int {
	var n int
	for i := range c.Values {
		if IsMissing(c.Values[i], c.Type) {
			c.Values[i] = v
			n++
		}
	}
	if n > 0 {
		c.Reinfer()
	}
	return n
}

// Columns returns the names of the columns that hold at least one missing cell, in table order
func Columns(t *table.Table) []string {
	var names []string
	for _, c := range t.Columns {
		for _, v := range c.Values {
			if IsMissing(v, c.Type) {
				names = append(names, c.Name)
				break
			}
		}
	}
	return names
}

// Rows returns the distinct rows named by coords in ascending order
func Rows(coords []Coord) []int {
	seen := make(map[int]struct{}, len(coords))
	rows := make([]int, 0, len(coords))
	for _, c := range coords {
		if _, ok := seen[c.Row]; ok {
			continue
		}
		seen[c.Row] = struct{}{}
		rows = append(rows, c.Row)
	}
	sort.Ints(rows)
	return rows
}
