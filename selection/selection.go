// Package selection validates the choice of input columns and target column against a table
package selection

import (
	"fmt"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/table"
)

// Selection is an ordered set of input columns and one target column. The target may also be
// one of the inputs.
type Selection struct {
	Inputs []string `json:"inputs"`
	Target string   `json:"target"`
}

// Validate checks inputs and target against the schema of t. Repeated inputs are dropped keeping
// their first position.
func Validate(t *table.Table, inputs []string, target string) (Selection, error) {
	if len(inputs) == 0 {
		return Selection{}, fmt.Errorf("no input columns, %w", errkind.ErrEmptySelection)
	}
	if target == "" {
		return Selection{}, fmt.Errorf("no target column, %w", errkind.ErrEmptySelection)
	}

	deduped := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, name := range inputs {
		if name == "" {
			return Selection{}, fmt.Errorf("blank input column, %w", errkind.ErrEmptySelection)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		deduped = append(deduped, name)
	}

	sel := Selection{Inputs: deduped, Target: target}
	if err := sel.Check(t); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// Check verifies that every column the selection names exists in t
func (s Selection) Check(t *table.Table) error {
	for _, name := range s.Columns() {
		if t.Index(name) < 0 {
			return fmt.Errorf("column %q, %w", name, errkind.ErrUnknownColumn)
		}
	}
	return nil
}

// Columns returns the inputs followed by the target, with the target only listed once when it is
// also an input
func (s Selection) Columns() []string {
	cols := make([]string, 0, len(s.Inputs)+1)
	cols = append(cols, s.Inputs...)
	for _, name := range s.Inputs {
		if name == s.Target {
			return cols
		}
	}
	return append(cols, s.Target)
}
