package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/table"
)

const utf8BOM = "\ufeff"

// normalizeHeader names blank headers "Unnamed: <i>" and suffixes repeated names with ".1",
// ".2", ... so that every column name is unique
func normalizeHeader(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]struct{}, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for {
			if _, exists := taken[name]; !exists {
				break
			}
			seen[h]++
			name = h + "." + strconv.Itoa(seen[h])
		}
		taken[name] = struct{}{}
		names[i] = name
	}
	return names
}

// fromTextRows builds a table from a header row followed by data rows of raw text fields. Short
// rows are padded with absent cells. Rows longer than the header are rejected when strict is
// set, otherwise the header is widened with unnamed columns.
func fromTextRows(rows [][]string, strict bool) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header row, %w", errkind.ErrCorruptOrEmpty)
	}
	data := rows[1:]
	if len(data) == 0 {
		return nil, fmt.Errorf("header without data rows, %w", errkind.ErrCorruptOrEmpty)
	}

	header := rows[0]
	if !strict {
		width := len(header)
		for _, raw := range data {
			width = max(width, len(raw))
		}
		header = append(header[:len(header):len(header)], make([]string, width-len(header))...)
	}
	names := normalizeHeader(header)
	if len(names) == 0 {
		return nil, fmt.Errorf("header has no columns, %w", errkind.ErrCorruptOrEmpty)
	}

	cells := make([][]table.Value, 0, len(data))
	for i, raw := range data {
		if len(raw) > len(names) {
			return nil, fmt.Errorf("row %d has %d fields for %d columns, %w", i+1, len(raw), len(names), errkind.ErrCorruptOrEmpty)
		}
		row := make([]table.Value, len(names))
		for j := range row {
			if j < len(raw) {
				row[j] = table.ParseCell(raw[j])
				continue
			}
			row[j] = table.NullValue()
		}
		cells = append(cells, row)
	}

	t, err := table.New(names, cells)
	if err != nil {
		return nil, fmt.Errorf("%v, %w", err, errkind.ErrCorruptOrEmpty)
	}
	return t, nil
}
