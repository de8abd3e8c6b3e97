package source

import (
	"fmt"
	"os"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/table"
	"github.com/extrame/xls"
)

const xlsCharset = "utf-8"

// readXLS reads the first sheet of a legacy BIFF workbook
func readXLS(path string) (t *table.Table, err error) {
	// the BIFF decoder panics on some malformed streams instead of returning an error
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = fmt.Errorf("malformed workbook, %v, %w", r, errkind.ErrUnreadableFile)
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook, %v, %w", err, errkind.ErrUnreadableFile)
	}
	defer file.Close()

	wb, err := xls.OpenReader(file, xlsCharset)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workbook, %v, %w", err, errkind.ErrUnreadableFile)
	}
	if wb == nil {
		return nil, fmt.Errorf("no workbook stream, %w", errkind.ErrUnreadableFile)
	}

	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets, %w", errkind.ErrCorruptOrEmpty)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("unable to read first sheet, %w", errkind.ErrUnreadableFile)
	}

	var width int
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		// rows built from cell records alone report no extent
		width = max(width, row.LastCol())
		fields := make([]string, width)
		for j := range fields {
			fields[j] = row.Col(j)
		}
		rows = append(rows, fields)
	}

	// a sheet without any cells still reports row zero
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return fromTextRows(rows, false)
}

// sheetRow returns row i or nil when the sheet has no such row
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
