package source

import (
	"fmt"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/table"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of an Office Open XML workbook. Cell values are read raw so
// numbers are not subject to the display format of the sheet.
func readXLSX(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook, %v, %w", err, errkind.ErrUnreadableFile)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets, %w", errkind.ErrCorruptOrEmpty)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q, %v, %w", sheets[0], err, errkind.ErrUnreadableFile)
	}
	return fromTextRows(rows, false)
}
