package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/table"
)

// readCSV reads a comma delimited file whose first record is the header
func readCSV(path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file, %v, %w", err, errkind.ErrUnreadableFile)
	}
	defer file.Close()

	return parseCSV(file)
}

func parseCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record, %v, %w", err, errkind.ErrCorruptOrEmpty)
		}
		rows = append(rows, record)
	}
	return fromTextRows(rows, true)
}
