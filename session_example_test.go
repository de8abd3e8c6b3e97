package tabreg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aouyang1/go-tabreg/missing"
)

func runSessionExample(dir string) error {
	data := filepath.Join(dir, "housing.csv")
	content := "rooms,age,price\n3,10,230\n4,NA,290\n2,30,130\n5,5,355\n3,20,200\n4,15,270\n"
	if err := os.WriteFile(data, []byte(content), 0o644); err != nil {
		return err
	}

	s, err := NewSession(nil, nil)
	if err != nil {
		return err
	}
	if err := s.LoadTable(data); err != nil {
		return err
	}
	if _, err := s.SelectColumns([]string{"rooms", "age"}, "price"); err != nil {
		return err
	}
	res, err := s.ApplyMissingPolicy(missing.RemoveRows, "")
	if err != nil {
		return err
	}
	fmt.Printf("removed %d rows\n", res.RowsRemoved)

	if _, err := s.Fit(); err != nil {
		return err
	}
	if err := s.Describe("price from rooms and age"); err != nil {
		return err
	}

	archivePath := filepath.Join(dir, "housing.trm")
	if err := s.SaveBundle(archivePath); err != nil {
		return err
	}
	b, err := LoadBundle(archivePath)
	if err != nil {
		return err
	}
	fmt.Println(b.Description)
	fmt.Println(b.Inputs(), "->", b.Target())
	return nil
}

func ExampleSession() {
	dir, err := os.MkdirTemp("", "tabreg-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	if err := runSessionExample(dir); err != nil {
		panic(err)
	}
	// Output:
	// removed 1 rows
	// price from rooms and age
	// [rooms age] -> price
}
