// Package export renders report tables into downloadable formats.
package export

import "fmt"

// Table is tabular report content with a fixed column order. Summary
// lines appear before the table body in formats that support them.
type Table struct {
	Title   string
	Summary []string
	Columns []string
	Rows    [][]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table requires at least one column")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}
