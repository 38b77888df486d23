// Package sheets implements a CSV-backed workbook and the spreadsheet
// skill toolset over it.
package sheets

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Workbook holds the sheets of a directory of CSV files. Each file is
// one sheet named after the file without its extension.
type Workbook struct {
	dir string

	mu     sync.Mutex
	sheets map[string][][]string
}

// Open loads every .csv file in dir as a sheet. A directory with no CSV
// files yields an empty workbook.
func Open(dir string) (*Workbook, error) {
	w := &Workbook{dir: dir, sheets: make(map[string][][]string)}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		rows, err := readCSV(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		w.sheets[name] = rows
	}
	return w, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Sheets returns the sheet names, sorted.
func (w *Workbook) Sheets() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.sheets))
	for name := range w.sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadCell returns the value at an A1-style reference. Cells outside the
// stored grid read as empty.
func (w *Workbook) ReadCell(sheet, ref string) (string, error) {
	col, row, err := parseRef(ref)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	rows, ok := w.sheets[sheet]
	if !ok {
		return "", fmt.Errorf("sheet %q not found", sheet)
	}
	if row >= len(rows) || col >= len(rows[row]) {
		return "", nil
	}
	return rows[row][col], nil
}

// WriteCell sets the value at an A1-style reference, growing the grid as
// needed, and persists the sheet back to its CSV file.
func (w *Workbook) WriteCell(sheet, ref, value string) error {
	col, row, err := parseRef(ref)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	rows, ok := w.sheets[sheet]
	if !ok {
		return fmt.Errorf("sheet %q not found", sheet)
	}

	for len(rows) <= row {
		rows = append(rows, nil)
	}
	for len(rows[row]) <= col {
		rows[row] = append(rows[row], "")
	}
	rows[row][col] = value
	w.sheets[sheet] = rows

	return w.save(sheet)
}

// ReadRange returns the values of an A1:B3-style rectangular range.
func (w *Workbook) ReadRange(sheet, ref string) ([][]string, error) {
	parts := strings.SplitN(ref, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid range %q (want e.g. A1:B3)", ref)
	}
	startCol, startRow, err := parseRef(parts[0])
	if err != nil {
		return nil, err
	}
	endCol, endRow, err := parseRef(parts[1])
	if err != nil {
		return nil, err
	}
	if endRow < startRow || endCol < startCol {
		return nil, fmt.Errorf("range %q is inverted", ref)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	rows, ok := w.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}

	out := make([][]string, 0, endRow-startRow+1)
	for r := startRow; r <= endRow; r++ {
		line := make([]string, 0, endCol-startCol+1)
		for c := startCol; c <= endCol; c++ {
			if r < len(rows) && c < len(rows[r]) {
				line = append(line, rows[r][c])
			} else {
				line = append(line, "")
			}
		}
		out = append(out, line)
	}
	return out, nil
}

// save writes one sheet back to disk. Caller holds the lock.
func (w *Workbook) save(sheet string) error {
	path := filepath.Join(w.dir, sheet+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(w.sheets[sheet]); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	writer.Flush()
	return writer.Error()
}

// parseRef converts an A1-style reference to zero-based column and row.
func parseRef(ref string) (col, row int, err error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A') + 1
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	for _, ch := range ref[i:] {
		if ch < '0' || ch > '9' {
			return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
		}
		row = row*10 + int(ch-'0')
	}
	if row == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference %q (rows start at 1)", ref)
	}
	return col - 1, row - 1, nil
}
