package tables

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Read loads a table Set from path. Workbooks (.xlsx, .xlsm) and YAML documents (.yaml, .yml)
// are read directly; a directory is read as one <table>.csv file per table.
func Read(path string) (Set, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return ReadCSVDir(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(path)
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return ReadYAML(f)
	}
	return nil, fmt.Errorf("unsupported input format: %s", path)
}

// ReadWorkbook reads one sheet per table from a spreadsheet. Sheet names are matched to table
// names case-insensitively and the first row of each sheet is the header. Cells are read raw so
// that dates keep their serial form and are coerced later by ParseDate.
func ReadWorkbook(path string) (Set, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	set := make(Set)
	for _, sheet := range f.GetSheetList() {
		name := tableName(sheet)
		if name == "" {
			continue
		}
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		set[name] = fromStrings(name, rows)
	}
	return set, nil
}

// ReadYAML reads a document of the form
//
//	school:
//	  - {Key: SchoolID, Value: SCH}
//	terms:
//	  - {TermType: Term, TermName: Autumn, StartDate: 2024-09-02, EndDate: 2024-12-20}
//
// Every top-level key naming a table becomes one table.
func ReadYAML(r io.Reader) (Set, error) {
	var doc map[string][]map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}

	return FromRecords(doc), nil
}

// FromRecords builds a Set from records keyed by table name, the shape of a decoded YAML or
// JSON document. Keys that do not name a table are ignored. Column order follows first
// appearance.
func FromRecords(doc map[string][]map[string]any) Set {
	set := make(Set)
	for key, records := range doc {
		name := tableName(key)
		if name == "" {
			continue
		}
		t := &Table{Name: name}
		seen := make(map[string]bool)
		for _, rec := range records {
			row := make(Row, len(rec))
			for col, v := range rec {
				row[col] = v
				if !seen[col] {
					seen[col] = true
					t.Columns = append(t.Columns, col)
				}
			}
			t.Rows = append(t.Rows, row)
		}
		set[name] = t
	}
	return set
}

// ReadCSVDir reads <table>.csv for each table from dir. Missing files are left out of the Set
// and reported by Normalize.
func ReadCSVDir(dir string) (Set, error) {
	set := make(Set)
	for _, name := range Names {
		path := filepath.Join(dir, name+".csv")
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		records, err := r.ReadAll()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		set[name] = fromStrings(name, records)
	}
	return set, nil
}

func fromStrings(name string, rows [][]string) *Table {
	if len(rows) == 0 {
		return &Table{Name: name}
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, byteOrderMark))
	}
	records := make([][]any, 0, len(rows)-1)
	for _, r := range rows[1:] {
		rec := make([]any, len(r))
		for i, c := range r {
			rec[i] = c
		}
		records = append(records, rec)
	}
	return NewTable(name, header, records)
}

func tableName(s string) string {
	s = strings.TrimSpace(s)
	for _, name := range Names {
		if strings.EqualFold(s, name) {
			return name
		}
	}
	return ""
}
