package storage

import (
	"encoding/csv"
	"fmt"
	"os"
)

// RecordSet is a header-preserving tabular record set. Row order and all
// columns survive a read/modify/write cycle untouched except for cells the
// caller explicitly sets.
type RecordSet struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the index of the named header column, or -1.
func (s *RecordSet) ColumnIndex(name string) int {
	for i, h := range s.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// EnsureColumn returns the index of the named column, inserting it at pos
// (with empty cells in every row) when absent.
func (s *RecordSet) EnsureColumn(name string, pos int) int {
	if i := s.ColumnIndex(name); i >= 0 {
		return i
	}
	if pos < 0 || pos > len(s.Header) {
		pos = len(s.Header)
	}

	s.Header = append(s.Header, "")
	copy(s.Header[pos+1:], s.Header[pos:])
	s.Header[pos] = name

	for r, row := range s.Rows {
		row = append(row, "")
		copy(row[pos+1:], row[pos:])
		row[pos] = ""
		s.Rows[r] = row
	}
	return pos
}

// ReadRecords loads a CSV file with a header row. Short rows are padded to
// the header width so column assignment never indexes out of range.
// A missing file is a MissingInputError.
func ReadRecords(path string) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingInputError{Path: path, Hint: "create the records CSV first"}
		}
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("records file %s has no header row", path)
	}

	set := &RecordSet{Header: all[0]}
	for _, row := range all[1:] {
		for len(row) < len(set.Header) {
			row = append(row, "")
		}
		set.Rows = append(set.Rows, row)
	}
	return set, nil
}

// WriteRecords rewrites the CSV file, header first.
func WriteRecords(path string, set *RecordSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create records: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(set.Header); err != nil {
		return fmt.Errorf("write records header: %w", err)
	}
	for _, row := range set.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write records row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
