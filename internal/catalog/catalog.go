// Package catalog maintains the CSV book catalog.
//
// Every append rewrites the whole file: the header is recomputed as the
// sorted union of the existing header and the new record's keys, and every
// row is re-expanded to that header. Callers must not assume append-only
// writes.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
)

// Bookkeeping columns.
const (
	ColumnIndexNumber = "Index Number"
	ColumnEntryTime   = "Entry Time"
	ColumnErrorNotes  = "Error Notes"

	NoProblems = "No problems"
)

// Record is one catalog row keyed by column name.
type Record map[string]string

// Writer appends records to the catalog at Path.
type Writer struct {
	path string
	lock *flock.Flock
}

// NewWriter returns a writer for the catalog file at path.
func NewWriter(path string) *Writer {
	return &Writer{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the catalog file path.
func (w *Writer) Path() string {
	return w.path
}

// Append adds record as the last row, growing the header as needed.
func (w *Writer) Append(record Record) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	if err := w.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock catalog: %w", err)
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			slog.Error("Unable to unlock catalog", "path", w.path, "err", err)
		}
	}()

	headers, rows, err := Read(w.path)
	if err != nil {
		return err
	}

	row := normalize(record)
	headers = unionHeaders(headers, row)
	rows = append(rows, row)

	if err := writeAll(w.path, headers, rows); err != nil {
		return err
	}

	slog.Info("Book details saved", "path", w.path, "rows", len(rows), "columns", len(headers))
	return nil
}

// Read returns the catalog header and rows. A missing file is an empty
// catalog.
func Read(path string) ([]string, []Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	var rows []Record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read catalog row %d: %w", len(rows)+1, err)
		}

		row := make(Record, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				row[h] = fields[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}

// normalize copies record, zero-pads the index number and defaults the
// error notes.
func normalize(record Record) Record {
	row := make(Record, len(record)+1)
	for k, v := range record {
		row[k] = v
	}
	if idx, ok := row[ColumnIndexNumber]; ok {
		row[ColumnIndexNumber] = PadIndex(idx)
	}
	if _, ok := row[ColumnErrorNotes]; !ok {
		row[ColumnErrorNotes] = NoProblems
	}
	return row
}

// PadIndex left-pads an index number with zeros to three characters.
func PadIndex(idx string) string {
	idx = strings.TrimSpace(idx)
	if len(idx) >= 3 {
		return idx
	}
	return strings.Repeat("0", 3-len(idx)) + idx
}

func unionHeaders(existing []string, record Record) []string {
	set := make(map[string]struct{}, len(existing)+len(record))
	for _, h := range existing {
		set[h] = struct{}{}
	}
	for k := range record {
		set[k] = struct{}{}
	}

	headers := make([]string, 0, len(set))
	for h := range set {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	return headers
}

// writeAll rewrites path through a temporary file in the same directory.
func writeAll(path string, headers []string, rows []Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary catalog: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set catalog permissions: %w", err)
	}

	writer := csv.NewWriter(tmp)
	if err := writer.Write(headers); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(expand(headers, row)); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write catalog row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary catalog: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

func expand(headers []string, row Record) []string {
	fields := make([]string, len(headers))
	for i, h := range headers {
		fields[i] = row[h]
	}
	return fields
}
