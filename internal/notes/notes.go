// Package notes writes the human-readable log of skipped or problematic
// catalog entries.
package notes

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Banner starts every notes file.
var Banner = "Entry Notes Log\n" + strings.Repeat("=", 20) + "\n"

// File is a notes file on disk.
type File struct {
	path string
}

// New returns the notes file at path. Nothing is written until Reset or
// Append.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the notes file path.
func (f *File) Path() string {
	return f.path
}

// Reset truncates the file and writes the banner.
func (f *File) Reset() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(Banner), 0644); err != nil {
		return fmt.Errorf("failed to create notes file: %w", err)
	}
	return nil
}

// Append adds one entry block for the book at index.
func (f *File) Append(index int, note, description string) error {
	out, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open notes file: %w", err)
	}
	defer out.Close()

	if _, err := out.WriteString(Block(index, note, description)); err != nil {
		return fmt.Errorf("failed to write to notes file: %w", err)
	}

	slog.Info("Written to notes file", "book", index)
	return nil
}

// Block formats one notes entry.
func Block(index int, note, description string) string {
	return fmt.Sprintf("Book %d:\n%s\nOriginal Entry: %s\n\n", index, note, description)
}
