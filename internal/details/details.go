// Package details parses the model's "Key: Value" reply into a mapping.
package details

import (
	"log/slog"
	"strings"
)

// Field names the rest of the pipeline relies on.
const (
	FieldTitle  = "Title"
	FieldAuthor = "Author"
	FieldFormat = "Format"
	FieldYear   = "Year"
)

// Details maps field name to value.
type Details map[string]string

// Parse turns text into Details. Lines without a key or a value are logged
// and skipped; Parse never fails.
func Parse(text string) Details {
	d := make(Details)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))

		key, value, found := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !found || key == "" || value == "" {
			slog.Warn("Malformed line in book details", "line", line)
			continue
		}

		d[key] = value
	}

	return d
}

// HasRequiredMarkers reports whether text mentions both a title and an
// author in "Key:" form.
func HasRequiredMarkers(text string) bool {
	return strings.Contains(text, FieldTitle+":") && strings.Contains(text, FieldAuthor+":")
}

// Title returns the parsed title, or "".
func (d Details) Title() string {
	return d[FieldTitle]
}

// Author returns the parsed author, or "".
func (d Details) Author() string {
	return d[FieldAuthor]
}

// Complete reports whether both Title and Author are present and non-empty.
func (d Details) Complete() bool {
	return strings.TrimSpace(d.Title()) != "" && strings.TrimSpace(d.Author()) != ""
}
