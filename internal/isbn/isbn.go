// Package isbn normalizes and converts ISBN identifiers.
package isbn

import (
	"strconv"
	"strings"
)

// Clean removes hyphens and spaces.
func Clean(isbn string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
}

// To13 converts an ISBN-10 to ISBN-13 by prepending 978 and computing the check digit.
// Returns an empty string if the input is not a valid ISBN-10.
func To13(isbn10 string) string {
	isbn10 = Clean(isbn10)
	if len(isbn10) != 10 {
		return ""
	}
	base := "978" + isbn10[:9]
	sum := 0
	for i, c := range base {
		d, err := strconv.Atoi(string(c))
		if err != nil {
			return ""
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - sum%10) % 10
	return base + strconv.Itoa(check)
}

// Valid13 reports whether isbn13 has thirteen digits and a correct check digit.
func Valid13(isbn13 string) bool {
	isbn13 = Clean(isbn13)
	if len(isbn13) != 13 {
		return false
	}
	sum := 0
	for i, c := range isbn13 {
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return sum%10 == 0
}
