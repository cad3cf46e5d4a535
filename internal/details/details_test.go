package details

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Details
	}{
		{
			name: "plain lines",
			text: "Title: Dune\nAuthor: Frank Herbert\nFormat: Paperback\nYear: 1965",
			expected: Details{
				"Title":  "Dune",
				"Author": "Frank Herbert",
				"Format": "Paperback",
				"Year":   "1965",
			},
		},
		{
			name: "leading dashes and blank lines",
			text: "\n- Title: Dune\n\n  -  Author:   Frank Herbert  \n",
			expected: Details{
				"Title":  "Dune",
				"Author": "Frank Herbert",
			},
		},
		{
			name: "splits at the first colon only",
			text: "Title: Star Wars: A New Hope",
			expected: Details{
				"Title": "Star Wars: A New Hope",
			},
		},
		{
			name: "malformed lines are skipped",
			text: "Here are the details\nTitle: Emma\nAuthor:\n: orphan value\nYear: 1815",
			expected: Details{
				"Title": "Emma",
				"Year":  "1815",
			},
		},
		{
			name:     "empty input",
			text:     "",
			expected: Details{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.text))
		})
	}
}

func TestHasRequiredMarkers(t *testing.T) {
	assert.True(t, HasRequiredMarkers("Title: Emma\nAuthor: Jane Austen"))
	assert.True(t, HasRequiredMarkers("- Author: Jane Austen\n- Title: Emma"))
	assert.False(t, HasRequiredMarkers("Title: Emma"))
	assert.False(t, HasRequiredMarkers("title: Emma\nauthor: Jane Austen"))
	assert.False(t, HasRequiredMarkers("I could not find a book in that text."))
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name    string
		details Details
		want    bool
	}{
		{"both present", Details{"Title": "Emma", "Author": "Jane Austen"}, true},
		{"missing author", Details{"Title": "Emma"}, false},
		{"blank title", Details{"Title": " ", "Author": "Jane Austen"}, false},
		{"empty", Details{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.details.Complete())
		})
	}
}
