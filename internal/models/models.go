package models

import "time"

// Run statuses
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// RunSession represents one batch file processed through the web interface
type RunSession struct {
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	Status     string         `json:"status"`
	Total      int            `json:"total"`
	Saved      int            `json:"saved"`
	Noted      int            `json:"noted"`
	Outcomes   map[string]int `json:"outcomes,omitempty"`
	Items      []RunItem      `json:"items,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// RunItem is the outcome of one description in a run
type RunItem struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Outcome     string `json:"outcome"`
	Notes       string `json:"notes"`
	Saved       bool   `json:"saved"`
}
