package api

import "time"

type Finding struct {
	Analyzer string `json:"analyzer"`
	Severity string `json:"severity"`
	Row      *int   `json:"row,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   string `json:"column,omitempty"`
	Message  string `json:"message"`
}

type RowCounts struct {
	Total              int `json:"total"`
	Analyzed           int `json:"analyzed"`
	Excluded           int `json:"excluded"`
	ExcludedOutOfRange int `json:"excluded_out_of_range"`
	ExcludedUndated    int `json:"excluded_undated"`
}

type Summary struct {
	BySeverity map[string]int `json:"by_severity"`
	ByAnalyzer map[string]int `json:"by_analyzer"`
	Total      int            `json:"total"`
}

type Report struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Columns      []string  `json:"columns"`
	Filter       string    `json:"filter"`
	FilterColumn string    `json:"filter_column,omitempty"`
	Rows         RowCounts `json:"rows"`
	Analyzers    []string  `json:"analyzers"`
	Summary      Summary   `json:"summary"`
	Findings     []Finding `json:"findings"`
	GeneratedAt  time.Time `json:"generated_at"`
}

type Analyzer struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

type Error struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
