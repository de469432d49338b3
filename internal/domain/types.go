package domain

import "time"

// WorkItem is one issue as returned by the Jira search API. Fields keeps the
// raw field map so classification can reach configured custom fields by id.
type WorkItem struct {
    Key    string
    Fields map[string]any
}

// Row is one normalized work record. Day is midnight in the process timezone.
type Row struct {
    Contributor string
    Ticket      string
    Category    string
    Status      string
    Day         time.Time
    Project     string
    Points      float64
}

// SummaryTable pivots row counts into one row per contributor. Columns fixes
// the category column order: configured primaries first, then the catch-all.
type SummaryTable struct {
    Columns []string     `json:"columns"`
    Rows    []SummaryRow `json:"rows"`
}

type SummaryRow struct {
    Contributor       string         `json:"contributor"`
    Counts            map[string]int `json:"counts"`
    Total             int            `json:"total"`
    ContextSwitchDays int            `json:"context_switch_days"`
}

// DayActivity is the per-contributor, per-day category breadth.
type DayActivity struct {
    Contributor        string    `json:"contributor"`
    Day                time.Time `json:"day"`
    DistinctCategories int       `json:"distinct_categories"`
    Switched           bool      `json:"switched"`
}

type StatusCount struct {
    Status string `json:"status"`
    Count  int    `json:"count"`
}

// EfficiencyRecord carries every input of the computation so a reviewer can
// audit it without re-deriving from raw issues.
type EfficiencyRecord struct {
    Contributor string  `json:"contributor"`
    Project     string  `json:"project"`
    Completed   float64 `json:"completed_points"`
    Expected    float64 `json:"expected_points"`
    Percent     float64 `json:"efficiency_pct"`
    LeaveDays   int     `json:"leave_days"`
    WorkingDays int     `json:"working_days"`
}

// Report is the full output of one pipeline run.
type Report struct {
    Timeframe       string             `json:"timeframe"`
    GeneratedAt     time.Time          `json:"generated_at"`
    Issues          int                `json:"issues"`
    RowsDropped     int                `json:"rows_dropped"`
    Summary         SummaryTable       `json:"summary"`
    PerDay          []DayActivity      `json:"per_day"`
    Statuses        []StatusCount      `json:"statuses"`
    Efficiency      []EfficiencyRecord `json:"efficiency"`
    UnknownProjects []string           `json:"unknown_projects,omitempty"`
}

// RunInfo is one audit row in report_runs.
type RunInfo struct {
    ID          string
    Timeframe   string
    StartedAt   time.Time
    FinishedAt  *time.Time
    Issues      int
    RowsKept    int
    RowsDropped int
    Unknown     []string
    OK          bool
    Error       string
}
