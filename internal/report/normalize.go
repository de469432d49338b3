package report

import (
    "strings"
    "time"

    "github.com/example/focus-pulse/internal/classify"
    "github.com/example/focus-pulse/internal/domain"
)

const (
    Unassigned     = "Unassigned"
    UnknownStatus  = "Unknown"
    UnknownProject = "Unknown"
)

// Normalizer turns raw work items into rows. Items without a parseable
// updated timestamp are dropped: a day bucket is meaningless without a date.
type Normalizer struct {
    resolver    *classify.Resolver
    pointsField string
    projects    []string
    loc         *time.Location
}

func NewNormalizer(resolver *classify.Resolver, pointsField string, projects []string, loc *time.Location) *Normalizer {
    if loc == nil { loc = time.Local }
    return &Normalizer{resolver: resolver, pointsField: pointsField, projects: projects, loc: loc}
}

// Rows returns the normalized rows and the number of items dropped for an
// unparseable timestamp. Output order carries no meaning downstream.
func (n *Normalizer) Rows(items []domain.WorkItem) ([]domain.Row, int) {
    rows := make([]domain.Row, 0, len(items))
    dropped := 0
    for _, it := range items {
        updated := parseTime(it.Fields["updated"])
        if updated == nil { dropped++; continue }
        local := updated.In(n.loc)
        day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, n.loc)
        rows = append(rows, domain.Row{
            Contributor: contributor(it.Fields["assignee"]),
            Ticket:      it.Key,
            Category:    n.resolver.Resolve(it.Fields),
            Status:      statusName(it.Fields["status"]),
            Day:         day,
            Project:     n.project(it.Key),
            Points:      points(it.Fields[n.pointsField]),
        })
    }
    return rows, dropped
}

func contributor(v any) string {
    as, ok := v.(map[string]any)
    if !ok || as == nil { return Unassigned }
    if s, ok := as["displayName"].(string); ok && s != "" { return s }
    if s, ok := as["name"].(string); ok && s != "" { return s }
    if s, ok := as["accountId"].(string); ok && s != "" { return s }
    return Unassigned
}

func statusName(v any) string {
    if st, ok := v.(map[string]any); ok {
        if s, ok := st["name"].(string); ok && s != "" { return s }
    }
    return UnknownStatus
}

// project matches the ticket key against the configured prefixes, falling
// back to the first three characters of the key.
func (n *Normalizer) project(key string) string {
    if key == "" { return UnknownProject }
    for _, p := range n.projects {
        if strings.HasPrefix(key, p) { return p }
    }
    if len(key) >= 3 { return key[:3] }
    return key
}

func points(v any) float64 {
    f, ok := v.(float64)
    if !ok || f < 0 { return 0 }
    return f
}

// parseTime accepts the timestamp layouts Jira emits across versions.
func parseTime(v any) *time.Time {
    s, _ := v.(string)
    if s == "" { return nil }
    layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700"}
    for _, l := range layouts {
        if t, err := time.Parse(l, s); err == nil { return &t }
    }
    return nil
}
