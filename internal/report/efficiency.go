package report

import (
    "math"
    "sort"

    "github.com/example/focus-pulse/internal/domain"
)

// Efficiency derives one record per (contributor, project) pair present in
// rows. leave maps contributor -> leave days taken this period; rules maps
// project -> expected points per working day. Pairs whose project has no rule
// are excluded and returned as warnings instead of defaulting silently.
func Efficiency(rows []domain.Row, leave map[string]int, rules map[string]float64, periodDays int) ([]domain.EfficiencyRecord, []string) {
    type key struct{ contributor, project string }
    completed := map[key]float64{}
    for _, r := range rows { completed[key{r.Contributor, r.Project}] += r.Points }

    var records []domain.EfficiencyRecord
    unknownSet := map[string]struct{}{}
    for k, pts := range completed {
        rate, ok := rules[k.project]
        if !ok {
            unknownSet[k.project] = struct{}{}
            continue
        }
        leaveDays := leave[k.contributor]
        if leaveDays < 0 { leaveDays = 0 }
        working := periodDays - leaveDays
        if working < 0 { working = 0 }
        expected := float64(working) * rate
        records = append(records, domain.EfficiencyRecord{
            Contributor: k.contributor,
            Project:     k.project,
            Completed:   pts,
            Expected:    expected,
            Percent:     percent(pts, expected),
            LeaveDays:   leaveDays,
            WorkingDays: working,
        })
    }
    sort.Slice(records, func(i, j int) bool {
        if records[i].Contributor != records[j].Contributor { return records[i].Contributor < records[j].Contributor }
        return records[i].Project < records[j].Project
    })
    unknown := make([]string, 0, len(unknownSet))
    for p := range unknownSet { unknown = append(unknown, p) }
    sort.Strings(unknown)
    return records, unknown
}

// percent is completed/expected as a percentage rounded to two decimals.
// With zero expected points, any completed work reads as 100% rather than
// dividing by zero; no work against no expectation is 0%.
func percent(completed, expected float64) float64 {
    if expected <= 0 {
        if completed > 0 { return 100 }
        return 0
    }
    return math.Round(completed/expected*10000) / 100
}
