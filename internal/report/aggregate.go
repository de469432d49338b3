package report

import (
    "sort"

    "github.com/example/focus-pulse/internal/classify"
    "github.com/example/focus-pulse/internal/domain"
)

// Columns is the fixed category column order for the summary pivot:
// configured primaries in order, then the catch-all.
func Columns(primaries []string) []string {
    return append(append([]string(nil), primaries...), classify.CatchAll)
}

// Summarize pivots rows into one summary row per contributor with zero-filled
// counts for every column, a Total, and context-switch day counts merged in.
func Summarize(rows []domain.Row, primaries []string) domain.SummaryTable {
    cols := Columns(primaries)
    byContributor := map[string]map[string]int{}
    for _, r := range rows {
        m := byContributor[r.Contributor]
        if m == nil { m = map[string]int{}; byContributor[r.Contributor] = m }
        m[r.Category]++
    }
    switches := ContextSwitchDays(PerDay(rows))

    out := domain.SummaryTable{Columns: cols}
    for contributor, counts := range byContributor {
        row := domain.SummaryRow{Contributor: contributor, Counts: map[string]int{}}
        for _, c := range cols {
            row.Counts[c] = counts[c]
            row.Total += counts[c]
        }
        row.ContextSwitchDays = switches[contributor]
        out.Rows = append(out.Rows, row)
    }
    sort.Slice(out.Rows, func(i, j int) bool { return out.Rows[i].Contributor < out.Rows[j].Contributor })
    return out
}

// PerDay counts distinct categories per contributor per day. Switched marks
// days where a contributor touched more than one category.
func PerDay(rows []domain.Row) []domain.DayActivity {
    type key struct {
        contributor string
        day         int64
    }
    cats := map[key]map[string]struct{}{}
    days := map[key]domain.DayActivity{}
    for _, r := range rows {
        k := key{r.Contributor, r.Day.Unix()}
        if cats[k] == nil {
            cats[k] = map[string]struct{}{}
            days[k] = domain.DayActivity{Contributor: r.Contributor, Day: r.Day}
        }
        cats[k][r.Category] = struct{}{}
    }
    out := make([]domain.DayActivity, 0, len(days))
    for k, d := range days {
        d.DistinctCategories = len(cats[k])
        d.Switched = d.DistinctCategories > 1
        out = append(out, d)
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].Contributor != out[j].Contributor { return out[i].Contributor < out[j].Contributor }
        return out[i].Day.Before(out[j].Day)
    })
    return out
}

// ContextSwitchDays sums switch flags per contributor. Contributors present
// in the input always get an entry, zero included.
func ContextSwitchDays(perDay []domain.DayActivity) map[string]int {
    out := map[string]int{}
    for _, d := range perDay {
        if _, ok := out[d.Contributor]; !ok { out[d.Contributor] = 0 }
        if d.Switched { out[d.Contributor]++ }
    }
    return out
}

// StatusCounts tallies rows per status, descending by count then by name.
func StatusCounts(rows []domain.Row) []domain.StatusCount {
    counts := map[string]int{}
    for _, r := range rows { counts[r.Status]++ }
    out := make([]domain.StatusCount, 0, len(counts))
    for s, c := range counts { out = append(out, domain.StatusCount{Status: s, Count: c}) }
    sort.Slice(out, func(i, j int) bool {
        if out[i].Count != out[j].Count { return out[i].Count > out[j].Count }
        return out[i].Status < out[j].Status
    })
    return out
}
