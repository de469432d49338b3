package report

import (
    "reflect"
    "testing"
    "time"

    "github.com/example/focus-pulse/internal/domain"
)

var primaries = []string{"VL", "CS", "POC"}

func day(d int) time.Time { return time.Date(2025, 8, d, 0, 0, 0, 0, time.UTC) }

func row(contributor, category string, d int) domain.Row {
    return domain.Row{Contributor: contributor, Category: category, Status: "DONE", Day: day(d), Project: "YTCS"}
}

func TestSummarizePivotZeroFilledWithFixedColumns(t *testing.T) {
    rows := []domain.Row{
        row("Dana", "VL", 18),
        row("Dana", "VL", 18),
        row("Dana", "OTHERS", 19),
        row("Omid", "CS", 18),
    }
    table := Summarize(rows, primaries)
    wantCols := []string{"VL", "CS", "POC", "OTHERS"}
    if !reflect.DeepEqual(table.Columns, wantCols) {
        t.Fatalf("unexpected columns: %v", table.Columns)
    }
    if len(table.Rows) != 2 { t.Fatalf("expected 2 rows, got %d", len(table.Rows)) }
    dana := table.Rows[0]
    if dana.Contributor != "Dana" { t.Fatalf("rows not sorted by contributor: %+v", table.Rows) }
    if dana.Counts["VL"] != 2 || dana.Counts["CS"] != 0 || dana.Counts["POC"] != 0 || dana.Counts["OTHERS"] != 1 {
        t.Fatalf("unexpected counts: %+v", dana.Counts)
    }
    if dana.Total != 3 { t.Fatalf("expected total 3, got %d", dana.Total) }
    omid := table.Rows[1]
    if omid.Total != 1 || omid.Counts["CS"] != 1 { t.Fatalf("unexpected counts: %+v", omid) }
}

func TestSummarizeMergesSwitchDaysZeroFilled(t *testing.T) {
    rows := []domain.Row{
        // Dana switches on the 18th, focused on the 19th
        row("Dana", "VL", 18), row("Dana", "CS", 18), row("Dana", "VL", 19),
        // Omid never switches
        row("Omid", "CS", 18), row("Omid", "CS", 19),
    }
    table := Summarize(rows, primaries)
    if table.Rows[0].ContextSwitchDays != 1 {
        t.Fatalf("Dana: expected 1 switch day, got %d", table.Rows[0].ContextSwitchDays)
    }
    if table.Rows[1].ContextSwitchDays != 0 {
        t.Fatalf("Omid: expected explicit 0, got %d", table.Rows[1].ContextSwitchDays)
    }
}

func TestPerDayDistinctCategories(t *testing.T) {
    rows := []domain.Row{
        row("Dana", "VL", 18), row("Dana", "VL", 18), row("Dana", "CS", 18),
        row("Dana", "POC", 19),
    }
    pd := PerDay(rows)
    if len(pd) != 2 { t.Fatalf("expected 2 day entries, got %d", len(pd)) }
    if pd[0].DistinctCategories != 2 || !pd[0].Switched {
        t.Fatalf("day 18: expected 2 distinct and switched, got %+v", pd[0])
    }
    if pd[1].DistinctCategories != 1 || pd[1].Switched {
        t.Fatalf("day 19: expected 1 distinct and not switched, got %+v", pd[1])
    }
}

func TestContextSwitchDaysMatchesPerDayDefinition(t *testing.T) {
    rows := []domain.Row{
        row("Dana", "VL", 18), row("Dana", "CS", 18),
        row("Dana", "VL", 19), row("Dana", "POC", 19),
        row("Dana", "VL", 20),
    }
    switches := ContextSwitchDays(PerDay(rows))
    if switches["Dana"] != 2 { t.Fatalf("expected 2 switch days, got %d", switches["Dana"]) }
}

func TestAggregationIsIdempotent(t *testing.T) {
    rows := []domain.Row{
        row("Dana", "VL", 18), row("Dana", "CS", 18), row("Omid", "POC", 19),
    }
    first := Summarize(rows, primaries)
    second := Summarize(rows, primaries)
    if !reflect.DeepEqual(first, second) {
        t.Fatalf("summaries differ between runs:\n%+v\n%+v", first, second)
    }
    if !reflect.DeepEqual(PerDay(rows), PerDay(rows)) {
        t.Fatalf("per-day tables differ between runs")
    }
}

func TestEmptyInputYieldsEmptyTables(t *testing.T) {
    table := Summarize(nil, primaries)
    if len(table.Rows) != 0 { t.Fatalf("expected no rows, got %+v", table.Rows) }
    if len(table.Columns) != 4 { t.Fatalf("columns must still be fixed: %v", table.Columns) }
    if pd := PerDay(nil); len(pd) != 0 { t.Fatalf("expected empty per-day, got %+v", pd) }
    if sc := StatusCounts(nil); len(sc) != 0 { t.Fatalf("expected empty statuses, got %+v", sc) }
}

func TestStatusCountsOrdering(t *testing.T) {
    rows := []domain.Row{
        {Contributor: "Dana", Category: "VL", Status: "DONE", Day: day(18)},
        {Contributor: "Dana", Category: "VL", Status: "DONE", Day: day(18)},
        {Contributor: "Dana", Category: "VL", Status: "DEV READY", Day: day(18)},
        {Contributor: "Dana", Category: "VL", Status: "QA RELEASE", Day: day(18)},
    }
    sc := StatusCounts(rows)
    if sc[0].Status != "DONE" || sc[0].Count != 2 { t.Fatalf("unexpected first status: %+v", sc) }
    if sc[1].Status != "DEV READY" || sc[2].Status != "QA RELEASE" {
        t.Fatalf("ties must order by name: %+v", sc)
    }
}
