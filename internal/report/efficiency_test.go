package report

import (
    "testing"

    "github.com/example/focus-pulse/internal/domain"
)

var rules = map[string]float64{"YTCS": 3, "DS": 2}

func prow(contributor, project string, points float64) domain.Row {
    return domain.Row{Contributor: contributor, Project: project, Category: "VL", Day: day(18), Points: points}
}

func one(t *testing.T, recs []domain.EfficiencyRecord) domain.EfficiencyRecord {
    t.Helper()
    if len(recs) != 1 { t.Fatalf("expected 1 record, got %+v", recs) }
    return recs[0]
}

func TestFullWeekFullThroughputIsHundredPercent(t *testing.T) {
    rows := []domain.Row{prow("Dana", "YTCS", 8), prow("Dana", "YTCS", 7)}
    recs, unknown := Efficiency(rows, nil, rules, 5)
    if len(unknown) != 0 { t.Fatalf("unexpected warnings: %v", unknown) }
    r := one(t, recs)
    if r.Completed != 15 || r.Expected != 15 || r.Percent != 100.00 {
        t.Fatalf("unexpected record: %+v", r)
    }
    if r.LeaveDays != 0 || r.WorkingDays != 5 { t.Fatalf("unexpected audit fields: %+v", r) }
}

func TestLeaveDaysReduceExpectedPoints(t *testing.T) {
    rows := []domain.Row{prow("Dana", "YTCS", 6)}
    recs, _ := Efficiency(rows, map[string]int{"Dana": 2}, rules, 5)
    r := one(t, recs)
    if r.WorkingDays != 3 || r.Expected != 9 { t.Fatalf("unexpected record: %+v", r) }
    if r.Percent != 66.67 { t.Fatalf("expected 66.67, got %v", r.Percent) }
}

func TestUnknownProjectExcludedAndReported(t *testing.T) {
    rows := []domain.Row{prow("Dana", "YTCS", 3), prow("Dana", "ABC", 5)}
    recs, unknown := Efficiency(rows, nil, rules, 5)
    if len(recs) != 1 || recs[0].Project != "YTCS" {
        t.Fatalf("unknown project must not produce a record: %+v", recs)
    }
    if len(unknown) != 1 || unknown[0] != "ABC" {
        t.Fatalf("expected ABC reported, got %v", unknown)
    }
}

func TestZeroExpectedEdgeCases(t *testing.T) {
    leave := map[string]int{"Dana": 5}
    // no completed work against no expectation
    recs, _ := Efficiency([]domain.Row{prow("Dana", "DS", 0)}, leave, rules, 5)
    r := one(t, recs)
    if r.Expected != 0 || r.Percent != 0 { t.Fatalf("expected 0%%, got %+v", r) }
    // work done when none was expected
    recs, _ = Efficiency([]domain.Row{prow("Dana", "DS", 2)}, leave, rules, 5)
    r = one(t, recs)
    if r.Expected != 0 || r.Percent != 100 { t.Fatalf("expected 100%%, got %+v", r) }
}

func TestExcessLeaveClampsWorkingDaysAtZero(t *testing.T) {
    recs, _ := Efficiency([]domain.Row{prow("Dana", "DS", 1)}, map[string]int{"Dana": 9}, rules, 5)
    r := one(t, recs)
    if r.WorkingDays != 0 || r.Expected != 0 {
        t.Fatalf("excess leave must clamp, got %+v", r)
    }
}

func TestRecordPerContributorProjectPair(t *testing.T) {
    rows := []domain.Row{
        prow("Dana", "YTCS", 3), prow("Dana", "DS", 2),
        prow("Omid", "YTCS", 4),
    }
    recs, _ := Efficiency(rows, nil, rules, 5)
    if len(recs) != 3 { t.Fatalf("expected 3 records, got %+v", recs) }
    // sorted by contributor then project
    if recs[0].Project != "DS" || recs[0].Contributor != "Dana" || recs[2].Contributor != "Omid" {
        t.Fatalf("unexpected order: %+v", recs)
    }
}

func TestPercentRounding(t *testing.T) {
    rows := []domain.Row{prow("Dana", "YTCS", 10)}
    recs, _ := Efficiency(rows, nil, rules, 5)
    // 10/15 = 66.666... -> 66.67
    if r := one(t, recs); r.Percent != 66.67 { t.Fatalf("expected 66.67, got %v", r.Percent) }
}
