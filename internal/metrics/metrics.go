// Package metrics exposes Prometheus counters for pipeline auditing.
package metrics

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    IssuesFetched = promauto.NewCounter(prometheus.CounterOpts{
        Namespace: "focuspulse",
        Name:      "issues_fetched_total",
        Help:      "Issues returned by the Jira search API.",
    })
    RowsNormalized = promauto.NewCounter(prometheus.CounterOpts{
        Namespace: "focuspulse",
        Name:      "rows_normalized_total",
        Help:      "Normalized rows emitted by the pipeline.",
    })
    RowsDropped = promauto.NewCounter(prometheus.CounterOpts{
        Namespace: "focuspulse",
        Name:      "rows_dropped_total",
        Help:      "Issues dropped for an unparseable updated timestamp.",
    })
    UnknownProjects = promauto.NewCounter(prometheus.CounterOpts{
        Namespace: "focuspulse",
        Name:      "unknown_projects_total",
        Help:      "Contributor/project pairs excluded from efficiency for lacking a throughput rule.",
    })
    PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
        Namespace: "focuspulse",
        Name:      "pipeline_runs_total",
        Help:      "Pipeline runs by outcome.",
    }, []string{"outcome"})
)
