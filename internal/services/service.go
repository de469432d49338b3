package services

import (
    "context"
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/rs/zerolog"
    "golang.org/x/sync/errgroup"

    "github.com/example/focus-pulse/internal/classify"
    "github.com/example/focus-pulse/internal/config"
    "github.com/example/focus-pulse/internal/domain"
    "github.com/example/focus-pulse/internal/leave"
    "github.com/example/focus-pulse/internal/metrics"
    "github.com/example/focus-pulse/internal/repo"
    "github.com/example/focus-pulse/internal/report"
)

const (
    TimeframeThisWeek = "this-week"
    TimeframeLastWeek = "last-week"
)

type JiraClient interface {
    SearchAll(ctx context.Context, jql string, fields []string) ([]domain.WorkItem, error)
}

type LLM interface {
    Summarize(ctx context.Context, payload map[string]any) (string, error)
}

type Notifier interface {
    SendMessage(ctx context.Context, chatID int64, text string) error
    SendMessagePlain(ctx context.Context, chatID int64, text string) error
    SendMarkdownV2(ctx context.Context, chatID int64, text string) error
}

type Service struct {
    cfg        config.Config
    log        zerolog.Logger
    repo       *repo.Repository
    jira       JiraClient
    llm        LLM
    tg         Notifier
    leave      *leave.Book
    normalizer *report.Normalizer
    primaries  []string

    mu sync.Mutex // one pipeline run at a time
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, jira JiraClient, llm LLM, tg Notifier, book *leave.Book) *Service {
    resolver := classify.New(cfg.CategorySource, cfg.CustomFieldID, cfg.Categories)
    return &Service{
        cfg:        cfg,
        log:        log,
        repo:       r,
        jira:       jira,
        llm:        llm,
        tg:         tg,
        leave:      book,
        normalizer: report.NewNormalizer(resolver, cfg.PointsFieldID, cfg.JiraProjects, time.Local),
        primaries:  resolver.Primaries(),
    }
}

// weekJQL reproduces the search the dashboard runs: the selected projects,
// the in-scope statuses, bounded to this or last calendar week.
func weekJQL(projects, statuses []string, timeframe string) string {
    projClauses := make([]string, 0, len(projects))
    for _, p := range projects { projClauses = append(projClauses, fmt.Sprintf("project = %q", p)) }
    timeClause := "updated >= startOfWeek() AND updated <= endOfWeek()"
    if timeframe == TimeframeLastWeek {
        timeClause = "updated >= startOfWeek(-1) AND updated <= endOfWeek(-1)"
    }
    jql := fmt.Sprintf("(%s) AND %s", strings.Join(projClauses, " OR "), timeClause)
    if len(statuses) > 0 {
        stClauses := make([]string, 0, len(statuses))
        for _, st := range statuses { stClauses = append(stClauses, fmt.Sprintf("status = %q", st)) }
        jql = fmt.Sprintf("%s AND (%s)", jql, strings.Join(stClauses, " OR "))
    }
    return jql
}

func (s *Service) searchFields() []string {
    fields := []string{"assignee", "labels", "updated", "components", "status"}
    if s.cfg.CategorySource == classify.SourceCustomField && s.cfg.CustomFieldID != "" {
        fields = append(fields, s.cfg.CustomFieldID)
    }
    if s.cfg.PointsFieldID != "" { fields = append(fields, s.cfg.PointsFieldID) }
    return fields
}

// BuildReport fetches one snapshot and runs the full pipeline over it.
// An empty snapshot is a valid result; a fetch failure is not.
func (s *Service) BuildReport(ctx context.Context, timeframe string) (*domain.Report, error) {
    if timeframe != TimeframeLastWeek { timeframe = TimeframeThisWeek }
    s.mu.Lock()
    defer s.mu.Unlock()

    runID := ""
    if s.repo != nil {
        if id, err := s.repo.StartRun(ctx, timeframe); err == nil { runID = id } else {
            s.log.Error().Err(err).Msg("start run audit failed")
        }
    }

    items, err := s.fetch(ctx, timeframe)
    if err != nil {
        metrics.PipelineRuns.WithLabelValues("error").Inc()
        if runID != "" {
            _ = s.repo.FinishRun(ctx, runID, domain.RunInfo{Timeframe: timeframe, OK: false, Error: err.Error()})
        }
        return nil, fmt.Errorf("fetch issues: %w", err)
    }
    metrics.IssuesFetched.Add(float64(len(items)))

    rows, dropped := s.normalizer.Rows(items)
    metrics.RowsNormalized.Add(float64(len(rows)))
    metrics.RowsDropped.Add(float64(dropped))
    if dropped > 0 {
        s.log.Warn().Int("dropped", dropped).Msg("issues dropped for unparseable updated timestamp")
    }

    eff, unknown := report.Efficiency(rows, s.leave.Days(), s.cfg.ThroughputRules, s.cfg.PeriodDays)
    if len(unknown) > 0 {
        metrics.UnknownProjects.Add(float64(len(unknown)))
        s.log.Warn().Strs("projects", unknown).Msg("projects without throughput rule excluded from efficiency")
    }

    rep := &domain.Report{
        Timeframe:       timeframe,
        GeneratedAt:     time.Now(),
        Issues:          len(items),
        RowsDropped:     dropped,
        Summary:         report.Summarize(rows, s.primaries),
        PerDay:          report.PerDay(rows),
        Statuses:        report.StatusCounts(rows),
        Efficiency:      eff,
        UnknownProjects: unknown,
    }

    if runID != "" {
        if err := s.repo.BulkInsertRows(ctx, runID, rows); err != nil {
            s.log.Error().Err(err).Msg("persist rows failed")
        }
        _ = s.repo.FinishRun(ctx, runID, domain.RunInfo{
            Timeframe: timeframe, Issues: len(items), RowsKept: len(rows),
            RowsDropped: dropped, Unknown: unknown, OK: true,
        })
    }
    metrics.PipelineRuns.WithLabelValues("ok").Inc()
    s.log.Info().Str("timeframe", timeframe).Int("issues", len(items)).Int("rows", len(rows)).Msg("report built")
    return rep, nil
}

func (s *Service) fetch(ctx context.Context, timeframe string) ([]domain.WorkItem, error) {
    fields := s.searchFields()
    g, gctx := errgroup.WithContext(ctx)
    workers := s.cfg.WorkersJira
    if workers <= 0 { workers = 4 }
    g.SetLimit(workers)
    var mu sync.Mutex
    var items []domain.WorkItem
    for _, p := range s.cfg.JiraProjects {
        p := p
        g.Go(func() error {
            got, err := s.jira.SearchAll(gctx, weekJQL([]string{p}, s.cfg.JiraStatuses, timeframe), fields)
            if err != nil { return err }
            mu.Lock()
            items = append(items, got...)
            mu.Unlock()
            return nil
        })
    }
    if err := g.Wait(); err != nil { return nil, err }
    return items, nil
}

func (s *Service) GetLastRun(ctx context.Context) (any, error) {
    if s.repo == nil { return nil, nil }
    return s.repo.GetLastRun(ctx)
}

// RunWeeklyDigest builds the current week's report and delivers it to the
// configured chats, with an optional LLM narrative on top.
func (s *Service) RunWeeklyDigest(ctx context.Context) error {
    s.log.Info().Msg("WeeklyDigest: start")
    rep, err := s.BuildReport(ctx, TimeframeThisWeek)
    if err != nil {
        s.log.Error().Err(err).Msg("WeeklyDigest: report failed")
        return err
    }
    digest := renderDigest(rep)
    if s.llm != nil && strings.TrimSpace(s.cfg.OpenAIKey) != "" && rep.Issues > 0 {
        payload := map[string]any{"summary": rep.Summary, "per_day": rep.PerDay, "efficiency": rep.Efficiency}
        if narrative, err := s.llm.Summarize(ctx, payload); err == nil && narrative != "" {
            digest += "\n" + escapeMarkdownV2(narrative)
        } else if err != nil {
            s.log.Error().Err(err).Msg("WeeklyDigest: summarize failed")
        }
    }
    for _, chat := range s.cfg.TelegramChatIDs {
        for _, part := range chunkText(digest, 3800) {
            if err := s.tg.SendMarkdownV2(ctx, chat, part); err != nil {
                s.log.Error().Err(err).Int64("chat", chat).Msg("telegram send failed")
            }
        }
    }
    s.log.Info().Msg("WeeklyDigest: done")
    return nil
}

func escapeMarkdownV2(s string) string {
    repl := []string{"_","\\_","*","\\*","[","\\[","]","\\]","(","\\(",")","\\)","~","\\~","`","\\`",">","\\>","#","\\#","+","\\+","-","\\-","=","\\=","|","\\|","{","\\{","}","\\}",".","\\.","!","\\!"}
    for i := 0; i < len(repl); i += 2 { s = strings.ReplaceAll(s, repl[i], repl[i+1]) }
    return s
}

// renderDigest builds the MarkdownV2 weekly summary
func renderDigest(rep *domain.Report) string {
    b := &strings.Builder{}
    fmt.Fprintf(b, "*Focus Pulse*\n")
    fmt.Fprintf(b, "Weekly workload \\(%s\\)\n\n", escapeMarkdownV2(rep.Timeframe))
    if rep.Issues == 0 {
        fmt.Fprintf(b, "No issues found for the selected week\\.\n")
        return b.String()
    }
    for _, row := range rep.Summary.Rows {
        parts := make([]string, 0, len(rep.Summary.Columns))
        for _, c := range rep.Summary.Columns {
            parts = append(parts, fmt.Sprintf("%s %d", escapeMarkdownV2(c), row.Counts[c]))
        }
        fmt.Fprintf(b, "*%s*: %s, total %d, switch days %d\n",
            escapeMarkdownV2(row.Contributor), strings.Join(parts, ", "), row.Total, row.ContextSwitchDays)
    }
    if len(rep.Efficiency) > 0 {
        fmt.Fprintf(b, "\n*Efficiency:*\n")
        for _, e := range rep.Efficiency {
            fmt.Fprintf(b, "%s / %s: %s of %s pts \\(%s%%\\)\n",
                escapeMarkdownV2(e.Contributor), escapeMarkdownV2(e.Project),
                escapeMarkdownV2(trimFloat(e.Completed)), escapeMarkdownV2(trimFloat(e.Expected)),
                escapeMarkdownV2(fmt.Sprintf("%.2f", e.Percent)))
        }
    }
    if len(rep.UnknownProjects) > 0 {
        fmt.Fprintf(b, "\nNo throughput rule for: %s\n", escapeMarkdownV2(strings.Join(rep.UnknownProjects, ", ")))
    }
    if rep.RowsDropped > 0 {
        fmt.Fprintf(b, "%d issues skipped for bad timestamps\n", rep.RowsDropped)
    }
    return b.String()
}

func trimFloat(f float64) string {
    s := fmt.Sprintf("%.2f", f)
    s = strings.TrimRight(s, "0")
    return strings.TrimRight(s, ".")
}

// chunkText splits text into chunks of up to max runes, attempting to break on line boundaries.
func chunkText(s string, max int) []string {
    if max <= 0 { return []string{s} }
    var chunks []string
    lines := strings.Split(s, "\n")
    cur := ""
    curlen := 0
    for _, ln := range lines {
        rl := len([]rune(ln))
        if rl > max {
            if curlen > 0 { chunks = append(chunks, cur); cur = ""; curlen = 0 }
            r := []rune(ln)
            for i := 0; i < rl; i += max {
                j := i + max
                if j > rl { j = rl }
                chunks = append(chunks, string(r[i:j]))
            }
            continue
        }
        extra := rl
        if curlen > 0 { extra += 1 }
        if curlen+extra > max {
            chunks = append(chunks, cur)
            cur = ln
            curlen = rl
        } else {
            if curlen == 0 { cur = ln; curlen = rl } else { cur += "\n" + ln; curlen += extra }
        }
    }
    if curlen > 0 { chunks = append(chunks, cur) }
    if len(chunks) == 0 { chunks = []string{""} }
    return chunks
}
