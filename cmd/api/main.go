package main

import (
    "context"
    "errors"
    "net/http"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"

    "github.com/example/focus-pulse/internal/adapters/jira"
    "github.com/example/focus-pulse/internal/adapters/openai"
    "github.com/example/focus-pulse/internal/adapters/telegram"
    "github.com/example/focus-pulse/internal/config"
    httpx "github.com/example/focus-pulse/internal/http"
    "github.com/example/focus-pulse/internal/jobs"
    "github.com/example/focus-pulse/internal/leave"
    "github.com/example/focus-pulse/internal/logger"
    "github.com/example/focus-pulse/internal/repo"
    "github.com/example/focus-pulse/internal/services"
)

func main() {
    _ = godotenv.Load()
    cfg := config.Load()
    log := logger.New(cfg)

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    db := repo.MustOpen(ctx, cfg, log)
    defer db.Close()
    repository := repo.NewRepository(db, log)

    jiraClient := jira.NewClient(cfg, log)
    llm := openai.NewClient(cfg, log)
    tg := telegram.NewClient(cfg, log)
    book := leave.NewBook(cfg.PeriodDays)

    svc := services.New(cfg, log, repository, jiraClient, llm, tg, book)

    cronJobs := jobs.New(cfg, log, svc, repository)
    if err := cronJobs.Start(); err != nil {
        log.Fatal().Err(err).Msg("cron start failed")
    }

    srv := &http.Server{
        Addr:              cfg.HTTPAddr,
        Handler:           httpx.NewRouter(cfg, log, svc, book),
        ReadHeaderTimeout: 5 * time.Second,
    }

    go func() {
        log.Info().Str("addr", cfg.HTTPAddr).Msg("http: listening")
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal().Err(err).Msg("http server failed")
        }
    }()

    <-ctx.Done()
    log.Info().Msg("shutting down")

    cronJobs.Stop()
    shCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
    defer cancel()
    if err := srv.Shutdown(shCtx); err != nil {
        log.Error().Err(err).Msg("http shutdown failed")
    }
    log.Info().Msg("bye")
}
