package jobs

import (
    "context"
    "time"

    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"

    "github.com/example/focus-pulse/internal/config"
    "github.com/example/focus-pulse/internal/repo"
    "github.com/example/focus-pulse/internal/services"
)

// digestLockKey serializes the weekly digest across replicas via pg advisory lock.
const digestLockKey int64 = 927541

type Cron struct {
    c    *cron.Cron
    cfg  config.Config
    log  zerolog.Logger
    svc  *services.Service
    repo *repo.Repository
}

func New(cfg config.Config, log zerolog.Logger, svc *services.Service, r *repo.Repository) *Cron {
    loc := time.Local
    return &Cron{
        c:    cron.New(cron.WithLocation(loc)),
        cfg:  cfg,
        log:  log,
        svc:  svc,
        repo: r,
    }
}

func (j *Cron) Start() error {
    if j.cfg.DigestCron == "" {
        j.log.Info().Msg("cron: digest schedule not set, skipping")
        return nil
    }
    if _, err := j.c.AddFunc(j.cfg.DigestCron, j.runDigest); err != nil {
        return err
    }
    j.c.Start()
    j.log.Info().Str("spec", j.cfg.DigestCron).Msg("cron: digest scheduled")
    return nil
}

func (j *Cron) Stop() {
    ctx := j.c.Stop()
    select {
    case <-ctx.Done():
    case <-time.After(30 * time.Second):
        j.log.Warn().Msg("cron: stop timed out waiting for running jobs")
    }
}

func (j *Cron) runDigest() {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
    defer cancel()

    if j.repo != nil {
        ok, err := j.repo.TryAdvisoryLock(ctx, digestLockKey)
        if err != nil {
            j.log.Error().Err(err).Msg("cron: advisory lock failed")
            return
        }
        if !ok {
            j.log.Info().Msg("cron: digest already running elsewhere, skipping")
            return
        }
        defer func() {
            if err := j.repo.AdvisoryUnlock(ctx, digestLockKey); err != nil {
                j.log.Error().Err(err).Msg("cron: advisory unlock failed")
            }
        }()
    }

    if err := j.svc.RunWeeklyDigest(ctx); err != nil {
        j.log.Error().Err(err).Msg("cron: weekly digest failed")
    }
}
