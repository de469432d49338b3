package repo

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"

    "github.com/example/focus-pulse/internal/config"
    "github.com/example/focus-pulse/internal/domain"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

// StartRun opens an audit row for one pipeline run and returns its id.
func (r *Repository) StartRun(ctx context.Context, timeframe string) (string, error) {
    id := uuid.NewString()
    const q = `INSERT INTO report_runs(id, timeframe, started_at) VALUES($1,$2,now())`
    if _, err := r.db.Pool.Exec(ctx, q, id, timeframe); err != nil { return "", err }
    return id, nil
}

func (r *Repository) FinishRun(ctx context.Context, id string, run domain.RunInfo) error {
    const q = `UPDATE report_runs SET finished_at=now(), issues=$2, rows_kept=$3, rows_dropped=$4,
        unknown_projects=$5, ok=$6, error=$7 WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, run.Issues, run.RowsKept, run.RowsDropped, run.Unknown, run.OK, run.Error)
    return err
}

// BulkInsertRows persists the normalized snapshot of one run.
func (r *Repository) BulkInsertRows(ctx context.Context, runID string, rows []domain.Row) error {
    if len(rows) == 0 { return nil }
    batch := &pgx.Batch{}
    const q = `INSERT INTO report_rows(run_id, contributor, ticket, category, status, day, project, points)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (run_id, ticket) DO NOTHING`
    for _, x := range rows {
        batch.Queue(q, runID, x.Contributor, x.Ticket, x.Category, x.Status, x.Day, x.Project, x.Points)
    }
    br := r.db.Pool.SendBatch(ctx, batch)
    defer br.Close()
    for range rows { if _, err := br.Exec(); err != nil { return err } }
    return nil
}

func (r *Repository) GetLastRun(ctx context.Context) (*domain.RunInfo, error) {
    const q = `SELECT id, timeframe, started_at, finished_at, COALESCE(issues,0), COALESCE(rows_kept,0),
        COALESCE(rows_dropped,0), COALESCE(unknown_projects,'{}'), COALESCE(ok,false), COALESCE(error,'')
        FROM report_runs ORDER BY started_at DESC LIMIT 1`
    var out domain.RunInfo
    err := r.db.Pool.QueryRow(ctx, q).Scan(&out.ID, &out.Timeframe, &out.StartedAt, &out.FinishedAt,
        &out.Issues, &out.RowsKept, &out.RowsDropped, &out.Unknown, &out.OK, &out.Error)
    if errors.Is(err, pgx.ErrNoRows) { return nil, nil }
    if err != nil { return nil, err }
    return &out, nil
}
