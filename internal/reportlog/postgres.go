package reportlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresLog is a Log backed by a moderation_reports table.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS moderation_reports (
//	    id                UUID PRIMARY KEY,
//	    created_at        TIMESTAMPTZ NOT NULL,
//	    reporter          TEXT NOT NULL,
//	    reportee          TEXT NOT NULL,
//	    category          TEXT NOT NULL,
//	    fake_account_type TEXT NOT NULL DEFAULT '',
//	    behaviors         TEXT[] NOT NULL DEFAULT '{}',
//	    block_requested   BOOLEAN NOT NULL,
//	    resolution        TEXT NOT NULL
//	);
type PostgresLog struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresLog creates a PostgresLog on the given pool.
func NewPostgresLog(db *pgxpool.Pool, logger *zap.Logger) *PostgresLog {
	return &PostgresLog{db: db, logger: logger}
}

// Migrate creates the backing table if it does not exist.
func (l *PostgresLog) Migrate(ctx context.Context) error {
	_, err := l.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS moderation_reports (
		    id                UUID PRIMARY KEY,
		    created_at        TIMESTAMPTZ NOT NULL,
		    reporter          TEXT NOT NULL,
		    reportee          TEXT NOT NULL,
		    category          TEXT NOT NULL,
		    fake_account_type TEXT NOT NULL DEFAULT '',
		    behaviors         TEXT[] NOT NULL DEFAULT '{}',
		    block_requested   BOOLEAN NOT NULL,
		    resolution        TEXT NOT NULL
		)`)
	return err
}

// Append implements Log.
func (l *PostgresLog) Append(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()

	behaviors := e.Behaviors
	if behaviors == nil {
		behaviors = []string{}
	}

	_, err := l.db.Exec(ctx, `
		INSERT INTO moderation_reports
		    (id, created_at, reporter, reportee, category, fake_account_type, behaviors, block_requested, resolution)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.CreatedAt, e.Reporter, e.Reportee, e.Category,
		e.FakeAccountType, behaviors, e.BlockRequested, e.Resolution,
	)
	return err
}

// List implements Log. Entries are returned newest first.
func (l *PostgresLog) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.Query(ctx, `
		SELECT id, created_at, reporter, reportee, category, fake_account_type, behaviors, block_requested, resolution
		FROM moderation_reports
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.CreatedAt, &e.Reporter, &e.Reportee, &e.Category,
			&e.FakeAccountType, &e.Behaviors, &e.BlockRequested, &e.Resolution,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
