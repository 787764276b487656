package flagged

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore is a Store backed by a flagged_accounts table.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS flagged_accounts (
//	    account_id TEXT PRIMARY KEY,
//	    flagged    BOOLEAN NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore creates a PostgresStore on the given pool.
func NewPostgresStore(db *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// Migrate creates the backing table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS flagged_accounts (
		    account_id TEXT PRIMARY KEY,
		    flagged    BOOLEAN NOT NULL,
		    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

// IsFlagged implements Index. Accounts with no row are not flagged.
func (p *PostgresStore) IsFlagged(ctx context.Context, accountID string) (bool, error) {
	var f bool
	err := p.db.QueryRow(ctx,
		`SELECT flagged FROM flagged_accounts WHERE account_id = $1`, accountID).Scan(&f)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return f, nil
}

// SetFlagged implements Store.
func (p *PostgresStore) SetFlagged(ctx context.Context, accountID string, flagged bool) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO flagged_accounts (account_id, flagged, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (account_id) DO UPDATE SET flagged = $2, updated_at = now()`,
		accountID, flagged)
	return err
}

// Remove implements Store.
func (p *PostgresStore) Remove(ctx context.Context, accountID string) error {
	tag, err := p.db.Exec(ctx,
		`DELETE FROM flagged_accounts WHERE account_id = $1`, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List implements Store.
func (p *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx,
		`SELECT account_id FROM flagged_accounts WHERE flagged ORDER BY account_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
