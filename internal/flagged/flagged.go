// Package flagged provides the flagged-account index: a boolean lookup of
// accounts previously flagged by moderation. The scoring core only reads the
// index; mutation happens through the Store interface used by the moderator
// surface.
package flagged

import "context"

// Index is the read-only view consumed by the suspicion scorer.
type Index interface {
	IsFlagged(ctx context.Context, accountID string) (bool, error)
}

// Store is the full index, including mutation for the moderator surface.
type Store interface {
	Index
	SetFlagged(ctx context.Context, accountID string, flagged bool) error
	Remove(ctx context.Context, accountID string) error
	List(ctx context.Context) ([]string, error)
}
