// Package reportlog provides the append-only log of completed moderation
// reports. The conversation router appends one entry per finished report;
// moderators read the log through the admin surface.
package reportlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one completed report.
type Entry struct {
	ID              uuid.UUID `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Reporter        string    `json:"reporter"`
	Reportee        string    `json:"reportee"`
	Category        string    `json:"category"`
	FakeAccountType string    `json:"fake_account_type,omitempty"`
	Behaviors       []string  `json:"behaviors,omitempty"`
	BlockRequested  bool      `json:"block_requested"`
	Resolution      string    `json:"resolution"`
}

// Log is the append-only report log. Durability is last-write-wins; the
// core makes no stronger assumption about the storage medium.
type Log interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context, limit, offset int) ([]*Entry, error)
}
