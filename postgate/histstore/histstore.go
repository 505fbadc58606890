// Component for per-community posting history: one record per
// (user, community) pair, holding the timestamp of that user's most recent
// successful post there.
//
// This is deliberately coarse. The pacing tracker only needs "when did this
// user last post to each community" for cooldown and rolling-window math;
// full per-post history is the duplicate-detection collaborator's problem.
// Records are only written when a real submission succeeds, never during a
// permission check.
package histstore

import (
	"context"
	"time"
)

type PostRecord struct {
	UserID     string
	Community  string
	LastPostAt time.Time
}

type HistStore interface {
	// Get returns (nil, nil) when the user has never posted to the community.
	Get(ctx context.Context, userID, community string) (*PostRecord, error)
	// GetRecent returns all of a user's records with LastPostAt >= since,
	// newest first.
	GetRecent(ctx context.Context, userID string, since time.Time) ([]PostRecord, error)
	// Touch creates or updates the (userID, community) record with a new
	// last-post timestamp.
	Touch(ctx context.Context, userID, community string, at time.Time) error
	// ListUsers returns the distinct user IDs with at least one post since
	// the given time. The periodic account sweep uses this to bound its work
	// to accounts that have actually been active.
	ListUsers(ctx context.Context, since time.Time) ([]string, error)
}
