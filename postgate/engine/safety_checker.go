package engine

import (
	"context"
	"time"
)

// What the safety collaborator found for one prospective post: duplicate
// content issues plus its own independent rate-limit view.
type SafetyFinding struct {
	CanPost bool
	// Blocking findings, merged into the decision's reasons
	Issues []string
	// Advisory findings, merged into the decision's warnings
	Warnings []string
	// The collaborator's own count of posts in its rate window. Merged with
	// the tracker's counts by taking the maximum.
	PostsInWindow int
	// When the collaborator's rate window frees up, if it is blocking
	NextAvailable *time.Time
}

// External safety signal collaborator. The engine consults it during checks
// and notifies it after real submissions; everything else about it is opaque.
type SafetyChecker interface {
	PerformSafetyCheck(ctx context.Context, userID, community, title, body string) (*SafetyFinding, error)
	// RecordPost notes a successful submission for rate accounting.
	RecordPost(ctx context.Context, userID, community, title, body string) error
	// RecordForDuplicateDetection notes submitted content so later
	// near-identical posts can be flagged.
	RecordForDuplicateDetection(ctx context.Context, userID, title, body string) error
}
