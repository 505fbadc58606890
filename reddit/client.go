// Package reddit is the boundary to the target platform's API: account
// profile fetches, submission listings (both the authenticated self view and
// the anonymous public view), and post submission.
//
// The two listing views exist as separate methods on purpose. Shadowban
// detection depends on them being fetched independently, over different
// auth paths, so platform-side suppression shows up as a difference
// between them.
package reddit

import (
	"context"
)

type Client interface {
	// AboutUser fetches the platform's profile for an account (karma,
	// verification, account age).
	AboutUser(ctx context.Context, username string) (*UserAbout, error)

	// SelfSubmissions lists the account's most recent submissions as the
	// account itself sees them (authenticated view).
	SelfSubmissions(ctx context.Context, username string, limit int) ([]Submission, error)

	// PublicSubmissions lists the account's most recent submissions as an
	// anonymous visitor sees them.
	PublicSubmissions(ctx context.Context, username string, limit int) ([]Submission, error)

	// Submit creates a post. Errors map onto the package sentinels where
	// the platform reports a known failure class.
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
}
