package reddit

import (
	"errors"
	"fmt"
)

// The platform's submission API fails in a small number of ways worth
// distinguishing; everything else surfaces as a generic APIError. Callers
// match with errors.Is against these sentinels.
var (
	ErrRateLimited    = errors.New("platform rate limit hit")
	ErrNotAllowed     = errors.New("posting not allowed in this community")
	ErrEmptyContent   = errors.New("submission content is empty")
	ErrContentTooLong = errors.New("submission content is too long")
)

// APIError is an error response from the platform API, keyed by the
// platform's own error code string.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform API error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("platform API error %s", e.Code)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "RATELIMIT", "QUOTA_FILLED":
		return ErrRateLimited
	case "SUBREDDIT_NOTALLOWED", "SUBREDDIT_NOEXIST", "USER_BLOCKED":
		return ErrNotAllowed
	case "NO_TEXT", "NO_URL", "NO_SELFS":
		return ErrEmptyContent
	case "TOO_LONG":
		return ErrContentTooLong
	}
	return nil
}
