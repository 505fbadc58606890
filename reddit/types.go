package reddit

import (
	"time"
)

// Submission is one post as returned by the platform's listing endpoints,
// trimmed to the fields the safety engine cares about.
type Submission struct {
	ID        string
	Fullname  string
	Title     string
	Community string
	Author    string
	URL       string
	Permalink string
	SelfText  string
	NSFW      bool
	CreatedAt time.Time
}

// UserAbout is the platform's view of an account, fetched per evaluation and
// never persisted.
type UserAbout struct {
	Username     string
	LinkKarma    int
	CommentKarma int
	TotalKarma   int
	Verified     bool
	CreatedAt    time.Time
}

// Karma returns the account's combined karma. Some API generations return
// total_karma, older ones only the two parts.
func (u *UserAbout) Karma() int {
	if u.TotalKarma > 0 {
		return u.TotalKarma
	}
	return u.LinkKarma + u.CommentKarma
}

// AccountAgeDays returns whole days since account creation, or -1 when the
// creation time is unknown.
func (u *UserAbout) AccountAgeDays(now time.Time) int {
	if u.CreatedAt.IsZero() {
		return -1
	}
	return int(now.Sub(u.CreatedAt).Hours() / 24)
}

type PostKind string

const (
	PostKindSelf    PostKind = "self"
	PostKindLink    PostKind = "link"
	PostKindImage   PostKind = "image"
	PostKindGallery PostKind = "gallery"
	PostKindVideo   PostKind = "video"
)

type SubmitRequest struct {
	Community string
	Title     string
	Kind      PostKind
	Body      string
	URL       string
	NSFW      bool
}

type SubmitResult struct {
	ID        string
	Fullname  string
	PermaLink string
}
