package engine

import (
	"time"
)

// information about the posting account, always pre-populated and relevant to many rules
type AccountMeta struct {
	Username string
	// combined platform reputation score. unknown karma is zero, which is
	// the conservative direction for threshold checks
	Karma    int
	Verified bool
	// nil when the platform didn't report a creation time
	AccountAgeDays *int
	CreatedAt      *time.Time
	// moderation flags previously recorded for this account (eg by the
	// shadowban sweeper)
	AccountFlags []string
}

// Eligibility is the external resolver's answer for one account: which
// communities the account qualifies for at all, based on karma, age, and
// verification bands.
type Eligibility struct {
	Karma          int
	AccountAgeDays *int
	Verified       bool
	// nil means "no qualification data"; an empty (non-nil) list means the
	// account qualifies nowhere
	QualifiedCommunities []string
}

// Qualifies reports whether the account clears the resolver's bands for the
// named community. A nil QualifiedCommunities list answers yes.
func (e *Eligibility) Qualifies(community string) bool {
	if e.QualifiedCommunities == nil {
		return true
	}
	for _, c := range e.QualifiedCommunities {
		if c == community {
			return true
		}
	}
	return false
}
