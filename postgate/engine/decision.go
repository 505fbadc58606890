package engine

import (
	"time"

	"github.com/postdeck/gatehouse/postgate/pacing"
)

// The generic reason attached to fail-closed decisions. Infrastructure
// problems block posting rather than waving it through.
const ReasonUnableToVerify = "unable to verify posting eligibility, try again later"

// The generic reason when the eligibility resolver says the account doesn't
// qualify for the community at all.
const ReasonNotEligible = "account not eligible to post in this community"

// A compact echo of the rules that were in force for the check, for display
// alongside the verdict.
type RuleSummary struct {
	Community            string `json:"community"`
	HasProfile           bool   `json:"hasProfile"`
	UsedLegacyRules      bool   `json:"usedLegacyRules"`
	VerificationRequired bool   `json:"verificationRequired"`
	PromotionPolicy      string `json:"promotionPolicy"`
	CooldownMinutes      *int   `json:"cooldownMinutes,omitempty"`
	MaxPostsPer24h       int    `json:"maxPostsPer24h"`
}

// The complete answer to "can this account post to this community right now".
// Computed fresh on every check and never persisted. Reasons is non-empty
// exactly when CanPost is false; Warnings never block.
type PostingDecision struct {
	CanPost         bool         `json:"canPost"`
	Reasons         []string     `json:"reasons"`
	Warnings        []string     `json:"warnings"`
	NextAllowedPost *time.Time   `json:"nextAllowedPost,omitempty"`
	EvaluatedAt     time.Time    `json:"evaluatedAt"`
	PostsInLast24h  int          `json:"postsInLast24h"`
	MaxPostsPer24h  int          `json:"maxPostsPer24h"`
	RuleSummary     *RuleSummary `json:"ruleSummary,omitempty"`
}

// PrimaryReason returns the first blocking reason, which is what gets shown
// to the user. Empty string when the post is allowed.
func (d *PostingDecision) PrimaryReason() string {
	if len(d.Reasons) == 0 {
		return ""
	}
	return d.Reasons[0]
}

// buildDecision converts accumulated effects plus the pacing assessment into
// the final verdict, enforcing the reasons/canPost invariant.
func buildDecision(c *PostContext, assessment *pacing.Assessment, evaluatedAt time.Time) *PostingDecision {
	d := &PostingDecision{
		Reasons:     append([]string{}, c.effects.Reasons...),
		Warnings:    append([]string{}, c.effects.Warnings...),
		EvaluatedAt: evaluatedAt,
		// the default cap applies even when the tracker never ran
		MaxPostsPer24h: pacing.DefaultDailyCap,
	}
	if assessment != nil {
		d.PostsInLast24h = assessment.PostsInLast24h
		d.MaxPostsPer24h = assessment.DailyCap
	}
	d.NextAllowedPost = c.effects.NextAllowedPost
	d.CanPost = len(d.Reasons) == 0
	if d.CanPost {
		// next-allowed only accompanies a time-based block
		d.NextAllowedPost = nil
	}
	d.RuleSummary = summarizeRules(c, d.MaxPostsPer24h)
	return d
}

// failClosedDecision is the conservative verdict returned when the check
// itself could not complete. It renders in the same shape as an ordinary
// rule failure so callers never need a separate error path.
func failClosedDecision(evaluatedAt time.Time) *PostingDecision {
	return &PostingDecision{
		CanPost:        false,
		Reasons:        []string{ReasonUnableToVerify},
		Warnings:       []string{},
		EvaluatedAt:    evaluatedAt,
		MaxPostsPer24h: pacing.DefaultDailyCap,
	}
}

// rejectedDecision is the verdict for input that fails validation before any
// network or store access happens.
func rejectedDecision(reason string, evaluatedAt time.Time) *PostingDecision {
	return &PostingDecision{
		CanPost:        false,
		Reasons:        []string{reason},
		Warnings:       []string{},
		EvaluatedAt:    evaluatedAt,
		MaxPostsPer24h: pacing.DefaultDailyCap,
	}
}

func summarizeRules(c *PostContext, dailyCap int) *RuleSummary {
	out := &RuleSummary{
		Community:            c.Community.Name,
		HasProfile:           c.Community.Profile != nil,
		UsedLegacyRules:      c.Community.Profile == nil && c.Community.Legacy != nil,
		VerificationRequired: c.Community.VerificationRequired(),
		PromotionPolicy:      string(c.Community.PromotionPolicy()),
		MaxPostsPer24h:       dailyCap,
	}
	limits := pacing.LimitsFromRules(c.Community.Profile, c.Community.Legacy)
	if limits.CooldownMinutes != nil && *limits.CooldownMinutes > 0 {
		out.CooldownMinutes = limits.CooldownMinutes
	}
	return out
}
