package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/reddit"
	"github.com/postdeck/gatehouse/shadowban"
)

// The primary interfaces exposed to rules are the various "Context" structs
// (BaseContext, AccountContext, PostContext), plus the un-official interface
// of the public fields on those structs.

// Base type for the context of a permission check. Rules read state through
// this type and record their outcomes ("effects") on it.
type BaseContext struct {
	// Actual golang "context.Context", if needed for timeouts etc
	Ctx context.Context
	// Any errors encountered while processing the check (eg, network errors
	// hitting external services). Calls to accessor methods which get
	// errors rolled up here will return zero values.
	Err error
	// slog logger handle, with check-specific structured fields attached
	Logger *slog.Logger

	engine  *Engine
	effects *Effects
}

// Both a check context, and an account in whose name the check runs.
type AccountContext struct {
	BaseContext

	Account AccountMeta
	// Fresh listing-diff report, populated only for sweep-driven evaluations
	// (see Engine.ProcessAccount). Nil during posting checks.
	Shadowban *shadowban.Report
}

// Represents the rules of the community a post is aimed at, as resolved by
// the community directory.
type CommunityMeta struct {
	// Normalized community name (lowercase, no "r/" prefix)
	Name string
	// Structured rule profile, or nil when the directory has no record
	Profile *communities.Profile
	// Flat legacy rule row, or nil
	Legacy *communities.LegacyRuleSet
}

// HasRules indicates whether the directory knew this community at all.
func (cm *CommunityMeta) HasRules() bool {
	return cm.Profile != nil || cm.Legacy != nil
}

// VerificationRequired reports whether the community demands a verified
// account. Only current-generation profiles carry this; the legacy schema
// never had it.
func (cm *CommunityMeta) VerificationRequired() bool {
	return cm.Profile != nil && cm.Profile.VerificationRequired
}

// PromotionPolicy resolves the promotion stance. Legacy rows only know their
// link policy, which maps onto the nearest promotion stance when no profile
// exists.
func (cm *CommunityMeta) PromotionPolicy() communities.PromotionPolicy {
	if cm.Profile != nil && cm.Profile.PromotionPolicy != "" && cm.Profile.PromotionPolicy != communities.PromotionUnknown {
		return cm.Profile.PromotionPolicy
	}
	if cm.Profile == nil && cm.Legacy != nil {
		switch cm.Legacy.LinkPolicy {
		case communities.LinkPolicyNone:
			return communities.PromotionDisallowed
		case communities.LinkPolicyOneLink:
			return communities.PromotionLimited
		case communities.LinkPolicyOK:
			return communities.PromotionAllowed
		}
	}
	return communities.PromotionUnknown
}

// MinKarma returns the community's karma floor, or nil when none is set.
func (cm *CommunityMeta) MinKarma() *int {
	if cm.Profile == nil {
		return nil
	}
	return cm.Profile.MinKarma
}

// MinAccountAgeDays returns the community's account-age floor in days, or nil.
func (cm *CommunityMeta) MinAccountAgeDays() *int {
	if cm.Profile == nil {
		return nil
	}
	return cm.Profile.MinAccountAgeDays
}

// NSFWRequired reports whether the community mandates the NSFW marker.
func (cm *CommunityMeta) NSFWRequired() bool {
	return cm.Profile != nil && cm.Profile.NSFWRequired
}

// The post the account intends to submit. Only content attributes live here;
// submission itself happens elsewhere.
type PostMeta struct {
	Title string
	Body  string
	URL   string
	// True when the post carries an outbound link. Callers may set it for
	// content kinds that are inherently links; context construction also
	// derives it from the URL field and the body text.
	HasLink bool
	NSFW    bool
	Kind    reddit.PostKind
	// When the account intends to post. Zero value means "now".
	IntendedAt time.Time
}

// Represents a permission check for a single intended post: the account, the
// target community's rules, and the post content together.
type PostContext struct {
	AccountContext

	Community CommunityMeta
	Post      PostMeta
}

// Checks whether any of the rules so far have recorded a blocking reason.
func (c *BaseContext) Blocked() bool {
	return len(c.effects.Reasons) > 0
}

// fetch from cache if available; if unavailable, fetch and insert into cache
func (c *BaseContext) GetCachedString(name, key string, fetch func() (string, error)) (string, error) {
	existing, err := c.engine.Cache.Get(c.Ctx, name, key)
	if err != nil || existing != "" {
		return existing, err
	}
	val, err := fetch()
	if err != nil {
		return "", err
	}
	return val, c.engine.Cache.Set(c.Ctx, name, key, val)
}

// Returns count of the specified counter in the given time period. Any errors
// are handled in the engine, not by the rule itself; values returned are
// best-effort.
func (c *BaseContext) GetCount(name, val, period string) int {
	out, err := c.engine.Counters.GetCount(c.Ctx, name, val, period)
	if err != nil {
		c.Err = err
		return 0
	}
	return out
}

// Returns a count of unique values in the given distinct-count bucket and
// time period.
func (c *BaseContext) GetCountDistinct(name, bucket, period string) int {
	out, err := c.engine.Counters.GetCountDistinct(c.Ctx, name, bucket, period)
	if err != nil {
		c.Err = err
		return 0
	}
	return out
}

// Checks whether the given value is a member of the named set. Returns false
// if the set does not exist or an error was encountered.
func (c *BaseContext) InSet(name, val string) bool {
	out, err := c.engine.Sets.InSet(c.Ctx, name, val)
	if err != nil {
		c.Err = err
		return false
	}
	return out
}

// Checks whether the named set was configured at all. Rules gated on
// deployment data use this to stand down when the set was never loaded.
func (c *BaseContext) HasSet(name string) bool {
	out, err := c.engine.Sets.HasSet(c.Ctx, name)
	if err != nil {
		c.Err = err
		return false
	}
	return out
}

// Records a blocking reason. The first reason recorded stops further rule
// evaluation; rules should return promptly after calling this.
func (c *BaseContext) Deny(reason string) {
	c.effects.Deny(reason)
}

// Records an advisory message that will surface to the user without blocking
// the post.
func (c *BaseContext) Warn(msg string) {
	c.effects.Warn(msg)
}

// Records a time before which posting is known to be blocked. When recorded
// multiple times, the earliest wins.
func (c *BaseContext) SetNextAllowedPost(t time.Time) {
	c.effects.SetNextAllowedPost(t)
}

// Enqueues the named counter to be incremented at the end of all rule
// processing. Will automatically increment for all time periods.
func (c *BaseContext) Increment(name, val string) {
	c.effects.CounterIncrements = append(c.effects.CounterIncrements, CounterRef{Name: name, Val: val})
}

// Enqueues the named counter to be incremented at the end of all rule
// processing. Will only increment the indicated time period bucket.
func (c *BaseContext) IncrementPeriod(name, val string, period string) {
	c.effects.CounterIncrements = append(c.effects.CounterIncrements, CounterRef{Name: name, Val: val, Period: &period})
}

// Enqueues the named distinct-count value to be recorded at the end of all
// rule processing.
func (c *BaseContext) IncrementDistinct(name, bucket, val string) {
	c.effects.CounterDistinctIncrements = append(c.effects.CounterDistinctIncrements, CounterDistinctRef{Name: name, Bucket: bucket, Val: val})
}

// Enqueues the provided flag to be persisted against the account at the end
// of rule processing.
func (c *AccountContext) AddAccountFlag(val string) {
	c.effects.AccountFlags = append(c.effects.AccountFlags, val)
}

// Enqueues the provided flag to be cleared from the account at the end of
// rule processing.
func (c *AccountContext) RemoveAccountFlag(val string) {
	c.effects.RemoveAccountFlags = append(c.effects.RemoveAccountFlags, val)
}

// When returns the moment the permission check is evaluated against: the
// post's intended time if set, else now.
func (c *PostContext) When() time.Time {
	if !c.Post.IntendedAt.IsZero() {
		return c.Post.IntendedAt
	}
	return time.Now()
}

func NewAccountContext(ctx context.Context, eng *Engine, meta AccountMeta) AccountContext {
	return AccountContext{
		BaseContext: BaseContext{
			Ctx:     ctx,
			Logger:  eng.Logger.With("user", meta.Username),
			engine:  eng,
			effects: &Effects{},
		},
		Account: meta,
	}
}

func NewPostContext(ctx context.Context, eng *Engine, meta AccountMeta, community CommunityMeta, post PostMeta) PostContext {
	ac := NewAccountContext(ctx, eng, meta)
	ac.Logger = ac.Logger.With("community", community.Name)
	post.HasLink = post.HasLink || post.URL != "" || containsLink(post.Body)
	return PostContext{
		AccountContext: ac,
		Community:      community,
		Post:           post,
	}
}
