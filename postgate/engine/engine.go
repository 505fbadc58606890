package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/cachestore"
	"github.com/postdeck/gatehouse/postgate/countstore"
	"github.com/postdeck/gatehouse/postgate/flagstore"
	"github.com/postdeck/gatehouse/postgate/histstore"
	"github.com/postdeck/gatehouse/postgate/pacing"
	"github.com/postdeck/gatehouse/postgate/setstore"
	"github.com/postdeck/gatehouse/reddit"
	"github.com/postdeck/gatehouse/shadowban"
)

// runtime for evaluating posting permission checks, tracking posting pace,
// and recording successful submissions.
//
// Logger, Directory, Pacing, History, and the stores must all be non-nil;
// the fields marked optional may be left nil to disable that collaborator.
type Engine struct {
	Logger    *slog.Logger
	Directory communities.Directory
	Rules     RuleSet
	Pacing    *pacing.Tracker
	History   histstore.HistStore
	Counters  countstore.CountStore
	Sets      setstore.SetStore
	Cache     cachestore.CacheStore
	Flags     flagstore.FlagStore
	// platform API client, used to hydrate account metadata (optional;
	// hydration is skipped when nil)
	Client reddit.Client
	// external karma/age/verification qualification bands (optional)
	Eligibility EligibilityResolver
	// duplicate-content and supplementary rate-limit findings (optional)
	Safety SafetyChecker
	// listing-diff detector backing CheckShadowban (optional)
	Shadowban *shadowban.Detector
}

// Resolves which communities an account qualifies for at all, before any
// per-community rules are consulted.
type EligibilityResolver interface {
	ResolveEligibility(ctx context.Context, userID string) (*Eligibility, error)
}

// CheckPost answers whether the account may post to the community right now.
//
// The check is a pure read: no history, counter, or flag writes happen here,
// so callers can probe as often as they like without polluting rate state.
// Record an actual submission with RecordPost afterwards.
//
// Infrastructure failures never escape as errors: they come back as a
// conservative blocked decision, so the return value is always the complete
// answer.
func (eng *Engine) CheckPost(ctx context.Context, userID, community string, post PostMeta) (dec *PostingDecision) {
	evaluatedAt := time.Now()
	outcome := "error"
	defer func() {
		checkDuration.WithLabelValues(outcome).Observe(time.Since(evaluatedAt).Seconds())
		checkCount.WithLabelValues(outcome).Inc()
	}()

	// similar to an HTTP server, we want to recover any panics from rule execution
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("posting check execution exception", "err", r, "user", userID, "community", community)
			dec = failClosedDecision(evaluatedAt)
		}
	}()

	// reject malformed input before any network or store access
	if userID == "" {
		outcome = "rejected"
		return rejectedDecision("missing user identifier", evaluatedAt)
	}
	name, err := communities.NormalizeName(community)
	if err != nil {
		outcome = "rejected"
		return rejectedDecision("invalid community name", evaluatedAt)
	}

	pc, assessment, err := eng.evaluate(ctx, userID, name, post)
	if err != nil {
		eng.Logger.Warn("posting check failed closed", "err", err, "user", userID, "community", name)
		return failClosedDecision(evaluatedAt)
	}

	dec = buildDecision(pc, assessment, evaluatedAt)
	if dec.CanPost {
		outcome = "allowed"
	} else {
		outcome = "blocked"
	}
	eng.canonicalLogLine(pc, dec)
	return dec
}

// evaluate runs the orchestration stages in order: account and community
// hydration, the external eligibility resolver, the predicate rules, the
// safety collaborator, and the pace tracker. A failed eligibility resolution
// short-circuits past everything else. Any error returned here is an
// infrastructure fault which the caller converts to a fail-closed decision.
func (eng *Engine) evaluate(ctx context.Context, userID, name string, post PostMeta) (*PostContext, *pacing.Assessment, error) {
	acct, err := eng.GetAccountMeta(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("hydrating account: %w", err)
	}

	cmeta, err := eng.GetCommunityMeta(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving community rules: %w", err)
	}

	pc := NewPostContext(ctx, eng, *acct, *cmeta, post)

	if eng.Eligibility != nil {
		elig, err := eng.Eligibility.ResolveEligibility(ctx, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving eligibility: %w", err)
		}
		if elig != nil && !elig.Qualifies(name) {
			pc.Deny(ReasonNotEligible)
			return &pc, nil, nil
		}
	}

	if err := eng.Rules.CallPostRules(&pc); err != nil {
		return nil, nil, err
	}
	if pc.Err != nil {
		return nil, nil, pc.Err
	}

	var extraCounts []int
	if eng.Safety != nil {
		finding, err := eng.Safety.PerformSafetyCheck(ctx, userID, name, post.Title, post.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("safety check: %w", err)
		}
		if finding != nil {
			for _, issue := range finding.Issues {
				pc.Deny(issue)
			}
			for _, w := range finding.Warnings {
				pc.Warn(w)
			}
			if finding.NextAvailable != nil {
				pc.SetNextAllowedPost(*finding.NextAvailable)
			}
			if finding.PostsInWindow > 0 {
				extraCounts = append(extraCounts, finding.PostsInWindow)
			}
		}
	}

	now := pc.When()
	limits := pacing.LimitsFromRules(cmeta.Profile, cmeta.Legacy)
	assessment, err := eng.Pacing.Assess(ctx, userID, name, limits, now, extraCounts...)
	if err != nil {
		return nil, nil, fmt.Errorf("assessing posting pace: %w", err)
	}
	applyAssessment(&pc, assessment, now)

	if pc.Err != nil {
		return nil, nil, pc.Err
	}
	return &pc, assessment, nil
}

// applyAssessment translates the tracker's verdict into user-facing reasons
// and warnings on the context.
func applyAssessment(c *PostContext, a *pacing.Assessment, now time.Time) {
	if a == nil {
		return
	}
	if a.CooldownUntil != nil {
		mins := int(a.CooldownRemaining(now) / time.Minute)
		c.Deny(fmt.Sprintf("cooldown active for r/%s: wait %d more minutes", c.Community.Name, mins))
		c.SetNextAllowedPost(*a.CooldownUntil)
	}
	if a.DailyQuotaExceeded {
		c.Deny(fmt.Sprintf("posting limit reached: %d posts per 24 hours", a.DailyCap))
		if a.DailyQuotaFreesAt != nil {
			c.SetNextAllowedPost(*a.DailyQuotaFreesAt)
		}
	}
	if a.WeeklyQuotaExceeded {
		c.Deny(fmt.Sprintf("weekly posting limit reached: %d posts per 7 days", a.WeeklyCap))
		if a.WeeklyQuotaFreesAt != nil {
			c.SetNextAllowedPost(*a.WeeklyQuotaFreesAt)
		}
	}
	if a.ApproachingDailyQuota && !a.DailyQuotaExceeded {
		c.Warn(fmt.Sprintf("approaching posting limit: %d/%d posts in the last 24 hours", a.PostsInLast24h, a.DailyCap))
	}
}

func (eng *Engine) canonicalLogLine(c *PostContext, dec *PostingDecision) {
	c.Logger.Info("canonical-decision-line",
		"canPost", dec.CanPost,
		"reasons", dec.Reasons,
		"warnings", dec.Warnings,
		"postsInLast24h", dec.PostsInLast24h,
		"maxPostsPer24h", dec.MaxPostsPer24h,
	)
}

// CheckShadowban runs the listing-diff shadowban check for the account.
// Failures are data here, not errors: an unusable result comes back as a
// report with its Error field populated.
func (eng *Engine) CheckShadowban(ctx context.Context, username string) *shadowban.Report {
	if eng.Shadowban == nil {
		return &shadowban.Report{
			StatusMessage: "could not determine status: shadowban detection not configured",
			Error:         "detector not configured",
		}
	}
	return eng.Shadowban.Check(ctx, username)
}

// ProcessAccount runs one sweep evaluation of an account: hydrate metadata,
// run the shadowban detector, evaluate the account rules, and persist any
// flag changes and counters they produced. This is the write-capable path
// the periodic sweeper drives; posting checks never come through here.
func (eng *Engine) ProcessAccount(ctx context.Context, username string) error {
	// similar to an HTTP server, we want to recover any panics from rule execution
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("account sweep execution exception", "err", r, "user", username)
		}
	}()

	am, err := eng.GetAccountMeta(ctx, username)
	if err != nil {
		return fmt.Errorf("hydrating account: %w", err)
	}

	ac := NewAccountContext(ctx, eng, *am)
	if eng.Shadowban != nil {
		ac.Shadowban = eng.Shadowban.Check(ctx, username)
	}

	if err := eng.Rules.CallAccountRules(&ac); err != nil {
		return err
	}
	if ac.Err != nil {
		return ac.Err
	}
	if err := eng.persistAccountEffects(&ac); err != nil {
		return err
	}
	if err := eng.persistCounters(ctx, ac.effects); err != nil {
		return err
	}
	return nil
}

func (e *Engine) GetCount(name, val, period string) (int, error) {
	return e.Counters.GetCount(context.TODO(), name, val, period)
}

func (e *Engine) GetCountDistinct(name, bucket, period string) (int, error) {
	return e.Counters.GetCountDistinct(context.TODO(), name, bucket, period)
}

// checks if `val` is an element of set `name`
func (e *Engine) InSet(name, val string) (bool, error) {
	return e.Sets.InSet(context.TODO(), name, val)
}

// purge caches of any existing metadata for the account
func (e *Engine) PurgeAccountCaches(ctx context.Context, userID string) error {
	return e.Cache.Purge(ctx, "acct", userID)
}
