// Package safety is the in-process platform safety collaborator: it tracks
// content fingerprints to catch duplicate submissions, and watches per-user
// submission bursts that are faster than a person typing.
//
// The engine consults it on every permission check and notifies it after
// every accepted submission. Checks are pure reads; all state changes happen
// on the record path.
package safety

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/RussellLuo/slidingwindow"
	"github.com/spaolacci/murmur3"

	"github.com/postdeck/gatehouse/postgate/countstore"
	"github.com/postdeck/gatehouse/postgate/engine"
)

const (
	// repeats of one (user, community, content) triple
	counterContentCommunity = "safety-content-community"
	// distinct communities one (user, content) pair has landed in
	counterContentSpread = "safety-content-spread"
	// total submissions of one (user, content) pair, regardless of target
	counterContentSeen = "safety-content-seen"
	// burst limiter trips per user
	counterRapidFire = "safety-rapid-fire"
	// the collaborator's own tally of submissions per user
	counterPosts = "safety-posts"
)

const (
	// submissions allowed inside one burst window before the rapid-fire
	// marker trips
	DefaultBurstLimit  = 3
	DefaultBurstPeriod = 10 * time.Minute

	// identical content in this many distinct communities in a day reads as
	// spray-posting
	crossPostThreshold = 2
	// identical content submitted this many times in a day, anywhere, reads
	// as churn (delete-and-repost, bot retries)
	contentRepeatThreshold = 3
)

// Checker watches duplicate content and submission bursts. Fingerprint state
// lives in the counter store and survives restarts; the burst limiters are
// in-process sliding windows and do not.
type Checker struct {
	counters countstore.CountStore
	logger   *slog.Logger

	burstLimit  int64
	burstPeriod time.Duration

	limitMtx sync.RWMutex
	limiters map[string]*slidingwindow.Limiter
}

var _ engine.SafetyChecker = (*Checker)(nil)

func NewChecker(counters countstore.CountStore, logger *slog.Logger) *Checker {
	return &Checker{
		counters:    counters,
		logger:      logger.With("component", "safety"),
		burstLimit:  DefaultBurstLimit,
		burstPeriod: DefaultBurstPeriod,
		limiters:    make(map[string]*slidingwindow.Limiter),
	}
}

// returns a fast, compact hash of the submission content
//
// current implementation uses murmur3, default seed, and hex encoding
func ContentHash(title, body string) string {
	val := murmur3.Sum64([]byte(title + "\n" + body))
	return fmt.Sprintf("%016x", val)
}

// PerformSafetyCheck reports what the collaborator knows about this
// prospective post: blocking issues for same-community duplicates, advisory
// warnings for spray-posting and rapid-fire submission patterns, and its own
// count of the user's posts in the last day.
func (c *Checker) PerformSafetyCheck(ctx context.Context, userID, community, title, body string) (*engine.SafetyFinding, error) {
	hash := ContentHash(title, body)
	var finding engine.SafetyFinding

	sameCommunity, err := c.counters.GetCount(ctx, counterContentCommunity, userID+"/"+community+"/"+hash, countstore.PeriodDay)
	if err != nil {
		return nil, err
	}
	if sameCommunity > 0 {
		finding.Issues = append(finding.Issues, fmt.Sprintf("duplicate post: identical content already submitted to r/%s in the last 24 hours", community))
	}

	spread, err := c.counters.GetCountDistinct(ctx, counterContentSpread, userID+"/"+hash, countstore.PeriodDay)
	if err != nil {
		return nil, err
	}
	if sameCommunity == 0 && spread >= crossPostThreshold {
		finding.Warnings = append(finding.Warnings, fmt.Sprintf("identical content posted to %d communities in the last 24 hours", spread))
	}

	seen, err := c.counters.GetCount(ctx, counterContentSeen, userID+"/"+hash, countstore.PeriodDay)
	if err != nil {
		return nil, err
	}
	if seen >= contentRepeatThreshold {
		finding.Warnings = append(finding.Warnings, fmt.Sprintf("this content has been submitted %d times in the last 24 hours", seen))
	}

	rapid, err := c.counters.GetCount(ctx, counterRapidFire, userID, countstore.PeriodHour)
	if err != nil {
		return nil, err
	}
	if rapid > 0 {
		finding.Warnings = append(finding.Warnings, "unusually rapid posting detected: slow down between submissions")
	}

	posts, err := c.counters.GetCount(ctx, counterPosts, userID, countstore.PeriodDay)
	if err != nil {
		return nil, err
	}
	finding.PostsInWindow = posts

	finding.CanPost = len(finding.Issues) == 0
	if finding.CanPost {
		safetyCheckCount.WithLabelValues("clean").Inc()
	} else {
		safetyCheckCount.WithLabelValues("flagged").Inc()
	}
	return &finding, nil
}

// RecordPost notes one accepted submission: the rate tally, the
// community-scoped content fingerprint, and the burst limiter.
func (c *Checker) RecordPost(ctx context.Context, userID, community, title, body string) error {
	hash := ContentHash(title, body)

	if err := c.counters.Increment(ctx, counterPosts, userID); err != nil {
		return err
	}
	// one counter per unique content hash; a single period keeps the key
	// count down
	if err := c.counters.IncrementPeriod(ctx, counterContentCommunity, userID+"/"+community+"/"+hash, countstore.PeriodDay); err != nil {
		return err
	}
	if err := c.counters.IncrementDistinct(ctx, counterContentSpread, userID+"/"+hash, community); err != nil {
		return err
	}

	if !c.limiterFor(userID).Allow() {
		c.logger.Warn("submission burst limit exceeded", "user", userID, "community", community)
		rapidFireCount.Inc()
		if err := c.counters.IncrementPeriod(ctx, counterRapidFire, userID, countstore.PeriodHour); err != nil {
			return err
		}
	}
	return nil
}

// RecordForDuplicateDetection notes submitted content with no community
// attached, so churned content (deleted and reposted, or submitted through
// another surface) still accumulates against the repeat threshold.
func (c *Checker) RecordForDuplicateDetection(ctx context.Context, userID, title, body string) error {
	hash := ContentHash(title, body)
	return c.counters.IncrementPeriod(ctx, counterContentSeen, userID+"/"+hash, countstore.PeriodDay)
}

func windowFunc() (slidingwindow.Window, slidingwindow.StopFunc) {
	return slidingwindow.NewLocalWindow()
}

func (c *Checker) limiterFor(userID string) *slidingwindow.Limiter {
	c.limitMtx.RLock()
	lim, ok := c.limiters[userID]
	c.limitMtx.RUnlock()
	if ok {
		return lim
	}

	c.limitMtx.Lock()
	defer c.limitMtx.Unlock()
	lim, ok = c.limiters[userID]
	if !ok {
		lim, _ = slidingwindow.NewLimiter(c.burstPeriod, c.burstLimit, windowFunc)
		c.limiters[userID] = lim
	}
	return lim
}
