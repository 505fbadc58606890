// Posting pace enforcement: rolling-window post counts, per-community
// cooldowns, and daily/weekly quota state.
//
// The tracker is a pure read path. It combines the coarse per-community
// history (histstore) with the period counters (countstore) and reports
// structured findings; turning those into user-facing reasons is the
// engine's job, and recording posts happens elsewhere.
package pacing

import (
	"context"
	"log/slog"
	"time"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/countstore"
	"github.com/postdeck/gatehouse/postgate/histstore"
)

// DefaultDailyCap applies when neither the community profile nor the legacy
// ruleset configures a daily limit. Kept low on purpose: staying well under
// platform abuse thresholds matters more than squeezing out extra posts.
const DefaultDailyCap = 3

// Counter names the tracker merges into its window counts. The write path
// increments these on every recorded post.
const (
	// total posts per user, val is the username
	CounterUserPosts = "user-posts"
	// posts per (user, community) pair, val is "username/community"
	CounterUserCommunityPosts = "user-community-posts"
)

// Limits are the pace-related knobs for one evaluation, already resolved
// across the profile/legacy fallback chain. nil means not configured;
// non-positive values are treated as not configured.
type Limits struct {
	CooldownMinutes *int
	DailyCap        *int
	WeeklyCap       *int
}

// LimitsFromRules resolves pace limits from a community profile with
// legacy-ruleset fallback. Either argument may be nil.
func LimitsFromRules(profile *communities.Profile, legacy *communities.LegacyRuleSet) Limits {
	var lim Limits
	if profile != nil {
		lim.CooldownMinutes = profile.CooldownMinutes
		lim.DailyCap = profile.DailyLimit
		lim.WeeklyCap = profile.WeeklyLimit
	}
	if legacy != nil {
		if lim.CooldownMinutes == nil {
			lim.CooldownMinutes = legacy.CooldownMinutes
		}
		if lim.DailyCap == nil {
			lim.DailyCap = legacy.DailyLimit
		}
	}
	return lim
}

func (l Limits) cooldown() time.Duration {
	if l.CooldownMinutes == nil || *l.CooldownMinutes <= 0 {
		return 0
	}
	return time.Duration(*l.CooldownMinutes) * time.Minute
}

func (l Limits) effectiveDailyCap() int {
	if l.DailyCap != nil && *l.DailyCap > 0 {
		return *l.DailyCap
	}
	return DefaultDailyCap
}

func (l Limits) weeklyCap() int {
	if l.WeeklyCap != nil && *l.WeeklyCap > 0 {
		return *l.WeeklyCap
	}
	return 0
}

// Assessment is the tracker's verdict for one (user, community) pair at one
// instant. Pointer timestamps are nil when the corresponding restriction is
// not binding.
type Assessment struct {
	PostsInLast24h  int
	PostsInLastWeek int
	DailyCap        int
	WeeklyCap       int

	// Set while a per-community cooldown blocks posting
	CooldownUntil *time.Time

	DailyQuotaExceeded bool
	// When the daily quota will free up (oldest in-window post + 24h);
	// nil when the binding count came from a counter with no timestamps
	DailyQuotaFreesAt *time.Time

	WeeklyQuotaExceeded bool
	WeeklyQuotaFreesAt  *time.Time

	// True at exactly cap-1 posts, for an advisory "approaching limit"
	ApproachingDailyQuota bool
}

// Blocked reports whether any pace restriction forbids posting right now.
func (a *Assessment) Blocked() bool {
	return a.CooldownUntil != nil || a.DailyQuotaExceeded || a.WeeklyQuotaExceeded
}

// NextAllowedPost returns the earliest expiry among the binding time
// restrictions, or nil when nothing blocks (or no expiry is computable).
func (a *Assessment) NextAllowedPost() *time.Time {
	var out *time.Time
	for _, t := range []*time.Time{a.CooldownUntil, a.DailyQuotaFreesAt, a.WeeklyQuotaFreesAt} {
		if t == nil {
			continue
		}
		if out == nil || t.Before(*out) {
			out = t
		}
	}
	return out
}

// CooldownRemaining returns how much cooldown is left at the given instant,
// rounded up to whole minutes for display. While a cooldown is binding this
// never reports less than one minute.
func (a *Assessment) CooldownRemaining(now time.Time) time.Duration {
	if a.CooldownUntil == nil {
		return 0
	}
	rem := a.CooldownUntil.Sub(now)
	if rem <= 0 {
		return 0
	}
	if part := rem % time.Minute; part != 0 {
		rem += time.Minute - part
	}
	return rem
}

// Tracker computes pace assessments. Counts is optional; when present its
// period counters are merged in as additional count candidates, covering
// repeat posts to one community that the coarse history undercounts.
type Tracker struct {
	History histstore.HistStore
	Counts  countstore.CountStore
	Logger  *slog.Logger
}

func NewTracker(history histstore.HistStore, counts countstore.CountStore, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		History: history,
		Counts:  counts,
		Logger:  logger.With("component", "pacing"),
	}
}

// Assess computes the pace verdict for one prospective post.
//
// Post counts are taken as the maximum over every available source: the
// user's history records, the community-scoped history record, the period
// counters, and any extraCounts supplied by the caller (eg a safety
// collaborator's own window count). The sources overlap rather than agree,
// and overcounting is the safe direction.
func (t *Tracker) Assess(ctx context.Context, userID, community string, limits Limits, now time.Time, extraCounts ...int) (*Assessment, error) {
	// one history fetch covers cooldown, daily, and weekly checks
	window := 24 * time.Hour
	if limits.weeklyCap() > 0 {
		window = 7 * 24 * time.Hour
	}
	if cd := limits.cooldown(); cd > window {
		window = cd
	}

	records, err := t.History.GetRecent(ctx, userID, now.Add(-window))
	if err != nil {
		return nil, err
	}

	assessment := &Assessment{
		DailyCap:  limits.effectiveDailyCap(),
		WeeklyCap: limits.weeklyCap(),
	}

	var oldestInDay, oldestInWeek, lastCommunityPost *time.Time
	dayCount := 0
	weekCount := 0
	communityDayCount := 0
	for i := range records {
		rec := &records[i]
		age := now.Sub(rec.LastPostAt)
		if age < 24*time.Hour {
			dayCount++
			if oldestInDay == nil || rec.LastPostAt.Before(*oldestInDay) {
				oldestInDay = &rec.LastPostAt
			}
			if rec.Community == community {
				communityDayCount++
			}
		}
		if age < 7*24*time.Hour {
			weekCount++
			if oldestInWeek == nil || rec.LastPostAt.Before(*oldestInWeek) {
				oldestInWeek = &rec.LastPostAt
			}
		}
		if rec.Community == community {
			if lastCommunityPost == nil || rec.LastPostAt.After(*lastCommunityPost) {
				lastCommunityPost = &rec.LastPostAt
			}
		}
	}

	dayCandidates := append([]int{dayCount, communityDayCount}, extraCounts...)
	weekCandidates := []int{weekCount}
	if t.Counts != nil {
		if c, err := t.Counts.GetCount(ctx, CounterUserPosts, userID, countstore.PeriodDay); err != nil {
			t.Logger.Warn("pace counter fetch failed, using history only", "err", err, "user", userID)
		} else {
			dayCandidates = append(dayCandidates, c)
		}
		if c, err := t.Counts.GetCount(ctx, CounterUserCommunityPosts, userID+"/"+community, countstore.PeriodDay); err == nil {
			dayCandidates = append(dayCandidates, c)
		}
		if limits.weeklyCap() > 0 {
			if c, err := t.Counts.GetCount(ctx, CounterUserPosts, userID, countstore.PeriodWeek); err == nil {
				weekCandidates = append(weekCandidates, c)
			}
		}
	}
	assessment.PostsInLast24h = maxOf(dayCandidates)
	assessment.PostsInLastWeek = maxOf(weekCandidates)

	// cooldown applies per community, against the most recent post there
	if cd := limits.cooldown(); cd > 0 && lastCommunityPost != nil {
		expiry := lastCommunityPost.Add(cd)
		if expiry.After(now) {
			assessment.CooldownUntil = &expiry
		}
	}

	if assessment.PostsInLast24h >= assessment.DailyCap {
		assessment.DailyQuotaExceeded = true
		if oldestInDay != nil {
			freesAt := oldestInDay.Add(24 * time.Hour)
			assessment.DailyQuotaFreesAt = &freesAt
		}
	} else if assessment.PostsInLast24h == assessment.DailyCap-1 {
		assessment.ApproachingDailyQuota = true
	}

	if wk := limits.weeklyCap(); wk > 0 && assessment.PostsInLastWeek >= wk {
		assessment.WeeklyQuotaExceeded = true
		if oldestInWeek != nil {
			freesAt := oldestInWeek.Add(7 * 24 * time.Hour)
			assessment.WeeklyQuotaFreesAt = &freesAt
		}
	}

	return assessment, nil
}

func maxOf(vals []int) int {
	out := 0
	for _, v := range vals {
		if v > out {
			out = v
		}
	}
	return out
}
