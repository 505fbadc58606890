package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/countstore"
	"github.com/postdeck/gatehouse/postgate/histstore"
)

func intPtr(v int) *int {
	return &v
}

func testTracker() (*Tracker, *histstore.MemHistStore, countstore.CountStore) {
	hs := histstore.NewMemHistStore()
	cs := countstore.NewMemCountStore()
	return NewTracker(hs, cs, nil), hs, cs
}

func TestAssessNoHistory(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	tracker, _, _ := testTracker()

	a, err := tracker.Assess(ctx, "u_1001", "gonewildstories", Limits{}, now)
	assert.NoError(err)
	assert.False(a.Blocked())
	assert.Equal(0, a.PostsInLast24h)
	assert.Equal(DefaultDailyCap, a.DailyCap)
	assert.Nil(a.CooldownUntil)
	assert.Nil(a.NextAllowedPost())
	assert.False(a.ApproachingDailyQuota)
}

func TestAssessCooldown(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	tracker, hs, _ := testTracker()

	// sixty minute cooldown, posted ten minutes ago
	lastPost := now.Add(-10 * time.Minute)
	assert.NoError(hs.Touch(ctx, "u_1001", "gonewildstories", lastPost))

	limits := Limits{CooldownMinutes: intPtr(60)}
	a, err := tracker.Assess(ctx, "u_1001", "gonewildstories", limits, now)
	assert.NoError(err)
	assert.True(a.Blocked())
	assert.NotNil(a.CooldownUntil)
	assert.WithinDuration(lastPost.Add(60*time.Minute), *a.CooldownUntil, time.Second)
	assert.Equal(50*time.Minute, a.CooldownRemaining(now))
	assert.NotNil(a.NextAllowedPost())
	assert.WithinDuration(*a.CooldownUntil, *a.NextAllowedPost(), time.Second)

	// cooldown is per community
	a, err = tracker.Assess(ctx, "u_1001", "selfie_club", limits, now)
	assert.NoError(err)
	assert.Nil(a.CooldownUntil)

	// expired cooldown no longer binds
	a, err = tracker.Assess(ctx, "u_1001", "gonewildstories", limits, now.Add(2*time.Hour))
	assert.NoError(err)
	assert.Nil(a.CooldownUntil)
	assert.False(a.Blocked())
}

func TestAssessDailyQuota(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	tracker, hs, _ := testTracker()

	// three posts inside the window, default cap of three
	oldest := now.Add(-20 * time.Hour)
	assert.NoError(hs.Touch(ctx, "u_1001", "one", oldest))
	assert.NoError(hs.Touch(ctx, "u_1001", "two", now.Add(-10*time.Hour)))
	assert.NoError(hs.Touch(ctx, "u_1001", "three", now.Add(-1*time.Hour)))

	a, err := tracker.Assess(ctx, "u_1001", "four", Limits{}, now)
	assert.NoError(err)
	assert.Equal(3, a.PostsInLast24h)
	assert.True(a.DailyQuotaExceeded)
	assert.True(a.Blocked())
	assert.NotNil(a.DailyQuotaFreesAt)
	assert.WithinDuration(oldest.Add(24*time.Hour), *a.DailyQuotaFreesAt, time.Second)
	assert.WithinDuration(*a.DailyQuotaFreesAt, *a.NextAllowedPost(), time.Second)

	// posts older than 24h count for nothing
	a, err = tracker.Assess(ctx, "u_1001", "four", Limits{}, now.Add(5*time.Hour))
	assert.NoError(err)
	assert.Equal(2, a.PostsInLast24h)
	assert.False(a.DailyQuotaExceeded)
	assert.True(a.ApproachingDailyQuota)
}

func TestAssessApproachingQuota(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	tracker, hs, _ := testTracker()

	assert.NoError(hs.Touch(ctx, "u_1001", "one", now.Add(-10*time.Hour)))
	assert.NoError(hs.Touch(ctx, "u_1001", "two", now.Add(-1*time.Hour)))

	a, err := tracker.Assess(ctx, "u_1001", "three", Limits{}, now)
	assert.NoError(err)
	assert.Equal(2, a.PostsInLast24h)
	assert.False(a.Blocked())
	assert.True(a.ApproachingDailyQuota)
	assert.Nil(a.NextAllowedPost())
}

func TestAssessCountsMergeAsMax(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	tracker, hs, cs := testTracker()

	// history has a single record for the community, but the counters have
	// seen three posts today (repeat posts to one community)
	assert.NoError(hs.Touch(ctx, "u_1001", "gonewildstories", now.Add(-time.Hour)))
	for i := 0; i < 3; i++ {
		assert.NoError(cs.Increment(ctx, CounterUserPosts, "u_1001"))
	}

	a, err := tracker.Assess(ctx, "u_1001", "gonewildstories", Limits{}, now)
	assert.NoError(err)
	assert.Equal(3, a.PostsInLast24h)
	assert.True(a.DailyQuotaExceeded)

	// caller-supplied counts participate in the same max
	a, err = tracker.Assess(ctx, "u_2002", "gonewildstories", Limits{}, now, 5)
	assert.NoError(err)
	assert.Equal(5, a.PostsInLast24h)
	assert.True(a.DailyQuotaExceeded)
}

func TestAssessCommunityCap(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	tracker, hs, _ := testTracker()

	// community-specific cap of one
	assert.NoError(hs.Touch(ctx, "u_1001", "gonewildstories", now.Add(-2*time.Hour)))

	limits := Limits{DailyCap: intPtr(1)}
	a, err := tracker.Assess(ctx, "u_1001", "gonewildstories", limits, now)
	assert.NoError(err)
	assert.Equal(1, a.DailyCap)
	assert.True(a.DailyQuotaExceeded)
}

func TestAssessWeeklyQuota(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	tracker, hs, _ := testTracker()

	oldest := now.Add(-6 * 24 * time.Hour)
	assert.NoError(hs.Touch(ctx, "u_1001", "one", oldest))
	assert.NoError(hs.Touch(ctx, "u_1001", "two", now.Add(-3*24*time.Hour)))

	limits := Limits{WeeklyCap: intPtr(2)}
	a, err := tracker.Assess(ctx, "u_1001", "three", limits, now)
	assert.NoError(err)
	assert.Equal(2, a.PostsInLastWeek)
	assert.True(a.WeeklyQuotaExceeded)
	assert.True(a.Blocked())
	assert.NotNil(a.WeeklyQuotaFreesAt)
	assert.WithinDuration(oldest.Add(7*24*time.Hour), *a.WeeklyQuotaFreesAt, time.Second)

	// under the cap, nothing binds
	limits = Limits{WeeklyCap: intPtr(5)}
	a, err = tracker.Assess(ctx, "u_1001", "three", limits, now)
	assert.NoError(err)
	assert.False(a.WeeklyQuotaExceeded)
}

func TestLimitsFromRules(t *testing.T) {
	assert := assert.New(t)

	profile := &communities.Profile{
		Name:            "gonewildstories",
		CooldownMinutes: intPtr(30),
		WeeklyLimit:     intPtr(10),
	}
	legacy := &communities.LegacyRuleSet{
		Name:            "gonewildstories",
		CooldownMinutes: intPtr(90),
		DailyLimit:      intPtr(2),
	}

	// profile wins where it has values; legacy fills the gaps
	lim := LimitsFromRules(profile, legacy)
	assert.Equal(30, *lim.CooldownMinutes)
	assert.Equal(2, *lim.DailyCap)
	assert.Equal(10, *lim.WeeklyCap)

	lim = LimitsFromRules(nil, legacy)
	assert.Equal(90, *lim.CooldownMinutes)
	assert.Equal(2, *lim.DailyCap)
	assert.Nil(lim.WeeklyCap)

	lim = LimitsFromRules(nil, nil)
	assert.Nil(lim.CooldownMinutes)
	assert.Equal(DefaultDailyCap, lim.effectiveDailyCap())
}
