package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/countstore"
	"github.com/postdeck/gatehouse/postgate/pacing"
)

// Counter names shared across the engine and its rules. The pace counters
// are owned by the tracker that reads them back.
const (
	CounterUserPosts          = pacing.CounterUserPosts
	CounterUserCommunityPosts = pacing.CounterUserCommunityPosts
	// distinct communities posted to, bucketed by username
	CounterUserCommunities = "user-communities"
)

// RecordPost records one successful submission: it bumps the (user,
// community) history record, increments the pace counters, and notifies the
// safety collaborator. Call it only after the platform accepted the post;
// permission checks alone must never reach this.
func (eng *Engine) RecordPost(ctx context.Context, userID, community, title, body string) error {
	name, err := communities.NormalizeName(community)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := eng.History.Touch(ctx, userID, name, now); err != nil {
		return fmt.Errorf("updating post history: %w", err)
	}

	if err := eng.Counters.Increment(ctx, CounterUserPosts, userID); err != nil {
		return err
	}
	if err := eng.Counters.Increment(ctx, CounterUserCommunityPosts, userID+"/"+name); err != nil {
		return err
	}
	if err := eng.Counters.IncrementDistinct(ctx, CounterUserCommunities, userID, name); err != nil {
		return err
	}

	if eng.Safety != nil {
		if err := eng.Safety.RecordPost(ctx, userID, name, title, body); err != nil {
			return fmt.Errorf("notifying safety collaborator: %w", err)
		}
		if err := eng.Safety.RecordForDuplicateDetection(ctx, userID, title, body); err != nil {
			return fmt.Errorf("recording content for duplicate detection: %w", err)
		}
	}

	recordedPostCount.Inc()
	eng.Logger.Info("recorded successful post", "user", userID, "community", name)
	return nil
}

func (eng *Engine) persistCounters(ctx context.Context, eff *Effects) error {
	for _, ref := range dedupeCounterRefs(eff.CounterIncrements) {
		if ref.Period != nil {
			err := eng.Counters.IncrementPeriod(ctx, ref.Name, ref.Val, *ref.Period)
			if err != nil {
				return err
			}
		} else {
			err := eng.Counters.Increment(ctx, ref.Name, ref.Val)
			if err != nil {
				return err
			}
		}
	}
	for _, ref := range eff.CounterDistinctIncrements {
		err := eng.Counters.IncrementDistinct(ctx, ref.Name, ref.Bucket, ref.Val)
		if err != nil {
			return err
		}
	}
	return nil
}

// Persists account-level effects: new flags and flag removals.
//
// Flags already on the account are not re-added, and removals of flags the
// account never had are skipped, so repeated sweeps of an unchanged account
// are no-ops.
func (eng *Engine) persistAccountEffects(c *AccountContext) error {
	ctx := c.Ctx

	newFlags := dedupeFlagActions(c.effects.AccountFlags, c.Account.AccountFlags)
	if len(newFlags) > 0 {
		if err := eng.Flags.Add(ctx, c.Account.Username, newFlags); err != nil {
			return err
		}
		for _, val := range newFlags {
			newFlagCount.WithLabelValues(val).Inc()
		}
		c.Logger.Info("flagging account", "newFlags", newFlags)
	}

	droppedFlags := keepFlagActions(c.effects.RemoveAccountFlags, c.Account.AccountFlags)
	if len(droppedFlags) > 0 {
		if err := eng.Flags.Remove(ctx, c.Account.Username, droppedFlags); err != nil {
			return err
		}
		c.Logger.Info("clearing account flags", "droppedFlags", droppedFlags)
	}

	if len(newFlags) > 0 || len(droppedFlags) > 0 {
		return eng.PurgeAccountCaches(ctx, c.Account.Username)
	}
	return nil
}

// dedupeCounterRefs drops exact-duplicate increments accumulated during one
// evaluation, preserving order.
func dedupeCounterRefs(refs []CounterRef) []CounterRef {
	var out []CounterRef
	seen := make(map[string]bool)
	for _, ref := range refs {
		period := countstore.PeriodTotal
		if ref.Period != nil {
			period = *ref.Period
		}
		k := ref.Name + "/" + ref.Val + "/" + period
		if !seen[k] {
			out = append(out, ref)
			seen[k] = true
		}
	}
	return out
}

// dedupeFlagActions returns the subset of proposed flags not already present
// on the account.
func dedupeFlagActions(proposed, existing []string) []string {
	var out []string
	for _, val := range dedupeStrings(proposed) {
		exists := false
		for _, e := range existing {
			if val == e {
				exists = true
				break
			}
		}
		if !exists {
			out = append(out, val)
		}
	}
	return out
}

// keepFlagActions returns the subset of proposed removals actually present on
// the account.
func keepFlagActions(proposed, existing []string) []string {
	var out []string
	for _, val := range dedupeStrings(proposed) {
		for _, e := range existing {
			if val == e {
				out = append(out, val)
				break
			}
		}
	}
	return out
}
