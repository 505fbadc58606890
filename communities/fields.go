package communities

import (
	"math"
	"strings"
)

// Rule metadata has gone through several schema generations with inconsistent
// field names. Extraction walks an explicit, ordered candidate list and takes
// the first usable value; the order is visible here rather than buried in
// reflection so it can be tested directly.
//
// Absence of every candidate means "not configured", never zero.
var (
	minKarmaFields   = []string{"minKarma", "karmaMin", "minimumKarma", "karmaRequired"}
	minAgeFields     = []string{"minAccountAgeDays", "accountAgeDays", "minAgeDays"}
	dailyCapFields   = []string{"maxPostsPer24h", "maxPostsPerDay", "dailyLimit", "postsPerDay"}
	weeklyCapFields  = []string{"maxPostsPerWeek", "weeklyLimit"}
	cooldownFields   = []string{"cooldownMinutes", "postCooldownMinutes", "cooldown"}
	verificationKeys = []string{"verificationRequired", "requiresVerification", "verification"}
	nsfwRequiredKeys = []string{"nsfwRequired", "requiresNsfw", "nsfw"}
	promotionKeys    = []string{"promotionPolicy", "promotion", "sellingAllowed"}
)

// firstNumber returns the first candidate key holding a finite number,
// truncated to int. JSON decoding hands us float64; older fixtures sometimes
// carry real ints.
func firstNumber(raw map[string]any, keys ...string) *int {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if math.IsNaN(n) || math.IsInf(n, 0) {
				continue
			}
			out := int(n)
			return &out
		case int:
			out := n
			return &out
		case int64:
			out := int(n)
			return &out
		}
	}
	return nil
}

func firstBool(raw map[string]any, keys ...string) bool {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case string:
			switch strings.ToLower(b) {
			case "true", "yes", "required":
				return true
			case "false", "no":
				return false
			}
		}
	}
	return false
}

func parsePromotionPolicy(raw map[string]any) PromotionPolicy {
	for _, k := range promotionKeys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch p := v.(type) {
		case string:
			switch strings.ToLower(p) {
			case "allowed", "yes", "ok":
				return PromotionAllowed
			case "limited", "restricted":
				return PromotionLimited
			case "disallowed", "no", "banned":
				return PromotionDisallowed
			}
		case bool:
			if p {
				return PromotionAllowed
			}
			return PromotionDisallowed
		}
	}
	return PromotionUnknown
}

// ProfileFromRuleData normalizes one community's raw rule metadata into a
// Profile. The raw map is retained on the Profile for per-community rules
// that need fields the normalization doesn't cover.
func ProfileFromRuleData(name string, raw map[string]any) *Profile {
	if raw == nil {
		raw = map[string]any{}
	}
	return &Profile{
		Name:                 name,
		VerificationRequired: firstBool(raw, verificationKeys...),
		PromotionPolicy:      parsePromotionPolicy(raw),
		NSFWRequired:         firstBool(raw, nsfwRequiredKeys...),
		MinKarma:             firstNumber(raw, minKarmaFields...),
		MinAccountAgeDays:    firstNumber(raw, minAgeFields...),
		DailyLimit:           firstNumber(raw, dailyCapFields...),
		WeeklyLimit:          firstNumber(raw, weeklyCapFields...),
		CooldownMinutes:      firstNumber(raw, cooldownFields...),
		Extra:                raw,
	}
}
