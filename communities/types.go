package communities

// How a community treats promotional/external-link content.
type PromotionPolicy string

const (
	PromotionAllowed    PromotionPolicy = "allowed"
	PromotionLimited    PromotionPolicy = "limited"
	PromotionDisallowed PromotionPolicy = "disallowed"
	PromotionUnknown    PromotionPolicy = "unknown"
)

// Link handling for communities which only have legacy rule data.
type LinkPolicy string

const (
	LinkPolicyNone    LinkPolicy = "none"
	LinkPolicyOneLink LinkPolicy = "one-link"
	LinkPolicyOK      LinkPolicy = "ok"
)

// Normalized posting rules for a single community. Loaded read-only at
// evaluation time; the engine never mutates a Profile.
//
// Numeric limits are pointers: nil means "not configured", which is distinct
// from an explicit zero. The raw rule metadata the limits were extracted from
// is preserved in Extra for idiosyncratic per-community rules.
type Profile struct {
	// Normalized community name (see NormalizeName)
	Name string

	VerificationRequired bool
	PromotionPolicy      PromotionPolicy
	NSFWRequired         bool

	MinKarma          *int
	MinAccountAgeDays *int
	DailyLimit        *int
	WeeklyLimit       *int
	CooldownMinutes   *int

	// Raw rule metadata as stored, for rules the normalized fields don't cover
	Extra map[string]any
}

// Fallback rules used when no Profile exists for a community. These come from
// an older ruleset schema and only carry the handful of fields that schema had.
type LegacyRuleSet struct {
	Name            string
	LinkPolicy      LinkPolicy
	CooldownMinutes *int
	DailyLimit      *int
}
