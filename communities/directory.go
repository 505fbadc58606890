// Package communities holds per-community posting rules: current-generation
// profiles, the legacy ruleset fallback, and the Directory lookup interface
// the posting engine evaluates against.
//
// Rule data is deployment data, not code: it lives in the database and is
// loaded (and cached) at evaluation time. The engine treats everything here
// as read-only.
package communities

import (
	"context"
)

// Read path used during posting evaluation. Implementations must be safe for
// concurrent use.
//
// Lookup returns (nil, nil) when no profile exists for the name; callers fall
// through to LookupLegacy, and to built-in defaults after that. Errors are
// reserved for infrastructure failure (the caller fails closed on them).
type Directory interface {
	Lookup(ctx context.Context, name string) (*Profile, error)
	LookupLegacy(ctx context.Context, name string) (*LegacyRuleSet, error)
}
