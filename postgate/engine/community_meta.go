package engine

import (
	"context"
	"fmt"
)

// GetCommunityMeta resolves the rules in force for a community: the
// current-generation profile if one exists, plus the legacy ruleset. Both are
// fetched; predicates prefer the profile, while pace limits fall back field
// by field. A community unknown to both sources still gets a usable (empty)
// CommunityMeta, with built-in defaults applying downstream.
func (e *Engine) GetCommunityMeta(ctx context.Context, name string) (*CommunityMeta, error) {
	profile, err := e.Directory.Lookup(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("looking up community profile: %w", err)
	}

	legacy, err := e.Directory.LookupLegacy(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("looking up legacy rules: %w", err)
	}

	return &CommunityMeta{
		Name:    name,
		Profile: profile,
		Legacy:  legacy,
	}, nil
}
