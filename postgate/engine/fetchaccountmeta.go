package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

func (e *Engine) GetAccountMeta(ctx context.Context, username string) (*AccountMeta, error) {

	// fallback in case client wasn't configured (eg, testing). flags still
	// get loaded so sweeps against in-memory backends behave normally
	if e.Client == nil {
		e.Logger.Warn("skipping account meta hydration")
		flags, err := e.Flags.Get(ctx, username)
		if err != nil {
			return nil, err
		}
		am := AccountMeta{
			Username:     username,
			AccountFlags: flags,
		}
		return &am, nil
	}

	existing, err := e.Cache.Get(ctx, "acct", username)
	if err != nil {
		return nil, err
	}
	if existing != "" {
		var am AccountMeta
		err := json.Unmarshal([]byte(existing), &am)
		if err != nil {
			return nil, fmt.Errorf("parsing AccountMeta from cache: %v", err)
		}
		am.Username = username
		return &am, nil
	}

	// fetch account metadata
	accountMetaFetches.Inc()
	about, err := e.Client.AboutUser(ctx, username)
	if err != nil {
		return nil, err
	}

	flags, err := e.Flags.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	am := AccountMeta{
		Username:     username,
		Karma:        about.Karma(),
		Verified:     about.Verified,
		AccountFlags: flags,
	}
	if !about.CreatedAt.IsZero() {
		created := about.CreatedAt
		am.CreatedAt = &created
		age := about.AccountAgeDays(time.Now())
		if age >= 0 {
			am.AccountAgeDays = &age
		}
	}

	val, err := json.Marshal(&am)
	if err != nil {
		return nil, err
	}

	if err := e.Cache.Set(ctx, "acct", username, string(val)); err != nil {
		return nil, err
	}
	return &am, nil
}
