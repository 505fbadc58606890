package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/postdeck/gatehouse/postgate/engine"
	"github.com/postdeck/gatehouse/postgate/histstore"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically re-evaluates recently active accounts: each run drives
// the shadowban detector and the account rules through Engine.ProcessAccount,
// which sets or clears the shadowban-suspected flag as listings change.
type Sweeper struct {
	cron     *cron.Cron
	engine   *engine.Engine
	history  histstore.HistStore
	logger   *slog.Logger
	schedule string
	window   time.Duration
}

func NewSweeper(eng *engine.Engine, history histstore.HistStore, logger *slog.Logger, schedule string, window time.Duration) *Sweeper {
	if schedule == "" {
		schedule = "@hourly"
	}
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &Sweeper{
		cron:     cron.New(),
		engine:   eng,
		history:  history,
		logger:   logger.With("component", "sweeper"),
		schedule: schedule,
		window:   window,
	}
}

func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunSweep(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("account sweep scheduled", "schedule", s.schedule, "window", s.window)
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("account sweep stopped")
}

// RunSweep evaluates every account with posting activity inside the lookback
// window. A failure on one account is logged and counted but doesn't stop the
// rest of the sweep.
func (s *Sweeper) RunSweep(ctx context.Context) {
	start := time.Now()
	users, err := s.history.ListUsers(ctx, start.Add(-s.window))
	if err != nil {
		s.logger.Error("failed to list accounts for sweep", "err", err)
		sweepCount.WithLabelValues("error").Inc()
		return
	}

	var failed int
	for _, username := range users {
		if err := s.engine.ProcessAccount(ctx, username); err != nil {
			s.logger.Warn("account sweep evaluation failed", "err", err, "user", username)
			sweptAccountCount.WithLabelValues("error").Inc()
			failed++
			continue
		}
		sweptAccountCount.WithLabelValues("ok").Inc()
	}

	sweepCount.WithLabelValues("ok").Inc()
	sweepDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("account sweep complete", "accounts", len(users), "failed", failed, "duration", time.Since(start))
}
