package countstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	PeriodTotal = "total"
	PeriodWeek  = "week"
	PeriodDay   = "day"
	PeriodHour  = "hour"
)

// CountStore tracks how often something has happened, bucketed by time
// period. Counts are a supporting signal for pacing decisions; the
// authoritative per-post history lives in histstore.
//
// GetCount/Increment work on simple counters; the Distinct variants count
// unique values (eg distinct communities a user posted to today).
type CountStore interface {
	GetCount(ctx context.Context, name, val, period string) (int, error)
	Increment(ctx context.Context, name, val string) error
	// IncrementPeriod bumps a single period bucket instead of all of them,
	// for high-cardinality counters where one bucket per period adds up.
	IncrementPeriod(ctx context.Context, name, val, period string) error
	GetCountDistinct(ctx context.Context, name, bucket, period string) (int, error)
	IncrementDistinct(ctx context.Context, name, bucket, val string) error
}

func periodBucket(name, val, period string) string {
	switch period {
	case PeriodTotal:
		return fmt.Sprintf("%s/%s", name, val)
	case PeriodWeek:
		y, w := time.Now().UTC().ISOWeek()
		return fmt.Sprintf("%s/%s/%d-W%02d", name, val, y, w)
	case PeriodDay:
		t := time.Now().UTC().Format(time.DateOnly)
		return fmt.Sprintf("%s/%s/%s", name, val, t)
	case PeriodHour:
		t := time.Now().UTC().Format(time.RFC3339)[0:13]
		return fmt.Sprintf("%s/%s/%s", name, val, t)
	default:
		slog.Warn("unhandled counter period", "period", period)
		return fmt.Sprintf("%s/%s", name, val)
	}
}

var allPeriods = []string{PeriodTotal, PeriodWeek, PeriodDay, PeriodHour}
