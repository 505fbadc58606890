package countstore

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

type MemCountStore struct {
	counts         *xsync.MapOf[string, int]
	distinctCounts *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]
}

func NewMemCountStore() *MemCountStore {
	return &MemCountStore{
		counts:         xsync.NewMapOf[string, int](),
		distinctCounts: xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]](),
	}
}

func (s *MemCountStore) GetCount(ctx context.Context, name, val, period string) (int, error) {
	v, ok := s.counts.Load(periodBucket(name, val, period))
	if !ok {
		return 0, nil
	}
	return v, nil
}

func (s *MemCountStore) Increment(ctx context.Context, name, val string) error {
	for _, p := range allPeriods {
		if err := s.IncrementPeriod(ctx, name, val, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemCountStore) IncrementPeriod(ctx context.Context, name, val, period string) error {
	k := periodBucket(name, val, period)
	s.counts.Compute(k, func(v int, _ bool) (int, bool) {
		return v + 1, false
	})
	return nil
}

func (s *MemCountStore) GetCountDistinct(ctx context.Context, name, bucket, period string) (int, error) {
	m, ok := s.distinctCounts.Load(periodBucket(name, bucket, period))
	if !ok {
		return 0, nil
	}
	return m.Size(), nil
}

func (s *MemCountStore) IncrementDistinct(ctx context.Context, name, bucket, val string) error {
	for _, p := range allPeriods {
		k := periodBucket(name, bucket, p)
		m, _ := s.distinctCounts.LoadOrStore(k, xsync.NewMapOf[string, struct{}]())
		m.Store(val, struct{}{})
	}
	return nil
}
