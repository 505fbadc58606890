package histstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemHistStore struct {
	mu      sync.RWMutex
	records map[string]PostRecord
}

var _ HistStore = (*MemHistStore)(nil)

func NewMemHistStore() *MemHistStore {
	return &MemHistStore{
		records: make(map[string]PostRecord),
	}
}

func memKey(userID, community string) string {
	return userID + "/" + community
}

func (s *MemHistStore) Get(ctx context.Context, userID, community string) (*PostRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[memKey(userID, community)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemHistStore) GetRecent(ctx context.Context, userID string, since time.Time) ([]PostRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PostRecord
	for _, rec := range s.records {
		if rec.UserID == userID && !rec.LastPostAt.Before(since) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastPostAt.After(out[j].LastPostAt)
	})
	return out, nil
}

func (s *MemHistStore) ListUsers(ctx context.Context, since time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, rec := range s.records {
		if rec.LastPostAt.Before(since) || seen[rec.UserID] {
			continue
		}
		seen[rec.UserID] = true
		out = append(out, rec.UserID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemHistStore) Touch(ctx context.Context, userID, community string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[memKey(userID, community)] = PostRecord{
		UserID:     userID,
		Community:  community,
		LastPostAt: at,
	}
	return nil
}
