// Component for matching values against named sets (eg the approved
// image-host domains, or communities exempt from pacing).
//
// Sets are loaded from a JSON file at startup and treated as read-only
// afterwards; the mutex exists so an operator-triggered reload is safe
// against in-flight evaluations.
package setstore

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
)

type SetStore interface {
	InSet(ctx context.Context, name, val string) (bool, error)
	// HasSet reports whether the named set was configured at all, so callers
	// can tell an empty allowlist apart from one that was never loaded.
	HasSet(ctx context.Context, name string) (bool, error)
}

type MemSetStore struct {
	mu   sync.RWMutex
	sets map[string]map[string]bool
}

var _ SetStore = (*MemSetStore)(nil)

func NewMemSetStore() *MemSetStore {
	return &MemSetStore{
		sets: make(map[string]map[string]bool),
	}
}

func (s *MemSetStore) InSet(ctx context.Context, name, val string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[name]
	if !ok {
		// NOTE: currently returns false when entire set isn't found
		return false, nil
	}
	return set[val], nil
}

func (s *MemSetStore) HasSet(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[name]
	return ok, nil
}

// Add inserts values into a named set, creating the set if needed. Used by
// tests and by in-process defaults; production sets come from LoadFromFileJSON.
func (s *MemSetStore) Add(name string, vals ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[name]
	if !ok {
		set = make(map[string]bool, len(vals))
		s.sets[name] = set
	}
	for _, val := range vals {
		set[val] = true
	}
}

// LoadFromFileJSON replaces the named sets with the contents of a JSON file
// shaped like {"set-name": ["val", ...], ...}. Sets not mentioned in the file
// are left alone.
func (s *MemSetStore) LoadFromFileJSON(p string) error {

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var sets map[string][]string
	if err := json.Unmarshal(raw, &sets); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, l := range sets {
		m := make(map[string]bool, len(l))
		for _, val := range l {
			m[val] = true
		}
		s.sets[name] = m
	}
	return nil
}
