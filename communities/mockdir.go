package communities

import (
	"context"
	"sync"
)

// A fake rule directory, for use in tests.
type MockDirectory struct {
	mu       sync.RWMutex
	Profiles map[string]Profile
	Legacy   map[string]LegacyRuleSet

	// When set, lookups return this error (for exercising fail-closed paths)
	Err error
}

var _ Directory = (*MockDirectory)(nil)

func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		Profiles: make(map[string]Profile),
		Legacy:   make(map[string]LegacyRuleSet),
	}
}

func (d *MockDirectory) Insert(p Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Profiles[p.Name] = p
}

func (d *MockDirectory) InsertLegacy(r LegacyRuleSet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Legacy[r.Name] = r
}

func (d *MockDirectory) Lookup(ctx context.Context, name string) (*Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.Err != nil {
		return nil, d.Err
	}
	p, ok := d.Profiles[name]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (d *MockDirectory) LookupLegacy(ctx context.Context, name string) (*LegacyRuleSet, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.Err != nil {
		return nil, d.Err
	}
	r, ok := d.Legacy[name]
	if !ok {
		return nil, nil
	}
	return &r, nil
}
