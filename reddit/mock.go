package reddit

import (
	"context"
	"sync"
)

// A fake platform client, for use in tests. Listing views are configured
// independently so tests can simulate platform-side suppression; the Err
// fields force failures on specific paths.
type MockClient struct {
	mu     sync.RWMutex
	Users  map[string]UserAbout
	Self   map[string][]Submission
	Public map[string][]Submission

	AboutErr  error
	SelfErr   error
	PublicErr error
	SubmitErr error

	// every successful Submit call, in order
	Submitted []SubmitRequest
}

var _ Client = (*MockClient)(nil)

func NewMockClient() *MockClient {
	return &MockClient{
		Users:  make(map[string]UserAbout),
		Self:   make(map[string][]Submission),
		Public: make(map[string][]Submission),
	}
}

func (c *MockClient) InsertUser(u UserAbout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Users[u.Username] = u
}

func (c *MockClient) InsertSubmissions(username string, self, public []Submission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Self[username] = self
	c.Public[username] = public
}

func (c *MockClient) AboutUser(ctx context.Context, username string) (*UserAbout, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.AboutErr != nil {
		return nil, c.AboutErr
	}
	u, ok := c.Users[username]
	if !ok {
		return nil, &APIError{Code: "USER_DOESNT_EXIST"}
	}
	return &u, nil
}

func (c *MockClient) SelfSubmissions(ctx context.Context, username string, limit int) ([]Submission, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.SelfErr != nil {
		return nil, c.SelfErr
	}
	return capped(c.Self[username], limit), nil
}

func (c *MockClient) PublicSubmissions(ctx context.Context, username string, limit int) ([]Submission, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.PublicErr != nil {
		return nil, c.PublicErr
	}
	return capped(c.Public[username], limit), nil
}

func (c *MockClient) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validateSubmit(&req); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SubmitErr != nil {
		return nil, c.SubmitErr
	}
	c.Submitted = append(c.Submitted, req)
	return &SubmitResult{ID: "mock1", Fullname: "t3_mock1"}, nil
}

func capped(subs []Submission, limit int) []Submission {
	if limit > 0 && len(subs) > limit {
		return subs[:limit]
	}
	out := make([]Submission, len(subs))
	copy(out, subs)
	return out
}
