package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/postdeck/gatehouse/util"
)

const (
	defaultAPIHost    = "https://oauth.reddit.com"
	defaultAuthHost   = "https://www.reddit.com"
	defaultPublicHost = "https://www.reddit.com"

	// platform-imposed submission limits
	maxTitleLen = 300
	maxBodyLen  = 40_000

	// the platform allocates 1000 requests per rolling 10 minute period for
	// OAuth clients; stay a bit under that
	defaultRequestsPerSec = 1.5
)

// HTTPClient talks to the live platform API. Auth is app-level (client
// credentials); the public listing path deliberately skips auth entirely.
type HTTPClient struct {
	APIHost    string
	AuthHost   string
	PublicHost string

	ClientID     string
	ClientSecret string
	UserAgent    string

	Client  *http.Client
	Limiter *rate.Limiter
	Logger  *slog.Logger

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(clientID, clientSecret, userAgent string) *HTTPClient {
	return &HTTPClient{
		APIHost:      defaultAPIHost,
		AuthHost:     defaultAuthHost,
		PublicHost:   defaultPublicHost,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		UserAgent:    userAgent,
		Client:       util.RobustHTTPClient(),
		Limiter:      rate.NewLimiter(rate.Limit(defaultRequestsPerSec), 5),
		Logger:       slog.Default().With("subsystem", "reddit"),
	}
}

// listing is the platform's paginated envelope for submissions.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Before   string `json:"before"`
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				ID         string  `json:"id"`
				Name       string  `json:"name"`
				Title      string  `json:"title"`
				Author     string  `json:"author"`
				Subreddit  string  `json:"subreddit"`
				URL        string  `json:"url"`
				Permalink  string  `json:"permalink"`
				SelfText   string  `json:"selftext"`
				Over18     bool    `json:"over_18"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (l *listing) submissions() []Submission {
	out := make([]Submission, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		d := child.Data
		out = append(out, Submission{
			ID:        d.ID,
			Fullname:  d.Name,
			Title:     d.Title,
			Community: d.Subreddit,
			Author:    d.Author,
			URL:       d.URL,
			Permalink: d.Permalink,
			SelfText:  d.SelfText,
			NSFW:      d.Over18,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return out
}

// authenticate fetches (or reuses) an app-level OAuth token using the client
// credentials grant.
func (c *HTTPClient) authenticate(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.accessToken
	expiry := c.tokenExpiry
	c.mu.RUnlock()
	if token != "" && time.Now().Before(expiry) {
		return token, nil
	}

	if c.ClientID == "" || c.ClientSecret == "" {
		return "", fmt.Errorf("platform API credentials not configured")
	}

	if err := c.Limiter.Wait(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, "POST", c.AuthHost+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building auth request: %w", err)
	}
	req.SetBasicAuth(c.ClientID, c.ClientSecret)
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("auth request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var authResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", fmt.Errorf("decoding auth response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = authResp.AccessToken
	// refresh a minute early so in-flight requests don't race expiry
	c.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn)*time.Second - time.Minute)
	c.mu.Unlock()

	c.Logger.Info("authenticated with platform API")
	return authResp.AccessToken, nil
}

func (c *HTTPClient) apiGet(ctx context.Context, path string, out any) error {
	token, err := c.authenticate(ctx)
	if err != nil {
		return err
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.APIHost+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("platform API request failed: %w", err)
	}
	defer resp.Body.Close()

	return c.decodeResponse(resp, out)
}

func (c *HTTPClient) publicGet(ctx context.Context, path string, out any) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.PublicHost+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("public listing request failed: %w", err)
	}
	defer resp.Body.Close()

	return c.decodeResponse(resp, out)
}

func (c *HTTPClient) decodeResponse(resp *http.Response, out any) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("status 429: %w", ErrRateLimited)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("status 403: %w", ErrNotAllowed)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("platform API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *HTTPClient) AboutUser(ctx context.Context, username string) (*UserAbout, error) {
	var resp struct {
		Kind string `json:"kind"`
		Data struct {
			Name             string  `json:"name"`
			LinkKarma        int     `json:"link_karma"`
			CommentKarma     int     `json:"comment_karma"`
			TotalKarma       int     `json:"total_karma"`
			Verified         bool    `json:"verified"`
			HasVerifiedEmail bool    `json:"has_verified_email"`
			CreatedUTC       float64 `json:"created_utc"`
		} `json:"data"`
	}
	if err := c.apiGet(ctx, "/user/"+url.PathEscape(username)+"/about", &resp); err != nil {
		return nil, err
	}
	about := UserAbout{
		Username:     resp.Data.Name,
		LinkKarma:    resp.Data.LinkKarma,
		CommentKarma: resp.Data.CommentKarma,
		TotalKarma:   resp.Data.TotalKarma,
		Verified:     resp.Data.Verified || resp.Data.HasVerifiedEmail,
	}
	if resp.Data.CreatedUTC > 0 {
		about.CreatedAt = time.Unix(int64(resp.Data.CreatedUTC), 0).UTC()
	}
	return &about, nil
}

func (c *HTTPClient) SelfSubmissions(ctx context.Context, username string, limit int) ([]Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	var l listing
	path := fmt.Sprintf("/user/%s/submitted?limit=%d&sort=new", url.PathEscape(username), limit)
	if err := c.apiGet(ctx, path, &l); err != nil {
		return nil, err
	}
	return l.submissions(), nil
}

func (c *HTTPClient) PublicSubmissions(ctx context.Context, username string, limit int) ([]Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	var l listing
	path := fmt.Sprintf("/user/%s/submitted.json?limit=%d&sort=new&raw_json=1", url.PathEscape(username), limit)
	if err := c.publicGet(ctx, path, &l); err != nil {
		return nil, err
	}
	return l.submissions(), nil
}

// validateSubmit rejects malformed submissions before any network call.
func validateSubmit(req *SubmitRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("missing title: %w", ErrEmptyContent)
	}
	if len(req.Title) > maxTitleLen {
		return fmt.Errorf("title over %d chars: %w", maxTitleLen, ErrContentTooLong)
	}
	switch req.Kind {
	case PostKindSelf:
		if strings.TrimSpace(req.Body) == "" {
			return fmt.Errorf("missing body: %w", ErrEmptyContent)
		}
		if len(req.Body) > maxBodyLen {
			return fmt.Errorf("body over %d chars: %w", maxBodyLen, ErrContentTooLong)
		}
	case PostKindLink, PostKindImage, PostKindGallery, PostKindVideo:
		if strings.TrimSpace(req.URL) == "" {
			return fmt.Errorf("missing url: %w", ErrEmptyContent)
		}
	}
	return nil
}

func (c *HTTPClient) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validateSubmit(&req); err != nil {
		return nil, err
	}

	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("sr", req.Community)
	form.Set("title", req.Title)
	switch req.Kind {
	case PostKindSelf:
		form.Set("kind", "self")
		form.Set("text", req.Body)
	default:
		form.Set("kind", "link")
		form.Set("url", req.URL)
	}
	if req.NSFW {
		form.Set("nsfw", "true")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.APIHost+"/api/submit", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building submit request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("User-Agent", c.UserAgent)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit request failed: %w", err)
	}
	defer resp.Body.Close()

	var submitResp struct {
		JSON struct {
			Errors [][]string `json:"errors"`
			Data   struct {
				ID   string `json:"id"`
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := c.decodeResponse(resp, &submitResp); err != nil {
		return nil, err
	}

	if len(submitResp.JSON.Errors) > 0 {
		first := submitResp.JSON.Errors[0]
		apiErr := &APIError{Code: first[0]}
		if len(first) > 1 {
			apiErr.Message = first[1]
		}
		c.Logger.Warn("platform rejected submission", "code", apiErr.Code, "community", req.Community)
		return nil, apiErr
	}

	return &SubmitResult{
		ID:        submitResp.JSON.Data.ID,
		Fullname:  submitResp.JSON.Data.Name,
		PermaLink: submitResp.JSON.Data.URL,
	}, nil
}
