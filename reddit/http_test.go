package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postdeck/gatehouse/util"
)

func platformHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/access_token":
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client1" || pass != "secret1" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token1",
			"expires_in":   3600,
			"token_type":   "bearer",
		})
		return
	case "/user/alice/about":
		if r.Header.Get("Authorization") != "Bearer token1" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"kind": "t2", "data": {"name": "alice", "link_karma": 120, "comment_karma": 30, "total_karma": 150, "has_verified_email": true, "created_utc": 1600000000}}`)
		return
	case "/user/alice/submitted":
		if r.Header.Get("Authorization") != "Bearer token1" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"kind": "Listing", "data": {"after": "", "children": [
			{"kind": "t3", "data": {"id": "aaa", "name": "t3_aaa", "title": "first", "subreddit": "gonewildstories", "created_utc": 1700000000}},
			{"kind": "t3", "data": {"id": "bbb", "name": "t3_bbb", "title": "second", "subreddit": "selfie_club", "over_18": true, "created_utc": 1700001000}}
		]}}`)
		return
	case "/user/alice/submitted.json":
		// public view: no auth expected, one post suppressed
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"kind": "Listing", "data": {"after": "", "children": [
			{"kind": "t3", "data": {"id": "aaa", "name": "t3_aaa", "title": "first", "subreddit": "gonewildstories", "created_utc": 1700000000}}
		]}}`)
		return
	case "/api/submit":
		if r.Header.Get("Authorization") != "Bearer token1" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		sr := r.FormValue("sr")
		w.Header().Set("Content-Type", "application/json")
		if sr == "ratelimited_club" {
			fmt.Fprintln(w, `{"json": {"errors": [["RATELIMIT", "you are doing that too much. try again in 9 minutes.", "ratelimit"]]}}`)
			return
		}
		fmt.Fprintln(w, `{"json": {"errors": [], "data": {"id": "ccc", "name": "t3_ccc", "url": "https://example.com/r/test/ccc"}}}`)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

func testClient(srvURL string) *HTTPClient {
	c := NewHTTPClient("client1", "secret1", "gatehouse-test/0.1")
	c.APIHost = srvURL
	c.AuthHost = srvURL
	c.PublicHost = srvURL
	c.Client = util.TestingHTTPClient()
	return c
}

func TestHTTPClientAboutUser(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(platformHandler))
	defer srv.Close()
	c := testClient(srv.URL)

	about, err := c.AboutUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal("alice", about.Username)
	assert.Equal(150, about.Karma())
	assert.True(about.Verified)
	assert.Greater(about.AccountAgeDays(time.Now()), 365)
}

func TestHTTPClientListings(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(platformHandler))
	defer srv.Close()
	c := testClient(srv.URL)

	self, err := c.SelfSubmissions(ctx, "alice", 25)
	require.NoError(t, err)
	assert.Equal(2, len(self))
	assert.Equal("aaa", self[0].ID)
	assert.Equal("gonewildstories", self[0].Community)
	assert.True(self[1].NSFW)

	public, err := c.PublicSubmissions(ctx, "alice", 25)
	require.NoError(t, err)
	assert.Equal(1, len(public))
	assert.Equal("aaa", public[0].ID)
}

func TestHTTPClientSubmit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(platformHandler))
	defer srv.Close()
	c := testClient(srv.URL)

	res, err := c.Submit(ctx, SubmitRequest{
		Community: "gonewildstories",
		Title:     "a story",
		Kind:      PostKindSelf,
		Body:      "it was a dark and stormy night",
	})
	require.NoError(t, err)
	assert.Equal("ccc", res.ID)
	assert.Equal("t3_ccc", res.Fullname)

	// platform-side rate limit maps onto the sentinel
	_, err = c.Submit(ctx, SubmitRequest{
		Community: "ratelimited_club",
		Title:     "a story",
		Kind:      PostKindSelf,
		Body:      "body",
	})
	assert.ErrorIs(err, ErrRateLimited)
	var apiErr *APIError
	assert.ErrorAs(err, &apiErr)
	assert.Equal("RATELIMIT", apiErr.Code)
}

func TestSubmitValidation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// no server: validation failures must never reach the network
	c := testClient("http://127.0.0.1:1")

	_, err := c.Submit(ctx, SubmitRequest{Community: "x", Kind: PostKindSelf, Body: "body"})
	assert.ErrorIs(err, ErrEmptyContent)

	_, err = c.Submit(ctx, SubmitRequest{Community: "x", Title: "t", Kind: PostKindSelf})
	assert.ErrorIs(err, ErrEmptyContent)

	_, err = c.Submit(ctx, SubmitRequest{Community: "x", Title: "t", Kind: PostKindLink})
	assert.ErrorIs(err, ErrEmptyContent)

	long := make([]byte, maxTitleLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = c.Submit(ctx, SubmitRequest{Community: "x", Title: string(long), Kind: PostKindSelf, Body: "body"})
	assert.ErrorIs(err, ErrContentTooLong)
}

func TestAPIErrorMapping(t *testing.T) {
	assert := assert.New(t)

	assert.ErrorIs(&APIError{Code: "RATELIMIT"}, ErrRateLimited)
	assert.ErrorIs(&APIError{Code: "SUBREDDIT_NOTALLOWED"}, ErrNotAllowed)
	assert.ErrorIs(&APIError{Code: "NO_TEXT"}, ErrEmptyContent)
	assert.ErrorIs(&APIError{Code: "TOO_LONG"}, ErrContentTooLong)

	// unknown codes stay generic
	err := &APIError{Code: "WEIRD_NEW_CODE", Message: "who knows"}
	assert.NotErrorIs(err, ErrRateLimited)
	assert.Contains(err.Error(), "WEIRD_NEW_CODE")
}
