package util

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type LeveledSlog struct {
	inner *slog.Logger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l LeveledSlog) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

// re-writes HTTP client DEBUG to INFO level (this is where retry is logged)
func (l LeveledSlog) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

// Generates an HTTP client with decent general-purpose defaults around
// timeouts and retries. The returned client has the stdlib http.Client
// interface, but has Hashicorp retryablehttp logic internally.
//
// This client will retry on connection errors, 5xx status (except 501), and
// 429 Backoff requests (respecting 'Retry-After' header). It will log
// intermediate failures with WARN level. This does not start from
// http.DefaultClient.
//
// This should be usable for platform API clients, and other general
// inter-service client needs. CLI tools might want shorter timeouts and
// fewer retries by default.
func RobustHTTPClient() *http.Client {

	logger := LeveledSlog{inner: slog.Default().With("subsystem", "RobustHTTPClient")}
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(logger)
	client := retryClient.StandardClient()
	client.Timeout = 20 * time.Second
	return client
}

// TestingHTTPClient has fewer retries and tighter timeouts, for tests which
// exercise failure paths against local servers.
func TestingHTTPClient() *http.Client {

	logger := LeveledSlog{inner: slog.Default().With("subsystem", "TestingHTTPClient")}
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 1
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 400 * time.Millisecond
	retryClient.Logger = retryablehttp.LeveledLogger(logger)
	client := retryClient.StandardClient()
	client.Timeout = 2 * time.Second
	return client
}
