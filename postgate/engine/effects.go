package engine

import (
	"sync"
	"time"
)

type CounterRef struct {
	Name string
	Val  string
	// If nil, increment all periods. Otherwise, increment the specified period.
	Period *string
}

type CounterDistinctRef struct {
	Name   string
	Bucket string
	Val    string
}

// Accumulates the outcomes of rule evaluation: user-facing verdict parts
// (reasons, warnings, next-allowed time) and side effects that only get
// persisted when the caller actually records a post.
type Effects struct {
	// Mutex to prevent concurrent rule evaluation from corrupting shared state
	mu sync.Mutex
	// Blocking reasons. The post is denied iff this is non-empty.
	Reasons []string
	// Advisory messages that surface without blocking.
	Warnings []string
	// Earliest time a time-based restriction clears, if one is binding.
	NextAllowedPost *time.Time
	// Counters which should be incremented as part of processing this event.
	// These are collected during rule execution and persisted by the write
	// path, never by a read-only check.
	CounterIncrements         []CounterRef
	CounterDistinctIncrements []CounterDistinctRef
	// Flags which should be persisted against the account.
	AccountFlags []string
	// Flags which should be cleared from the account, eg when a periodic
	// sweep finds an earlier suspicion no longer holds.
	RemoveAccountFlags []string
}

// Records a blocking reason. Empty and duplicate reasons are dropped.
func (e *Effects) Deny(reason string) {
	if reason == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.Reasons {
		if r == reason {
			return
		}
	}
	e.Reasons = append(e.Reasons, reason)
}

// Records an advisory message. Empty and duplicate messages are dropped.
func (e *Effects) Warn(msg string) {
	if msg == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, w := range e.Warnings {
		if w == msg {
			return
		}
	}
	e.Warnings = append(e.Warnings, msg)
}

// Records when a time-based restriction clears. The earliest recorded time
// wins, so the caller always learns the soonest moment worth retrying.
func (e *Effects) SetNextAllowedPost(t time.Time) {
	if t.IsZero() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.NextAllowedPost == nil || t.Before(*e.NextAllowedPost) {
		e.NextAllowedPost = &t
	}
}
