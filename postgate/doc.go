// Posting-eligibility and platform-safety engine for community submissions.
//
// This package (`github.com/postdeck/gatehouse/postgate`) contains a "rules engine" which answers, for a given account and target community, whether a post may be submitted right now and why not otherwise. Batches of predicate rules are evaluated against community rule profiles, posting history, rolling pace counters, and externally-resolved eligibility; the outcome is a single structured decision with user-facing reasons and advisory warnings. A lot of what this package does is collect and maintain caches of relevant metadata about accounts and communities, so that rules have efficient access to this information.
//
// See `cmd/stile` for a daemon built on this package.
package postgate
