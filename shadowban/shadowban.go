// Package shadowban detects platform-side suppression of an account's posts
// by diffing two views of the same listing: the authenticated self view,
// which always shows the account its own posts, and the public unauthenticated
// view, which omits anything the platform is hiding. A submission present in
// the first but absent from the second is being hidden from everyone else.
//
// Results are reports, not errors: a fetch failure or an empty history
// produces a report that says so explicitly, so callers can never mistake
// "could not check" for "verified clean".
package shadowban

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/postdeck/gatehouse/reddit"
)

// How many recent submissions each listing view is asked for.
const DefaultListingLimit = 25

// Cap on the hidden posts included in a report; the counts still reflect
// everything found.
const maxReportedHidden = 5

type HiddenPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Report is the outcome of one shadowban check. IsShadowbanned is only
// meaningful when Error is empty and TotalSelfPosts is non-zero; the
// StatusMessage spells out the inconclusive cases.
type Report struct {
	IsShadowbanned bool         `json:"isShadowbanned"`
	StatusMessage  string       `json:"statusMessage"`
	PublicCount    int          `json:"publicCount"`
	TotalSelfPosts int          `json:"totalSelfPosts"`
	HiddenCount    int          `json:"hiddenCount"`
	HiddenPosts    []HiddenPost `json:"hiddenPosts"`
	CheckedAt      time.Time    `json:"checkedAt"`
	Error          string       `json:"error,omitempty"`
}

// Conclusive reports whether the check actually examined submissions: false
// when the fetch failed or there was nothing to analyze.
func (r *Report) Conclusive() bool {
	return r.Error == "" && r.TotalSelfPosts > 0
}

type Detector struct {
	Client reddit.Client
	// Listing size per view; DefaultListingLimit when zero
	Limit  int
	Logger *slog.Logger
}

func NewDetector(client reddit.Client, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		Client: client,
		Limit:  DefaultListingLimit,
		Logger: logger.With("component", "shadowban"),
	}
}

// Check fetches both listing views concurrently and diffs them.
func (d *Detector) Check(ctx context.Context, username string) *Report {
	report := &Report{
		CheckedAt:   time.Now().UTC(),
		HiddenPosts: []HiddenPost{},
	}
	limit := d.Limit
	if limit <= 0 {
		limit = DefaultListingLimit
	}

	var selfView, publicView []reddit.Submission
	var selfErr, publicErr error
	eg := new(errgroup.Group)
	eg.Go(func() error {
		selfView, selfErr = d.Client.SelfSubmissions(ctx, username, limit)
		return selfErr
	})
	eg.Go(func() error {
		publicView, publicErr = d.Client.PublicSubmissions(ctx, username, limit)
		return publicErr
	})
	// both sides are inspected individually below
	_ = eg.Wait()

	if selfErr != nil {
		d.Logger.Warn("self listing fetch failed", "err", selfErr, "user", username)
		checkCount.WithLabelValues("error").Inc()
		report.Error = fmt.Sprintf("fetching submission history: %v", selfErr)
		report.StatusMessage = "could not determine status: submission history unavailable"
		return report
	}
	report.TotalSelfPosts = len(selfView)

	if publicErr != nil {
		d.Logger.Warn("public listing fetch failed", "err", publicErr, "user", username)
		checkCount.WithLabelValues("error").Inc()
		report.Error = fmt.Sprintf("fetching public listing: %v", publicErr)
		report.StatusMessage = "could not determine status: public listing unavailable"
		return report
	}
	report.PublicCount = len(publicView)

	if len(selfView) == 0 {
		checkCount.WithLabelValues("inconclusive").Inc()
		report.StatusMessage = "inconclusive: no submissions to analyze"
		return report
	}

	publicIDs := make(map[string]bool, len(publicView))
	for _, sub := range publicView {
		publicIDs[sub.ID] = true
	}

	for _, sub := range selfView {
		if publicIDs[sub.ID] {
			continue
		}
		report.HiddenCount++
		if len(report.HiddenPosts) < maxReportedHidden {
			report.HiddenPosts = append(report.HiddenPosts, HiddenPost{
				ID:        sub.ID,
				Title:     sub.Title,
				CreatedAt: sub.CreatedAt,
			})
		}
	}

	if report.HiddenCount > 0 {
		report.IsShadowbanned = true
		pct := report.HiddenCount * 100 / report.TotalSelfPosts
		report.StatusMessage = fmt.Sprintf("%d of %d recent submissions (%d%%) are hidden from public view", report.HiddenCount, report.TotalSelfPosts, pct)
		checkCount.WithLabelValues("shadowbanned").Inc()
		d.Logger.Info("hidden submissions detected", "user", username, "hidden", report.HiddenCount, "total", report.TotalSelfPosts)
	} else {
		report.StatusMessage = fmt.Sprintf("all %d recent submissions are publicly visible", report.TotalSelfPosts)
		checkCount.WithLabelValues("clean").Inc()
	}
	return report
}
