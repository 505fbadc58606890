package main

import (
	"fmt"
	"strings"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/engine"
	"github.com/postdeck/gatehouse/reddit"
	"github.com/postdeck/gatehouse/util"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("stile")

type postRequest struct {
	UserID    string `json:"userID"`
	Community string `json:"community"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url"`
	HasLink   bool   `json:"hasLink"`
	NSFW      bool   `json:"nsfw"`
	Kind      string `json:"kind"`
	// Optional ISO 8601 timestamp; the check is evaluated as of this moment
	// instead of now
	IntendedAt string `json:"intendedAt,omitempty"`
}

func (req *postRequest) postMeta() (engine.PostMeta, error) {
	meta := engine.PostMeta{
		Title:   req.Title,
		Body:    req.Body,
		URL:     req.URL,
		HasLink: req.HasLink,
		NSFW:    req.NSFW,
		Kind:    reddit.PostKind(req.Kind),
	}
	if req.IntendedAt != "" {
		at, err := util.ParseTimestamp(req.IntendedAt)
		if err != nil {
			return meta, err
		}
		meta.IntendedAt = at
	}
	return meta, nil
}

func (s *Server) handleCheckPost(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleCheckPost")
	defer span.End()

	var req postRequest
	if err := e.Bind(&req); err != nil {
		return e.JSON(400, map[string]any{
			"error": fmt.Sprintf("invalid request body: %s", err),
		})
	}
	meta, err := req.postMeta()
	if err != nil {
		return e.JSON(400, map[string]any{
			"error": fmt.Sprintf("invalid intendedAt: %s", err),
		})
	}

	// CheckPost never errors; malformed input and infrastructure trouble both
	// come back as blocked decisions
	dec := s.engine.CheckPost(ctx, req.UserID, req.Community, meta)
	return e.JSON(200, dec)
}

func (s *Server) handleRecordPost(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleRecordPost")
	defer span.End()

	var req postRequest
	if err := e.Bind(&req); err != nil {
		return e.JSON(400, map[string]any{
			"error": fmt.Sprintf("invalid request body: %s", err),
		})
	}
	if req.UserID == "" {
		return e.JSON(400, map[string]any{
			"error": "must pass a userID",
		})
	}
	name, err := communities.NormalizeName(req.Community)
	if err != nil {
		return e.JSON(400, map[string]any{
			"error": "invalid community name",
		})
	}

	if err := s.engine.RecordPost(ctx, req.UserID, name, req.Title, req.Body); err != nil {
		s.logger.Error("failed to record post", "err", err, "user", req.UserID, "community", name)
		return e.JSON(500, map[string]any{
			"error": "failed to record post",
		})
	}
	return e.JSON(200, map[string]any{"recorded": true})
}

func (s *Server) handleCheckShadowban(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleCheckShadowban")
	defer span.End()

	username := strings.TrimSpace(e.QueryParam("username"))
	if username == "" {
		return e.JSON(400, map[string]any{
			"error": "must pass a username to check",
		})
	}

	report := s.engine.CheckShadowban(ctx, username)
	return e.JSON(200, report)
}

type communityView struct {
	Name                 string  `json:"name"`
	VerificationRequired bool    `json:"verificationRequired"`
	PromotionPolicy      string  `json:"promotionPolicy"`
	NSFWRequired         bool    `json:"nsfwRequired"`
	MinKarma             *int    `json:"minKarma,omitempty"`
	MinAccountAgeDays    *int    `json:"minAccountAgeDays,omitempty"`
	DailyLimit           *int    `json:"dailyLimit,omitempty"`
	WeeklyLimit          *int    `json:"weeklyLimit,omitempty"`
	CooldownMinutes      *int    `json:"cooldownMinutes,omitempty"`
	UsedLegacyRules      bool    `json:"usedLegacyRules"`
	LegacyLinkPolicy     *string `json:"legacyLinkPolicy,omitempty"`
}

func viewOfCommunity(cmeta *engine.CommunityMeta) communityView {
	out := communityView{
		Name:                 cmeta.Name,
		VerificationRequired: cmeta.VerificationRequired(),
		PromotionPolicy:      string(cmeta.PromotionPolicy()),
		NSFWRequired:         cmeta.NSFWRequired(),
		MinKarma:             cmeta.MinKarma(),
		MinAccountAgeDays:    cmeta.MinAccountAgeDays(),
	}
	if p := cmeta.Profile; p != nil {
		out.DailyLimit = p.DailyLimit
		out.WeeklyLimit = p.WeeklyLimit
		out.CooldownMinutes = p.CooldownMinutes
	}
	if l := cmeta.Legacy; l != nil {
		if cmeta.Profile == nil {
			out.UsedLegacyRules = true
			lp := string(l.LinkPolicy)
			out.LegacyLinkPolicy = &lp
			out.DailyLimit = l.DailyLimit
			out.CooldownMinutes = l.CooldownMinutes
		}
	}
	return out
}

func (s *Server) handleGetCommunity(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleGetCommunity")
	defer span.End()

	name, err := communities.NormalizeName(e.QueryParam("name"))
	if err != nil {
		return e.JSON(400, map[string]any{
			"error": "invalid community name",
		})
	}

	cmeta, err := s.engine.GetCommunityMeta(ctx, name)
	if err != nil {
		s.logger.Error("community lookup failed", "err", err, "community", name)
		return e.JSON(500, map[string]any{
			"error": "community lookup failed",
		})
	}
	if !cmeta.HasRules() {
		return e.JSON(404, map[string]any{
			"error": fmt.Sprintf("no rule metadata for r/%s", name),
		})
	}
	return e.JSON(200, viewOfCommunity(cmeta))
}

func (s *Server) handleAdminUpsertCommunity(e echo.Context) error {
	ctx, span := tracer.Start(e.Request().Context(), "handleAdminUpsertCommunity")
	defer span.End()

	name, err := communities.NormalizeName(e.Param("name"))
	if err != nil {
		return e.JSON(400, map[string]any{
			"error": "invalid community name",
		})
	}

	var raw map[string]any
	if err := e.Bind(&raw); err != nil {
		return e.JSON(400, map[string]any{
			"error": fmt.Sprintf("invalid rule data: %s", err),
		})
	}

	if err := s.dir.Upsert(ctx, name, raw); err != nil {
		s.logger.Error("community upsert failed", "err", err, "community", name)
		return e.JSON(500, map[string]any{
			"error": "failed to store community rules",
		})
	}
	// next lookup should see the new rules, not a cached copy
	s.cachedDir.Purge(ctx, name)
	s.logger.Info("community rules updated", "community", name)
	return e.JSON(200, map[string]any{"updated": name})
}
