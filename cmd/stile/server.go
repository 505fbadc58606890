package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/cachestore"
	"github.com/postdeck/gatehouse/postgate/countstore"
	"github.com/postdeck/gatehouse/postgate/engine"
	"github.com/postdeck/gatehouse/postgate/flagstore"
	"github.com/postdeck/gatehouse/postgate/histstore"
	"github.com/postdeck/gatehouse/postgate/pacing"
	"github.com/postdeck/gatehouse/postgate/rules"
	"github.com/postdeck/gatehouse/postgate/safety"
	"github.com/postdeck/gatehouse/postgate/setstore"
	"github.com/postdeck/gatehouse/reddit"
	"github.com/postdeck/gatehouse/shadowban"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	slogecho "github.com/samber/slog-echo"
	"gorm.io/gorm"
)

type Server struct {
	logger     *slog.Logger
	engine     *engine.Engine
	dir        *communities.GormDirectory
	cachedDir  *communities.CachedDirectory
	echo       *echo.Echo
	httpd      *http.Server
	sweeper    *Sweeper
	adminToken string
}

type Config struct {
	Logger             *slog.Logger
	Bind               string
	RedisURL           string
	SetsFileJSON       string
	AdminToken         string
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	SweepSchedule      string
	SweepWindow        time.Duration
}

func NewServer(db *gorm.DB, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	sets := setstore.NewMemSetStore()
	if config.SetsFileJSON != "" {
		if err := sets.LoadFromFileJSON(config.SetsFileJSON); err != nil {
			return nil, fmt.Errorf("initializing in-process setstore: %v", err)
		} else {
			logger.Info("loaded set config from JSON", "path", config.SetsFileJSON)
		}
	}

	var counters countstore.CountStore
	var cache cachestore.CacheStore
	var flags flagstore.FlagStore
	if config.RedisURL != "" {
		// check the redis connection before wiring any store to it
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		_, err = rdb.Ping(context.TODO()).Result()
		if err != nil {
			return nil, fmt.Errorf("redis ping failed: %v", err)
		}

		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %v", err)
		}
		counters = cnt

		csh, err := cachestore.NewRedisCacheStore(config.RedisURL, 30*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %v", err)
		}
		cache = csh

		flg, err := flagstore.NewRedisFlagStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis flagstore: %v", err)
		}
		flags = flg
	} else {
		counters = countstore.NewMemCountStore()
		cache = cachestore.NewMemCacheStore(5_000, 30*time.Minute)
		flags = flagstore.NewMemFlagStore()
	}

	hist, err := histstore.NewGormHistStore(db)
	if err != nil {
		return nil, err
	}

	gdir, err := communities.NewGormDirectory(db)
	if err != nil {
		return nil, err
	}
	cdir := communities.NewCachedDirectory(gdir, 50_000, time.Hour, 2*time.Minute)

	var client reddit.Client
	var detector *shadowban.Detector
	if config.RedditClientID != "" && config.RedditClientSecret != "" {
		client = reddit.NewHTTPClient(config.RedditClientID, config.RedditClientSecret, config.RedditUserAgent)
		detector = shadowban.NewDetector(client, logger)
	} else {
		logger.Warn("platform API credentials not configured; account hydration and shadowban checks disabled")
	}

	eng := engine.Engine{
		Logger:    logger,
		Directory: cdir,
		Rules:     rules.DefaultRules(),
		Pacing:    pacing.NewTracker(hist, counters, logger),
		History:   hist,
		Counters:  counters,
		Sets:      sets,
		Cache:     cache,
		Flags:     flags,
		Client:    client,
		Safety:    safety.NewChecker(counters, logger),
		Shadowban: detector,
	}

	s := &Server{
		logger:     logger,
		engine:     &eng,
		dir:        gdir,
		cachedDir:  cdir,
		adminToken: config.AdminToken,
	}
	s.sweeper = NewSweeper(&eng, hist, logger, config.SweepSchedule, config.SweepWindow)

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(echoprometheus.NewMiddleware("stile"))
	e.Use(middleware.BodyLimit("1M"))
	e.HTTPErrorHandler = s.errorHandler

	e.GET("/_health", s.HandleHealthCheck)

	e.POST("/xrpc/com.postdeck.gatehouse.checkPost", s.handleCheckPost)
	e.POST("/xrpc/com.postdeck.gatehouse.recordPost", s.handleRecordPost)
	e.GET("/xrpc/com.postdeck.gatehouse.checkShadowban", s.handleCheckShadowban)
	e.GET("/xrpc/com.postdeck.gatehouse.getCommunity", s.handleGetCommunity)

	if config.AdminToken != "" {
		admin := e.Group("/admin", s.checkAdminAuth)
		admin.PUT("/communities/:name", s.handleAdminUpsertCommunity)
	}

	s.echo = e

	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)
	s.httpd = &http.Server{
		Handler:        s,
		Addr:           config.Bind,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	return s, nil
}

// Run starts the sweep schedule and the HTTP listener, then blocks until an
// exit signal arrives and shutdown completes.
func (s *Server) Run() error {
	if err := s.sweeper.Start(); err != nil {
		return err
	}

	s.logger.Info("starting server", "bind", s.httpd.Addr)
	go func() {
		if err := s.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	// Wait for a signal to exit.
	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		s.logger.Info("received OS exit signal", "signal", sig)

		if err := s.Shutdown(); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
		}

		// Trigger the return that causes an exit.
		close(quit)
	}()
	<-quit
	s.logger.Info("graceful shutdown complete")
	return nil
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	s.echo.ServeHTTP(rw, req)
}

func (s *Server) Shutdown() error {
	s.logger.Info("shutting down")
	s.sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpd.Shutdown(ctx)
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (s *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "stile"})
}

func (s *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= 500 {
		s.logger.Warn("stile-http-internal-error", "err", err)
	}
	if !c.Response().Committed {
		c.JSON(code, map[string]any{"error": msg})
	}
}

func (s *Server) checkAdminAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(e echo.Context) error {
		authheader := e.Request().Header.Get("Authorization")
		pref := "Bearer "
		if !strings.HasPrefix(authheader, pref) {
			return echo.ErrForbidden
		}

		token := authheader[len(pref):]
		if token != s.adminToken {
			return echo.ErrForbidden
		}

		return next(e)
	}
}
