package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/postdeck/gatehouse/util/cliutil"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "stile",
		Usage:   "posting gatekeeper daemon (the step over the fence)",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "reddit-client-id",
			Usage:   "OAuth client ID for the platform API",
			EnvVars: []string{"REDDIT_CLIENT_ID"},
		},
		&cli.StringFlag{
			Name:    "reddit-client-secret",
			Usage:   "OAuth client secret for the platform API",
			EnvVars: []string{"REDDIT_CLIENT_SECRET"},
		},
		&cli.StringFlag{
			Name:    "reddit-user-agent",
			Usage:   "User-Agent header sent on all platform API requests",
			Value:   "gatehouse-stile/0.1",
			EnvVars: []string{"REDDIT_USER_AGENT"},
		},
		&cli.IntFlag{
			Name:    "max-metadb-connections",
			EnvVars: []string{"MAX_METADB_CONNECTIONS"},
			Value:   40,
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Value:   "sqlite://data/stile/gatehouse.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for counters, caches, and flags; in-process stores when empty",
			EnvVars: []string{"STILE_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "sets-json-path",
			Usage:   "file path of JSON file containing static sets, eg the approved image hosts",
			EnvVars: []string{"STILE_SETS_JSON_PATH"},
		},
		&cli.StringFlag{
			Name:    "admin-token",
			Usage:   "bearer token protecting the /admin endpoints; they stay disabled when empty",
			EnvVars: []string{"STILE_ADMIN_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":3983",
			EnvVars: []string{"STILE_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3982",
			EnvVars: []string{"STILE_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "sweep-schedule",
			Usage:   "cron schedule for the shadowban account sweep",
			Value:   "@hourly",
			EnvVars: []string{"STILE_SWEEP_SCHEDULE"},
		},
		&cli.DurationFlag{
			Name:    "sweep-window",
			Usage:   "how far back posting activity counts as active for the sweep",
			Value:   7 * 24 * time.Hour,
			EnvVars: []string{"STILE_SWEEP_WINDOW"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger, err := cliutil.SetupSlog(cliutil.LogOptions{})
		if err != nil {
			return err
		}

		// Enable OTLP HTTP exporter
		// For relevant environment variables:
		// https://pkg.go.dev/go.opentelemetry.io/otel/exporters/otlp/otlptrace#readme-environment-variables
		// At a minimum, you need to set
		// OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4318
		if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
			slog.Info("setting up trace exporter", "endpoint", ep)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			exp, err := otlptracehttp.New(ctx)
			if err != nil {
				log.Fatal("failed to create trace exporter", "error", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := exp.Shutdown(ctx); err != nil {
					slog.Error("failed to shutdown trace exporter", "error", err)
				}
			}()

			tp := tracesdk.NewTracerProvider(
				tracesdk.WithBatcher(exp),
				tracesdk.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceNameKey.String("stile"),
					attribute.String("env", os.Getenv("ENVIRONMENT")),         // DataDog
					attribute.String("environment", os.Getenv("ENVIRONMENT")), // Others
					attribute.Int64("ID", 1),
				)),
			)
			otel.SetTracerProvider(tp)
		}

		db, err := cliutil.SetupDatabase(cctx.String("database-url"), cctx.Int("max-metadb-connections"))
		if err != nil {
			return err
		}

		srv, err := NewServer(
			db,
			Config{
				Logger:             logger,
				Bind:               cctx.String("bind"),
				RedisURL:           cctx.String("redis-url"),
				SetsFileJSON:       cctx.String("sets-json-path"),
				AdminToken:         cctx.String("admin-token"),
				RedditClientID:     cctx.String("reddit-client-id"),
				RedditClientSecret: cctx.String("reddit-client-secret"),
				RedditUserAgent:    cctx.String("reddit-user-agent"),
				SweepSchedule:      cctx.String("sweep-schedule"),
				SweepWindow:        cctx.Duration("sweep-window"),
			},
		)
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.Run(); err != nil {
			return fmt.Errorf("failed to run gatekeeper service: %w", err)
		}
		return nil
	},
}
