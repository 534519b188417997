package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/honeypot/internal/agent"
	"github.com/gosuda/honeypot/internal/agent/backends"
	v1 "github.com/gosuda/honeypot/internal/api/v1"
	"github.com/gosuda/honeypot/internal/config"
	"github.com/gosuda/honeypot/internal/detect"
	"github.com/gosuda/honeypot/internal/domain"
	"github.com/gosuda/honeypot/internal/honeypot"
	"github.com/gosuda/honeypot/internal/intel"
	hpslack "github.com/gosuda/honeypot/internal/messenger/slack"
	"github.com/gosuda/honeypot/internal/notify"
	"github.com/gosuda/honeypot/internal/report"
	"github.com/gosuda/honeypot/internal/server"
	"github.com/gosuda/honeypot/internal/store/memory"
	"github.com/gosuda/honeypot/internal/store/postgres"
	redisstore "github.com/gosuda/honeypot/internal/store/redis"
	"github.com/gosuda/honeypot/internal/store/sqlite"
	"github.com/gosuda/honeypot/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the honeypot HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Tracing {
		shutdownTracer, tErr := telemetry.InitTracer(serviceName, version)
		if tErr != nil {
			return tErr
		}
		defer func() {
			if sErr := shutdownTracer(context.Background()); sErr != nil {
				log.Warn().Err(sErr).Msg("tracer shutdown failed")
			}
		}()
	}

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	responder, err := newResponder(cfg)
	if err != nil {
		return err
	}

	dispatchOpts := []report.Option{}

	archive, closeArchive, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeArchive()
	if archive != nil {
		dispatchOpts = append(dispatchOpts, report.WithArchive(archive))
	}

	if cfg.Slack.BotToken != "" {
		messengers := notify.NewRegistry()
		slackMessenger := hpslack.NewFromToken(cfg.Slack.BotToken)
		messengers.Register(slackMessenger)
		notifier := notify.New(messengers, notify.Target{Platform: slackMessenger.Platform(), ChannelID: cfg.Slack.Channel})
		dispatchOpts = append(dispatchOpts, report.WithAlerter(notifier))
		log.Info().Str("channel", cfg.Slack.Channel).Msg("slack alerts enabled")
	}

	dispatcher := report.NewDispatcher(report.NewCallback(cfg.Callback.URL, cfg.Callback.Timeout), dispatchOpts...)

	engineOpts := []honeypot.Option{honeypot.WithMaxAge(cfg.Session.MaxAge)}
	if locker, ok := sessions.(honeypot.SessionLocker); ok {
		engineOpts = append(engineOpts, honeypot.WithSessionLocker(locker))
	}

	engine := honeypot.New(
		sessions,
		detect.NewScorer(cfg.Detection.ScamThreshold),
		intel.NewExtractor(),
		responder,
		dispatcher,
		engineOpts...,
	)

	srv := server.New(ctx, cfg, engine, v1.ServiceInfo{
		Name:        serviceName,
		Version:     version,
		Environment: cfg.Environment,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("environment", cfg.Environment).
			Str("session_store", cfg.Session.Store).
			Str("backend", cfg.Agent.Backend).
			Msg("starting server")
		errCh <- srv.Start(ctx)
	}()

	// Block until shutdown signal or listener failure.
	select {
	case <-ctx.Done():
	case startErr := <-errCh:
		if startErr != nil {
			return startErr
		}
	}
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

func openSessions(ctx context.Context, cfg *config.Config) (domain.SessionRepository, func(), error) {
	switch cfg.Session.Store {
	case "redis":
		store, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisstore.WithLockTTL(cfg.Redis.LockTTL))
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis session store")
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close failed")
			}
		}, nil
	default:
		return memory.NewSessionStore(), func() {}, nil
	}
}

func newResponder(cfg *config.Config) (*agent.Responder, error) {
	registry := agent.NewRegistry()
	backends.Register(registry)

	opts := agent.BackendOptions{
		Model:   cfg.Agent.Model,
		Timeout: cfg.Agent.Timeout,
	}
	switch cfg.Agent.Backend {
	case backends.GeminiName:
		opts.APIKey = cfg.Agent.GeminiAPIKey
		opts.BaseURL = cfg.Agent.GeminiBaseURL
	case backends.OllamaName:
		opts.BaseURL = cfg.Agent.OllamaBaseURL
	}

	gen, err := registry.Create(cfg.Agent.Backend, opts)
	if err != nil {
		return nil, fmt.Errorf("agent backend: %w", err)
	}
	return agent.NewResponder(gen, cfg.Agent.Timeout), nil
}

func openArchive(ctx context.Context, cfg *config.Config) (domain.ReportArchive, func(), error) {
	switch cfg.Archive.Kind {
	case "sqlite":
		archive, err := sqlite.Open(cfg.Archive.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.Archive.SQLitePath).Msg("archiving reports to sqlite")
		return archive, func() {
			if err := archive.Close(); err != nil {
				log.Warn().Err(err).Msg("sqlite close failed")
			}
		}, nil
	case "postgres":
		if cfg.Archive.MaxConns < 0 || cfg.Archive.MaxConns > math.MaxInt32 {
			return nil, nil, fmt.Errorf("archive max_conns %d out of int32 range", cfg.Archive.MaxConns)
		}
		store, err := postgres.New(ctx, cfg.Archive.DatabaseURL, int32(cfg.Archive.MaxConns)) //nolint:gosec // bounds checked above
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		log.Info().Msg("archiving reports to postgres")
		return store.Reports(), store.Close, nil
	case "":
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("archive: unknown kind %q", cfg.Archive.Kind)
	}
}
