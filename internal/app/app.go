package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/w9840102-lang/mcqforge/internal/auth/jwt"
	"github.com/w9840102-lang/mcqforge/internal/config"
	"github.com/w9840102-lang/mcqforge/internal/db/queries"
	"github.com/w9840102-lang/mcqforge/internal/db/repository"
	"github.com/w9840102-lang/mcqforge/internal/logging"
	"github.com/w9840102-lang/mcqforge/internal/metrics"
	"github.com/w9840102-lang/mcqforge/internal/question"
	"github.com/w9840102-lang/mcqforge/internal/question/ai"
	"github.com/w9840102-lang/mcqforge/internal/server"
	"github.com/w9840102-lang/mcqforge/internal/session"
	ws "github.com/w9840102-lang/mcqforge/pkg/http/ws"
)

// Application aggregates shared infrastructure (bank, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	sweeper   *session.SweepWorker
	bgCancels []context.CancelFunc
}

// New bootstraps the logger, topic bank, generation cache and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	a := &Application{cfg: cfg, logger: logger}
	deps := map[string]server.Pinger{}

	bank, err := a.openBank(ctx, deps)
	if err != nil {
		return nil, err
	}

	var cache question.SetCache
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		cache = question.NewCache(a.redis, cfg.AI.CacheTTL)
		deps["redis"] = server.PingFunc(func(ctx context.Context) error { return a.redis.Ping(ctx).Err() })
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; generated sets will not be cached")
	}

	var generator question.Generator
	if cfg.AI.GeneratorURL != "" {
		generator = ai.NewGenerator(ai.Config{
			GeneratorURL:   cfg.AI.GeneratorURL,
			GeneratorKey:   cfg.AI.GeneratorKey,
			Timeout:        cfg.AI.HTTPTimeout,
			MaxRetries:     cfg.AI.MaxRetries,
			RetryBaseDelay: cfg.AI.RetryBaseDelay,
		}, logger)
	} else {
		logger.Warn().Msg("AI_GENERATOR_URL not set; image sessions disabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	questionSvc := question.NewService(bank, generator, cache, question.ServiceOptions{Metrics: m}, logger)

	tokens := jwt.NewManager(jwt.TokenConfig{
		Secret: []byte(cfg.Security.SessionTokenSecret),
		TTL:    cfg.Security.SessionTokenTTL,
		Issuer: cfg.Name,
	})

	hub := ws.NewHub(logger)
	registry := session.NewRegistry(cfg.Session.IdleTTL, m, logger)
	sessionSvc := session.NewService(registry, questionSvc, tokens, hub, m, logger)
	a.sweeper = session.NewSweepWorker(registry, cfg.Session.SweepInterval, hub.Drop, logger)

	sessionHTTP := session.NewHTTPHandlers(sessionSvc, logger)
	sessionWS := session.NewWSHandler(sessionSvc, hub, ws.NewUpgrader(cfg.Session.AllowedOrigins), cfg.Session.TapDebounce, logger)
	topicHTTP := question.NewHandler(questionSvc, logger)

	router := server.NewRouter(logger, server.Handlers{
		Topics:    topicHTTP.Topics,
		Sessions:  sessionHTTP.Routes,
		WebSocket: sessionWS.HandleWebSocket,
	}, server.Options{
		CORS:         cfg.CORS,
		Gatherer:     prometheus.DefaultGatherer,
		Dependencies: deps,
	})
	a.http = server.NewHTTPServer(cfg, router)

	return a, nil
}

func (a *Application) openBank(ctx context.Context, deps map[string]server.Pinger) (question.TopicBank, error) {
	switch strings.ToLower(a.cfg.Bank.Source) {
	case config.BankFile:
		bank, err := question.LoadFileBank(a.cfg.Bank.File)
		if err != nil {
			return nil, fmt.Errorf("load topic bank: %w", err)
		}
		a.logger.Info().Str("file", a.cfg.Bank.File).Msg("topic bank loaded from file")
		return bank, nil
	default:
		poolCfg, err := pgxpool.ParseConfig(a.cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("parse postgres config: %w", err)
		}
		poolCfg.MaxConns = a.cfg.Postgres.MaxConns

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool
		deps["postgres"] = pool

		repo := repository.NewQuestionRepository(queries.New(pool))
		return question.NewPostgresBank(repo), nil
	}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.sweeper == nil {
		return
	}
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.sweeper.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Msg("session sweep worker stopped")
		}
	}()
}
