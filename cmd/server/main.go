package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"domaindesk/internal/app"
	"domaindesk/internal/platform/config"
	"domaindesk/internal/platform/httpserver"
	"domaindesk/internal/platform/logger"
	"domaindesk/internal/platform/metrics"
	"domaindesk/internal/platform/middleware"
	"domaindesk/internal/platform/postgres"
	"domaindesk/internal/platform/redis"
	"domaindesk/internal/seed"
	"domaindesk/internal/session"
	httptransport "domaindesk/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	checks := map[string]httptransport.HealthCheck{}

	stores, db, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		checks["postgres"] = db.PingContext
	}

	sessions, rdb, err := openSessions(ctx, cfg, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = rdb.Health
	}

	tokens := session.NewTokens(cfg.Session.SigningKey)
	if mem, ok := sessions.(*session.InMemory); ok && !cfg.IsProduction() {
		if err := issueDevSession(ctx, tokens, mem, log); err != nil {
			return err
		}
	}

	modules := app.Wire(stores, log, m)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		Verifier:       session.NewVerifier(tokens, sessions),
		CookieName:     cfg.Session.CookieName,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log, m),
		RequestTimeout: cfg.RequestTimeout,
		HealthChecks:   checks,
		Modules:        modules.Routes(log),
	})

	log.Info("starting domaindesk",
		"addr", cfg.Addr,
		"env", cfg.Environment,
		"storage", cfg.Storage.Backend,
	)
	return httpserver.Serve(ctx, httpserver.New(cfg.Addr, router, cfg.RequestTimeout), log, shutdownTimeout)
}

// openStores returns the record stores. db is nil for the memory backend,
// which is seeded with demo data.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (app.Stores, *sql.DB, error) {
	if cfg.Storage.Backend == config.StoragePostgres {
		db, err := postgres.Open(ctx, cfg.Storage)
		if err != nil {
			return app.Stores{}, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return app.Stores{}, nil, err
		}
		return app.PostgresStores(db), db, nil
	}

	mem := app.NewMemory()
	res, err := seed.Demo(ctx, mem.Domains, mem.Offers, mem.Consultations, time.Now())
	if err != nil {
		return app.Stores{}, nil, err
	}
	log.Info("seeded in-memory stores",
		"domains", res.Domains,
		"offers", res.Offers,
		"consultations", res.Consultations,
	)
	return mem.Stores(), nil, nil
}

// openSessions returns the session store the auth service writes to. Without
// REDIS_URL sessions live in memory, which only suits development.
func openSessions(ctx context.Context, cfg config.Server, log *slog.Logger) (session.Store, *redis.Client, error) {
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if rdb == nil {
		log.Warn("REDIS_URL not set, using in-memory session store")
		return session.NewInMemory(), nil, nil
	}
	return session.NewRedisStore(rdb.Client), rdb, nil
}

// issueDevSession stands in for the auth service during local development so
// deskctl and curl have a token to use.
func issueDevSession(ctx context.Context, tokens *session.Tokens, store *session.InMemory, log *slog.Logger) error {
	now := time.Now()
	sess := session.Session{ID: "dev-session", UserID: "dev-admin", ExpiresAt: now.Add(24 * time.Hour)}
	if err := store.Put(ctx, sess); err != nil {
		return err
	}
	token, err := tokens.Issue(sess.UserID, sess.ID, now, 24*time.Hour)
	if err != nil {
		return err
	}
	log.Info("development session issued", "user_id", sess.UserID, "token", token)
	return nil
}
