// Command jobly serves the jobly REST API.
//
// Configuration comes from the environment (optionally a .env file) and an
// optional TOML file named by JOBLY_CONFIG. See package config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Skryldev/jobly/api"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/config"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/migrations"
	"github.com/Skryldev/jobly/telemetry"

	// database/sql drivers; DB_DRIVER picks one.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		fatalf("%v", err)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	queryMetrics, err := telemetry.NewQueryMetrics(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := telemetry.NewHTTPMetrics(reg)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer := tp.Tracer("github.com/Skryldev/jobly")

	// ── Database ──────────────────────────────────────────────────────────
	dbCfg := db.Config{
		DSN:             cfg.Database.URL,
		DriverName:      cfg.Database.Driver,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		DefaultTimeout:  cfg.Database.QueryTimeout,
		Hooks: []db.Hook{
			db.NewLogHook(db.LogHookConfig{
				Logger:             logger,
				SlowQueryThreshold: cfg.Database.SlowQuery,
				LogArgs:            cfg.Database.LogArgs,
			}),
			db.NewMetricsHook(queryMetrics),
			db.NewTracingHook(telemetry.NewQueryTracer(tracer)),
		},
	}

	// The database may still be starting when we are.
	var database *db.DB
	err = db.WithRetry(ctx, db.RetryConfig{
		MaxAttempts: 5,
		Delay:       2 * time.Second,
		RetryOn:     func(error) bool { return true },
	}, func() error {
		d, err := db.Open(dbCfg)
		if err != nil {
			logger.Warn("database not reachable", "driver", dbCfg.DriverName, "err", err)
			return err
		}
		database = d
		return nil
	})
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(database.Raw(), cfg.Database.Driver); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	// ── HTTP ──────────────────────────────────────────────────────────────
	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.TokenTTL)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewServer(api.Options{
			DB:       database,
			Hasher:   auth.NewArgon2Hasher(auth.DefaultArgon2Params),
			Tokens:   tokens,
			Logger:   logger,
			Metrics:  httpMetrics,
			Gatherer: reg,
			Tracer:   tracer,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Env, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
