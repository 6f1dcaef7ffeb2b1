// Command authcore-server serves the credential and session API over HTTP.
//
// Configuration is read from a TOML file, a .env file, AUTHCORE_*
// environment variables and flags; see internal/serverconfig.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/internal/httpapi"
	"github.com/MrEthical07/authcore/internal/logging"
	"github.com/MrEthical07/authcore/internal/serverconfig"
	"github.com/MrEthical07/authcore/metrics/export/prometheus"
	"github.com/MrEthical07/authcore/store/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "authcore-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := serverconfig.Load(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	builder := authcore.New().
		WithConfig(cfg.EngineConfig()).
		WithLogger(logger).
		WithMailer(authcore.LogMailer{Logger: logger.With("component", "mailer")})

	if cfg.DatabaseDSN != "" {
		store, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if cfg.MigrateOnStart {
			if err := store.Migrate(ctx); err != nil {
				return err
			}
		}
		builder.WithCredentialStore(store)
	} else {
		logger.Warn(ctx, "no database configured, accounts are kept in memory")
		builder.WithCredentialStore(authcore.NewMemoryStore())
	}

	if cfg.RedisAddr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{cfg.RedisAddr}})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		builder.WithResetTokenStore(authcore.NewRedisResetTokenStore(client, cfg.RedisPrefix))
	}

	if cfg.AuditLog {
		builder.WithAuditSink(authcore.NewLoggerSink(logger.With("component", "audit")))
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(engine, logger, cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	logger.Info(shutdownCtx, "shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newRouter(engine *authcore.Engine, logger logging.Logger, cfg serverconfig.Config) *mux.Router {
	r := mux.NewRouter()
	// Validate already parsed the proxy list.
	ips, _ := cfg.ClientIPResolver()
	httpapi.New(engine, logger,
		httpapi.WithSecureCookie(cfg.SecureCookie),
		httpapi.WithClientIPResolver(ips),
	).Mount(r)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", prometheus.New(engine).Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	return r
}
