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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"registrar/internal/audit"
	authHandler "registrar/internal/auth/handler"
	authService "registrar/internal/auth/service"
	enrollmentHandler "registrar/internal/enrollment/handler"
	enrollmentService "registrar/internal/enrollment/service"
	jwttoken "registrar/internal/jwt_token"
	"registrar/internal/platform/config"
	"registrar/internal/platform/httpserver"
	"registrar/internal/platform/logger"
	"registrar/internal/platform/metrics"
	"registrar/internal/platform/middleware"
	rateLimitMiddleware "registrar/internal/ratelimit/middleware"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	m := metrics.New()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	publisher := audit.NewPublisher(cfg.Enrollment.AuditBuffer,
		audit.WithPublisherLogger(log),
		audit.WithPublisherMetrics(m),
	)
	worker := audit.NewWorker(b.auditStore, publisher.Events(), log)

	enrollmentOpts := []enrollmentService.Option{
		enrollmentService.WithLogger(log),
		enrollmentService.WithMetrics(m),
		enrollmentService.WithAuditPublisher(publisher),
		enrollmentService.WithOperationTimeout(cfg.Enrollment.OperationTimeout),
		enrollmentService.WithLockShards(cfg.Enrollment.LockShards),
	}
	if b.sqlTx != nil {
		enrollmentOpts = append(enrollmentOpts, enrollmentService.WithTxRunner(b.sqlTx))
	}
	enrollment := enrollmentService.New(b.courses, b.students, enrollmentOpts...)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	auth := authService.New(b.accounts, b.students, b.revocations, tokens, b.authTx,
		authService.WithLogger(log),
		authService.WithMetrics(m),
		authService.WithAuditPublisher(publisher),
		authService.WithTokenTTL(cfg.Auth.AccessTokenTTL),
	)
	loginLimiter := rateLimitMiddleware.New(b.buckets, log,
		rateLimitMiddleware.WithAuthLimit(cfg.RateLimit.AuthAttempts, cfg.RateLimit.AuthWindow),
		rateLimitMiddleware.WithDisabled(cfg.RateLimit.Disabled),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(m))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", healthHandler(b.healthChecks()))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		r.Use(middleware.ContentTypeJSON)
		authHandler.New(auth, auth, loginLimiter, log).Register(r)
		enrollmentHandler.New(enrollment, auth, log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The worker drains until the publisher closes during shutdown.
		return worker.Run(context.WithoutCancel(gctx))
	})
	g.Go(func() error {
		log.Info("starting registrar", "addr", cfg.Server.Addr, "storage", b.kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if b.purge != nil {
		g.Go(func() error {
			b.purge(gctx, log)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		publisher.Close()
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// purgeEvery runs fn on a fixed interval until ctx ends.
func purgeEvery(interval time.Duration, fn func(ctx context.Context) (int64, error)) func(ctx context.Context, log *slog.Logger) {
	return func(ctx context.Context, log *slog.Logger) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := fn(ctx)
				if err != nil {
					log.WarnContext(ctx, "failed to purge expired revocations", "error", err)
					continue
				}
				if n > 0 {
					log.DebugContext(ctx, "purged expired revocations", "count", n)
				}
			}
		}
	}
}
