package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"registrar/internal/audit"
	auditKafka "registrar/internal/audit/store/kafka"
	auditMemory "registrar/internal/audit/store/memory"
	authService "registrar/internal/auth/service"
	"registrar/internal/auth/store/account"
	"registrar/internal/auth/store/revocation"
	enrollmentService "registrar/internal/enrollment/service"
	"registrar/internal/enrollment/store/course"
	"registrar/internal/enrollment/store/student"
	"registrar/internal/platform/config"
	"registrar/internal/platform/postgres"
	redisClient "registrar/internal/platform/redis"
	rateLimitMiddleware "registrar/internal/ratelimit/middleware"
	"registrar/internal/ratelimit/store/bucket"
	"registrar/pkg/platform/tx"
)

const revocationPurgeInterval = 10 * time.Minute

// studentStore is what both services need from the student records.
type studentStore interface {
	enrollmentService.StudentStore
	authService.StudentCreator
}

// backends holds the stores chosen from configuration and the connections
// behind them.
type backends struct {
	kind string

	courses     enrollmentService.CourseStore
	students    studentStore
	accounts    authService.AccountStore
	revocations authService.RevocationList
	buckets     rateLimitMiddleware.Limiter
	auditStore  audit.Store

	// sqlTx is set only for PostgreSQL, where both enrollment writes can
	// commit together. authTx is always set.
	sqlTx  enrollmentService.TxRunner
	authTx authService.TxRunner

	purge func(ctx context.Context, log *slog.Logger)

	db    *sql.DB
	redis *redisClient.Client
	kafka *auditKafka.Store
}

// openBackends picks PostgreSQL when DATABASE_URL is set and in-memory
// stores otherwise. Redis, when configured, holds revocations and login
// throttling; Kafka, when configured, receives the audit stream.
func openBackends(ctx context.Context, cfg config.Config, log *slog.Logger) (*backends, error) {
	b := &backends{}

	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		b.db = db
		if cfg.Postgres.MigrateOnStart {
			if err := postgres.Migrate(db); err != nil {
				b.Close()
				return nil, err
			}
		}
		runner := tx.Runner{DB: db}
		b.kind = "postgres"
		b.courses = course.NewPostgres(db)
		b.students = student.NewPostgres(db)
		b.accounts = account.NewPostgres(db)
		b.sqlTx = runner
		b.authTx = runner
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		b.kind = "memory"
		b.courses = course.NewInMemory()
		b.students = student.NewInMemory()
		b.accounts = account.NewInMemory()
		b.authTx = &tx.LockRunner{}
	}

	rc, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		b.Close()
		return nil, err
	}
	switch {
	case rc != nil:
		b.redis = rc
		b.revocations = revocation.NewRedisTRL(rc.Client)
		b.buckets = bucket.NewRedisBucketStore(rc.Client)
	case b.db != nil:
		trl := revocation.NewPostgresTRL(b.db)
		b.revocations = trl
		b.buckets = bucket.NewInMemoryBucketStore()
		b.purge = purgeEvery(revocationPurgeInterval, trl.PurgeExpired)
	default:
		b.revocations = revocation.NewInMemoryTRL()
		b.buckets = bucket.NewInMemoryBucketStore()
	}

	if len(cfg.Kafka.Brokers) > 0 {
		ks, err := auditKafka.New(ctx, cfg.Kafka)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("audit sink: %w", err)
		}
		b.kafka = ks
		b.auditStore = ks
	} else {
		b.auditStore = auditMemory.NewInMemoryStore()
	}

	return b, nil
}

// healthChecks lists a ping per configured external dependency.
func (b *backends) healthChecks() map[string]func(ctx context.Context) error {
	checks := make(map[string]func(ctx context.Context) error)
	if b.db != nil {
		checks["postgres"] = b.db.PingContext
	}
	if b.redis != nil {
		checks["redis"] = b.redis.Health
	}
	return checks
}

func (b *backends) Close() {
	if b.kafka != nil {
		b.kafka.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}
