package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"registrar/internal/audit"
	"registrar/internal/enrollment/models"
	"registrar/internal/platform/keylock"
	"registrar/internal/platform/metrics"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// CourseStore persists Course aggregates. Update and Delete are conditional
// on the aggregate's Version and return sentinel.ErrConflict when stale.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, courseID id.CourseID) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, courseID id.CourseID, version int64) error
}

// StudentStore persists Student aggregates. Update is conditional on Version.
type StudentStore interface {
	FindByID(ctx context.Context, studentID id.StudentID) (*models.Student, error)
	FindByIDs(ctx context.Context, ids []id.StudentID) ([]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// TxRunner runs fn in one store transaction. Stores join it through ctx.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	// DefaultOperationTimeout bounds one locked operation once the caller
	// has been detached.
	DefaultOperationTimeout = 5 * time.Second

	// maxAttempts is the first try plus one retry after a version conflict.
	maxAttempts = 2

	opRegister = "register"
	opDrop     = "drop"
)

// Service is the enrollment engine. It serializes work per course and per
// student, validates transitions with the pure functions in models, and
// persists both aggregates with compensation on partial failure.
type Service struct {
	courses  CourseStore
	students StudentStore

	courseLocks  *keylock.Table
	studentLocks *keylock.Table
	opTimeout    time.Duration

	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  AuditPublisher
	txRunner TxRunner
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

// WithTxRunner makes both writes of an enrollment change commit atomically
// when the stores share a transactional backend.
func WithTxRunner(r TxRunner) Option {
	return func(s *Service) { s.txRunner = r }
}

func WithOperationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// WithLockShards sizes both lock tables.
func WithLockShards(n int) Option {
	return func(s *Service) {
		s.courseLocks = keylock.New(n)
		s.studentLocks = keylock.New(n)
	}
}

func New(courses CourseStore, students StudentStore, opts ...Option) *Service {
	s := &Service{
		courses:      courses,
		students:     students,
		courseLocks:  keylock.New(keylock.DefaultShards),
		studentLocks: keylock.New(keylock.DefaultShards),
		opTimeout:    DefaultOperationTimeout,
		logger:       slog.Default(),
		tracer:       otel.Tracer("registrar/enrollment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// startSpan opens a span for one service operation.
func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "enrollment."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.GetCode(err)))
	}
	span.End()
}

// detach returns a context that survives caller cancellation but still ends
// after the operation timeout. Used once locks are held so a persist sequence
// is never cut between its two writes.
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opTimeout)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, event)
}

func (s *Service) observe(op string, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.GetCode(err))
	}
	s.metrics.ObserveEnrollment(op, outcome, time.Since(start))
}

func (s *Service) countConflict(op string) {
	if s.metrics != nil {
		s.metrics.IncrementConflict(op)
	}
}

func (s *Service) countCourseChange(kind string) {
	if s.metrics != nil {
		s.metrics.IncrementCourseChange(kind)
	}
}

// loadError turns a store read failure into a domain error.
func loadError(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}
