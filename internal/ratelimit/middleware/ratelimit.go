package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	platformMiddleware "registrar/internal/platform/middleware"
	"registrar/internal/ratelimit/models"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

const (
	DefaultAuthAttempts = 10
	DefaultAuthWindow   = time.Minute

	// maxPeekBytes bounds how much of a login body is read to find the email.
	maxPeekBytes = 8 << 10
)

// Limiter records one attempt against key within a sliding window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter  Limiter
	logger   *slog.Logger
	attempts int
	window   time.Duration
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithAuthLimit sets how many attempts one client may make per window.
func WithAuthLimit(attempts int, window time.Duration) Option {
	return func(m *Middleware) {
		if attempts > 0 {
			m.attempts = attempts
		}
		if window > 0 {
			m.window = window
		}
	}
}

func New(limiter Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter:  limiter,
		logger:   logger,
		attempts: DefaultAuthAttempts,
		window:   DefaultAuthWindow,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimitAuth throttles credential endpoints per client IP and submitted
// email. A limiter failure lets the request through.
func (m *Middleware) RateLimitAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				ip = platformMiddleware.ClientIPFromRequest(r)
			}
			key := "auth:" + ip + ":" + peekEmail(r)

			result, err := m.limiter.Allow(ctx, key, m.attempts, m.window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check auth rate limit",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.logger.WarnContext(ctx, "auth rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"retry_after", result.RetryAfter,
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
					"Too many authentication attempts. Please try again later."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// peekEmail reads the email field from a JSON body and restores the body
// for the handler.
func peekEmail(r *http.Request) string {
	if r.Method != http.MethodPost || r.Body == nil || r.ContentLength == 0 {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
