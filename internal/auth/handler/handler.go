package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"registrar/internal/auth/models"
	"registrar/internal/platform/middleware"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the account operations the handler exposes.
type Service interface {
	RegisterStudent(ctx context.Context, req *models.StudentSignupRequest) (*models.SignupResult, error)
	RegisterStaff(ctx context.Context, req *models.StaffSignupRequest) (*models.SignupResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error)
	Logout(ctx context.Context, principal *requestcontext.AuthPrincipal) error
}

// LoginLimiter throttles credential submissions.
type LoginLimiter interface {
	RateLimitAuth() func(http.Handler) http.Handler
}

type Handler struct {
	service Service
	gateway middleware.AuthGateway
	limiter LoginLimiter
	logger  *slog.Logger
}

// New builds the /auth handler. limiter may be nil.
func New(service Service, gateway middleware.AuthGateway, limiter LoginLimiter, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		gateway: gateway,
		limiter: limiter,
		logger:  logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register/student", h.HandleRegisterStudent)
		r.Post("/register/staff", h.HandleRegisterStaff)

		if h.limiter != nil {
			r.With(h.limiter.RateLimitAuth()).Post("/login", h.HandleLogin)
		} else {
			r.Post("/login", h.HandleLogin)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.gateway, h.logger))
			r.Post("/logout", h.HandleLogout)
			r.Get("/me", h.HandleMe)
		})
	})
}

// HandleRegisterStudent handles POST /auth/register/student.
func (h *Handler) HandleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.StudentSignupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.RegisterStudent(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "student sign-up failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// HandleRegisterStaff handles POST /auth/register/staff.
func (h *Handler) HandleRegisterStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.StaffSignupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.RegisterStaff(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "staff sign-up failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Login(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requestcontext.Principal(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if err := h.service.Logout(ctx, &principal); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /auth/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Me{ID: principal.UserID, Role: principal.Role})
}
