package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"registrar/internal/enrollment/models"
	"registrar/internal/platform/middleware"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the enrollment and course operations the handler exposes.
type Service interface {
	Register(ctx context.Context, studentID id.StudentID, courseID id.CourseID) (*models.EnrollmentResult, error)
	Drop(ctx context.Context, studentID id.StudentID, courseID id.CourseID) (*models.EnrollmentResult, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)
	ListAvailable(ctx context.Context) ([]*models.Course, error)
	ListMyCourses(ctx context.Context, studentID id.StudentID) (*models.MyCourses, error)
	CourseStatus(ctx context.Context, courseID id.CourseID) (*models.CourseStatus, error)
	CreateCourse(ctx context.Context, actor id.UserID, req *models.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, actor id.UserID, courseID id.CourseID, changes models.CourseChanges) (*models.Course, error)
	DeleteCourse(ctx context.Context, actor id.UserID, courseID id.CourseID) error
}

// Handler wires the /courses endpoints to the enrollment service.
type Handler struct {
	service Service
	gateway middleware.AuthGateway
	logger  *slog.Logger
}

func New(service Service, gateway middleware.AuthGateway, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		gateway: gateway,
		logger:  logger,
	}
}

// Register mounts the course routes. Every route requires a bearer token;
// enrollment routes are student-only and catalogue management is staff-only.
func (h *Handler) Register(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.gateway, h.logger))
		r.Get("/", h.HandleListCourses)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleStudent))
			r.Get("/available", h.HandleListAvailable)
			r.Get("/my-courses", h.HandleListMyCourses)
			r.Post("/{courseId}/register", h.HandleRegister)
			r.Delete("/{courseId}/register", h.HandleDrop)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.logger, id.RoleStaff))
			r.Post("/", h.HandleCreateCourse)
			r.Put("/{courseId}", h.HandleUpdateCourse)
			r.Delete("/{courseId}", h.HandleDeleteCourse)
			r.Get("/{courseId}/status", h.HandleCourseStatus)
		})
	})
}

// HandleListCourses handles GET /courses.
func (h *Handler) HandleListCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courses, err := h.service.ListCourses(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list courses",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, courses)
}

// HandleListAvailable handles GET /courses/available. An empty result is
// reported as 404.
func (h *Handler) HandleListAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courses, err := h.service.ListAvailable(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list available courses",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if len(courses) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no available courses"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, courses)
}

// HandleListMyCourses handles GET /courses/my-courses.
func (h *Handler) HandleListMyCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID, ok := h.studentFromContext(w, ctx)
	if !ok {
		return
	}
	mine, err := h.service.ListMyCourses(ctx, studentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mine)
}

// HandleRegister handles POST /courses/{courseId}/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	h.changeEnrollment(w, r, h.service.Register, "Successfully registered for course")
}

// HandleDrop handles DELETE /courses/{courseId}/register.
func (h *Handler) HandleDrop(w http.ResponseWriter, r *http.Request) {
	h.changeEnrollment(w, r, h.service.Drop, "Successfully dropped course")
}

type enrollmentFunc func(ctx context.Context, studentID id.StudentID, courseID id.CourseID) (*models.EnrollmentResult, error)

func (h *Handler) changeEnrollment(w http.ResponseWriter, r *http.Request, change enrollmentFunc, message string) {
	ctx := r.Context()
	studentID, ok := h.studentFromContext(w, ctx)
	if !ok {
		return
	}
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}

	result, err := change(ctx, studentID, courseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EnrollmentResponse{
		Message:        message,
		CourseID:       result.CourseID,
		CurrentCredits: result.CurrentCredits,
	})
}

// HandleCreateCourse handles POST /courses.
func (h *Handler) HandleCreateCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateCourseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	course, err := h.service.CreateCourse(ctx, requestcontext.UserID(ctx), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CourseResponse{Message: "Course created successfully", Course: course})
}

// HandleUpdateCourse handles PUT /courses/{courseId}.
func (h *Handler) HandleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateCourseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	course, err := h.service.UpdateCourse(ctx, requestcontext.UserID(ctx), courseID, req.Changes())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CourseResponse{Message: "Course updated successfully", Course: course})
}

// HandleDeleteCourse handles DELETE /courses/{courseId}.
func (h *Handler) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(ctx, requestcontext.UserID(ctx), courseID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Course deleted successfully"})
}

// HandleCourseStatus handles GET /courses/{courseId}/status.
func (h *Handler) HandleCourseStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseIDParam(w, r)
	if !ok {
		return
	}
	status, err := h.service.CourseStatus(ctx, courseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// studentFromContext resolves the caller's student identity. RequireRole has
// already checked the role, so a miss here means the chain is misconfigured.
func (h *Handler) studentFromContext(w http.ResponseWriter, ctx context.Context) (id.StudentID, bool) {
	principal, ok := requestcontext.Principal(ctx)
	if !ok || principal.Role != id.RoleStudent {
		h.logger.ErrorContext(ctx, "student principal missing despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.StudentID{}, false
	}
	return principal.StudentID(), true
}

func (h *Handler) courseIDParam(w http.ResponseWriter, r *http.Request) (id.CourseID, bool) {
	courseID, err := id.ParseCourseID(chi.URLParam(r, "courseId"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return courseID, true
}
