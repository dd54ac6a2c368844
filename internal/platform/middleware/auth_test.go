package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

type gatewayFunc func(ctx context.Context, token string) (*requestcontext.AuthPrincipal, error)

func (f gatewayFunc) Verify(ctx context.Context, token string) (*requestcontext.AuthPrincipal, error) {
	return f(ctx, token)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	userID := id.NewUserID()
	gateway := gatewayFunc(func(_ context.Context, token string) (*requestcontext.AuthPrincipal, error) {
		switch token {
		case "good":
			return &requestcontext.AuthPrincipal{UserID: userID, Role: id.RoleStudent, TokenID: "jti-1"}, nil
		case "revoked":
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
		default:
			return nil, dErrors.New(dErrors.CodeInternal, "store down")
		}
	})

	var seen requestcontext.AuthPrincipal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAuth(gateway, discardLogger())(next)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized, code: "unauthorized"},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: "unauthorized"},
		{name: "revoked token", header: "Bearer revoked", status: http.StatusUnauthorized, code: "unauthorized"},
		{name: "gateway failure", header: "Bearer broken", status: http.StatusInternalServerError, code: "internal_error"},
		{name: "valid token", header: "Bearer good", status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/students/me/courses", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				var body httputil.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.code, body.Error)
			}
		})
	}
	assert.Equal(t, userID, seen.UserID)
	assert.Equal(t, "jti-1", seen.TokenID)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireRole(discardLogger(), id.RoleStaff)(next)

	t.Run("no principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/courses", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("student is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/courses", nil)
		req = req.WithContext(requestcontext.WithPrincipal(req.Context(), requestcontext.AuthPrincipal{UserID: id.NewUserID(), Role: id.RoleStudent}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("staff passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/courses", nil)
		req = req.WithContext(requestcontext.WithPrincipal(req.Context(), requestcontext.AuthPrincipal{UserID: id.NewUserID(), Role: id.RoleStaff}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
