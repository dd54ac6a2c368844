package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

// AuthGateway resolves a bearer token into a principal. Revoked, expired, or
// malformed tokens yield a CodeUnauthorized error.
type AuthGateway interface {
	Verify(ctx context.Context, token string) (*requestcontext.AuthPrincipal, error)
}

// GetPrincipal retrieves the authenticated principal from the context.
func GetPrincipal(ctx context.Context) (requestcontext.AuthPrincipal, bool) {
	return requestcontext.Principal(ctx)
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
		Error:            string(dErrors.CodeUnauthorized),
		ErrorDescription: desc,
	})
}

// RequireAuth validates the bearer token and stores the principal in the context.
func RequireAuth(gateway AuthGateway, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			principal, err := gateway.Verify(ctx, strings.TrimSpace(token))
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestID,
					)
					writeUnauthorized(w, dErrors.Message(err))
					return
				}
				logger.ErrorContext(ctx, "failed to verify token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate token"))
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, *principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after RequireAuth. Principals without one of the
// given roles receive 403.
func RequireRole(logger *slog.Logger, roles ...id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal, ok := requestcontext.Principal(ctx)
			if !ok {
				writeUnauthorized(w, "authentication required")
				return
			}
			if !slices.Contains(roles, principal.Role) {
				logger.WarnContext(ctx, "forbidden - role not permitted",
					"user_id", principal.UserID.String(),
					"role", principal.Role.String(),
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role for this operation"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
