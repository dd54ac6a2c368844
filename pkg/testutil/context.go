package testutil

import (
	"net/http"

	id "registrar/pkg/domain"
	"registrar/pkg/requestcontext"
)

// AsStudent attaches a student principal to the request, as RequireAuth would.
func AsStudent(req *http.Request, userID id.UserID) *http.Request {
	return WithPrincipal(req, userID, id.RoleStudent)
}

// AsStaff attaches a staff principal to the request.
func AsStaff(req *http.Request, userID id.UserID) *http.Request {
	return WithPrincipal(req, userID, id.RoleStaff)
}

func WithPrincipal(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.AuthPrincipal{
		UserID:  userID,
		Role:    role,
		TokenID: "test-jti",
	})
	return req.WithContext(ctx)
}
