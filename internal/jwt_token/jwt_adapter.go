package jwttoken

import (
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/requestcontext"
)

// ToPrincipal maps validated claims onto the request principal. Tokens with
// an unknown role or malformed subject are rejected as unauthorized.
func ToPrincipal(claims *Claims) (*requestcontext.AuthPrincipal, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &requestcontext.AuthPrincipal{
		UserID:  userID,
		Role:    role,
		TokenID: claims.ID,
	}, nil
}
