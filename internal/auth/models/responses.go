package models

import id "registrar/pkg/domain"

// SignupResult is returned by both sign-up operations.
type SignupResult struct {
	Message string    `json:"message"`
	ID      id.UserID `json:"id"`
}

// LoginResult carries the access token. ExpiresIn is in seconds.
type LoginResult struct {
	Token     string  `json:"token"`
	Role      id.Role `json:"role"`
	ExpiresIn int     `json:"expiresIn"`
}

type Me struct {
	ID   id.UserID `json:"id"`
	Role id.Role   `json:"role"`
}
