package models

import (
	"time"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// Account is a login identity. Students and staff share one email namespace;
// ExternalID is the student number or staff id, unique per role.
type Account struct {
	ID           id.UserID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         id.Role   `json:"role"`
	ExternalID   string    `json:"externalId"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewAccount(userID id.UserID, email, passwordHash string, role id.Role, externalID, name, address string, now time.Time) (*Account, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account id cannot be nil")
	}
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account role is invalid")
	}
	if email == "" || passwordHash == "" || externalID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email, password hash and external id are required")
	}
	return &Account{
		ID:           userID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		ExternalID:   externalID,
		Name:         name,
		Address:      address,
		CreatedAt:    now,
	}, nil
}
