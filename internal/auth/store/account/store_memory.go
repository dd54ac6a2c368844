package account

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"registrar/internal/auth/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// Error Contract:
// - ErrNotFound when no account matches
// - ErrAlreadyUsed when the email or (role, external id) pair is taken

type externalKey struct {
	role       id.Role
	externalID string
}

// InMemory stores accounts in memory for tests/dev.
type InMemory struct {
	mu         sync.RWMutex
	accounts   map[id.UserID]*models.Account
	byEmail    map[string]id.UserID
	byExternal map[externalKey]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		accounts:   make(map[id.UserID]*models.Account),
		byEmail:    make(map[string]id.UserID),
		byExternal: make(map[externalKey]id.UserID),
	}
}

func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	if account == nil {
		return fmt.Errorf("account is required")
	}
	email := strings.ToLower(account.Email)
	ext := externalKey{role: account.Role, externalID: account.ExternalID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; ok {
		return fmt.Errorf("account %s: %w", account.ID, sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.byEmail[email]; ok {
		return fmt.Errorf("email %s: %w", email, sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.byExternal[ext]; ok {
		return fmt.Errorf("%s %s: %w", account.Role, account.ExternalID, sentinel.ErrAlreadyUsed)
	}
	stored := *account
	stored.Email = email
	s.accounts[account.ID] = &stored
	s.byEmail[email] = account.ID
	s.byExternal[ext] = account.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[userID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", userID, sentinel.ErrNotFound)
	}
	found := *account
	return &found, nil
}

// FindByEmail matches case-insensitively.
func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("account: %w", sentinel.ErrNotFound)
	}
	found := *s.accounts[userID]
	return &found, nil
}
