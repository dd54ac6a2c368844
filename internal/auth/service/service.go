package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"registrar/internal/audit"
	"registrar/internal/auth/models"
	"registrar/internal/auth/secrets"
	enrollmentModels "registrar/internal/enrollment/models"
	jwttoken "registrar/internal/jwt_token"
	"registrar/internal/platform/metrics"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// AccountStore persists login identities. Create returns
// sentinel.ErrAlreadyUsed when the email or (role, external id) is taken.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

// StudentCreator creates the enrollment record behind a student account.
type StudentCreator interface {
	Create(ctx context.Context, student *enrollmentModels.Student) error
}

// RevocationList remembers logged-out tokens until they expire.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, email string, role id.Role, expiresIn time.Duration) (*jwttoken.IssuedToken, error)
	ValidateToken(token string) (*jwttoken.Claims, error)
}

// TxRunner runs fn in one store transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

const DefaultTokenTTL = 10 * time.Minute

// Service handles sign-up, login, logout and bearer token verification.
type Service struct {
	accounts    AccountStore
	students    StudentCreator
	revocations RevocationList
	tokens      TokenIssuer
	txRunner    TxRunner

	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  AuditPublisher
	hashCost int
	tokenTTL time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(accounts AccountStore, students StudentCreator, revocations RevocationList, tokens TokenIssuer, txRunner TxRunner, opts ...Option) *Service {
	s := &Service{
		accounts:    accounts,
		students:    students,
		revocations: revocations,
		tokens:      tokens,
		txRunner:    txRunner,
		logger:      slog.Default(),
		hashCost:    secrets.DefaultCost,
		tokenTTL:    DefaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterStudent creates the account and its student record in one
// transaction. The request must already be normalized and validated.
func (s *Service) RegisterStudent(ctx context.Context, req *models.StudentSignupRequest) (*models.SignupResult, error) {
	hash, err := secrets.Hash(req.Password, s.hashCost)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	userID := id.NewUserID()

	account, err := models.NewAccount(userID, req.Email, hash, id.RoleStudent, req.StudentID, req.Name, req.Address, now)
	if err != nil {
		return nil, err
	}
	student, err := enrollmentModels.NewStudent(id.StudentOf(userID), req.StudentID, req.Name, req.Email, req.StudyYear, now)
	if err != nil {
		return nil, err
	}

	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}
		return s.students.Create(ctx, student)
	})
	if err != nil {
		return nil, s.signupError(ctx, err, "student")
	}

	s.accountCreated(ctx, account)
	return &models.SignupResult{Message: "Student registered successfully", ID: userID}, nil
}

// RegisterStaff creates a staff account.
func (s *Service) RegisterStaff(ctx context.Context, req *models.StaffSignupRequest) (*models.SignupResult, error) {
	hash, err := secrets.Hash(req.Password, s.hashCost)
	if err != nil {
		return nil, err
	}
	userID := id.NewUserID()
	account, err := models.NewAccount(userID, req.Email, hash, id.RoleStaff, req.StaffID, req.Name, req.Address, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		return s.accounts.Create(ctx, account)
	})
	if err != nil {
		return nil, s.signupError(ctx, err, "staff")
	}

	s.accountCreated(ctx, account)
	return &models.SignupResult{Message: "Staff registered successfully", ID: userID}, nil
}

func (s *Service) signupError(ctx context.Context, err error, kind string) error {
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.New(dErrors.CodeConflict, kind+" already exists")
	}
	s.logger.ErrorContext(ctx, "failed to create account",
		"request_id", requestcontext.RequestID(ctx),
		"role", kind,
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
}

func (s *Service) accountCreated(ctx context.Context, account *models.Account) {
	s.logger.InfoContext(ctx, "account created",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", account.ID.String(),
		"role", account.Role.String(),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionAccountCreated, ActorID: account.ID.String(), Detail: account.Role.String()})
}

// Login checks the credentials and issues an access token. Unknown emails
// and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	account, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.loginFailed(ctx, "")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := secrets.Verify(req.Password, account.PasswordHash); err != nil {
		if errors.Is(err, secrets.ErrMismatch) {
			return nil, s.loginFailed(ctx, account.ID.String())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	issued, err := s.tokens.GenerateAccessToken(account.ID, account.Email, account.Role, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.countLogin("ok")
	s.emit(ctx, audit.Event{Action: audit.ActionLoginSucceeded, ActorID: account.ID.String()})
	return &models.LoginResult{
		Token:     issued.Token,
		Role:      account.Role,
		ExpiresIn: int(s.tokenTTL.Seconds()),
	}, nil
}

func (s *Service) loginFailed(ctx context.Context, actor string) error {
	s.countLogin("failed")
	s.emit(ctx, audit.Event{Action: audit.ActionLoginFailed, ActorID: actor})
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

// Logout revokes the caller's token. The entry lives for a full token
// lifetime, which covers whatever the token had left.
func (s *Service) Logout(ctx context.Context, principal *requestcontext.AuthPrincipal) error {
	if principal == nil || principal.TokenID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := s.revocations.RevokeToken(ctx, principal.TokenID, s.tokenTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.emit(ctx, audit.Event{Action: audit.ActionLoggedOut, ActorID: principal.UserID.String()})
	return nil
}

// Verify resolves a bearer token to its principal. A token that was
// logged out is rejected even while its signature is still valid.
func (s *Service) Verify(ctx context.Context, token string) (*requestcontext.AuthPrincipal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	principal, err := jwttoken.ToPrincipal(claims)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, principal.TokenID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	return principal, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, event)
}

func (s *Service) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(outcome)
	}
}
