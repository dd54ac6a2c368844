package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"registrar/internal/auth/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/platform/tx"
)

const uniqueViolation = "23505"

const accountColumns = `id, email, password_hash, role, external_id, name, address, created_at`

// PostgresStore persists accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the account, joining a transaction carried in ctx.
func (s *PostgresStore) Create(ctx context.Context, account *models.Account) error {
	if account == nil {
		return fmt.Errorf("account is required")
	}
	_, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		account.ID.String(), strings.ToLower(account.Email), account.PasswordHash, account.Role.String(),
		account.ExternalID, account.Name, account.Address, account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("account %s: %w", pgErr.ConstraintName, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.Account, error) {
	row := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, userID.String())
	return s.scanOne(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, strings.ToLower(email))
	return s.scanOne(row)
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.Account, error) {
	var (
		a       models.Account
		rawID   string
		rawRole string
	)
	err := row.Scan(&rawID, &a.Email, &a.PasswordHash, &rawRole, &a.ExternalID, &a.Name, &a.Address, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if a.ID, err = id.ParseUserID(rawID); err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", rawID, err)
	}
	if a.Role, err = id.ParseRole(rawRole); err != nil {
		return nil, fmt.Errorf("invalid account role %q: %w", rawRole, err)
	}
	return &a, nil
}
