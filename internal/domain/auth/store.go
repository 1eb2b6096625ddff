package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrSessionNotFound = errors.New("session not found")

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	DB Querier
}

func NewStore(db Querier) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID        string
	Email     string
	Role      string
	Password  string
	FirstName string
	LastName  string
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, password_hash, first_name, last_name
    FROM users
    WHERE email = $1
  `, email).Scan(&out.ID, &out.Email, &out.Role, &out.Password, &out.FirstName, &out.LastName)
	return out, err
}

type NewUser struct {
	Email        string
	PasswordHash string
	Role         string
	FirstName    string
	LastName     string
	CompanyName  string
	ABN          string
}

// CreateUser inserts the account row and, for employers, the employer
// profile row in the same transaction.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var userID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role, first_name, last_name)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, in.Email, in.PasswordHash, in.Role, in.FirstName, in.LastName).Scan(&userID); err != nil {
		return "", err
	}

	if in.Role == RoleEmployer {
		if _, err := tx.Exec(ctx, `
      INSERT INTO employers (user_id, company_name, abn)
      VALUES ($1,$2,$3)
    `, userID, in.CompanyName, in.ABN); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Store) CreateSession(ctx context.Context, userID, refreshTokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, refresh_token, expires_at)
    VALUES ($1,$2,$3)
  `, userID, refreshTokenHash, expires)
	return err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) RevokeSession(ctx context.Context, userID, refreshTokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND refresh_token = $2", userID, refreshTokenHash)
	return err
}

// UserBySessionToken resolves a live refresh token back to its account.
func (s *Store) UserBySessionToken(ctx context.Context, refreshTokenHash string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.email, u.role, u.password_hash, u.first_name, u.last_name
    FROM sessions s
    JOIN users u ON u.id = s.user_id
    WHERE s.refresh_token = $1 AND s.expires_at > now() AND s.revoked_at IS NULL
  `, refreshTokenHash).Scan(&out.ID, &out.Email, &out.Role, &out.Password, &out.FirstName, &out.LastName)
	return out, err
}

// RotateSession swaps the stored token hash so each refresh token is
// single use. Zero rows means the old token was already rotated or
// revoked; the caller must treat that as an expired session.
func (s *Store) RotateSession(ctx context.Context, oldHash, newHash string, expires time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE sessions
    SET refresh_token = $1, expires_at = $2
    WHERE refresh_token = $3 AND revoked_at IS NULL
  `, newHash, expires, oldHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *Store) SessionValid(ctx context.Context, userID, refreshTokenHash string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE user_id = $1 AND refresh_token = $2 AND expires_at > now() AND revoked_at IS NULL
  `, userID, refreshTokenHash).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
