package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestStoreRotateSessionSwapsTokenHash(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	query := regexp.QuoteMeta(`
    UPDATE sessions
    SET refresh_token = $1, expires_at = $2
    WHERE refresh_token = $3 AND revoked_at IS NULL
  `)
	expires := time.Now().Add(RefreshTokenTTL)
	mock.ExpectExec(query).
		WithArgs("new-hash", expires, "old-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.RotateSession(context.Background(), "old-hash", "new-hash", expires); err != nil {
		t.Fatalf("RotateSession returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreRotateSessionRejectsSpentToken(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	expires := time.Now().Add(RefreshTokenTTL)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions")).
		WithArgs("new-hash", expires, "spent-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = store.RotateSession(context.Background(), "spent-hash", "new-hash", expires)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
