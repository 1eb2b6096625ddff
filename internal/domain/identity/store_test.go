package identity

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestStoreEmployerByUserID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	query := regexp.QuoteMeta(`
    SELECT id, user_id, company_name, abn, is_suspended
    FROM employers
    WHERE user_id = $1
  `)
	rows := pgxmock.NewRows([]string{"id", "user_id", "company_name", "abn", "is_suspended"}).
		AddRow("emp-1", "user-1", "Grove Orchards", "51824753556", true)

	mock.ExpectQuery(query).WithArgs("user-1").WillReturnRows(rows)

	employer, err := store.EmployerByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("EmployerByUserID returned error: %v", err)
	}
	if employer.CompanyName != "Grove Orchards" || !employer.IsSuspended {
		t.Fatalf("unexpected employer: %+v", employer)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreEmployerByIDNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	query := regexp.QuoteMeta(`
    SELECT id, user_id, company_name, abn, is_suspended
    FROM employers
    WHERE id = $1
  `)
	mock.ExpectQuery(query).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err = store.EmployerByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreOverdueUnpaidCount(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	query := regexp.QuoteMeta(`
    SELECT COUNT(1)
    FROM payslips
    WHERE employer_id = $1 AND status = 'overdue' AND instructions_status <> 'completed'
  `)
	rows := pgxmock.NewRows([]string{"count"}).AddRow(2)
	mock.ExpectQuery(query).WithArgs("emp-1").WillReturnRows(rows)

	count, err := store.OverdueUnpaidCount(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("OverdueUnpaidCount returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}
