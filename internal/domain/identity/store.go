package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Querier interface {
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

func (s *Store) PartyByUserID(ctx context.Context, userID string) (Party, error) {
	var p Party
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, first_name, last_name,
           address_street, address_city, address_state, address_postcode,
           tfn, bank_name, bank_bsb, bank_account_number
    FROM users
    WHERE id = $1
  `, userID).Scan(
		&p.UserID, &p.Email, &p.Role, &p.FirstName, &p.LastName,
		&p.Street, &p.City, &p.State, &p.Postcode,
		&p.TFN, &p.Bank.BankName, &p.Bank.BSB, &p.Bank.AccountNumber,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, ErrNotFound
	}
	return p, err
}

func (s *Store) EmployerByID(ctx context.Context, employerID string) (Employer, error) {
	return s.employerBy(ctx, "id", employerID)
}

func (s *Store) EmployerByUserID(ctx context.Context, userID string) (Employer, error) {
	return s.employerBy(ctx, "user_id", userID)
}

func (s *Store) employerBy(ctx context.Context, column, value string) (Employer, error) {
	var e Employer
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, company_name, abn, is_suspended
    FROM employers
    WHERE `+column+` = $1
  `, value).Scan(&e.ID, &e.UserID, &e.CompanyName, &e.ABN, &e.IsSuspended)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employer{}, ErrNotFound
	}
	return e, err
}

// ProfileUpdate carries the address, tax and bank fields a user may set
// on their own account.
type ProfileUpdate struct {
	Street   string
	City     string
	State    string
	Postcode string
	TFN      string
	Bank     BankAccount
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET
      address_street = $1, address_city = $2, address_state = $3, address_postcode = $4,
      tfn = $5, bank_name = $6, bank_bsb = $7, bank_account_number = $8,
      updated_at = now()
    WHERE id = $9
  `, in.Street, in.City, in.State, in.Postcode, in.TFN, in.Bank.BankName, in.Bank.BSB, in.Bank.AccountNumber, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetSuspended(ctx context.Context, employerID string, suspended bool) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE employers SET is_suspended = $1, updated_at = now() WHERE id = $2
  `, suspended, employerID)
	return err
}

// OverdueUnpaidCount reports how many of the employer's payslips are still
// overdue and unsettled. Zero means suspension can be lifted.
func (s *Store) OverdueUnpaidCount(ctx context.Context, employerID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM payslips
    WHERE employer_id = $1 AND status = 'overdue' AND instructions_status <> 'completed'
  `, employerID).Scan(&count)
	return count, err
}
