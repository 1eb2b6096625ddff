package engagement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ozziework/internal/domain/auth"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const offerColumns = `
    o.id, o.application_id, o.job_id, o.employer_id, o.traveller_id,
    o.contract_type, o.rate_type, o.rate_amount, o.rate_currency,
    o.start_date, o.end_date, o.accommodation_details, o.notes, o.status,
    o.created_at, o.updated_at`

func scanOffer(row pgx.Row) (Offer, error) {
	var o Offer
	err := row.Scan(
		&o.ID, &o.ApplicationID, &o.JobID, &o.EmployerID, &o.TravellerID,
		&o.ContractType, &o.RateType, &o.RateAmount, &o.RateCurrency,
		&o.StartDate, &o.EndDate, &o.Accommodation, &o.Notes, &o.Status,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Offer{}, ErrNotFound
	}
	return o, err
}

func (s *Store) ApplicationByID(ctx context.Context, applicationID string) (Application, error) {
	var a Application
	err := s.DB.QueryRow(ctx, `
    SELECT a.id, a.job_id, j.title, a.applicant_id, j.employer_id, e.user_id, a.status, a.last_paid_at
    FROM applications a
    JOIN jobs j ON j.id = a.job_id
    JOIN employers e ON e.id = j.employer_id
    WHERE a.id = $1
  `, applicationID).Scan(&a.ID, &a.JobID, &a.JobTitle, &a.ApplicantID, &a.EmployerID, &a.EmployerUserID, &a.Status, &a.LastPaidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return a, err
}

// ListApplicationsForUser returns the applications visible to the actor:
// their own for travellers, those on their jobs for employers.
func (s *Store) ListApplicationsForUser(ctx context.Context, userID, role string, limit, offset int) ([]Application, error) {
	where := "a.applicant_id = $1"
	if role == auth.RoleEmployer {
		where = "e.user_id = $1"
	}
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.job_id, j.title, a.applicant_id, j.employer_id, e.user_id, a.status, a.last_paid_at
    FROM applications a
    JOIN jobs j ON j.id = a.job_id
    JOIN employers e ON e.id = j.employer_id
    WHERE `+where+`
    ORDER BY a.created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.JobID, &a.JobTitle, &a.ApplicantID, &a.EmployerID, &a.EmployerUserID, &a.Status, &a.LastPaidAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) OfferByID(ctx context.Context, offerID string) (Offer, error) {
	return scanOffer(s.DB.QueryRow(ctx, `
    SELECT`+offerColumns+`
    FROM offers o
    WHERE o.id = $1
  `, offerID))
}

func (s *Store) OfferByApplicationID(ctx context.Context, applicationID string) (Offer, error) {
	return scanOffer(s.DB.QueryRow(ctx, `
    SELECT`+offerColumns+`
    FROM offers o
    WHERE o.application_id = $1
    ORDER BY o.created_at DESC
    LIMIT 1
  `, applicationID))
}

func (s *Store) ActiveOfferExistsForApplication(ctx context.Context, applicationID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM offers WHERE application_id = $1 AND status <> 'cancelled'
  `, applicationID).Scan(&count)
	return count > 0, err
}

func (s *Store) JobHasActiveOffer(ctx context.Context, jobID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM offers WHERE job_id = $1 AND status IN ('pending', 'accepted')
  `, jobID).Scan(&count)
	return count > 0, err
}

// InsertOffer creates the pending offer and mirrors the application status
// in the same transaction.
func (s *Store) InsertOffer(ctx context.Context, o Offer) (Offer, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Offer{}, err
	}
	defer tx.Rollback(ctx)

	created, err := scanOffer(tx.QueryRow(ctx, `
    INSERT INTO offers (application_id, job_id, employer_id, traveller_id,
      contract_type, rate_type, rate_amount, rate_currency,
      start_date, end_date, accommodation_details, notes, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'pending')
    RETURNING id, application_id, job_id, employer_id, traveller_id,
      contract_type, rate_type, rate_amount, rate_currency,
      start_date, end_date, accommodation_details, notes, status,
      created_at, updated_at
  `, o.ApplicationID, o.JobID, o.EmployerID, o.TravellerID,
		o.ContractType, o.RateType, o.RateAmount, o.RateCurrency,
		o.StartDate, o.EndDate, o.Accommodation, o.Notes))
	if err != nil {
		return Offer{}, err
	}

	if err := syncApplicationStatus(ctx, tx, created.ApplicationID, created.Status); err != nil {
		return Offer{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Offer{}, err
	}
	return created, nil
}

func (s *Store) UpdateOfferTerms(ctx context.Context, offerID string, t OfferTerms) (Offer, error) {
	return scanOffer(s.DB.QueryRow(ctx, `
    UPDATE offers o SET
      contract_type = $1, rate_type = $2, rate_amount = $3, rate_currency = $4,
      start_date = $5, end_date = $6, accommodation_details = $7, notes = $8,
      updated_at = now()
    WHERE o.id = $9
    RETURNING`+offerColumns+`
  `, t.ContractType, t.RateType, t.RateAmount, t.RateCurrency,
		t.StartDate, t.EndDate, t.Accommodation, t.Notes, offerID))
}

// TransitionOffer applies a status change, mirrors the application status,
// and on acceptance instantiates the timesheet. One transaction, so a
// concurrent duplicate acceptance hits the unique timesheet constraint
// instead of racing.
func (s *Store) TransitionOffer(ctx context.Context, offerID, newStatus string) (Offer, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Offer{}, err
	}
	defer tx.Rollback(ctx)

	updated, err := scanOffer(tx.QueryRow(ctx, `
    UPDATE offers o SET status = $1, updated_at = now()
    WHERE o.id = $2
    RETURNING`+offerColumns+`
  `, newStatus, offerID))
	if err != nil {
		return Offer{}, err
	}

	if err := syncApplicationStatus(ctx, tx, updated.ApplicationID, newStatus); err != nil {
		return Offer{}, err
	}

	if newStatus == OfferAccepted {
		if _, err := tx.Exec(ctx, `
      INSERT INTO timesheets (offer_id, status)
      VALUES ($1, 'draft')
      ON CONFLICT (offer_id) DO NOTHING
    `, updated.ID); err != nil {
			return Offer{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Offer{}, err
	}
	return updated, nil
}

func syncApplicationStatus(ctx context.Context, tx pgx.Tx, applicationID, offerStatus string) error {
	status, ok := ApplicationStatusFor(offerStatus)
	if !ok {
		return ErrInvalidTransition
	}
	_, err := tx.Exec(ctx, `
    UPDATE applications SET status = $1, updated_at = now() WHERE id = $2
  `, status, applicationID)
	return err
}
