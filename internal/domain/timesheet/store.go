package timesheet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

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

// GetOrCreateByOfferID is the lazy 1:1 instantiation: the unique offer_id
// constraint plus ON CONFLICT makes it safe under concurrent first access.
func (s *Store) GetOrCreateByOfferID(ctx context.Context, offerID string) (Timesheet, error) {
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO timesheets (offer_id, status)
    VALUES ($1, 'draft')
    ON CONFLICT (offer_id) DO NOTHING
  `, offerID); err != nil {
		return Timesheet{}, err
	}

	var ts Timesheet
	err := s.DB.QueryRow(ctx, `
    SELECT id, offer_id, status, traveller_notes, employer_notes,
           submitted_at, approved_at, created_at, updated_at
    FROM timesheets
    WHERE offer_id = $1
  `, offerID).Scan(&ts.ID, &ts.OfferID, &ts.Status, &ts.TravellerNotes, &ts.EmployerNotes,
		&ts.SubmittedAt, &ts.ApprovedAt, &ts.CreatedAt, &ts.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Timesheet{}, ErrNotFound
	}
	if err != nil {
		return Timesheet{}, err
	}

	ts.Entries, err = s.EntriesForTimesheet(ctx, ts.ID)
	return ts, err
}

func (s *Store) EntriesForTimesheet(ctx context.Context, timesheetID string) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, timesheet_id, entry_date, hours_worked, notes, is_locked, is_paid, payment_status
    FROM timesheet_entries
    WHERE timesheet_id = $1
    ORDER BY entry_date
  `, timesheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TimesheetID, &e.EntryDate, &e.Hours, &e.Notes, &e.IsLocked, &e.IsPaid, &e.PaymentStatus); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ApplyReplacement applies a computed plan in one transaction. The
// timesheet row lock serializes against Approve; an entry that became
// locked after the plan was computed fails the whole replacement rather
// than silently no-oping. Any actual mutation invalidates a prior
// submission or approval by resetting the timesheet to draft and
// clearing both timestamps.
func (s *Store) ApplyReplacement(ctx context.Context, timesheetID string, plan ReplacementPlan, travellerNotes string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, `
    SELECT status FROM timesheets WHERE id = $1 FOR UPDATE
  `, timesheetID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	for _, in := range plan.Insert {
		if _, err := tx.Exec(ctx, `
      INSERT INTO timesheet_entries (timesheet_id, entry_date, hours_worked, notes)
      VALUES ($1,$2,$3,$4)
    `, timesheetID, in.EntryDate, in.Hours, in.Notes); err != nil {
			return err
		}
	}
	for _, up := range plan.Update {
		tag, err := tx.Exec(ctx, `
      UPDATE timesheet_entries
      SET hours_worked = $1, notes = $2, updated_at = now()
      WHERE id = $3 AND is_locked = false
    `, up.Input.Hours, up.Input.Notes, up.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrLockedEntryChanged
		}
	}
	for _, id := range plan.DeleteIDs {
		tag, err := tx.Exec(ctx, `
      DELETE FROM timesheet_entries WHERE id = $1 AND is_locked = false
    `, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrLockedEntryChanged
		}
	}

	if plan.Mutates() {
		if _, err := tx.Exec(ctx, `
      UPDATE timesheets
      SET status = 'draft', submitted_at = NULL, approved_at = NULL,
          traveller_notes = $1, updated_at = now()
      WHERE id = $2
    `, travellerNotes, timesheetID); err != nil {
			return err
		}
	} else if travellerNotes != "" {
		if _, err := tx.Exec(ctx, `
      UPDATE timesheets SET traveller_notes = $1, updated_at = now() WHERE id = $2
    `, travellerNotes, timesheetID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// MarkSubmitted refuses to downgrade an approved sheet: a submit racing
// an approve loses, it does not overwrite.
func (s *Store) MarkSubmitted(ctx context.Context, timesheetID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE timesheets
    SET status = 'submitted', submitted_at = now(), updated_at = now()
    WHERE id = $1 AND status <> 'approved'
  `, timesheetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyApproved
	}
	return nil
}

// Approve locks every currently-unlocked entry and flips the status in one
// transaction so a concurrent edit cannot interleave with the lock.
func (s *Store) Approve(ctx context.Context, timesheetID, employerNotes string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, `
    SELECT status FROM timesheets WHERE id = $1 FOR UPDATE
  `, timesheetID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if status != StatusSubmitted {
		return ErrNotSubmitted
	}

	tag, err := tx.Exec(ctx, `
    UPDATE timesheet_entries
    SET is_locked = true, updated_at = now()
    WHERE timesheet_id = $1 AND is_locked = false
  `, timesheetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoUnlockedEntries
	}

	if _, err := tx.Exec(ctx, `
    UPDATE timesheets
    SET status = 'approved', approved_at = now(), employer_notes = $1, updated_at = now()
    WHERE id = $2
  `, employerNotes, timesheetID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
