package payroll

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ozziework/internal/domain/timesheet"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

// LockUnpaidEntriesTx selects the settlement candidates under an exclusive
// row lock. Two concurrent settlements on the same offer serialize here:
// the loser sees an empty set after the winner commits.
func (s *Store) LockUnpaidEntriesTx(ctx context.Context, tx pgx.Tx, timesheetID string) ([]timesheet.Entry, error) {
	rows, err := tx.Query(ctx, `
    SELECT id, timesheet_id, entry_date, hours_worked, notes, is_locked, is_paid, payment_status
    FROM timesheet_entries
    WHERE timesheet_id = $1 AND is_locked = true AND is_paid = false
    ORDER BY entry_date
    FOR UPDATE
  `, timesheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timesheet.Entry
	for rows.Next() {
		var e timesheet.Entry
		if err := rows.Scan(&e.ID, &e.TimesheetID, &e.EntryDate, &e.Hours, &e.Notes, &e.IsLocked, &e.IsPaid, &e.PaymentStatus); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) InsertPayslipTx(ctx context.Context, tx pgx.Tx, p Payslip) (Payslip, error) {
	err := tx.QueryRow(ctx, `
    INSERT INTO payslips (
      id, timesheet_id, offer_id, employer_id, traveller_id,
      hour_count, rate_amount, rate_currency,
      gross_amount, commission_amount, net_before_tax, tax_withheld, net_payment, super_amount,
      pay_period_start, pay_period_end, payment_method,
      employer_name, employer_address, employer_abn,
      traveller_name, traveller_address, traveller_tfn,
      instructions_status, status, entry_metadata, aba_metadata, aba_generated_at
    ) VALUES (
      $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,
      $15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28
    )
    RETURNING created_at, updated_at
  `,
		p.ID, p.TimesheetID, p.OfferID, p.EmployerID, p.TravellerID,
		p.HourCount, p.RateAmount, p.RateCurrency,
		p.GrossAmount, p.CommissionAmount, p.NetBeforeTax, p.TaxWithheld, p.NetPayment, p.SuperAmount,
		p.PayPeriodStart, p.PayPeriodEnd, p.PaymentMethod,
		p.EmployerName, p.EmployerAddress, p.EmployerABN,
		p.TravellerName, p.TravellerAddress, p.TravellerTFN,
		p.InstructionsStatus, p.Status, p.EntryMetadata, p.ABAMetadata, p.ABAGeneratedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) MarkEntriesSettledTx(ctx context.Context, tx pgx.Tx, entryIDs []string) error {
	_, err := tx.Exec(ctx, `
    UPDATE timesheet_entries
    SET is_paid = true, payment_status = 'instructions_generated', updated_at = now()
    WHERE id = ANY($1)
  `, entryIDs)
	return err
}

const payslipColumns = `
    id, timesheet_id, offer_id, employer_id, traveller_id,
    hour_count, rate_amount, rate_currency,
    gross_amount, commission_amount, net_before_tax, tax_withheld, net_payment, super_amount,
    pay_period_start, pay_period_end, payment_method,
    employer_name, employer_address, employer_abn,
    traveller_name, traveller_address, traveller_tfn,
    instructions_status, status, entry_metadata, aba_metadata, aba_generated_at,
    created_at, updated_at`

func scanPayslip(row pgx.Row) (Payslip, error) {
	var p Payslip
	err := row.Scan(
		&p.ID, &p.TimesheetID, &p.OfferID, &p.EmployerID, &p.TravellerID,
		&p.HourCount, &p.RateAmount, &p.RateCurrency,
		&p.GrossAmount, &p.CommissionAmount, &p.NetBeforeTax, &p.TaxWithheld, &p.NetPayment, &p.SuperAmount,
		&p.PayPeriodStart, &p.PayPeriodEnd, &p.PaymentMethod,
		&p.EmployerName, &p.EmployerAddress, &p.EmployerABN,
		&p.TravellerName, &p.TravellerAddress, &p.TravellerTFN,
		&p.InstructionsStatus, &p.Status, &p.EntryMetadata, &p.ABAMetadata, &p.ABAGeneratedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payslip{}, ErrNoPayslip
	}
	return p, err
}

// LatestByOfferID returns the most recent payslip for the offer.
func (s *Store) LatestByOfferID(ctx context.Context, offerID string) (Payslip, error) {
	return scanPayslip(s.DB.QueryRow(ctx, `
    SELECT`+payslipColumns+`
    FROM payslips
    WHERE offer_id = $1
    ORDER BY created_at DESC
    LIMIT 1
  `, offerID))
}

func (s *Store) ByID(ctx context.Context, payslipID string) (Payslip, error) {
	return scanPayslip(s.DB.QueryRow(ctx, `
    SELECT`+payslipColumns+`
    FROM payslips
    WHERE id = $1
  `, payslipID))
}

// Confirm completes the payslip, stamps the application's last-paid time
// and advances the settled entries to paid, all in one transaction.
func (s *Store) Confirm(ctx context.Context, p Payslip, applicationID string) (Payslip, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Payslip{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE payslips
    SET instructions_status = 'completed', status = 'completed', updated_at = now()
    WHERE id = $1
  `, p.ID); err != nil {
		return Payslip{}, err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE applications SET last_paid_at = now(), updated_at = now() WHERE id = $1
  `, applicationID); err != nil {
		return Payslip{}, err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE timesheet_entries
    SET payment_status = 'paid', updated_at = now()
    WHERE timesheet_id = $1 AND payment_status IN ('instructions_generated', 'awaiting_bank_import')
  `, p.TimesheetID); err != nil {
		return Payslip{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Payslip{}, err
	}
	return s.ByID(ctx, p.ID)
}

type overdueCandidate struct {
	PayslipID         string
	EmployerID        string
	TravellerID       string
	EmployerSuspended bool
}

func (s *Store) overdueCandidates(ctx context.Context, cutoff string) ([]overdueCandidate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id, p.employer_id, p.traveller_id, e.is_suspended
    FROM payslips p
    JOIN employers e ON e.id = p.employer_id
    WHERE p.status IN ('processing', 'failed')
      AND p.instructions_status IN ('instructions_generated', 'awaiting_bank_import')
      AND p.pay_period_end < $1
    ORDER BY p.pay_period_end
  `, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []overdueCandidate
	for rows.Next() {
		var c overdueCandidate
		if err := rows.Scan(&c.PayslipID, &c.EmployerID, &c.TravellerID, &c.EmployerSuspended); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// markOverdue flips one payslip to overdue and suspends its employer if
// needed, in its own transaction so a bad row cannot poison the batch.
func (s *Store) markOverdue(ctx context.Context, c overdueCandidate) (suspended bool, err error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE payslips SET status = 'overdue', updated_at = now() WHERE id = $1
  `, c.PayslipID); err != nil {
		return false, err
	}
	if !c.EmployerSuspended {
		if _, err := tx.Exec(ctx, `
      UPDATE employers SET is_suspended = true, updated_at = now() WHERE id = $1 AND is_suspended = false
    `, c.EmployerID); err != nil {
			return false, err
		}
		suspended = true
	}
	return suspended, tx.Commit(ctx)
}
