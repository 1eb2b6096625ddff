package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
)

// Per-entry payment state, advanced only forward: settlement moves pending
// entries to instructions_generated, confirmation moves them to paid.
const (
	PaymentPending               = "pending"
	PaymentInstructionsGenerated = "instructions_generated"
	PaymentAwaitingBankImport    = "awaiting_bank_import"
	PaymentPaid                  = "paid"
)

type Timesheet struct {
	ID             string
	OfferID        string
	Status         string
	TravellerNotes string
	EmployerNotes  string
	SubmittedAt    *time.Time
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Entries        []Entry
}

type Entry struct {
	ID            string
	TimesheetID   string
	EntryDate     time.Time
	Hours         decimal.Decimal
	Notes         string
	IsLocked      bool
	IsPaid        bool
	PaymentStatus string
}

// EntryInput is one incoming row of a wholesale entry replacement, keyed
// by calendar date.
type EntryInput struct {
	EntryDate time.Time
	Hours     decimal.Decimal
	Notes     string
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
