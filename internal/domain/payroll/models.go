package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payslip is the immutable settlement record. Monetary figures and party
// snapshots never change after creation; only instructions_status, status
// and the instruction-file metadata move.
type Payslip struct {
	ID          string
	TimesheetID string
	OfferID     string
	EmployerID  string
	TravellerID string

	HourCount    decimal.Decimal
	RateAmount   decimal.Decimal
	RateCurrency string

	GrossAmount      decimal.Decimal
	CommissionAmount decimal.Decimal
	NetBeforeTax     decimal.Decimal
	TaxWithheld      decimal.Decimal
	NetPayment       decimal.Decimal
	SuperAmount      decimal.Decimal

	PayPeriodStart *time.Time
	PayPeriodEnd   *time.Time
	PaymentMethod  string

	EmployerName     string
	EmployerAddress  string
	EmployerABN      string
	TravellerName    string
	TravellerAddress string
	TravellerTFN     string

	InstructionsStatus string
	Status             string

	EntryMetadata  []byte
	ABAMetadata    []byte
	ABAGeneratedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntrySnapshot pins one settled entry into the payslip's entry metadata
// so the batch stays auditable after later timesheet edits.
type EntrySnapshot struct {
	EntryDate   string `json:"entry_date"`
	HoursWorked string `json:"hours_worked"`
}

type SettlementMetadata struct {
	Entries        []EntrySnapshot `json:"entries"`
	CommissionRate string          `json:"commission_rate"`
	TaxRate        string          `json:"tax_rate"`
}
