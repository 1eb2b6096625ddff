package payroll

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ozziework/internal/domain/engagement"
	"ozziework/internal/domain/identity"
	"ozziework/internal/domain/timesheet"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// SettleRequest carries the already-authorized facts settlement needs:
// the accepted offer, its approved timesheet, both parties' profiles and
// the platform's own collection account.
type SettleRequest struct {
	Offer           engagement.Offer
	Timesheet       timesheet.Timesheet
	EmployerProfile identity.Employer
	EmployerParty   identity.Party
	TravellerParty  identity.Party
	Platform        Payee
	Now             time.Time
}

// Settle converts the approved, unpaid, locked entries of the offer's
// timesheet into exactly one payslip plus a payment instruction file.
// Entry selection runs under FOR UPDATE inside the same transaction that
// writes the payslip and marks the entries paid, so a concurrent settle
// either serializes behind this one and finds nothing, or this one fails
// entirely. Nothing external is called between lock and commit.
func (s *Service) Settle(ctx context.Context, req SettleRequest) (Payslip, InstructionFile, error) {
	if req.Offer.Status != engagement.OfferAccepted {
		return Payslip{}, InstructionFile{}, ErrOfferNotAccepted
	}
	if req.Timesheet.Status != timesheet.StatusApproved {
		return Payslip{}, InstructionFile{}, ErrTimesheetNotApproved
	}
	if err := identity.ValidateBankAccount("employer", req.EmployerParty.Bank); err != nil {
		return Payslip{}, InstructionFile{}, err
	}
	if err := identity.ValidateBankAccount("traveller", req.TravellerParty.Bank); err != nil {
		return Payslip{}, InstructionFile{}, err
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return Payslip{}, InstructionFile{}, err
	}
	defer tx.Rollback(ctx)

	entries, err := s.Store.LockUnpaidEntriesTx(ctx, tx, req.Timesheet.ID)
	if err != nil {
		return Payslip{}, InstructionFile{}, err
	}
	if len(entries) == 0 {
		return Payslip{}, InstructionFile{}, ErrNoUnpaidHours
	}

	totalHours := decimal.Zero
	for _, e := range entries {
		totalHours = totalHours.Add(e.Hours)
	}

	breakdown, err := Compute(req.Offer.RateAmount, totalHours)
	if err != nil {
		return Payslip{}, InstructionFile{}, err
	}

	payslipID := uuid.NewString()
	file, err := BuildInstructionFile(InstructionInput{
		PayslipID:    payslipID,
		EmployerName: req.EmployerProfile.CompanyName,
		Commission:   breakdown.Commission,
		NetPayment:   breakdown.NetPayment,
		TaxWithheld:  breakdown.TaxWithheld,
		Employer:     Payee{Name: req.EmployerParty.DisplayName(), Account: req.EmployerParty.Bank},
		Traveller:    Payee{Name: req.TravellerParty.DisplayName(), Account: req.TravellerParty.Bank},
		Platform:     req.Platform,
		ProcessedAt:  req.Now,
	})
	if err != nil {
		return Payslip{}, InstructionFile{}, err
	}

	entryMeta, err := json.Marshal(settlementMetadata(entries))
	if err != nil {
		return Payslip{}, InstructionFile{}, err
	}
	abaMeta, err := json.Marshal(file.Metadata())
	if err != nil {
		return Payslip{}, InstructionFile{}, err
	}

	periodStart := entries[0].EntryDate
	periodEnd := entries[len(entries)-1].EntryDate
	generatedAt := req.Now

	payslip := Payslip{
		ID:          payslipID,
		TimesheetID: req.Timesheet.ID,
		OfferID:     req.Offer.ID,
		EmployerID:  req.EmployerProfile.ID,
		TravellerID: req.TravellerParty.UserID,

		HourCount:    totalHours,
		RateAmount:   req.Offer.RateAmount,
		RateCurrency: req.Offer.RateCurrency,

		GrossAmount:      breakdown.Gross,
		CommissionAmount: breakdown.Commission,
		NetBeforeTax:     breakdown.NetBeforeTax,
		TaxWithheld:      breakdown.TaxWithheld,
		NetPayment:       breakdown.NetPayment,
		SuperAmount:      breakdown.Super,

		PayPeriodStart: &periodStart,
		PayPeriodEnd:   &periodEnd,
		PaymentMethod:  PaymentMethodBankTransfer,

		EmployerName:     req.EmployerParty.DisplayName(),
		EmployerAddress:  req.EmployerParty.PostalAddress(),
		EmployerABN:      req.EmployerProfile.ABN,
		TravellerName:    req.TravellerParty.DisplayName(),
		TravellerAddress: req.TravellerParty.PostalAddress(),
		TravellerTFN:     req.TravellerParty.TFN,

		InstructionsStatus: InstructionsGenerated,
		Status:             StatusProcessing,

		EntryMetadata:  entryMeta,
		ABAMetadata:    abaMeta,
		ABAGeneratedAt: &generatedAt,
	}

	created, err := s.Store.InsertPayslipTx(ctx, tx, payslip)
	if err != nil {
		return Payslip{}, InstructionFile{}, err
	}

	entryIDs := make([]string, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.ID
	}
	if err := s.Store.MarkEntriesSettledTx(ctx, tx, entryIDs); err != nil {
		return Payslip{}, InstructionFile{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Payslip{}, InstructionFile{}, err
	}
	return created, file, nil
}

// ConfirmInstructions closes the loop once the employer reports the bank
// file as processed. Re-confirming a completed payslip fails: there is no
// state left to confirm.
func (s *Service) ConfirmInstructions(ctx context.Context, offerID, applicationID string) (Payslip, error) {
	payslip, err := s.Store.LatestByOfferID(ctx, offerID)
	if err != nil {
		return Payslip{}, err
	}
	if payslip.InstructionsStatus != InstructionsGenerated && payslip.InstructionsStatus != InstructionsAwaitingImport {
		return Payslip{}, ErrNothingToConfirm
	}
	return s.Store.Confirm(ctx, payslip, applicationID)
}

func (s *Service) LatestByOfferID(ctx context.Context, offerID string) (Payslip, error) {
	return s.Store.LatestByOfferID(ctx, offerID)
}

func settlementMetadata(entries []timesheet.Entry) SettlementMetadata {
	meta := SettlementMetadata{
		CommissionRate: CommissionRate.String(),
		TaxRate:        TaxRate.String(),
	}
	for _, e := range entries {
		meta.Entries = append(meta.Entries, EntrySnapshot{
			EntryDate:   e.EntryDate.Format("2006-01-02"),
			HoursWorked: e.Hours.String(),
		})
	}
	return meta
}
