package messaging

import (
	"context"

	"github.com/shopspring/decimal"

	"ozziework/internal/domain/engagement"
	"ozziework/internal/domain/payroll"
	"ozziework/internal/domain/timesheet"
)

// OfferEvent announces an offer creation or status change to the
// conversation.
func (s *Service) OfferEvent(ctx context.Context, offer engagement.Offer, app engagement.Application, employerName, senderID, body string) error {
	metadata := map[string]any{
		"kind":                  "job_offer",
		"offer_id":              offer.ID,
		"application_id":        offer.ApplicationID,
		"job_id":                offer.JobID,
		"job_title":             app.JobTitle,
		"employer_name":         employerName,
		"status":                offer.Status,
		"contract_type":         offer.ContractType,
		"rate_type":             offer.RateType,
		"rate_amount":           offer.RateAmount.String(),
		"rate_currency":         offer.RateCurrency,
		"start_date":            offer.StartDate.Format("2006-01-02"),
		"accommodation_details": offer.Accommodation,
	}
	if offer.EndDate != nil {
		metadata["end_date"] = offer.EndDate.Format("2006-01-02")
	}
	key := ConversationKey{EmployerUserID: app.EmployerUserID, TravellerID: offer.TravellerID, JobID: offer.JobID}
	return s.PostSystem(ctx, key, senderID, body, TypeJobOffer, metadata)
}

// TimesheetEvent announces edit/submit/approve activity with the current
// totals.
func (s *Service) TimesheetEvent(ctx context.Context, offer engagement.Offer, app engagement.Application, ts timesheet.Timesheet, senderID, body string) error {
	total := decimal.Zero
	for _, e := range ts.Entries {
		total = total.Add(e.Hours)
	}
	metadata := map[string]any{
		"kind":           "timesheet",
		"offer_id":       offer.ID,
		"application_id": offer.ApplicationID,
		"status":         ts.Status,
		"entry_count":    len(ts.Entries),
		"total_hours":    total.String(),
	}
	key := ConversationKey{EmployerUserID: app.EmployerUserID, TravellerID: offer.TravellerID, JobID: offer.JobID}
	return s.PostSystem(ctx, key, senderID, body, TypeTimesheet, metadata)
}

// PayslipEvent announces settlement or confirmation with the monetary
// breakdown.
func (s *Service) PayslipEvent(ctx context.Context, p payroll.Payslip, app engagement.Application, jobID, senderID, body string) error {
	metadata := map[string]any{
		"kind":              "payslip",
		"payslip_id":        p.ID,
		"hour_count":        p.HourCount.String(),
		"gross_amount":      p.GrossAmount.String(),
		"commission_amount": p.CommissionAmount.String(),
		"tax_withheld":      p.TaxWithheld.String(),
		"net_payment":       p.NetPayment.String(),
		"rate_amount":       p.RateAmount.String(),
		"rate_currency":     p.RateCurrency,
	}
	key := ConversationKey{EmployerUserID: app.EmployerUserID, TravellerID: p.TravellerID, JobID: jobID}
	return s.PostSystem(ctx, key, senderID, body, TypePayslip, metadata)
}
