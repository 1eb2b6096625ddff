package applicationshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ozziework/internal/domain/audit"
	"ozziework/internal/domain/documents"
	"ozziework/internal/domain/engagement"
	"ozziework/internal/domain/identity"
	"ozziework/internal/domain/messaging"
	"ozziework/internal/domain/payroll"
	"ozziework/internal/domain/timesheet"
	"ozziework/internal/platform/config"
	"ozziework/internal/platform/email"
	"ozziework/internal/platform/metrics"
	"ozziework/internal/transport/http/api"
	"ozziework/internal/transport/http/middleware"
	"ozziework/internal/transport/http/shared"
)

type Handler struct {
	Engagement  *engagement.Service
	Timesheets  *timesheet.Service
	Payroll     *payroll.Service
	Identity    *identity.Service
	Documents   *documents.Service
	Messaging   *messaging.Service
	Audit       *audit.Service
	Mailer      email.Mailer
	Metrics     *metrics.Collector
	Idempotency *middleware.IdempotencyStore
	Cfg         config.Config
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	apps, err := h.Engagement.ListApplicationsForUser(r.Context(), user.UserID, user.Role, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list applications", middleware.GetRequestID(r.Context()))
		return
	}
	items := make([]map[string]any, 0, len(apps))
	for _, app := range apps {
		items = append(items, applicationView(app))
	}
	api.Success(w, map[string]any{"items": items, "limit": page.Limit, "offset": page.Offset}, middleware.GetRequestID(r.Context()))
}

type offerRequest struct {
	ContractType  string          `json:"contractType"`
	RateType      string          `json:"rateType"`
	RateAmount    decimal.Decimal `json:"rateAmount"`
	RateCurrency  string          `json:"rateCurrency"`
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate"`
	Accommodation string          `json:"accommodationDetails"`
	Notes         string          `json:"notes"`
	Status        string          `json:"status"`
}

func (r offerRequest) terms() (engagement.OfferTerms, error) {
	start, err := shared.ParseDate(r.StartDate)
	if err != nil {
		return engagement.OfferTerms{}, engagement.ErrStartDateRequired
	}
	terms := engagement.OfferTerms{
		ContractType:  r.ContractType,
		RateType:      strings.ToLower(strings.TrimSpace(r.RateType)),
		RateAmount:    r.RateAmount,
		RateCurrency:  strings.ToUpper(strings.TrimSpace(r.RateCurrency)),
		StartDate:     start,
		Accommodation: r.Accommodation,
		Notes:         r.Notes,
	}
	if strings.TrimSpace(r.EndDate) != "" {
		end, err := shared.ParseDate(r.EndDate)
		if err != nil {
			return engagement.OfferTerms{}, engagement.ErrEndBeforeStart
		}
		terms.EndDate = &end
	}
	return terms, nil
}

func (h *Handler) HandleCreateOffer(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	applicationID := chi.URLParam(r, "applicationID")

	var payload offerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	terms, err := payload.terms()
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	app, err := h.Engagement.ApplicationByID(r.Context(), applicationID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	if _, err := h.Identity.EnsureEmployerActive(r.Context(), app.EmployerID); err != nil {
		h.failDomain(w, r, err)
		return
	}

	actor := engagement.Actor{UserID: user.UserID, Role: user.Role}
	offer, err := h.Engagement.CreateOffer(r.Context(), actor, applicationID, terms)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	h.announceOffer(r, offer, app, "A job offer has been sent.")
	h.notifyParty(r, offer.TravellerID, "New job offer",
		"You have received a job offer for "+app.JobTitle+". Log in to review and respond.")
	h.record(r, user.UserID, "offer.create", "offer", offer.ID, nil, offerView(offer))

	api.Created(w, offerView(offer), middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleGetOffer(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	applicationID := chi.URLParam(r, "applicationID")

	app, offer, err := h.loadEngagement(r, applicationID, user.UserID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	view := offerView(offer)
	view["jobTitle"] = app.JobTitle
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

// HandlePatchOffer covers both sides of offer lifecycle: a body with a
// status field transitions the offer, anything else is a pending-terms
// edit by the employer.
func (h *Handler) HandlePatchOffer(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	applicationID := chi.URLParam(r, "applicationID")

	var payload offerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	app, err := h.Engagement.ApplicationByID(r.Context(), applicationID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	before, err := h.Engagement.OfferByApplicationID(r.Context(), applicationID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	actor := engagement.Actor{UserID: user.UserID, Role: user.Role}
	var offer engagement.Offer
	var action, announcement string
	if status := strings.ToLower(strings.TrimSpace(payload.Status)); status != "" {
		offer, err = h.Engagement.Transition(r.Context(), actor, applicationID, status)
		action = "offer.transition"
		switch status {
		case engagement.OfferAccepted:
			announcement = "The offer has been accepted."
		case engagement.OfferDeclined:
			announcement = "The offer has been declined."
		case engagement.OfferCancelled:
			announcement = "The offer has been cancelled."
		}
	} else {
		terms, termsErr := payload.terms()
		if termsErr != nil {
			h.failDomain(w, r, termsErr)
			return
		}
		if _, suspErr := h.Identity.EnsureEmployerActive(r.Context(), app.EmployerID); suspErr != nil {
			h.failDomain(w, r, suspErr)
			return
		}
		offer, err = h.Engagement.UpdateTerms(r.Context(), actor, applicationID, terms)
		action = "offer.update_terms"
		announcement = "The offer terms have been updated."
	}
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	if announcement != "" {
		h.announceOffer(r, offer, app, announcement)
	}
	if action == "offer.transition" {
		other := offer.TravellerID
		if user.UserID == offer.TravellerID {
			other = app.EmployerUserID
		}
		h.notifyParty(r, other, "Offer "+offer.Status, "The offer for "+app.JobTitle+" is now "+offer.Status+".")
	}
	h.record(r, user.UserID, action, "offer", offer.ID, offerView(before), offerView(offer))

	api.Success(w, offerView(offer), middleware.GetRequestID(r.Context()))
}

// loadEngagement fetches the application and offer, enforcing that the
// caller is one of the two parties.
func (h *Handler) loadEngagement(r *http.Request, applicationID, userID string) (engagement.Application, engagement.Offer, error) {
	app, err := h.Engagement.ApplicationByID(r.Context(), applicationID)
	if err != nil {
		return engagement.Application{}, engagement.Offer{}, err
	}
	offer, err := h.Engagement.OfferByApplicationID(r.Context(), applicationID)
	if err != nil {
		return engagement.Application{}, engagement.Offer{}, err
	}
	if userID != app.EmployerUserID && userID != offer.TravellerID {
		return engagement.Application{}, engagement.Offer{}, engagement.ErrNotOfferParty
	}
	return app, offer, nil
}

func (h *Handler) announceOffer(r *http.Request, offer engagement.Offer, app engagement.Application, body string) {
	if h.Messaging == nil {
		return
	}
	employerName := ""
	if employer, err := h.Identity.EmployerByID(r.Context(), offer.EmployerID); err == nil {
		employerName = employer.CompanyName
	}
	if err := h.Messaging.OfferEvent(r.Context(), offer, app, employerName, app.EmployerUserID, body); err != nil {
		slog.Warn("offer conversation message failed", "offerId", offer.ID, "err", err)
	}
}

func (h *Handler) notifyParty(r *http.Request, userID, subject, body string) {
	if h.Mailer == nil {
		return
	}
	party, err := h.Identity.PartyByUserID(r.Context(), userID)
	if err != nil {
		slog.Warn("notification recipient lookup failed", "userId", userID, "err", err)
		return
	}
	if err := h.Mailer.Send(r.Context(), h.Cfg.EmailFrom, party.Email, subject, body); err != nil {
		slog.Warn("notification email failed", "userId", userID, "err", err)
	}
}

func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID,
		middleware.GetRequestID(r.Context()), clientIP(r), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return fwd
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}

func (h *Handler) failDomain(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var bankErr *identity.BankDetailError
	if errors.As(err, &bankErr) {
		api.Fail(w, http.StatusBadRequest, "invalid_bank_details", bankErr.Error(), requestID)
		return
	}

	switch {
	case errors.Is(err, engagement.ErrNotFound),
		errors.Is(err, timesheet.ErrNotFound),
		errors.Is(err, identity.ErrNotFound),
		errors.Is(err, payroll.ErrNoPayslip):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
	case errors.Is(err, engagement.ErrNotOfferParty),
		errors.Is(err, timesheet.ErrNotTimesheetParty),
		errors.Is(err, payroll.ErrNotEmployer):
		api.Fail(w, http.StatusForbidden, "forbidden", "not a party to this engagement", requestID)
	case errors.Is(err, identity.ErrEmployerSuspended):
		api.Fail(w, http.StatusForbidden, "employer_suspended", "employer account is suspended until overdue payslips are settled", requestID)
	case errors.Is(err, engagement.ErrOfferExists),
		errors.Is(err, engagement.ErrJobHasActiveOffer),
		errors.Is(err, timesheet.ErrAlreadyApproved),
		errors.Is(err, timesheet.ErrLockedEntryChanged),
		errors.Is(err, payroll.ErrNoUnpaidHours),
		errors.Is(err, payroll.ErrNothingToConfirm):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	case errors.Is(err, engagement.ErrInvalidTransition),
		errors.Is(err, engagement.ErrOfferNotPending),
		errors.Is(err, engagement.ErrApplicationClosed),
		errors.Is(err, engagement.ErrInvalidRate),
		errors.Is(err, engagement.ErrInvalidRateType),
		errors.Is(err, engagement.ErrStartDateRequired),
		errors.Is(err, engagement.ErrEndBeforeStart),
		errors.Is(err, timesheet.ErrOfferNotAccepted),
		errors.Is(err, timesheet.ErrNonPositiveHours),
		errors.Is(err, timesheet.ErrDuplicateEntryDate),
		errors.Is(err, timesheet.ErrNoUnlockedEntries),
		errors.Is(err, timesheet.ErrNotSubmitted),
		errors.Is(err, payroll.ErrOfferNotAccepted),
		errors.Is(err, payroll.ErrTimesheetNotApproved):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_state", err.Error(), requestID)
	default:
		slog.Error("request failed", "err", err, "path", r.URL.Path, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}

func applicationView(app engagement.Application) map[string]any {
	view := map[string]any{
		"id":       app.ID,
		"jobId":    app.JobID,
		"jobTitle": app.JobTitle,
		"status":   app.Status,
	}
	if app.LastPaidAt != nil {
		view["lastPaidAt"] = app.LastPaidAt.Format(time.RFC3339)
	}
	return view
}

func offerView(o engagement.Offer) map[string]any {
	if o.ID == "" {
		return nil
	}
	view := map[string]any{
		"id":                   o.ID,
		"applicationId":        o.ApplicationID,
		"jobId":                o.JobID,
		"status":               o.Status,
		"contractType":         o.ContractType,
		"rateType":             o.RateType,
		"rateAmount":           o.RateAmount.String(),
		"rateCurrency":         o.RateCurrency,
		"startDate":            o.StartDate.Format("2006-01-02"),
		"accommodationDetails": o.Accommodation,
		"notes":                o.Notes,
	}
	if o.EndDate != nil {
		view["endDate"] = o.EndDate.Format("2006-01-02")
	}
	return view
}

func timesheetView(ts timesheet.Timesheet) map[string]any {
	entries := make([]map[string]any, 0, len(ts.Entries))
	for _, e := range ts.Entries {
		entries = append(entries, map[string]any{
			"id":            e.ID,
			"entryDate":     e.EntryDate.Format("2006-01-02"),
			"hoursWorked":   e.Hours.String(),
			"notes":         e.Notes,
			"isLocked":      e.IsLocked,
			"isPaid":        e.IsPaid,
			"paymentStatus": e.PaymentStatus,
		})
	}
	view := map[string]any{
		"id":             ts.ID,
		"offerId":        ts.OfferID,
		"status":         ts.Status,
		"travellerNotes": ts.TravellerNotes,
		"employerNotes":  ts.EmployerNotes,
		"entries":        entries,
	}
	if ts.SubmittedAt != nil {
		view["submittedAt"] = ts.SubmittedAt.Format(time.RFC3339)
	}
	if ts.ApprovedAt != nil {
		view["approvedAt"] = ts.ApprovedAt.Format(time.RFC3339)
	}
	return view
}

func payslipView(p payroll.Payslip) map[string]any {
	view := map[string]any{
		"id":                 p.ID,
		"timesheetId":        p.TimesheetID,
		"offerId":            p.OfferID,
		"hourCount":          p.HourCount.String(),
		"rateAmount":         p.RateAmount.String(),
		"rateCurrency":       p.RateCurrency,
		"grossAmount":        p.GrossAmount.String(),
		"commissionAmount":   p.CommissionAmount.String(),
		"netBeforeTax":       p.NetBeforeTax.String(),
		"taxWithheld":        p.TaxWithheld.String(),
		"netPayment":         p.NetPayment.String(),
		"superAmount":        p.SuperAmount.String(),
		"paymentMethod":      p.PaymentMethod,
		"instructionsStatus": p.InstructionsStatus,
		"status":             p.Status,
		"employerName":       p.EmployerName,
		"travellerName":      p.TravellerName,
		"createdAt":          p.CreatedAt.Format(time.RFC3339),
	}
	if p.PayPeriodStart != nil {
		view["payPeriodStart"] = p.PayPeriodStart.Format("2006-01-02")
	}
	if p.PayPeriodEnd != nil {
		view["payPeriodEnd"] = p.PayPeriodEnd.Format("2006-01-02")
	}
	return view
}
