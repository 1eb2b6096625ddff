package applicationshandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ozziework/internal/domain/identity"
	"ozziework/internal/domain/payroll"
	"ozziework/internal/transport/http/api"
	"ozziework/internal/transport/http/middleware"
)

// HandleSettle converts the approved timesheet's unpaid hours into a
// payslip and a bank instruction file. An Idempotency-Key header makes
// retries of the same request return the original payslip instead of
// attempting a second settlement.
func (h *Handler) HandleSettle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	applicationID := chi.URLParam(r, "applicationID")
	endpoint := "POST /applications/" + applicationID + "/payslip"

	body, _ := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body)
	if idemKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, endpoint, idemKey, requestHash)
		if err != nil {
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusInternalServerError, "internal_error", "idempotency check failed", middleware.GetRequestID(r.Context()))
			return
		}
		if found {
			var data any
			if err := json.Unmarshal(stored, &data); err == nil {
				api.Success(w, data, middleware.GetRequestID(r.Context()))
				return
			}
		}
	}

	app, err := h.Engagement.ApplicationByID(r.Context(), applicationID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	if user.UserID != app.EmployerUserID {
		h.failDomain(w, r, payroll.ErrNotEmployer)
		return
	}
	employer, err := h.Identity.EnsureEmployerActive(r.Context(), app.EmployerID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	offer, err := h.Engagement.OfferByApplicationID(r.Context(), applicationID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	ts, err := h.Timesheets.Get(r.Context(), offer.ID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	employerParty, err := h.Identity.PartyByUserID(r.Context(), app.EmployerUserID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	travellerParty, err := h.Identity.PartyByUserID(r.Context(), offer.TravellerID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	payslip, file, err := h.Payroll.Settle(r.Context(), payroll.SettleRequest{
		Offer:           offer,
		Timesheet:       ts,
		EmployerProfile: employer,
		EmployerParty:   employerParty,
		TravellerParty:  travellerParty,
		Platform:        h.platformPayee(),
		Now:             time.Now().UTC(),
	})
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	// Post-commit side effects. The settlement is durable at this point,
	// so failures here degrade to warnings.
	if h.Documents != nil {
		if err := h.Documents.StorePayslipArtifacts(r.Context(), user.UserID, app.EmployerUserID, payslip, file.Content); err != nil {
			slog.Warn("payslip artifact storage failed", "payslipId", payslip.ID, "err", err)
		}
	}
	if h.Messaging != nil {
		if err := h.Messaging.PayslipEvent(r.Context(), payslip, app, offer.JobID, app.EmployerUserID, "A payslip has been generated."); err != nil {
			slog.Warn("payslip conversation message failed", "payslipId", payslip.ID, "err", err)
		}
	}
	h.notifyParty(r, offer.TravellerID, "Payslip generated",
		"A payslip for "+app.JobTitle+" has been generated. Payment instructions were issued to your employer's bank.")
	if h.Metrics != nil {
		h.Metrics.PayslipSettled()
	}
	h.record(r, user.UserID, "payslip.settle", "payslip", payslip.ID, nil, payslipView(payslip))

	data := map[string]any{
		"payslip":         payslipView(payslip),
		"instructionFile": string(file.Content),
	}
	if idemKey != "" {
		if raw, err := json.Marshal(data); err == nil {
			if err := h.Idempotency.Save(r.Context(), user.UserID, endpoint, idemKey, requestHash, raw); err != nil {
				slog.Warn("idempotency save failed", "payslipId", payslip.ID, "err", err)
			}
		}
	}
	api.Created(w, data, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleGetPayslip(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	applicationID := chi.URLParam(r, "applicationID")

	_, offer, err := h.loadEngagement(r, applicationID, user.UserID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	payslip, err := h.Payroll.LatestByOfferID(r.Context(), offer.ID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	api.Success(w, payslipView(payslip), middleware.GetRequestID(r.Context()))
}

// HandleConfirmInstructions is the employer's acknowledgement that the
// instruction file cleared the bank. It settles the payslip, releases
// the entries and, if the employer was suspended over this debt, lifts
// the suspension.
func (h *Handler) HandleConfirmInstructions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	applicationID := chi.URLParam(r, "applicationID")

	app, err := h.Engagement.ApplicationByID(r.Context(), applicationID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	if user.UserID != app.EmployerUserID {
		h.failDomain(w, r, payroll.ErrNotEmployer)
		return
	}
	offer, err := h.Engagement.OfferByApplicationID(r.Context(), applicationID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	payslip, err := h.Payroll.ConfirmInstructions(r.Context(), offer.ID, app.ID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	if err := h.Identity.UnsuspendIfSettled(r.Context(), app.EmployerID); err != nil {
		slog.Warn("suspension review failed", "employerId", app.EmployerID, "err", err)
	}
	if h.Messaging != nil {
		if err := h.Messaging.PayslipEvent(r.Context(), payslip, app, offer.JobID, app.EmployerUserID, "Payment has been confirmed."); err != nil {
			slog.Warn("payslip conversation message failed", "payslipId", payslip.ID, "err", err)
		}
	}
	h.notifyParty(r, offer.TravellerID, "Payment confirmed",
		"Payment for your work on "+app.JobTitle+" has been confirmed.")
	if h.Metrics != nil {
		h.Metrics.PayslipConfirmed()
	}
	h.record(r, user.UserID, "payslip.confirm", "payslip", payslip.ID, nil, payslipView(payslip))

	api.Success(w, payslipView(payslip), middleware.GetRequestID(r.Context()))
}

func (h *Handler) platformPayee() payroll.Payee {
	return payroll.Payee{
		Name: h.Cfg.PlatformBankName,
		Account: identity.BankAccount{
			BankName:      h.Cfg.PlatformBankName,
			BSB:           identity.NormalizeBSB(h.Cfg.PlatformBankBSB),
			AccountNumber: h.Cfg.PlatformBankAcct,
		},
	}
}
