package applicationshandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ozziework/internal/domain/engagement"
	"ozziework/internal/domain/timesheet"
	"ozziework/internal/transport/http/api"
	"ozziework/internal/transport/http/middleware"
	"ozziework/internal/transport/http/shared"
)

type entryRequest struct {
	EntryDate   string          `json:"entryDate"`
	HoursWorked decimal.Decimal `json:"hoursWorked"`
	Notes       string          `json:"notes"`
}

type timesheetRequest struct {
	Entries        []entryRequest `json:"entries"`
	TravellerNotes string         `json:"travellerNotes"`
	EmployerNotes  string         `json:"employerNotes"`
}

func (h *Handler) HandleGetTimesheet(w http.ResponseWriter, r *http.Request) {
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
	ts, err := h.Timesheets.Get(r.Context(), offer.ID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}
	api.Success(w, timesheetView(ts), middleware.GetRequestID(r.Context()))
}

// HandleReplaceEntries is the traveller's wholesale entry update: the
// body's entries replace the unlocked portion of the sheet, keyed by
// calendar date. Locked entries must be sent back unchanged or omitted.
func (h *Handler) HandleReplaceEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	applicationID := chi.URLParam(r, "applicationID")

	var payload timesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	incoming := make([]timesheet.EntryInput, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		date, err := shared.ParseDate(e.EntryDate)
		if err != nil || date.IsZero() {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "entryDate must be a valid YYYY-MM-DD date", middleware.GetRequestID(r.Context()))
			return
		}
		incoming = append(incoming, timesheet.EntryInput{
			EntryDate: date,
			Hours:     e.HoursWorked,
			Notes:     e.Notes,
		})
	}

	app, offer, err := h.loadEngagement(r, applicationID, user.UserID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	actor := engagement.Actor{UserID: user.UserID, Role: user.Role}
	ts, mutated, err := h.Timesheets.ReplaceEntries(r.Context(), actor, offer, incoming, payload.TravellerNotes)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	if mutated {
		h.announceTimesheet(r, offer, app, ts, "The timesheet has been updated.")
		h.record(r, user.UserID, "timesheet.replace_entries", "timesheet", ts.ID, nil, timesheetView(ts))
	}
	api.Success(w, timesheetView(ts), middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleSubmitTimesheet(w http.ResponseWriter, r *http.Request) {
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

	actor := engagement.Actor{UserID: user.UserID, Role: user.Role}
	ts, err := h.Timesheets.Submit(r.Context(), actor, offer)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	h.announceTimesheet(r, offer, app, ts, "The timesheet has been submitted for approval.")
	h.notifyParty(r, app.EmployerUserID, "Timesheet submitted",
		"A timesheet for "+app.JobTitle+" is ready for your review.")
	h.record(r, user.UserID, "timesheet.submit", "timesheet", ts.ID, nil, timesheetView(ts))

	api.Success(w, timesheetView(ts), middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	applicationID := chi.URLParam(r, "applicationID")

	var payload timesheetRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			payload = timesheetRequest{}
		}
	}

	app, offer, err := h.loadEngagement(r, applicationID, user.UserID)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	actor := engagement.Actor{UserID: user.UserID, Role: user.Role}
	ts, err := h.Timesheets.Approve(r.Context(), actor, offer, app.EmployerUserID, payload.EmployerNotes)
	if err != nil {
		h.failDomain(w, r, err)
		return
	}

	h.announceTimesheet(r, offer, app, ts, "The timesheet has been approved.")
	h.notifyParty(r, offer.TravellerID, "Timesheet approved",
		"Your timesheet for "+app.JobTitle+" has been approved.")
	h.record(r, user.UserID, "timesheet.approve", "timesheet", ts.ID, nil, timesheetView(ts))

	api.Success(w, timesheetView(ts), middleware.GetRequestID(r.Context()))
}

func (h *Handler) announceTimesheet(r *http.Request, offer engagement.Offer, app engagement.Application, ts timesheet.Timesheet, body string) {
	if h.Messaging == nil {
		return
	}
	if err := h.Messaging.TimesheetEvent(r.Context(), offer, app, ts, offer.TravellerID, body); err != nil {
		slog.Warn("timesheet conversation message failed", "timesheetId", ts.ID, "err", err)
	}
}
