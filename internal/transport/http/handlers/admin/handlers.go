package adminhandler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ozziework/internal/domain/audit"
	"ozziework/internal/domain/payroll"
	"ozziework/internal/platform/config"
	"ozziework/internal/platform/jobs"
	"ozziework/internal/platform/metrics"
	"ozziework/internal/transport/http/api"
	"ozziework/internal/transport/http/middleware"
	"ozziework/internal/transport/http/shared"
)

type Handler struct {
	Payroll *payroll.Service
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Audit   *audit.Service
	Cfg     config.Config
}

// HandleOverdueSweep triggers the overdue payslip sweep on demand.
// ?dryRun=true reports what would be marked without writing anything.
func (h *Handler) HandleOverdueSweep(w http.ResponseWriter, r *http.Request) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dryRun"))

	result, err := h.Jobs.RunNow(r.Context(), jobs.JobOverdueSweep, func(ctx context.Context) (any, error) {
		return h.Payroll.RunOverdueSweep(ctx, h.Cfg.OverdueAfter, dryRun, time.Now().UTC())
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "sweep_failed", "overdue sweep failed", middleware.GetRequestID(r.Context()))
		return
	}

	sweep, ok := result.(payroll.SweepResult)
	if ok && !dryRun && h.Metrics != nil {
		h.Metrics.PayslipsMarkedOverdue(sweep.MarkedOverdue)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleAuditEvents(w http.ResponseWriter, r *http.Request) {
	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorUser:  r.URL.Query().Get("actorUserId"),
	}
	page := shared.ParsePagination(r, 50, 500)
	includeDetails, _ := strconv.ParseBool(r.URL.Query().Get("details"))

	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to count audit events", middleware.GetRequestID(r.Context()))
		return
	}
	events, err := h.Audit.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"items":  events,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}
