package payroll

import (
	"context"
	"log/slog"
	"time"
)

// SweepResult summarizes one overdue-detection pass. It is persisted as
// the job run details and returned from the admin endpoint.
type SweepResult struct {
	Scanned            int      `json:"scanned"`
	MarkedOverdue      int      `json:"markedOverdue"`
	SuspendedEmployers []string `json:"suspendedEmployers"`
	Failures           int      `json:"failures"`
	DryRun             bool     `json:"dryRun"`
	Cutoff             string   `json:"cutoff"`
}

// RunOverdueSweep marks payslips whose instructions have sat unconfirmed
// past the cutoff as overdue and suspends the responsible employers.
// Already-overdue rows never match the candidate filter, so re-running is
// a no-op. Row failures are logged and counted, never fatal to the batch.
func (s *Service) RunOverdueSweep(ctx context.Context, overdueAfter time.Duration, dryRun bool, now time.Time) (SweepResult, error) {
	cutoff := now.Add(-overdueAfter).Format("2006-01-02")
	result := SweepResult{DryRun: dryRun, Cutoff: cutoff}

	candidates, err := s.Store.overdueCandidates(ctx, cutoff)
	if err != nil {
		return result, err
	}
	result.Scanned = len(candidates)

	suspended := map[string]bool{}
	for _, c := range candidates {
		if dryRun {
			result.MarkedOverdue++
			if !c.EmployerSuspended && !suspended[c.EmployerID] {
				suspended[c.EmployerID] = true
				result.SuspendedEmployers = append(result.SuspendedEmployers, c.EmployerID)
			}
			continue
		}

		didSuspend, err := s.Store.markOverdue(ctx, c)
		if err != nil {
			result.Failures++
			slog.Warn("overdue sweep row failed", "payslipId", c.PayslipID, "err", err)
			continue
		}
		result.MarkedOverdue++
		slog.Warn("payslip marked overdue", "payslipId", c.PayslipID, "employerId", c.EmployerID, "travellerId", c.TravellerID)
		if didSuspend && !suspended[c.EmployerID] {
			suspended[c.EmployerID] = true
			result.SuspendedEmployers = append(result.SuspendedEmployers, c.EmployerID)
			slog.Warn("employer suspended for overdue payslip", "employerId", c.EmployerID, "payslipId", c.PayslipID)
		}
	}

	if result.Scanned == 0 {
		slog.Info("no overdue payslips detected")
	}
	return result, nil
}
