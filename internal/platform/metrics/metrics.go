package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	payslipsSettled   uint64
	payslipsConfirmed uint64
	payslipsOverdue   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) PayslipSettled()   { atomic.AddUint64(&c.payslipsSettled, 1) }
func (c *Collector) PayslipConfirmed() { atomic.AddUint64(&c.payslipsConfirmed, 1) }

func (c *Collector) PayslipsMarkedOverdue(n int) {
	if n > 0 {
		atomic.AddUint64(&c.payslipsOverdue, uint64(n))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            errs,
		"rateLimitedTotal":       limited,
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"payslipsSettledTotal":   atomic.LoadUint64(&c.payslipsSettled),
		"payslipsConfirmedTotal": atomic.LoadUint64(&c.payslipsConfirmed),
		"payslipsOverdueTotal":   atomic.LoadUint64(&c.payslipsOverdue),
	}
}
