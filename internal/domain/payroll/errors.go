package payroll

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrOfferNotAccepted     = errors.New("no accepted offer found for this application")
	ErrTimesheetNotApproved = errors.New("only approved timesheets can be settled")
	ErrNoUnpaidHours        = errors.New("no approved unpaid hours available")
	ErrNonPositiveHours     = errors.New("invalid hour total for settlement")
	ErrNonPositiveRate      = errors.New("rate amount must be positive")
	ErrNoPayslip            = errors.New("no payslip available")
	ErrNothingToConfirm     = errors.New("no instructions awaiting confirmation")
	ErrNotEmployer          = errors.New("only the job owner may settle or confirm")
)
