package timesheet

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrOfferNotAccepted   = errors.New("hours can only be logged against an accepted offer")
	ErrNotTimesheetParty  = errors.New("actor is not a party to this timesheet")
	ErrLockedEntryChanged = errors.New("approved entries are locked and cannot be changed")
	ErrNonPositiveHours   = errors.New("hours worked must be positive")
	ErrDuplicateEntryDate = errors.New("duplicate entry date in payload")
	ErrNoUnlockedEntries  = errors.New("timesheet has no unlocked entries")
	ErrAlreadyApproved    = errors.New("timesheet is already approved")
	ErrNotSubmitted       = errors.New("timesheet must be submitted before approval")
)
