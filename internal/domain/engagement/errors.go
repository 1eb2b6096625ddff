package engagement

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrOfferExists        = errors.New("an offer already exists for this application")
	ErrJobHasActiveOffer  = errors.New("this job already has a pending or accepted offer")
	ErrOfferNotPending    = errors.New("offer terms can only be changed while the offer is pending")
	ErrInvalidTransition  = errors.New("offer status transition not allowed")
	ErrNotOfferParty      = errors.New("actor is not a party to this offer")
	ErrInvalidRate        = errors.New("rate amount must be positive")
	ErrInvalidRateType    = errors.New("rate type must be hourly or daily")
	ErrStartDateRequired  = errors.New("start date is required")
	ErrEndBeforeStart     = errors.New("end date must not be before start date")
	ErrApplicationClosed  = errors.New("application is not open for an offer")
)
