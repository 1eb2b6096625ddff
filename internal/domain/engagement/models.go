package engagement

import (
	"time"

	"github.com/shopspring/decimal"
)

type Application struct {
	ID             string
	JobID          string
	JobTitle       string
	ApplicantID    string
	EmployerID     string
	EmployerUserID string
	Status         string
	LastPaidAt     *time.Time
}

type Offer struct {
	ID            string
	ApplicationID string
	JobID         string
	EmployerID    string
	TravellerID   string
	ContractType  string
	RateType      string
	RateAmount    decimal.Decimal
	RateCurrency  string
	StartDate     time.Time
	EndDate       *time.Time
	Accommodation string
	Notes         string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OfferTerms is the employer-supplied contract content of an offer,
// shared by create and pending-edit.
type OfferTerms struct {
	ContractType  string
	RateType      string
	RateAmount    decimal.Decimal
	RateCurrency  string
	StartDate     time.Time
	EndDate       *time.Time
	Accommodation string
	Notes         string
}

func (t *OfferTerms) normalize() {
	if t.ContractType == "" {
		t.ContractType = ContractCasual
	}
	if t.RateCurrency == "" {
		t.RateCurrency = "AUD"
	}
}

func (t OfferTerms) validate() error {
	if !ValidRateType(t.RateType) {
		return ErrInvalidRateType
	}
	if !t.RateAmount.IsPositive() {
		return ErrInvalidRate
	}
	if t.StartDate.IsZero() {
		return ErrStartDateRequired
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}
