package engagement

import (
	"context"

	"ozziework/internal/domain/auth"
)

type Actor struct {
	UserID string
	Role   string
}

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) ApplicationByID(ctx context.Context, applicationID string) (Application, error) {
	return s.Store.ApplicationByID(ctx, applicationID)
}

func (s *Service) OfferByApplicationID(ctx context.Context, applicationID string) (Offer, error) {
	return s.Store.OfferByApplicationID(ctx, applicationID)
}

func (s *Service) ListApplicationsForUser(ctx context.Context, userID, role string, limit, offset int) ([]Application, error) {
	return s.Store.ListApplicationsForUser(ctx, userID, role, limit, offset)
}

// CreateOffer creates a pending offer on behalf of the employer who owns
// the application's job. The application may carry at most one
// non-cancelled offer, and a job may carry at most one live one.
func (s *Service) CreateOffer(ctx context.Context, actor Actor, applicationID string, terms OfferTerms) (Offer, error) {
	app, err := s.Store.ApplicationByID(ctx, applicationID)
	if err != nil {
		return Offer{}, err
	}
	if actor.Role != auth.RoleEmployer || actor.UserID != app.EmployerUserID {
		return Offer{}, ErrNotOfferParty
	}
	if app.Status == ApplicationCancelled {
		return Offer{}, ErrApplicationClosed
	}

	terms.normalize()
	if err := terms.validate(); err != nil {
		return Offer{}, err
	}

	exists, err := s.Store.ActiveOfferExistsForApplication(ctx, applicationID)
	if err != nil {
		return Offer{}, err
	}
	if exists {
		return Offer{}, ErrOfferExists
	}
	busy, err := s.Store.JobHasActiveOffer(ctx, app.JobID)
	if err != nil {
		return Offer{}, err
	}
	if busy {
		return Offer{}, ErrJobHasActiveOffer
	}

	return s.Store.InsertOffer(ctx, Offer{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		EmployerID:    app.EmployerID,
		TravellerID:   app.ApplicantID,
		ContractType:  terms.ContractType,
		RateType:      terms.RateType,
		RateAmount:    terms.RateAmount,
		RateCurrency:  terms.RateCurrency,
		StartDate:     terms.StartDate,
		EndDate:       terms.EndDate,
		Accommodation: terms.Accommodation,
		Notes:         terms.Notes,
	})
}

// UpdateTerms lets the employer revise contract fields while the offer is
// still pending.
func (s *Service) UpdateTerms(ctx context.Context, actor Actor, applicationID string, terms OfferTerms) (Offer, error) {
	offer, app, err := s.offerForActor(ctx, applicationID, actor)
	if err != nil {
		return Offer{}, err
	}
	if actor.Role != auth.RoleEmployer || actor.UserID != app.EmployerUserID {
		return Offer{}, ErrNotOfferParty
	}
	if offer.Status != OfferPending {
		return Offer{}, ErrOfferNotPending
	}

	terms.normalize()
	if err := terms.validate(); err != nil {
		return Offer{}, err
	}
	return s.Store.UpdateOfferTerms(ctx, offer.ID, terms)
}

// Transition moves the offer status on behalf of either party. The role
// table in AllowedTransition is the single authority on who may do what.
func (s *Service) Transition(ctx context.Context, actor Actor, applicationID, newStatus string) (Offer, error) {
	offer, app, err := s.offerForActor(ctx, applicationID, actor)
	if err != nil {
		return Offer{}, err
	}

	switch actor.Role {
	case auth.RoleEmployer:
		if actor.UserID != app.EmployerUserID {
			return Offer{}, ErrNotOfferParty
		}
	case auth.RoleTraveller:
		if actor.UserID != offer.TravellerID {
			return Offer{}, ErrNotOfferParty
		}
	default:
		return Offer{}, ErrNotOfferParty
	}

	if err := AllowedTransition(actor.Role, offer.Status, newStatus); err != nil {
		return Offer{}, err
	}
	return s.Store.TransitionOffer(ctx, offer.ID, newStatus)
}

func (s *Service) offerForActor(ctx context.Context, applicationID string, actor Actor) (Offer, Application, error) {
	app, err := s.Store.ApplicationByID(ctx, applicationID)
	if err != nil {
		return Offer{}, Application{}, err
	}
	offer, err := s.Store.OfferByApplicationID(ctx, applicationID)
	if err != nil {
		return Offer{}, Application{}, err
	}
	if actor.Role == auth.RoleTraveller && actor.UserID != app.ApplicantID {
		return Offer{}, Application{}, ErrNotOfferParty
	}
	return offer, app, nil
}
