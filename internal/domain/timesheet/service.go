package timesheet

import (
	"context"

	"ozziework/internal/domain/auth"
	"ozziework/internal/domain/engagement"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// Get returns the offer's timesheet, creating it on first access.
func (s *Service) Get(ctx context.Context, offerID string) (Timesheet, error) {
	return s.Store.GetOrCreateByOfferID(ctx, offerID)
}

// ReplaceEntries applies a wholesale entry replacement on behalf of the
// traveller. Returns the refreshed timesheet and whether anything changed.
func (s *Service) ReplaceEntries(ctx context.Context, actor engagement.Actor, offer engagement.Offer, incoming []EntryInput, travellerNotes string) (Timesheet, bool, error) {
	if actor.Role != auth.RoleTraveller || actor.UserID != offer.TravellerID {
		return Timesheet{}, false, ErrNotTimesheetParty
	}
	if offer.Status != engagement.OfferAccepted {
		return Timesheet{}, false, ErrOfferNotAccepted
	}

	ts, err := s.Store.GetOrCreateByOfferID(ctx, offer.ID)
	if err != nil {
		return Timesheet{}, false, err
	}

	plan, err := PlanReplacement(ts.Entries, incoming)
	if err != nil {
		return Timesheet{}, false, err
	}

	if err := s.Store.ApplyReplacement(ctx, ts.ID, plan, travellerNotes); err != nil {
		return Timesheet{}, false, err
	}

	refreshed, err := s.Store.GetOrCreateByOfferID(ctx, offer.ID)
	return refreshed, plan.Mutates(), err
}

// Submit marks the traveller's hours ready for employer review.
func (s *Service) Submit(ctx context.Context, actor engagement.Actor, offer engagement.Offer) (Timesheet, error) {
	if actor.Role != auth.RoleTraveller || actor.UserID != offer.TravellerID {
		return Timesheet{}, ErrNotTimesheetParty
	}
	if offer.Status != engagement.OfferAccepted {
		return Timesheet{}, ErrOfferNotAccepted
	}

	ts, err := s.Store.GetOrCreateByOfferID(ctx, offer.ID)
	if err != nil {
		return Timesheet{}, err
	}
	if ts.Status == StatusApproved {
		return Timesheet{}, ErrAlreadyApproved
	}
	if countUnlocked(ts.Entries) == 0 {
		return Timesheet{}, ErrNoUnlockedEntries
	}

	if err := s.Store.MarkSubmitted(ctx, ts.ID); err != nil {
		return Timesheet{}, err
	}
	return s.Store.GetOrCreateByOfferID(ctx, offer.ID)
}

// Approve locks the submitted hours on behalf of the employer.
// employerUserID is the account that owns the offer's employer profile.
func (s *Service) Approve(ctx context.Context, actor engagement.Actor, offer engagement.Offer, employerUserID, employerNotes string) (Timesheet, error) {
	if actor.Role != auth.RoleEmployer || actor.UserID != employerUserID {
		return Timesheet{}, ErrNotTimesheetParty
	}

	ts, err := s.Store.GetOrCreateByOfferID(ctx, offer.ID)
	if err != nil {
		return Timesheet{}, err
	}

	if err := s.Store.Approve(ctx, ts.ID, employerNotes); err != nil {
		return Timesheet{}, err
	}
	return s.Store.GetOrCreateByOfferID(ctx, offer.ID)
}

func countUnlocked(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if !e.IsLocked {
			n++
		}
	}
	return n
}
