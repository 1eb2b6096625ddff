package identity

import (
	"context"
	"log/slog"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) PartyByUserID(ctx context.Context, userID string) (Party, error) {
	return s.Store.PartyByUserID(ctx, userID)
}

func (s *Service) EmployerByID(ctx context.Context, employerID string) (Employer, error) {
	return s.Store.EmployerByID(ctx, employerID)
}

func (s *Service) EmployerByUserID(ctx context.Context, userID string) (Employer, error) {
	return s.Store.EmployerByUserID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) error {
	return s.Store.UpdateProfile(ctx, userID, in)
}

// EnsureEmployerActive loads the employer and rejects suspended accounts.
// Suspended employers cannot issue offers or settle timesheets until every
// overdue payslip is confirmed.
func (s *Service) EnsureEmployerActive(ctx context.Context, employerID string) (Employer, error) {
	employer, err := s.Store.EmployerByID(ctx, employerID)
	if err != nil {
		return Employer{}, err
	}
	if employer.IsSuspended {
		return Employer{}, ErrEmployerSuspended
	}
	return employer, nil
}

func (s *Service) SuspendEmployer(ctx context.Context, employerID string) error {
	return s.Store.SetSuspended(ctx, employerID, true)
}

// UnsuspendIfSettled lifts a suspension once the employer has no overdue
// unsettled payslips left. Called after each payment confirmation.
func (s *Service) UnsuspendIfSettled(ctx context.Context, employerID string) error {
	employer, err := s.Store.EmployerByID(ctx, employerID)
	if err != nil {
		return err
	}
	if !employer.IsSuspended {
		return nil
	}
	remaining, err := s.Store.OverdueUnpaidCount(ctx, employerID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}
	if err := s.Store.SetSuspended(ctx, employerID, false); err != nil {
		return err
	}
	slog.Info("employer suspension lifted", "employerId", employerID)
	return nil
}
