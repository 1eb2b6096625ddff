package auth

import (
	"context"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	return s.Store.FindUserByEmail(ctx, email)
}

func (s *Service) CreateUser(ctx context.Context, in NewUser) (string, error) {
	return s.Store.CreateUser(ctx, in)
}

func (s *Service) CreateSession(ctx context.Context, userID, refreshTokenHash string, expires time.Time) error {
	return s.Store.CreateSession(ctx, userID, refreshTokenHash, expires)
}

func (s *Service) UpdateLastLogin(ctx context.Context, userID string) error {
	return s.Store.UpdateLastLogin(ctx, userID)
}

func (s *Service) RevokeSession(ctx context.Context, userID, refreshTokenHash string) error {
	return s.Store.RevokeSession(ctx, userID, refreshTokenHash)
}

func (s *Service) SessionValid(ctx context.Context, userID, refreshTokenHash string) (bool, error) {
	return s.Store.SessionValid(ctx, userID, refreshTokenHash)
}

func (s *Service) UserBySessionToken(ctx context.Context, refreshTokenHash string) (AuthUser, error) {
	return s.Store.UserBySessionToken(ctx, refreshTokenHash)
}

func (s *Service) RotateSession(ctx context.Context, oldHash, newHash string, expires time.Time) error {
	return s.Store.RotateSession(ctx, oldHash, newHash, expires)
}
