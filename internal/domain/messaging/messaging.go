package messaging

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TypeJobOffer  = "job_offer"
	TypeTimesheet = "timesheet"
	TypePayslip   = "payslip"
)

// ConversationKey identifies the single conversation between an employer
// account and a traveller about one job.
type ConversationKey struct {
	EmployerUserID string
	TravellerID    string
	JobID          string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// EnsureConversation is the find-or-create on the unique
// (employer, traveller, job) key, safe under concurrent first message.
func (s *Store) EnsureConversation(ctx context.Context, key ConversationKey) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO conversations (employer_user_id, traveller_id, job_id)
    VALUES ($1,$2,$3)
    ON CONFLICT (employer_user_id, traveller_id, job_id)
    DO UPDATE SET updated_at = now()
    RETURNING id
  `, key.EmployerUserID, key.TravellerID, key.JobID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = s.DB.QueryRow(ctx, `
      SELECT id FROM conversations
      WHERE employer_user_id = $1 AND traveller_id = $2 AND job_id = $3
    `, key.EmployerUserID, key.TravellerID, key.JobID).Scan(&id)
	}
	return id, err
}

func (s *Store) InsertSystemMessage(ctx context.Context, conversationID, senderID, body, messageType string, metadata []byte) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var sender *string
	if senderID != "" {
		sender = &senderID
	}
	if _, err := tx.Exec(ctx, `
    INSERT INTO messages (conversation_id, sender_id, body, is_system, message_type, metadata)
    VALUES ($1,$2,$3,true,$4,$5)
  `, conversationID, sender, body, messageType, metadata); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE conversations SET last_message_at = now(), updated_at = now() WHERE id = $1
  `, conversationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// PostSystem drops a structured system message into the conversation.
// Callers treat this as fire-and-forget: a failure is logged, never
// propagated into the transaction that triggered it.
func (s *Service) PostSystem(ctx context.Context, key ConversationKey, senderID, body, messageType string, metadata map[string]any) error {
	conversationID, err := s.Store.EnsureConversation(ctx, key)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	return s.Store.InsertSystemMessage(ctx, conversationID, senderID, body, messageType, payload)
}
