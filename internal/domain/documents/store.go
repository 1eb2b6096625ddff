package documents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("document not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, d Document) (Document, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO documents (owner_id, uploaded_by, title, category, file_path, mime_type, size_bytes, source_type, source_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id, created_at
  `, d.OwnerID, d.UploadedBy, d.Title, d.Category, d.FilePath, d.MimeType, d.SizeBytes, d.SourceType, d.SourceID).
		Scan(&d.ID, &d.CreatedAt)
	return d, err
}

func (s *Store) ByID(ctx context.Context, id string) (Document, error) {
	var d Document
	err := s.DB.QueryRow(ctx, `
    SELECT id, owner_id, COALESCE(uploaded_by::text, ''), title, category, file_path, mime_type, size_bytes, source_type, source_id, created_at
    FROM documents
    WHERE id = $1
  `, id).Scan(&d.ID, &d.OwnerID, &d.UploadedBy, &d.Title, &d.Category, &d.FilePath, &d.MimeType, &d.SizeBytes, &d.SourceType, &d.SourceID, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return d, err
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, owner_id, COALESCE(uploaded_by::text, ''), title, category, file_path, mime_type, size_bytes, source_type, source_id, created_at
    FROM documents
    WHERE owner_id = $1
    ORDER BY created_at DESC
  `, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.UploadedBy, &d.Title, &d.Category, &d.FilePath, &d.MimeType, &d.SizeBytes, &d.SourceType, &d.SourceID, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
