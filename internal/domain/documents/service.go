package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ozziework/internal/domain/payroll"
	"ozziework/internal/platform/crypto"
)

type Service struct {
	Store  *Store
	Crypto *crypto.Service
	Dir    string
}

func NewService(store *Store, cryptoSvc *crypto.Service, dir string) *Service {
	return &Service{Store: store, Crypto: cryptoSvc, Dir: dir}
}

// SaveArtifact writes the bytes under the storage dir (encrypted at rest
// when a data key is configured) and records the document row. SizeBytes
// is the plaintext size, matching what the owner downloads.
func (s *Service) SaveArtifact(ctx context.Context, ownerID, uploadedBy, title, category, filename, mimeType string, data []byte, sourceType string, sourceID string) (Document, error) {
	dir := filepath.Join(s.Dir, category)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Document{}, err
	}
	path := filepath.Join(dir, filename)

	payload := data
	if s.Crypto != nil && s.Crypto.Configured() {
		encrypted, err := s.Crypto.Encrypt(data)
		if err != nil {
			return Document{}, err
		}
		payload = encrypted
		path += ".enc"
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return Document{}, err
	}

	var srcID *string
	if sourceID != "" {
		srcID = &sourceID
	}
	return s.Store.Insert(ctx, Document{
		OwnerID:    ownerID,
		UploadedBy: uploadedBy,
		Title:      title,
		Category:   category,
		FilePath:   path,
		MimeType:   mimeType,
		SizeBytes:  int64(len(data)),
		SourceType: sourceType,
		SourceID:   srcID,
	})
}

// ReadArtifact loads and, if needed, decrypts a stored document.
func (s *Service) ReadArtifact(d Document) ([]byte, error) {
	data, err := os.ReadFile(d.FilePath)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(d.FilePath) == ".enc" {
		return s.Crypto.Decrypt(data)
	}
	return data, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	return s.Store.ListByOwner(ctx, ownerID)
}

func (s *Service) ByID(ctx context.Context, id string) (Document, error) {
	return s.Store.ByID(ctx, id)
}

// StorePayslipArtifacts persists both settlement artifacts: the rendered
// PDF for the traveller and the bank instruction file for the employer.
func (s *Service) StorePayslipArtifacts(ctx context.Context, actorID, employerUserID string, p payroll.Payslip, abaContent []byte) error {
	pdfBytes, err := RenderPayslipPDF(p)
	if err != nil {
		return err
	}
	dateLabel := p.CreatedAt.Format("2006-01-02")

	if _, err := s.SaveArtifact(ctx,
		p.TravellerID, actorID,
		fmt.Sprintf("Payslip %s", dateLabel), CategoryPayslipPDF,
		fmt.Sprintf("payslip-%s.pdf", p.ID), "application/pdf",
		pdfBytes, "payslip", p.ID,
	); err != nil {
		return err
	}

	_, err = s.SaveArtifact(ctx,
		employerUserID, actorID,
		fmt.Sprintf("Payslip ABA %s", dateLabel), CategoryPayslipABA,
		fmt.Sprintf("payslip-%s.aba", p.ID), "text/plain",
		abaContent, "payslip", p.ID,
	)
	return err
}
