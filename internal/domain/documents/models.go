package documents

import "time"

const (
	CategoryPayslipPDF = "payslip_pdf"
	CategoryPayslipABA = "payslip_aba"
)

type Document struct {
	ID         string
	OwnerID    string
	UploadedBy string
	Title      string
	Category   string
	FilePath   string
	MimeType   string
	SizeBytes  int64
	SourceType string
	SourceID   *string
	CreatedAt  time.Time
}
