package documents

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"ozziework/internal/domain/payroll"
)

// RenderPayslipPDF lays out the human-readable payslip from the immutable
// snapshot. Cosmetic only: the monetary engine never reads it back.
func RenderPayslipPDF(p payroll.Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Worker: %s", p.TravellerName))
	pdf.Ln(7)
	if p.TravellerAddress != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Address: %s", p.TravellerAddress))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Employer: %s (ABN %s)", p.EmployerName, p.EmployerABN))
	pdf.Ln(7)
	if p.PayPeriodStart != nil && p.PayPeriodEnd != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", p.PayPeriodStart.Format("2006-01-02"), p.PayPeriodEnd.Format("2006-01-02")))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Hours: %s at %s %s", p.HourCount, p.RateAmount.StringFixed(2), p.RateCurrency))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Gross: %s %s", p.GrossAmount.StringFixed(2), p.RateCurrency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Platform commission: %s %s", p.CommissionAmount.StringFixed(2), p.RateCurrency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Tax withheld: %s %s", p.TaxWithheld.StringFixed(2), p.RateCurrency))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net payment: %s %s", p.NetPayment.StringFixed(2), p.RateCurrency))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Superannuation (not deducted): %s %s", p.SuperAmount.StringFixed(2), p.RateCurrency))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
