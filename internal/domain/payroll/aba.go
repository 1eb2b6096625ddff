package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ozziework/internal/domain/identity"
)

const recordWidth = 120

// Payee is one payment destination: a display name plus validated bank
// details.
type Payee struct {
	Name    string
	Account identity.BankAccount
}

// InstructionInput carries everything the builder needs. The builder is a
// pure function of this input: same input, byte-identical file.
type InstructionInput struct {
	PayslipID    string
	EmployerName string
	Commission   decimal.Decimal
	NetPayment   decimal.Decimal
	TaxWithheld  decimal.Decimal
	Employer     Payee
	Traveller    Payee
	Platform     Payee
	ProcessedAt  time.Time
}

// InstructionRecord mirrors one emitted detail record for audit display.
type InstructionRecord struct {
	AccountName   string `json:"account_name"`
	BSB           string `json:"bsb"`
	AccountNumber string `json:"account_number"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

type InstructionMetadata struct {
	Records     []InstructionRecord `json:"records"`
	TotalAmount string              `json:"total_amount"`
	GeneratedAt string              `json:"generated_at"`
}

type InstructionFile struct {
	Content     []byte
	Records     []InstructionRecord
	TotalCents  int64
	TotalAmount decimal.Decimal
	GeneratedAt time.Time
}

func (f InstructionFile) Metadata() InstructionMetadata {
	return InstructionMetadata{
		Records:     f.Records,
		TotalAmount: f.TotalAmount.StringFixed(2),
		GeneratedAt: f.GeneratedAt.Format(time.RFC3339),
	}
}

// BuildInstructionFile renders the fixed-width direct-entry batch file for
// one payslip: a type 0 header, one type 1 detail per non-zero leg in the
// order commission → net payment → withheld tax, and a type 7 total
// record. Malformed bank details fail the whole build; no partial file is
// ever produced.
func BuildInstructionFile(in InstructionInput) (InstructionFile, error) {
	for _, p := range []struct {
		label string
		payee Payee
	}{
		{"employer", in.Employer},
		{"traveller", in.Traveller},
		{"platform", in.Platform},
	} {
		if err := identity.ValidateBankAccount(p.label, p.payee.Account); err != nil {
			return InstructionFile{}, err
		}
	}

	companyName := trunc(in.EmployerName, 20)
	if strings.TrimSpace(companyName) == "" {
		companyName = trunc(in.Employer.Name, 20)
	}
	lodgementRef := trunc("PAYS"+in.PayslipID, 18)
	traceBSB := in.Employer.Account.BSBDisplay()
	traceAccount := identity.NormalizeAccountNumber(in.Employer.Account.AccountNumber)

	header := pad(
		"0"+
			" "+
			"01"+
			fmt.Sprintf("%-20s", companyName)+
			fmt.Sprintf("%-12s", trunc(lodgementRef, 12))+
			traceBSB+
			fmt.Sprintf("%-9s", traceAccount)+
			in.ProcessedAt.Format("020106")+
			strings.Repeat(" ", 24)+
			"AUD"+
			strings.Repeat(" ", 9),
	)

	legs := []struct {
		payee       Payee
		amount      decimal.Decimal
		description string
	}{
		{in.Platform, in.Commission, DescCommission},
		{in.Traveller, in.NetPayment, DescNetPayment},
		{in.Employer, in.TaxWithheld, DescTax},
	}

	lines := []string{header}
	var records []InstructionRecord
	var totalCents int64
	for _, leg := range legs {
		if !leg.amount.IsPositive() {
			continue
		}
		cents := amountCents(leg.amount)
		account := identity.NormalizeAccountNumber(leg.payee.Account.AccountNumber)
		lines = append(lines, pad(
			"1"+
				leg.payee.Account.BSBDisplay()+
				fmt.Sprintf("%-9s", account)+
				" "+
				"50"+
				fmt.Sprintf("%010d", cents)+
				fmt.Sprintf("%-32s", trunc(leg.payee.Name, 32))+
				fmt.Sprintf("%-18s", trunc(leg.description, 18))+
				traceBSB+
				fmt.Sprintf("%-9s", traceAccount)+
				fmt.Sprintf("%-16s", trunc(companyName, 16)),
		))
		records = append(records, InstructionRecord{
			AccountName:   leg.payee.Name,
			BSB:           leg.payee.Account.BSBDisplay(),
			AccountNumber: account,
			Amount:        leg.amount.StringFixed(2),
			Description:   leg.description,
		})
		totalCents += cents
	}

	lines = append(lines, pad(
		"7"+
			strings.Repeat(" ", 7)+
			fmt.Sprintf("%010d", totalCents)+
			fmt.Sprintf("%06d", len(records))+
			strings.Repeat(" ", 40)+
			"000000",
	))

	return InstructionFile{
		Content:     []byte(strings.Join(lines, "\n") + "\n"),
		Records:     records,
		TotalCents:  totalCents,
		TotalAmount: in.Commission.Add(in.NetPayment).Add(in.TaxWithheld),
		GeneratedAt: in.ProcessedAt,
	}, nil
}

func amountCents(amount decimal.Decimal) int64 {
	return amount.RoundBank(2).Shift(2).IntPart()
}

func trunc(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func pad(line string) string {
	if len(line) >= recordWidth {
		return line[:recordWidth]
	}
	return line + strings.Repeat(" ", recordWidth-len(line))
}
