package identity

import "strings"

// Party is the profile slice of a user that payroll snapshots onto a
// payslip: legal name, postal address, tax file number and bank account.
type Party struct {
	UserID    string
	Email     string
	Role      string
	FirstName string
	LastName  string
	Street    string
	City      string
	State     string
	Postcode  string
	TFN       string
	Bank      BankAccount
}

func (p Party) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

func (p Party) PostalAddress() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{p.Street, p.City, p.State, p.Postcode} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, ", ")
}

type Employer struct {
	ID          string
	UserID      string
	CompanyName string
	ABN         string
	IsSuspended bool
}
