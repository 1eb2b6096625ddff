package identity

import "strings"

// BankAccount holds the destination details for one leg of a payment
// instruction file.
type BankAccount struct {
	BankName      string
	BSB           string
	AccountNumber string
}

func digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeBSB strips separators (spaces, hyphens, dots) and returns the
// bare digit string. "083-123", "083 123" and "083123" all normalize to
// "083123"; anything that does not leave exactly six digits is rejected
// by Validate.
func NormalizeBSB(raw string) string {
	return digits(raw)
}

// NormalizeAccountNumber reduces an account number to its digits the same
// way NormalizeBSB does; "12-345 678" reduces to "12345678". The reduced
// form is what gets stored and written into instruction records.
func NormalizeAccountNumber(raw string) string {
	return digits(raw)
}

// BSBDisplay renders the normalized BSB in the conventional NNN-NNN form
// used inside bank instruction records.
func (a BankAccount) BSBDisplay() string {
	digits := NormalizeBSB(a.BSB)
	if len(digits) != 6 {
		return digits
	}
	return digits[:3] + "-" + digits[3:]
}

// ValidateBankAccount checks the account is usable as a payment
// destination. Separators are tolerated: an account number is valid when
// it reduces to 1 to 9 digits. party labels whose details failed
// ("employer" or "traveller") so settlement errors point at the right
// profile.
func ValidateBankAccount(party string, a BankAccount) error {
	if strings.TrimSpace(a.BankName) == "" {
		return &BankDetailError{Party: party, Field: "bank_name", Msg: "is required"}
	}
	if len(NormalizeBSB(a.BSB)) != 6 {
		return &BankDetailError{Party: party, Field: "bank_bsb", Msg: "must contain exactly 6 digits"}
	}
	acct := NormalizeAccountNumber(a.AccountNumber)
	if acct == "" {
		return &BankDetailError{Party: party, Field: "bank_account_number", Msg: "is required"}
	}
	if len(acct) > 9 {
		return &BankDetailError{Party: party, Field: "bank_account_number", Msg: "must reduce to 1 to 9 digits"}
	}
	return nil
}
