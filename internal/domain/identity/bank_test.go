package identity

import (
	"errors"
	"testing"
)

func TestNormalizeBSB(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"083-123", "083123"},
		{"083 123", "083123"},
		{"083.123", "083123"},
		{"083123", "083123"},
		{"08-31-23", "083123"},
		{"abc", ""},
	}
	for _, tc := range cases {
		if got := NormalizeBSB(tc.in); got != tc.want {
			t.Fatalf("NormalizeBSB(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBSBDisplay(t *testing.T) {
	acct := BankAccount{BSB: "083 123"}
	if got := acct.BSBDisplay(); got != "083-123" {
		t.Fatalf("BSBDisplay = %q, want 083-123", got)
	}
}

func TestNormalizeAccountNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12345678", "12345678"},
		{"12-345 678", "12345678"},
		{"12.345.678", "12345678"},
		{" 12345678 ", "12345678"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := NormalizeAccountNumber(tc.in); got != tc.want {
			t.Fatalf("NormalizeAccountNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateBankAccount(t *testing.T) {
	valid := []BankAccount{
		{BankName: "Demo Mutual", BSB: "083-123", AccountNumber: "12345678"},
		{BankName: "Demo Mutual", BSB: "083 123", AccountNumber: "12-345 678"},
	}
	for _, acct := range valid {
		if err := ValidateBankAccount("traveller", acct); err != nil {
			t.Fatalf("valid account %q rejected: %v", acct.AccountNumber, err)
		}
	}

	cases := []struct {
		name      string
		acct      BankAccount
		wantField string
	}{
		{"missing bank name", BankAccount{BSB: "083-123", AccountNumber: "12345678"}, "bank_name"},
		{"short bsb", BankAccount{BankName: "Demo", BSB: "08312", AccountNumber: "12345678"}, "bank_bsb"},
		{"long bsb", BankAccount{BankName: "Demo", BSB: "0831234", AccountNumber: "12345678"}, "bank_bsb"},
		{"missing account", BankAccount{BankName: "Demo", BSB: "083-123"}, "bank_account_number"},
		{"separators only account", BankAccount{BankName: "Demo", BSB: "083-123", AccountNumber: "-- "}, "bank_account_number"},
		{"long account", BankAccount{BankName: "Demo", BSB: "083-123", AccountNumber: "1234567890"}, "bank_account_number"},
		{"long account with separators", BankAccount{BankName: "Demo", BSB: "083-123", AccountNumber: "12-3456-7890"}, "bank_account_number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBankAccount("employer", tc.acct)
			var detailErr *BankDetailError
			if !errors.As(err, &detailErr) {
				t.Fatalf("expected BankDetailError, got %v", err)
			}
			if detailErr.Party != "employer" {
				t.Fatalf("party = %q, want employer", detailErr.Party)
			}
			if detailErr.Field != tc.wantField {
				t.Fatalf("field = %q, want %q", detailErr.Field, tc.wantField)
			}
		})
	}
}

func TestPartyDisplayNameAndAddress(t *testing.T) {
	p := Party{Email: "liam@example.com", FirstName: "Liam", LastName: "Walker", Street: "12 Harvest Rd", City: "Mildura", State: "VIC", Postcode: "3500"}
	if got := p.DisplayName(); got != "Liam Walker" {
		t.Fatalf("DisplayName = %q", got)
	}
	if got := p.PostalAddress(); got != "12 Harvest Rd, Mildura, VIC, 3500" {
		t.Fatalf("PostalAddress = %q", got)
	}
	blank := Party{Email: "liam@example.com"}
	if got := blank.DisplayName(); got != "liam@example.com" {
		t.Fatalf("fallback DisplayName = %q", got)
	}
}
