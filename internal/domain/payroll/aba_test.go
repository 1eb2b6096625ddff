package payroll

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"ozziework/internal/domain/identity"
)

func testInput() InstructionInput {
	return InstructionInput{
		PayslipID:    "a1b2c3",
		EmployerName: "Grove Orchards",
		Commission:   dec("1.00"),
		NetPayment:   dec("89.50"),
		TaxWithheld:  dec("15.00"),
		Employer: Payee{
			Name:    "Harriet Grove",
			Account: identity.BankAccount{BankName: "Demo Mutual", BSB: "083-123", AccountNumber: "12345678"},
		},
		Traveller: Payee{
			Name:    "Liam Walker",
			Account: identity.BankAccount{BankName: "Demo Mutual", BSB: "083 124", AccountNumber: "87654321"},
		},
		Platform: Payee{
			Name:    "OzzieWork Pty Ltd",
			Account: identity.BankAccount{BankName: "OzzieWork Pty Ltd", BSB: "012003", AccountNumber: "456789"},
		},
		ProcessedAt: time.Date(2024, 2, 5, 9, 30, 0, 0, time.UTC),
	}
}

func TestBuildInstructionFileThreeLegs(t *testing.T) {
	file, err := BuildInstructionFile(testInput())
	if err != nil {
		t.Fatalf("BuildInstructionFile returned error: %v", err)
	}

	content := string(file.Content)
	if !strings.HasSuffix(content, "\n") {
		t.Fatal("file must end with a trailing newline")
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 records, got %d", len(lines))
	}
	for i, line := range lines {
		if len(line) != 120 {
			t.Fatalf("record %d is %d chars, want 120", i, len(line))
		}
	}

	wantHeader := "0 01" +
		"Grove Orchards      " +
		"PAYSa1b2c3  " +
		"083-123" +
		"12345678 " +
		"050224" +
		strings.Repeat(" ", 24) +
		"AUD" +
		strings.Repeat(" ", 9) +
		strings.Repeat(" ", 26)
	if lines[0] != wantHeader {
		t.Fatalf("header mismatch:\n got %q\nwant %q", lines[0], wantHeader)
	}

	wantCommission := "1" +
		"012-003" +
		"456789   " +
		" 50" +
		"0000000100" +
		"OzzieWork Pty Ltd               " +
		"OZZIEWORK COMM    " +
		"083-123" +
		"12345678 " +
		"Grove Orchards  " +
		strings.Repeat(" ", 8)
	if lines[1] != wantCommission {
		t.Fatalf("commission record mismatch:\n got %q\nwant %q", lines[1], wantCommission)
	}

	wantNet := "1" +
		"083-124" +
		"87654321 " +
		" 50" +
		"0000008950" +
		"Liam Walker                     " +
		"NET PAYMENT       " +
		"083-123" +
		"12345678 " +
		"Grove Orchards  " +
		strings.Repeat(" ", 8)
	if lines[2] != wantNet {
		t.Fatalf("net payment record mismatch:\n got %q\nwant %q", lines[2], wantNet)
	}

	wantTax := "1" +
		"083-123" +
		"12345678 " +
		" 50" +
		"0000001500" +
		"Harriet Grove                   " +
		"WH TAX            " +
		"083-123" +
		"12345678 " +
		"Grove Orchards  " +
		strings.Repeat(" ", 8)
	if lines[3] != wantTax {
		t.Fatalf("tax record mismatch:\n got %q\nwant %q", lines[3], wantTax)
	}

	wantFooter := "7" +
		strings.Repeat(" ", 7) +
		"0000010550" +
		"000003" +
		strings.Repeat(" ", 40) +
		"000000" +
		strings.Repeat(" ", 50)
	if lines[4] != wantFooter {
		t.Fatalf("footer mismatch:\n got %q\nwant %q", lines[4], wantFooter)
	}

	if file.TotalCents != 10550 {
		t.Fatalf("TotalCents = %d, want 10550", file.TotalCents)
	}
	if len(file.Records) != 3 {
		t.Fatalf("expected 3 metadata records, got %d", len(file.Records))
	}
	if file.Records[0].Description != DescCommission || file.Records[0].Amount != "1.00" {
		t.Fatalf("unexpected first record: %+v", file.Records[0])
	}
	if got := file.Metadata().TotalAmount; got != "105.50" {
		t.Fatalf("metadata total = %s, want 105.50", got)
	}
}

func TestBuildInstructionFileOmitsZeroLegs(t *testing.T) {
	in := testInput()
	in.TaxWithheld = dec("0.00")

	file, err := BuildInstructionFile(in)
	if err != nil {
		t.Fatalf("BuildInstructionFile returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(string(file.Content), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 2 details + footer, got %d records", len(lines))
	}
	for _, line := range lines[1:3] {
		if strings.Contains(line, DescTax) {
			t.Fatal("zero-amount tax leg must be omitted")
		}
	}
	footer := lines[3]
	if !strings.HasPrefix(footer, "7"+strings.Repeat(" ", 7)+"0000009050"+"000002") {
		t.Fatalf("footer mismatch: %q", footer)
	}
	if len(file.Records) != 2 {
		t.Fatalf("expected 2 metadata records, got %d", len(file.Records))
	}
}

func TestBuildInstructionFileMalformedBSBFails(t *testing.T) {
	in := testInput()
	in.Traveller.Account.BSB = "08-12"

	_, err := BuildInstructionFile(in)
	var detailErr *identity.BankDetailError
	if !errors.As(err, &detailErr) {
		t.Fatalf("expected BankDetailError, got %v", err)
	}
	if detailErr.Party != "traveller" || detailErr.Field != "bank_bsb" {
		t.Fatalf("unexpected error target: %+v", detailErr)
	}
}

func TestBuildInstructionFileReducesAccountSeparators(t *testing.T) {
	plain, err := BuildInstructionFile(testInput())
	if err != nil {
		t.Fatalf("BuildInstructionFile returned error: %v", err)
	}

	in := testInput()
	in.Employer.Account.AccountNumber = "12-345 678"
	in.Traveller.Account.AccountNumber = "8765.4321"
	formatted, err := BuildInstructionFile(in)
	if err != nil {
		t.Fatalf("separator-formatted accounts rejected: %v", err)
	}

	if !bytes.Equal(plain.Content, formatted.Content) {
		t.Fatal("separator-formatted accounts must render the same file as their reduced form")
	}
	if got := formatted.Records[1].AccountNumber; got != "87654321" {
		t.Fatalf("net leg account = %q, want reduced 87654321", got)
	}
}

func TestBuildInstructionFileDeterministic(t *testing.T) {
	first, err := BuildInstructionFile(testInput())
	if err != nil {
		t.Fatalf("BuildInstructionFile returned error: %v", err)
	}
	second, err := BuildInstructionFile(testInput())
	if err != nil {
		t.Fatalf("BuildInstructionFile returned error: %v", err)
	}
	if !bytes.Equal(first.Content, second.Content) {
		t.Fatal("same input must produce byte-identical files")
	}
}
