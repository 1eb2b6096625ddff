package payroll

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTwentyHoursAtTwenty(t *testing.T) {
	b, err := Compute(dec("20"), dec("20"))
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	want := map[string]struct {
		got  decimal.Decimal
		want string
	}{
		"gross":          {b.Gross, "400.00"},
		"commission":     {b.Commission, "4.00"},
		"net_before_tax": {b.NetBeforeTax, "396.00"},
		"tax_withheld":   {b.TaxWithheld, "59.40"},
		"net_payment":    {b.NetPayment, "336.60"},
		"super":          {b.Super, "44.00"},
	}
	for name, w := range want {
		if !w.got.Equal(dec(w.want)) {
			t.Fatalf("%s = %s, want %s", name, w.got, w.want)
		}
	}
}

func TestComputeLegsSumToGross(t *testing.T) {
	cases := []struct{ rate, hours string }{
		{"20", "20"},
		{"27.35", "38.25"},
		{"19.99", "7.5"},
		{"150", "1"},
		{"0.01", "1"},
		{"33.33", "11.11"},
	}
	for _, tc := range cases {
		b, err := Compute(dec(tc.rate), dec(tc.hours))
		if err != nil {
			t.Fatalf("Compute(%s, %s) returned error: %v", tc.rate, tc.hours, err)
		}
		sum := b.Commission.Add(b.TaxWithheld).Add(b.NetPayment)
		if !sum.Equal(b.Gross) {
			t.Fatalf("Compute(%s, %s): commission+tax+net = %s, gross = %s", tc.rate, tc.hours, sum, b.Gross)
		}
		if b.Gross.Exponent() < -2 {
			t.Fatalf("gross %s not rounded to cents", b.Gross)
		}
	}
}

func TestComputeBankersRounding(t *testing.T) {
	// 0.50 × 0.25h = 0.125 → rounds half-to-even down to 0.12
	b, err := Compute(dec("0.50"), dec("0.25"))
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if !b.Gross.Equal(dec("0.12")) {
		t.Fatalf("gross = %s, want 0.12", b.Gross)
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	if _, err := Compute(dec("20"), dec("0")); !errors.Is(err, ErrNonPositiveHours) {
		t.Fatalf("expected ErrNonPositiveHours, got %v", err)
	}
	if _, err := Compute(dec("20"), dec("-1")); !errors.Is(err, ErrNonPositiveHours) {
		t.Fatalf("expected ErrNonPositiveHours, got %v", err)
	}
	if _, err := Compute(dec("0"), dec("10")); !errors.Is(err, ErrNonPositiveRate) {
		t.Fatalf("expected ErrNonPositiveRate, got %v", err)
	}
}
