package engagement

import (
	"errors"
	"testing"

	"ozziework/internal/domain/auth"
)

func TestAllowedTransition(t *testing.T) {
	cases := []struct {
		name string
		role string
		from string
		to   string
		ok   bool
	}{
		{"traveller accepts pending", auth.RoleTraveller, OfferPending, OfferAccepted, true},
		{"traveller declines pending", auth.RoleTraveller, OfferPending, OfferDeclined, true},
		{"traveller cannot cancel", auth.RoleTraveller, OfferPending, OfferCancelled, false},
		{"traveller cannot accept twice", auth.RoleTraveller, OfferAccepted, OfferAccepted, false},
		{"traveller cannot revive declined", auth.RoleTraveller, OfferDeclined, OfferAccepted, false},
		{"employer cancels pending", auth.RoleEmployer, OfferPending, OfferCancelled, true},
		{"employer cancels accepted", auth.RoleEmployer, OfferAccepted, OfferCancelled, true},
		{"employer cannot accept", auth.RoleEmployer, OfferPending, OfferAccepted, false},
		{"employer cannot cancel cancelled", auth.RoleEmployer, OfferCancelled, OfferCancelled, false},
		{"admin has no transitions", auth.RoleAdmin, OfferPending, OfferAccepted, false},
		{"unknown target status", auth.RoleEmployer, OfferPending, "expired", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := AllowedTransition(tc.role, tc.from, tc.to)
			if tc.ok && err != nil {
				t.Fatalf("expected transition allowed, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestApplicationStatusFor(t *testing.T) {
	want := map[string]string{
		OfferPending:   ApplicationOfferSent,
		OfferAccepted:  ApplicationOfferAccepted,
		OfferDeclined:  ApplicationOfferDeclined,
		OfferCancelled: ApplicationCancelled,
	}
	for offerStatus, appStatus := range want {
		got, ok := ApplicationStatusFor(offerStatus)
		if !ok || got != appStatus {
			t.Fatalf("ApplicationStatusFor(%s) = %s, %v; want %s", offerStatus, got, ok, appStatus)
		}
	}
	if _, ok := ApplicationStatusFor("expired"); ok {
		t.Fatal("unexpected mapping for unknown status")
	}
}
