package engagement

import "ozziework/internal/domain/auth"

// AllowedTransition reports whether the given actor role may move an offer
// from one status to another. The employer can withdraw a live offer; the
// traveller answers a pending one. declined and cancelled are terminal.
func AllowedTransition(role, from, to string) error {
	if _, ok := applicationStatusByOffer[to]; !ok {
		return ErrInvalidTransition
	}
	switch role {
	case auth.RoleEmployer:
		if to == OfferCancelled && (from == OfferPending || from == OfferAccepted) {
			return nil
		}
	case auth.RoleTraveller:
		if from == OfferPending && (to == OfferAccepted || to == OfferDeclined) {
			return nil
		}
	}
	return ErrInvalidTransition
}
