package engagement

const (
	OfferPending   = "pending"
	OfferAccepted  = "accepted"
	OfferDeclined  = "declined"
	OfferCancelled = "cancelled"
)

const (
	ApplicationSubmitted     = "submitted"
	ApplicationOfferSent     = "offer_sent"
	ApplicationOfferAccepted = "offer_accepted"
	ApplicationOfferDeclined = "offer_declined"
	ApplicationCancelled     = "cancelled"
)

const (
	RateHourly = "hourly"
	RateDaily  = "daily"
)

const ContractCasual = "casual"

// applicationStatusByOffer mirrors every offer status onto the owning
// application. hired/rejected-style terminal states are reached only
// through this table, never reverse-transitioned.
var applicationStatusByOffer = map[string]string{
	OfferPending:   ApplicationOfferSent,
	OfferAccepted:  ApplicationOfferAccepted,
	OfferDeclined:  ApplicationOfferDeclined,
	OfferCancelled: ApplicationCancelled,
}

func ApplicationStatusFor(offerStatus string) (string, bool) {
	status, ok := applicationStatusByOffer[offerStatus]
	return status, ok
}

func ValidRateType(rateType string) bool {
	return rateType == RateHourly || rateType == RateDaily
}
