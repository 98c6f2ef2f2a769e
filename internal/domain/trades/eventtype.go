package trades

type EventType string

const (
	EventTypeBuy     EventType = "buy"
	EventTypeSell    EventType = "sell"
	EventTypeUnknown EventType = "unknown"
)

// Classify labels a trade from its premium and the market extremes current
// at ingestion time. A trade closer to the lowest listing was a buy, one
// closer to the highest offer was a sell. Equidistant resolves to sell; the
// backfill re-derives labels for stored rows, so the strict `<` here is a
// contract, not an accident.
func Classify(tradePremium float64, highestOfferPremium, lowestListingPremium *float64) EventType {
	if highestOfferPremium == nil || lowestListingPremium == nil {
		return EventTypeUnknown
	}
	distToOffer := abs(tradePremium - *highestOfferPremium)
	distToListing := abs(tradePremium - *lowestListingPremium)
	if distToListing < distToOffer {
		return EventTypeBuy
	}
	return EventTypeSell
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
