package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource tells where a quote was observed
type PriceSource string

const (
	SourceStore  PriceSource = "store"
	SourceOnline PriceSource = "online"
)

// ProductQuery is a single product lookup request. Identity is the
// normalized lowercase name; the declared store price is optional.
type ProductQuery struct {
	Name               string           `json:"name"`
	DeclaredStorePrice *decimal.Decimal `json:"declared_store_price,omitempty"`
}

// Identity returns the normalized name used for de-duplication
func (q ProductQuery) Identity() string {
	return NormalizeName(q.Name)
}

// NormalizeName lowercases and collapses whitespace in a product name
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// PriceQuote represents one observed price for a product
type PriceQuote struct {
	Source    PriceSource     `json:"source"`
	Title     string          `json:"title,omitempty"`
	Seller    string          `json:"seller,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// PriceComparison is the store-vs-online delta for an analyzed product
type PriceComparison struct {
	StorePrice      decimal.Decimal `json:"store_price"`
	OnlinePrice     decimal.Decimal `json:"online_price"`
	Difference      decimal.Decimal `json:"price_difference"`
	DeltaPct        float64         `json:"price_delta_pct"`
	IsCheaperOnline bool            `json:"is_cheaper_online"`
}

// ComparePrices builds a PriceComparison from a store price and the best
// online quote. Difference is store minus online, so a positive value
// means the online price wins.
func ComparePrices(store, online decimal.Decimal) PriceComparison {
	diff := store.Sub(online)

	deltaPct := 0.0
	if !store.IsZero() {
		pct, _ := online.Sub(store).Div(store).Float64()
		deltaPct = pct
	}

	return PriceComparison{
		StorePrice:      store,
		OnlinePrice:     online,
		Difference:      diff,
		DeltaPct:        deltaPct,
		IsCheaperOnline: diff.IsPositive(),
	}
}

// BestQuote returns the cheapest online quote, or nil if none exist
func BestQuote(quotes []PriceQuote) *PriceQuote {
	var best *PriceQuote
	for i := range quotes {
		if quotes[i].Source != SourceOnline {
			continue
		}
		if best == nil || quotes[i].Amount.LessThan(best.Amount) {
			best = &quotes[i]
		}
	}
	return best
}
