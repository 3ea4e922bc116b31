// Package domain contains the core data types for the Tripboard service.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (overview, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds for TripOverview.Rating. The scale is closed on both ends.
const (
	RatingMin = 0.0
	RatingMax = 5.0
)

// CurrencyCode is an ISO 4217 code from the closed SupportedCurrencies set.
type CurrencyCode string

const (
	CurrencyINR CurrencyCode = "INR"
	CurrencyUSD CurrencyCode = "USD"
)

// SupportedCurrencies is the closed set of currencies a trip expense may use.
// Adding a currency means adding a constant above and listing it here.
var SupportedCurrencies = []CurrencyCode{CurrencyINR, CurrencyUSD}

// Valid reports whether c is a member of SupportedCurrencies.
// Matching is exact: "inr" is not INR.
func (c CurrencyCode) Valid() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// TripOverview is one normalized trip, safe to hand to a list renderer.
type TripOverview struct {
	Title   string  `json:"title"`
	Tenure  Tenure  `json:"tenure"`
	Expense Expense `json:"expense"`
	Rating  float64 `json:"rating"`
}

// Tenure is the time span of a trip. Start is never after End.
type Tenure struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Expense is the overall spend of a trip. Amount is never negative.
type Expense struct {
	Amount   float64      `json:"amount"`
	Currency CurrencyCode `json:"currency"`
}

// RawTripRecord is a trip document exactly as the document store returned it.
// No field is guaranteed to be present or well-shaped.
type RawTripRecord map[string]any

// RawTimestamp is the two-field timestamp encoding used by the document store:
// whole seconds since the Unix epoch plus a sub-second remainder.
// It is an input shape only and never stored on a TripOverview.
type RawTimestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// Time converts the raw timestamp into a UTC instant.
func (ts RawTimestamp) Time() time.Time {
	return time.Unix(ts.Seconds, ts.Nanoseconds).UTC()
}

// TripDocument is a stored raw record plus its store-assigned identity.
type TripDocument struct {
	ID        uuid.UUID     `json:"id"`
	Data      RawTripRecord `json:"data"`
	CreatedAt time.Time     `json:"created_at"`
}
