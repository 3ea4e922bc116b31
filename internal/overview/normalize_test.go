package overview_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/overview"
)

// ---- helpers ---------------------------------------------------------------

func ts(seconds, nanos any) map[string]any {
	return map[string]any{"seconds": seconds, "nanoseconds": nanos}
}

// goaRecord is a valid raw record shaped like a decoded JSON document.
func goaRecord() domain.RawTripRecord {
	return domain.RawTripRecord{
		"title": "Goa",
		"tenure": map[string]any{
			"start": ts(float64(1000), float64(0)),
			"end":   ts(float64(2000), float64(0)),
		},
		"expense": map[string]any{"amount": float64(500), "currency": "INR"},
		"rating":  float64(4),
	}
}

func tenure(r domain.RawTripRecord) map[string]any  { return r["tenure"].(map[string]any) }
func expense(r domain.RawTripRecord) map[string]any { return r["expense"].(map[string]any) }

func requireNormErr(t *testing.T, err error, field string, reason domain.NormalizationReason) {
	t.Helper()
	var ne *domain.NormalizationError
	require.True(t, errors.As(err, &ne), "expected NormalizationError, got %v", err)
	assert.Equal(t, field, ne.Field)
	assert.Equal(t, reason, ne.Reason)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- happy path ------------------------------------------------------------

func TestNormalize_Valid(t *testing.T) {
	got, err := overview.Normalize(goaRecord())

	require.NoError(t, err)
	assert.Equal(t, "Goa", got.Title)
	assert.Equal(t, int64(1_000_000), got.Tenure.Start.UnixMilli())
	assert.Equal(t, int64(2_000_000), got.Tenure.End.UnixMilli())
	assert.Equal(t, 500.0, got.Expense.Amount)
	assert.Equal(t, domain.CurrencyINR, got.Expense.Currency)
	assert.Equal(t, 4.0, got.Rating)
}

func TestNormalize_SameStartAndEnd(t *testing.T) {
	r := goaRecord()
	tenure(r)["end"] = ts(float64(1000), float64(0))

	_, err := overview.Normalize(r)

	// A trip that starts and ends at the same instant is valid.
	assert.NoError(t, err)
}

func TestNormalize_RatingBoundsInclusive(t *testing.T) {
	for _, rating := range []float64{domain.RatingMin, domain.RatingMax} {
		r := goaRecord()
		r["rating"] = rating

		got, err := overview.Normalize(r)

		require.NoError(t, err)
		assert.Equal(t, rating, got.Rating)
	}
}

func TestNormalize_ZeroAmount(t *testing.T) {
	r := goaRecord()
	expense(r)["amount"] = 0

	_, err := overview.Normalize(r)

	assert.NoError(t, err)
}

// ---- timestamp encodings ---------------------------------------------------

func TestNormalize_TimestampEncodings(t *testing.T) {
	want := time.Unix(1000, 250_000_000).UTC()

	tests := []struct {
		name  string
		start any
	}{
		{"float fields", ts(float64(1000), float64(250_000_000))},
		{"int fields", ts(int64(1000), 250_000_000)},
		{"json.Number fields", ts(json.Number("1000"), json.Number("250000000"))},
		{"admin sdk fields", map[string]any{"_seconds": 1000, "_nanoseconds": 250_000_000}},
		{"raw timestamp", domain.RawTimestamp{Seconds: 1000, Nanoseconds: 250_000_000}},
		{"raw timestamp pointer", &domain.RawTimestamp{Seconds: 1000, Nanoseconds: 250_000_000}},
		{"time.Time", want},
		{"rfc3339 string", want.Format(time.RFC3339Nano)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := goaRecord()
			tenure(r)["start"] = tt.start

			got, err := overview.Normalize(r)

			require.NoError(t, err)
			assert.True(t, got.Tenure.Start.Equal(want), "got %s", got.Tenure.Start)
		})
	}
}

func TestNormalize_MissingNanosecondsDefaultsToZero(t *testing.T) {
	r := goaRecord()
	tenure(r)["start"] = map[string]any{"seconds": 1000}

	got, err := overview.Normalize(r)

	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), got.Tenure.Start.UnixMilli())
}

func TestNormalize_KeepsSubMillisecondPrecision(t *testing.T) {
	r := goaRecord()
	tenure(r)["start"] = ts(1000, 1_999_999)

	got, err := overview.Normalize(r)

	require.NoError(t, err)
	assert.Equal(t, 1_999_999, got.Tenure.Start.Nanosecond())
	assert.Equal(t, int64(1_000_001), got.Tenure.Start.UnixMilli(), "UnixMilli truncates toward zero")
}

// ---- failures --------------------------------------------------------------

func TestNormalize_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r domain.RawTripRecord)
		field  string
		reason domain.NormalizationReason
	}{
		{"missing title", func(r domain.RawTripRecord) { delete(r, "title") }, overview.FieldTitle, domain.ReasonMissing},
		{"blank title", func(r domain.RawTripRecord) { r["title"] = "   " }, overview.FieldTitle, domain.ReasonMissing},
		{"numeric title", func(r domain.RawTripRecord) { r["title"] = 42 }, overview.FieldTitle, domain.ReasonMalformed},
		{"missing tenure", func(r domain.RawTripRecord) { delete(r, "tenure") }, overview.FieldTenureStart, domain.ReasonMissing},
		{"missing start", func(r domain.RawTripRecord) { delete(tenure(r), "start") }, overview.FieldTenureStart, domain.ReasonMissing},
		{"null end", func(r domain.RawTripRecord) { tenure(r)["end"] = nil }, overview.FieldTenureEnd, domain.ReasonMissing},
		{"start without seconds", func(r domain.RawTripRecord) { tenure(r)["start"] = map[string]any{"nanoseconds": 0} }, overview.FieldTenureStart, domain.ReasonMissing},
		{"start is a bool", func(r domain.RawTripRecord) { tenure(r)["start"] = true }, overview.FieldTenureStart, domain.ReasonMalformed},
		{"start bad string", func(r domain.RawTripRecord) { tenure(r)["start"] = "yesterday" }, overview.FieldTenureStart, domain.ReasonMalformed},
		{"fractional seconds", func(r domain.RawTripRecord) { tenure(r)["start"] = ts(1000.5, 0) }, overview.FieldTenureStart, domain.ReasonOutOfRange},
		{"nanos too large", func(r domain.RawTripRecord) { tenure(r)["end"] = ts(2000, 1_000_000_000) }, overview.FieldTenureEnd, domain.ReasonOutOfRange},
		{"negative nanos", func(r domain.RawTripRecord) { tenure(r)["end"] = ts(2000, -1) }, overview.FieldTenureEnd, domain.ReasonOutOfRange},
		{"seconds as text", func(r domain.RawTripRecord) { tenure(r)["start"] = ts("1000", 0) }, overview.FieldTenureStart, domain.ReasonMalformed},
		{"end before start", func(r domain.RawTripRecord) {
			tenure(r)["start"] = ts(2000, 0)
			tenure(r)["end"] = ts(1000, 0)
		}, overview.FieldTenure, domain.ReasonOrderingViolation},
		{"missing amount", func(r domain.RawTripRecord) { delete(expense(r), "amount") }, overview.FieldExpenseAmount, domain.ReasonMissing},
		{"missing expense", func(r domain.RawTripRecord) { delete(r, "expense") }, overview.FieldExpenseAmount, domain.ReasonMissing},
		{"negative amount", func(r domain.RawTripRecord) { expense(r)["amount"] = -1.0 }, overview.FieldExpenseAmount, domain.ReasonOutOfRange},
		{"NaN amount", func(r domain.RawTripRecord) { expense(r)["amount"] = math.NaN() }, overview.FieldExpenseAmount, domain.ReasonOutOfRange},
		{"text amount", func(r domain.RawTripRecord) { expense(r)["amount"] = "500" }, overview.FieldExpenseAmount, domain.ReasonMalformed},
		{"missing currency", func(r domain.RawTripRecord) { delete(expense(r), "currency") }, overview.FieldExpenseCurrency, domain.ReasonMissing},
		{"unknown currency", func(r domain.RawTripRecord) { expense(r)["currency"] = "EUR" }, overview.FieldExpenseCurrency, domain.ReasonInvalidEnum},
		{"lowercase currency", func(r domain.RawTripRecord) { expense(r)["currency"] = "inr" }, overview.FieldExpenseCurrency, domain.ReasonInvalidEnum},
		{"numeric currency", func(r domain.RawTripRecord) { expense(r)["currency"] = 356 }, overview.FieldExpenseCurrency, domain.ReasonMalformed},
		{"missing rating", func(r domain.RawTripRecord) { delete(r, "rating") }, overview.FieldRating, domain.ReasonMissing},
		{"rating too high", func(r domain.RawTripRecord) { r["rating"] = 7 }, overview.FieldRating, domain.ReasonOutOfRange},
		{"negative rating", func(r domain.RawTripRecord) { r["rating"] = -0.5 }, overview.FieldRating, domain.ReasonOutOfRange},
		{"NaN rating", func(r domain.RawTripRecord) { r["rating"] = math.NaN() }, overview.FieldRating, domain.ReasonOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := goaRecord()
			tt.mutate(r)

			_, err := overview.Normalize(r)

			requireNormErr(t, err, tt.field, tt.reason)
		})
	}
}

func TestNormalize_ReportsFirstFailureOnly(t *testing.T) {
	r := goaRecord()
	r["title"] = ""
	r["rating"] = 9

	_, err := overview.Normalize(r)

	// Title is checked before rating.
	requireNormErr(t, err, overview.FieldTitle, domain.ReasonMissing)
}

func TestNormalize_EmptyRecord(t *testing.T) {
	_, err := overview.Normalize(domain.RawTripRecord{})
	requireNormErr(t, err, overview.FieldTitle, domain.ReasonMissing)

	_, err = overview.Normalize(nil)
	requireNormErr(t, err, overview.FieldTitle, domain.ReasonMissing)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	r := goaRecord()
	before, err := json.Marshal(r)
	require.NoError(t, err)

	_, _ = overview.Normalize(r)

	after, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}
