// Package overview turns raw trip documents into the trip list view-model.
// Everything here is a pure function of its arguments except Board, which
// holds the currently displayed view-model for a caller.
package overview

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/pkordes/tripboard/internal/domain"
)

// Field paths reported in domain.NormalizationError.
const (
	FieldTitle           = "title"
	FieldTenureStart     = "tenure.start"
	FieldTenureEnd       = "tenure.end"
	FieldTenure          = "tenure"
	FieldExpenseAmount   = "expense.amount"
	FieldExpenseCurrency = "expense.currency"
	FieldRating          = "rating"
)

// Normalize converts one raw trip record into a TripOverview.
//
// Checks run in a fixed order (title, tenure start, tenure end, tenure
// ordering, expense amount, expense currency, rating) and the first failure is
// returned as a *domain.NormalizationError. Nothing is clamped or coerced.
func Normalize(raw domain.RawTripRecord) (domain.TripOverview, error) {
	var t domain.TripOverview

	title, err := normalizeTitle(raw)
	if err != nil {
		return domain.TripOverview{}, err
	}
	t.Title = title

	start, err := normalizeInstant(raw, FieldTenureStart, "tenure", "start")
	if err != nil {
		return domain.TripOverview{}, err
	}
	end, err := normalizeInstant(raw, FieldTenureEnd, "tenure", "end")
	if err != nil {
		return domain.TripOverview{}, err
	}
	if end.Before(start) {
		return domain.TripOverview{}, fail(FieldTenure, domain.ReasonOrderingViolation)
	}
	t.Tenure = domain.Tenure{Start: start, End: end}

	v, ok := lookup(raw, "expense", "amount")
	if !ok {
		return domain.TripOverview{}, fail(FieldExpenseAmount, domain.ReasonMissing)
	}
	amount, ok := toFloat(v)
	if !ok {
		return domain.TripOverview{}, fail(FieldExpenseAmount, domain.ReasonMalformed)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return domain.TripOverview{}, fail(FieldExpenseAmount, domain.ReasonOutOfRange)
	}
	t.Expense.Amount = amount

	v, ok = lookup(raw, "expense", "currency")
	if !ok {
		return domain.TripOverview{}, fail(FieldExpenseCurrency, domain.ReasonMissing)
	}
	code, ok := toString(v)
	if !ok {
		return domain.TripOverview{}, fail(FieldExpenseCurrency, domain.ReasonMalformed)
	}
	currency := domain.CurrencyCode(code)
	if !currency.Valid() {
		return domain.TripOverview{}, fail(FieldExpenseCurrency, domain.ReasonInvalidEnum)
	}
	t.Expense.Currency = currency

	v, ok = lookup(raw, "rating")
	if !ok {
		return domain.TripOverview{}, fail(FieldRating, domain.ReasonMissing)
	}
	rating, ok := toFloat(v)
	if !ok {
		return domain.TripOverview{}, fail(FieldRating, domain.ReasonMalformed)
	}
	if math.IsNaN(rating) || rating < domain.RatingMin || rating > domain.RatingMax {
		return domain.TripOverview{}, fail(FieldRating, domain.ReasonOutOfRange)
	}
	t.Rating = rating

	return t, nil
}

func fail(field string, reason domain.NormalizationReason) error {
	return &domain.NormalizationError{Field: field, Reason: reason}
}

func normalizeTitle(raw domain.RawTripRecord) (string, error) {
	v, ok := lookup(raw, "title")
	if !ok {
		return "", fail(FieldTitle, domain.ReasonMissing)
	}
	s, ok := toString(v)
	if !ok {
		return "", fail(FieldTitle, domain.ReasonMalformed)
	}
	if strings.TrimSpace(s) == "" {
		return "", fail(FieldTitle, domain.ReasonMissing)
	}
	return s, nil
}

// normalizeInstant reads a timestamp at path and converts it to a UTC instant.
// Accepted shapes: {seconds, nanoseconds}, {_seconds, _nanoseconds},
// domain.RawTimestamp, time.Time and RFC 3339 strings.
func normalizeInstant(raw domain.RawTripRecord, field string, path ...string) (time.Time, error) {
	v, ok := lookup(raw, path...)
	if !ok {
		return time.Time{}, fail(field, domain.ReasonMissing)
	}

	switch ts := v.(type) {
	case time.Time:
		return ts.UTC(), nil
	case domain.RawTimestamp:
		return rawTimestamp(field, ts)
	case *domain.RawTimestamp:
		if ts == nil {
			return time.Time{}, fail(field, domain.ReasonMissing)
		}
		return rawTimestamp(field, *ts)
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return time.Time{}, fail(field, domain.ReasonMalformed)
		}
		return parsed.UTC(), nil
	}

	m, ok := asMap(v)
	if !ok {
		return time.Time{}, fail(field, domain.ReasonMalformed)
	}
	secV, ok := firstOf(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, fail(field, domain.ReasonMissing)
	}
	secs, err := toInt(secV, field)
	if err != nil {
		return time.Time{}, err
	}
	var nanos int64
	if nsV, ok := firstOf(m, "nanoseconds", "_nanoseconds"); ok {
		if nanos, err = toInt(nsV, field); err != nil {
			return time.Time{}, err
		}
	}
	return rawTimestamp(field, domain.RawTimestamp{Seconds: secs, Nanoseconds: nanos})
}

func rawTimestamp(field string, ts domain.RawTimestamp) (time.Time, error) {
	if ts.Nanoseconds < 0 || ts.Nanoseconds >= int64(time.Second) {
		return time.Time{}, fail(field, domain.ReasonOutOfRange)
	}
	return ts.Time(), nil
}

// lookup walks nested maps along path. A nil value counts as absent.
func lookup(raw domain.RawTripRecord, path ...string) (any, bool) {
	var cur any = map[string]any(raw)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func firstOf(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case domain.RawTripRecord:
		return m, true
	}
	return nil, false
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case domain.CurrencyCode:
		return string(s), true
	}
	return "", false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toInt accepts integral numbers only. A float with a fractional part or one
// outside the int64 range is out of range; a non-number is malformed.
func toInt(v any, field string) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fail(field, domain.ReasonOutOfRange)
		}
		return int64(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}

	f, ok := toFloat(v)
	if !ok {
		return 0, fail(field, domain.ReasonMalformed)
	}
	if math.IsNaN(f) || math.Trunc(f) != f || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fail(field, domain.ReasonOutOfRange)
	}
	return int64(f), nil
}
