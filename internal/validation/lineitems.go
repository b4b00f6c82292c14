package validation

import (
	"fmt"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

// ValidatePayload checks the shape of a supplier submission and returns a
// *MalformedPayloadError listing every problem, or nil.
//
// Arithmetic consistency is not checked here (see CheckArithmetic), except
// that a line whose quantity x unit price would overflow int64, or line totals
// whose sum would, are reported as malformed since they cannot be compared
// exactly.
func ValidatePayload(p domain.ResponsePayload) error {
	var v Violations

	if len(p.LineItems) == 0 {
		v.Add("line_items", "at least one line item is required")
	}
	var sum int64
	sumOverflow := false
	for i, it := range p.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		Required(prefix+".description", it.Description, &v)
		Positive(prefix+".quantity", it.Quantity, &v)
		Positive(prefix+".unit_price_cents", it.UnitPriceCents, &v)
		Positive(prefix+".total_cents", it.TotalCents, &v)
		if it.Quantity > 0 && it.UnitPriceCents > 0 {
			if _, ok := mulExact(it.Quantity, it.UnitPriceCents); !ok {
				v.Add(prefix, "quantity x unit_price_cents overflows")
			}
		}
		if it.TotalCents > 0 && !sumOverflow {
			var ok bool
			if sum, ok = addExact(sum, it.TotalCents); !ok {
				sumOverflow = true
			}
		}
	}
	Positive("total_price_cents", p.TotalPriceCents, &v)
	if sumOverflow {
		v.Add("total_price_cents", "sum of line item total_cents overflows")
	}
	Positive("delivery_time_days", int64(p.DeliveryTimeDays), &v)

	for i, a := range p.Attachments {
		prefix := fmt.Sprintf("attachments[%d]", i)
		Required(prefix+".filename", a.Filename, &v)
		Required(prefix+".url", a.URL, &v)
		Positive(prefix+".size", a.Size, &v)
		Required(prefix+".mime_type", a.MimeType, &v)
	}

	return v.Err()
}

// CheckArithmetic recomputes every line total and the quote total.
//
// It returns a *LineItemMismatchError for the first item whose TotalCents is
// not exactly Quantity*UnitPriceCents, then a *TotalPriceMismatchError when
// the sum of line totals differs from declaredTotal. Expected always holds
// the server-computed value and Actual the declared one. Values that cannot
// be computed in int64 yield a *MalformedPayloadError instead.
func CheckArithmetic(items []domain.LineItem, declaredTotal int64) error {
	var sum int64
	for i, it := range items {
		want, ok := mulExact(it.Quantity, it.UnitPriceCents)
		if !ok {
			return &MalformedPayloadError{Fields: []FieldError{{
				Field:   fmt.Sprintf("line_items[%d]", i),
				Message: "quantity x unit_price_cents overflows",
			}}}
		}
		if want != it.TotalCents {
			return &LineItemMismatchError{
				Index:    i,
				Item:     itemName(it, i),
				Expected: want,
				Actual:   it.TotalCents,
			}
		}
		if sum, ok = addExact(sum, it.TotalCents); !ok {
			return &MalformedPayloadError{Fields: []FieldError{{
				Field:   "total_price_cents",
				Message: "sum of line item total_cents overflows",
			}}}
		}
	}
	if sum != declaredTotal {
		return &TotalPriceMismatchError{Expected: sum, Actual: declaredTotal}
	}
	return nil
}

// Submission runs ValidatePayload and then CheckArithmetic.
func Submission(p domain.ResponsePayload) error {
	if err := ValidatePayload(p); err != nil {
		return err
	}
	return CheckArithmetic(p.LineItems, p.TotalPriceCents)
}

func itemName(it domain.LineItem, i int) string {
	if it.Description != "" {
		return it.Description
	}
	return fmt.Sprintf("line item %d", i+1)
}
