// Package validation checks supplier-submitted quotes before they are stored.
//
// Two layers run in order:
//   - ValidatePayload checks the shape of a payload (non-empty line items,
//     positive numeric fields, attachment metadata) and collects every field
//     error into a single MalformedPayloadError.
//   - CheckArithmetic recomputes quantity x unit price for each line item and
//     the sum of line totals, comparing them to the declared values with exact
//     integer equality.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrMalformedPayload matches any *MalformedPayloadError.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrLineItemMismatch matches any *LineItemMismatchError.
	ErrLineItemMismatch = errors.New("line item total mismatch")

	// ErrTotalPriceMismatch matches any *TotalPriceMismatchError.
	ErrTotalPriceMismatch = errors.New("total price mismatch")
)

// FieldError describes one invalid field. Field uses a JSON-path-like notation
// such as "line_items[2].quantity".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MalformedPayloadError lists every field problem found in a payload.
type MalformedPayloadError struct {
	Fields []FieldError
}

func (e *MalformedPayloadError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrMalformedPayload.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrMalformedPayload) succeed.
func (e *MalformedPayloadError) Is(target error) bool { return target == ErrMalformedPayload }

// LineItemMismatchError reports the first line item whose declared total does
// not equal quantity x unit price.
type LineItemMismatchError struct {
	Index    int    `json:"index"`
	Item     string `json:"item"`
	Expected int64  `json:"expected"`
	Actual   int64  `json:"actual"`
}

func (e *LineItemMismatchError) Error() string {
	return fmt.Sprintf("%s: item %q (index %d) expected %d, got %d",
		ErrLineItemMismatch.Error(), e.Item, e.Index, e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrLineItemMismatch) succeed.
func (e *LineItemMismatchError) Is(target error) bool { return target == ErrLineItemMismatch }

// TotalPriceMismatchError reports that the declared quote total differs from
// the sum of the line totals.
type TotalPriceMismatchError struct {
	Expected int64 `json:"expected"`
	Actual   int64 `json:"actual"`
}

func (e *TotalPriceMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", ErrTotalPriceMismatch.Error(), e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrTotalPriceMismatch) succeed.
func (e *TotalPriceMismatchError) Is(target error) bool { return target == ErrTotalPriceMismatch }

// Violations accumulates field errors in the order they are found.
type Violations []FieldError

// Empty reports whether no violation was recorded.
func (v Violations) Empty() bool { return len(v) == 0 }

// Add records a violation for field.
func (v *Violations) Add(field, msg string) {
	*v = append(*v, FieldError{Field: field, Message: msg})
}

// Err returns nil when v is empty, otherwise a *MalformedPayloadError.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &MalformedPayloadError{Fields: append([]FieldError(nil), v...)}
}

// Required records a violation when value is blank.
func Required(field, value string, v *Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

// Positive records a violation when val is not strictly positive.
func Positive(field string, val int64, v *Violations) {
	if val <= 0 {
		v.Add(field, "must be positive")
	}
}

// mulExact returns a*b and false when the product overflows int64. Inputs are
// expected to be positive.
func mulExact(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}

// addExact returns a+b and false when the sum overflows int64. Inputs are
// expected to be non-negative.
func addExact(a, b int64) (int64, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}
