package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

func validPayload() domain.ResponsePayload {
	return domain.ResponsePayload{
		LineItems: []domain.LineItem{
			{Description: "Steel beam", Quantity: 10, UnitPriceCents: 10000, TotalCents: 100000},
			{Description: "Bolts", Quantity: 500, UnitPriceCents: 100, TotalCents: 50000},
		},
		TotalPriceCents:  150000,
		DeliveryTimeDays: 14,
	}
}

func TestSubmission_Valid(t *testing.T) {
	require.NoError(t, Submission(validPayload()))
}

func TestValidatePayload_CollectsEveryFieldError(t *testing.T) {
	p := domain.ResponsePayload{
		LineItems: []domain.LineItem{
			{Description: " ", Quantity: 0, UnitPriceCents: -1, TotalCents: 0},
		},
		TotalPriceCents:  0,
		DeliveryTimeDays: 0,
		Attachments:      []domain.Attachment{{Filename: "", URL: "", Size: 0, MimeType: ""}},
	}

	err := ValidatePayload(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedPayload))

	var mp *MalformedPayloadError
	require.True(t, errors.As(err, &mp))

	fields := make([]string, 0, len(mp.Fields))
	for _, f := range mp.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{
		"line_items[0].description",
		"line_items[0].quantity",
		"line_items[0].unit_price_cents",
		"line_items[0].total_cents",
		"total_price_cents",
		"delivery_time_days",
		"attachments[0].filename",
		"attachments[0].url",
		"attachments[0].size",
		"attachments[0].mime_type",
	}, fields)
}

func TestValidatePayload_EmptyLineItems(t *testing.T) {
	p := validPayload()
	p.LineItems = nil

	var mp *MalformedPayloadError
	require.True(t, errors.As(ValidatePayload(p), &mp))
	assert.Equal(t, "line_items", mp.Fields[0].Field)
}

func TestValidatePayload_Overflow(t *testing.T) {
	p := validPayload()
	p.LineItems = []domain.LineItem{{Description: "Huge", Quantity: math.MaxInt64, UnitPriceCents: 2, TotalCents: 1}}

	var mp *MalformedPayloadError
	require.True(t, errors.As(ValidatePayload(p), &mp))
	assert.Equal(t, "line_items[0]", mp.Fields[0].Field)
}

func TestValidatePayload_TotalSumOverflow(t *testing.T) {
	half := int64(math.MaxInt64/2 + 1)
	p := validPayload()
	p.LineItems = []domain.LineItem{
		{Description: "Turbine A", Quantity: 1, UnitPriceCents: half, TotalCents: half},
		{Description: "Turbine B", Quantity: 1, UnitPriceCents: half, TotalCents: half},
	}
	p.TotalPriceCents = math.MaxInt64

	var mp *MalformedPayloadError
	require.True(t, errors.As(ValidatePayload(p), &mp))
	require.Len(t, mp.Fields, 1)
	assert.Equal(t, "total_price_cents", mp.Fields[0].Field)
	assert.Contains(t, mp.Fields[0].Message, "overflows")

	err := Submission(p)
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.NotErrorIs(t, err, ErrTotalPriceMismatch)
}

func TestCheckArithmetic_OverflowIsMalformedNotMismatch(t *testing.T) {
	half := int64(math.MaxInt64/2 + 1)
	sumOverflow := []domain.LineItem{
		{Description: "Turbine A", Quantity: 1, UnitPriceCents: half, TotalCents: half},
		{Description: "Turbine B", Quantity: 1, UnitPriceCents: half, TotalCents: half},
	}
	var mp *MalformedPayloadError
	require.True(t, errors.As(CheckArithmetic(sumOverflow, math.MaxInt64), &mp))
	assert.Equal(t, "total_price_cents", mp.Fields[0].Field)

	lineOverflow := []domain.LineItem{{Description: "Huge", Quantity: math.MaxInt64, UnitPriceCents: 2, TotalCents: 1}}
	err := CheckArithmetic(lineOverflow, 1)
	require.True(t, errors.As(err, &mp))
	assert.Equal(t, "line_items[0]", mp.Fields[0].Field)
	assert.NotErrorIs(t, err, ErrLineItemMismatch)
}

func TestCheckArithmetic_EveryCorruptedItemIsIdentified(t *testing.T) {
	base := validPayload()
	for i := range base.LineItems {
		p := validPayload()
		p.LineItems[i].TotalCents++

		err := CheckArithmetic(p.LineItems, p.TotalPriceCents)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLineItemMismatch))

		var lm *LineItemMismatchError
		require.True(t, errors.As(err, &lm))
		assert.Equal(t, i, lm.Index)
		assert.Equal(t, base.LineItems[i].Description, lm.Item)
		assert.Equal(t, base.LineItems[i].TotalCents, lm.Expected)
		assert.Equal(t, base.LineItems[i].TotalCents+1, lm.Actual)
	}
}

func TestCheckArithmetic_FirstMismatchWins(t *testing.T) {
	p := validPayload()
	p.LineItems[0].TotalCents = 1
	p.LineItems[1].TotalCents = 2

	var lm *LineItemMismatchError
	require.True(t, errors.As(CheckArithmetic(p.LineItems, p.TotalPriceCents), &lm))
	assert.Equal(t, 0, lm.Index)
}

func TestCheckArithmetic_TotalPriceMismatch(t *testing.T) {
	items := []domain.LineItem{
		{Description: "Concrete", Quantity: 3, UnitPriceCents: 45000, TotalCents: 135000},
	}
	err := CheckArithmetic(items, 140000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTotalPriceMismatch))

	var tm *TotalPriceMismatchError
	require.True(t, errors.As(err, &tm))
	assert.Equal(t, int64(135000), tm.Expected)
	assert.Equal(t, int64(140000), tm.Actual)
	assert.Contains(t, tm.Error(), "expected 135000, got 140000")
}

func TestCheckArithmetic_Exact_NoTolerance(t *testing.T) {
	items := []domain.LineItem{{Description: "Widget", Quantity: 3, UnitPriceCents: 333, TotalCents: 1000}}
	var lm *LineItemMismatchError
	require.True(t, errors.As(CheckArithmetic(items, 1000), &lm))
	assert.Equal(t, int64(999), lm.Expected)
}
