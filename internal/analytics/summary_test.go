package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

func submitted(id, supplier string, cents int64, days int) domain.SupplierResponse {
	return domain.SupplierResponse{
		ID:               id,
		SupplierID:       supplier,
		Status:           domain.ResponseSubmitted,
		TotalPriceCents:  cents,
		DeliveryTimeDays: days,
	}
}

func TestSummarize_NoResponses(t *testing.T) {
	s := Summarize(0, nil)

	assert.Equal(t, 0, s.TotalInvited)
	assert.Equal(t, 0, s.TotalResponses)
	assert.Equal(t, 0, s.ResponseRate)
	assert.Nil(t, s.LowestPrice)
	assert.Nil(t, s.HighestPrice)
	assert.Nil(t, s.AveragePrice)
	assert.Nil(t, s.FastestDelivery)
	assert.Nil(t, s.SlowestDelivery)
	assert.Nil(t, s.AverageDelivery)
	assert.Nil(t, s.PriceSpread())
	assert.False(t, s.HasSubmissions())

	// Absent fields serialize as null, never 0 or NaN.
	b, err := json.Marshal(s)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Nil(t, m["lowest_price"])
	assert.Nil(t, m["average_delivery"])
	assert.Contains(t, m, "average_price")
}

func TestSummarize_OnlyDeclined_PriceFieldsAbsent(t *testing.T) {
	s := Summarize(2, []domain.SupplierResponse{
		{ID: "r1", SupplierID: "a", Status: domain.ResponseDeclined},
	})
	assert.Equal(t, 1, s.TotalResponses)
	assert.Equal(t, 1, s.DeclinedCount)
	assert.Equal(t, 50, s.ResponseRate)
	assert.Nil(t, s.AveragePrice)
}

func TestSummarize_ScenarioOneOfThree(t *testing.T) {
	s := Summarize(3, []domain.SupplierResponse{submitted("r1", "A", 150000, 10)})

	assert.Equal(t, 3, s.TotalInvited)
	assert.Equal(t, 1, s.TotalResponses)
	assert.Equal(t, 1, s.SubmittedCount)
	require.NotNil(t, s.LowestPrice)
	assert.Equal(t, int64(150000), *s.LowestPrice)
	assert.Equal(t, int64(150000), *s.HighestPrice)
	assert.Equal(t, int64(150000), *s.AveragePrice)
	assert.Equal(t, 33, s.ResponseRate)
	assert.Equal(t, "A", s.LowestPriceSupplierID)
}

func TestSummarize_MixedStatuses_AndRounding(t *testing.T) {
	responses := []domain.SupplierResponse{
		submitted("r1", "a", 100, 3),
		submitted("r2", "b", 201, 4),
		{ID: "r3", SupplierID: "c", Status: domain.ResponseDeclined},
		{ID: "r4", SupplierID: "d", Status: domain.ResponsePending},
		{ID: "r5", SupplierID: "e", Status: domain.ResponseExpired},
	}
	s := Summarize(8, responses)

	assert.Equal(t, 5, s.TotalResponses)
	assert.Equal(t, 2, s.SubmittedCount)
	assert.Equal(t, 1, s.DeclinedCount)
	assert.Equal(t, 1, s.PendingCount)
	assert.Equal(t, 1, s.ExpiredCount)
	// (100+201)/2 = 150.5 -> 151
	assert.Equal(t, int64(151), *s.AveragePrice)
	// (3+4)/2 = 3.5 -> 4
	assert.Equal(t, 4, *s.AverageDelivery)
	assert.Equal(t, 3, *s.FastestDelivery)
	assert.Equal(t, 4, *s.SlowestDelivery)
	assert.Equal(t, int64(101), *s.PriceSpread())
	// 5/8 = 62.5% -> 63
	assert.Equal(t, 63, s.ResponseRate)
	assert.Equal(t, "a", s.FastestSupplierID)
}

func TestSummarize_DuplicateIterationCountedOnce(t *testing.T) {
	r := submitted("r1", "a", 1000, 2)
	s := Summarize(1, []domain.SupplierResponse{r, r, r})

	assert.Equal(t, 1, s.TotalResponses)
	assert.Equal(t, 1, s.SubmittedCount)
	assert.Equal(t, int64(1000), *s.AveragePrice)
	assert.Equal(t, 100, s.ResponseRate)
}

func TestSummarize_ZeroInviteesUsesDenominatorOne(t *testing.T) {
	s := Summarize(0, []domain.SupplierResponse{submitted("r1", "a", 1, 1)})
	assert.Equal(t, 100, s.ResponseRate)
}

func TestSummarize_TiesKeepFirst(t *testing.T) {
	s := Summarize(2, []domain.SupplierResponse{
		submitted("r1", "first", 500, 5),
		submitted("r2", "second", 500, 5),
	})
	assert.Equal(t, "first", s.LowestPriceSupplierID)
	assert.Equal(t, "first", s.FastestSupplierID)
}
