// Package analytics computes summary statistics over the responses to a
// quote request. Everything here is a pure function of its inputs.
package analytics

import "github.com/tbourn/go-quote-backend/internal/domain"

// Summary aggregates the responses of one quote request.
//
// Price and delivery fields are computed over submitted responses only and
// are nil when nothing was submitted. Prices are integer cents.
type Summary struct {
	TotalInvited   int `json:"total_invited"`
	TotalResponses int `json:"total_responses"`
	SubmittedCount int `json:"submitted_count"`
	DeclinedCount  int `json:"declined_count"`
	PendingCount   int `json:"pending_count"`
	ExpiredCount   int `json:"expired_count"`

	LowestPrice  *int64 `json:"lowest_price"`
	HighestPrice *int64 `json:"highest_price"`
	AveragePrice *int64 `json:"average_price"`

	FastestDelivery *int `json:"fastest_delivery"`
	SlowestDelivery *int `json:"slowest_delivery"`
	AverageDelivery *int `json:"average_delivery"`

	// ResponseRate is an integer percentage of invitees that responded.
	ResponseRate int `json:"response_rate"`

	// LowestPriceSupplierID and FastestSupplierID identify the submissions
	// holding the extremes; first in input order wins ties.
	LowestPriceSupplierID string `json:"lowest_price_supplier_id,omitempty"`
	FastestSupplierID     string `json:"fastest_supplier_id,omitempty"`
}

// HasSubmissions reports whether at least one submitted response exists.
func (s Summary) HasSubmissions() bool { return s.SubmittedCount > 0 }

// PriceSpread returns HighestPrice-LowestPrice, or nil without submissions.
func (s Summary) PriceSpread() *int64 {
	if s.LowestPrice == nil || s.HighestPrice == nil {
		return nil
	}
	d := *s.HighestPrice - *s.LowestPrice
	return &d
}

// Summarize computes a Summary for invitedCount invitees and the given
// responses. A response appearing more than once (same ID) is counted once.
func Summarize(invitedCount int, responses []domain.SupplierResponse) Summary {
	s := Summary{TotalInvited: invitedCount}

	seen := make(map[string]struct{}, len(responses))
	var (
		priceSum int64
		daysSum  int64
	)
	for _, r := range responses {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		s.TotalResponses++

		switch r.Status {
		case domain.ResponseSubmitted:
			s.SubmittedCount++
		case domain.ResponseDeclined:
			s.DeclinedCount++
			continue
		case domain.ResponsePending:
			s.PendingCount++
			continue
		case domain.ResponseExpired:
			s.ExpiredCount++
			continue
		default:
			continue
		}

		price, days := r.TotalPriceCents, r.DeliveryTimeDays
		if s.LowestPrice == nil || price < *s.LowestPrice {
			s.LowestPrice = int64Ptr(price)
			s.LowestPriceSupplierID = r.SupplierID
		}
		if s.HighestPrice == nil || price > *s.HighestPrice {
			s.HighestPrice = int64Ptr(price)
		}
		if s.FastestDelivery == nil || days < *s.FastestDelivery {
			s.FastestDelivery = intPtr(days)
			s.FastestSupplierID = r.SupplierID
		}
		if s.SlowestDelivery == nil || days > *s.SlowestDelivery {
			s.SlowestDelivery = intPtr(days)
		}
		priceSum += price
		daysSum += int64(days)
	}

	if n := int64(s.SubmittedCount); n > 0 {
		s.AveragePrice = int64Ptr(roundDiv(priceSum, n))
		s.AverageDelivery = intPtr(int(roundDiv(daysSum, n)))
	}

	denom := int64(invitedCount)
	if denom < 1 {
		denom = 1
	}
	s.ResponseRate = int(roundDiv(int64(s.TotalResponses)*100, denom))
	return s
}

// roundDiv divides two non-negative integers rounding half up, which for
// non-negative operands matches round-half-away-from-zero.
func roundDiv(num, den int64) int64 {
	return (num + den/2) / den
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }
