package export

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-quote-backend/internal/analytics"
	"github.com/tbourn/go-quote-backend/internal/domain"
)

// SupplierDirectory resolves supplier identifiers to display names. A false
// second return means the name could not be resolved; reports then show
// "Unknown".
type SupplierDirectory interface {
	SupplierName(ctx context.Context, supplierID string) (string, bool)
}

// Input is the data snapshot a report is built from.
type Input struct {
	Request      domain.QuoteRequest
	Opportunity  *domain.Opportunity
	InvitedCount int
	Responses    []domain.SupplierResponse

	// Names maps supplier IDs to display names; missing entries render as
	// "Unknown".
	Names map[string]string

	// Now is used for the effective status and the generation timestamp.
	Now time.Time
	// Location is the time zone dates are rendered in (UTC when nil).
	Location *time.Location
}

// Options tunes report content.
type Options struct {
	// IncludeLineItems adds a per-item breakdown column to the responses report.
	IncludeLineItems bool
}

// Build dispatches on kind.
func Build(kind Kind, in Input, opts Options) (Table, error) {
	switch kind {
	case KindQuoteRequest:
		return QuoteRequestReport(in), nil
	case KindResponses:
		return ResponsesReport(in, opts), nil
	case KindAnalysis:
		return AnalysisReport(in)
	}
	return Table{}, ErrUnknownKind
}

// ResolveNames looks up a display name for every distinct supplier in
// responses. Unresolvable suppliers are left out of the map.
func ResolveNames(ctx context.Context, dir SupplierDirectory, responses []domain.SupplierResponse) map[string]string {
	names := make(map[string]string, len(responses))
	if dir == nil {
		return names
	}
	for _, r := range responses {
		if _, done := names[r.SupplierID]; done {
			continue
		}
		if n, ok := dir.SupplierName(ctx, r.SupplierID); ok && n != "" {
			names[r.SupplierID] = n
		}
	}
	return names
}

// QuoteRequestReport describes the request itself in a single row.
func QuoteRequestReport(in Input) Table {
	q := in.Request
	oppTitle, agency, solicitation := notAvailable, notAvailable, notAvailable
	if o := in.Opportunity; o != nil {
		oppTitle = o.Title
		agency = deref(o.Agency, notAvailable)
		solicitation = deref(o.SolicitationNumber, notAvailable)
	}

	return Table{
		Title: "Quote Request: " + q.Title,
		Headers: []string{
			"ID", "Title", "Description", "Status",
			"Opportunity", "Agency", "Solicitation Number",
			"Deadline", "Invited Suppliers", "AI Generated", "Created", "Updated",
		},
		Rows: [][]string{{
			q.ID,
			q.Title,
			deref(q.Description, ""),
			StatusLabel(q.EffectiveStatus(in.Now)),
			oppTitle,
			agency,
			solicitation,
			FormatDate(q.Deadline, in.Location),
			strconv.Itoa(in.InvitedCount),
			yesNo(q.AIGenerated),
			FormatDate(q.CreatedAt, in.Location),
			FormatDate(q.UpdatedAt, in.Location),
		}},
		GeneratedAt: in.Now.UTC(),
	}
}

// ResponsesReport lists one row per supplier response.
func ResponsesReport(in Input, opts Options) Table {
	headers := []string{"ID", "Supplier", "Status", "Total Price", "Delivery Time", "Submitted", "Notes"}
	if opts.IncludeLineItems {
		headers = append(headers, "Line Items")
	}

	rows := make([][]string, 0, len(in.Responses))
	for _, r := range in.Responses {
		name, ok := in.Names[r.SupplierID]
		if !ok {
			name = unknownName
		}
		price := notAvailable
		if r.TotalPriceCents > 0 {
			price = FormatCents(r.TotalPriceCents)
		}
		delivery := notAvailable
		if r.DeliveryTimeDays > 0 {
			delivery = FormatDeliveryTime(r.DeliveryTimeDays)
		}
		submitted := notSubmitted
		if r.SubmittedAt != nil {
			submitted = FormatDate(*r.SubmittedAt, in.Location)
		}

		row := []string{
			r.ID,
			name,
			ResponseStatusLabel(r.Status),
			price,
			delivery,
			submitted,
			deref(r.Notes, ""),
		}
		if opts.IncludeLineItems {
			row = append(row, LineItemsText(r.LineItems))
		}
		rows = append(rows, row)
	}

	return Table{
		Title:       "Supplier Responses: " + in.Request.Title,
		Headers:     headers,
		Rows:        rows,
		GeneratedAt: in.Now.UTC(),
	}
}

// LineItemsText serializes line items as "<item> (<qty>x <unit price>); ...".
func LineItemsText(items []domain.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Description+" ("+strconv.FormatInt(it.Quantity, 10)+"x "+FormatCents(it.UnitPriceCents)+")")
	}
	return strings.Join(parts, "; ")
}

// AnalysisReport renders the aggregation summary as a metric/value table.
// It returns ErrNoSubmittedResponses when nothing was submitted.
func AnalysisReport(in Input) (Table, error) {
	s := analytics.Summarize(in.InvitedCount, in.Responses)
	if !s.HasSubmissions() {
		return Table{}, ErrNoSubmittedResponses
	}

	supplier := func(id string) string {
		if n, ok := in.Names[id]; ok {
			return n
		}
		return unknownName
	}

	rows := [][]string{
		{"Total Invited", strconv.Itoa(s.TotalInvited)},
		{"Total Responses", strconv.Itoa(s.TotalResponses)},
		{"Submitted", strconv.Itoa(s.SubmittedCount)},
		{"Declined", strconv.Itoa(s.DeclinedCount)},
		{"Pending", strconv.Itoa(s.PendingCount)},
		{"Response Rate", strconv.Itoa(s.ResponseRate) + "%"},
		{"Lowest Price", FormatCents(*s.LowestPrice)},
		{"Highest Price", FormatCents(*s.HighestPrice)},
		{"Average Price", FormatCents(*s.AveragePrice)},
		{"Price Spread", FormatCents(*s.PriceSpread())},
		{"Lowest Price Supplier", supplier(s.LowestPriceSupplierID)},
		{"Fastest Delivery", FormatDeliveryTime(*s.FastestDelivery)},
		{"Slowest Delivery", FormatDeliveryTime(*s.SlowestDelivery)},
		{"Average Delivery", FormatDeliveryTime(*s.AverageDelivery)},
		{"Fastest Supplier", supplier(s.FastestSupplierID)},
	}

	return Table{
		Title:       "Quote Analysis: " + in.Request.Title,
		Headers:     []string{"Metric", "Value"},
		Rows:        rows,
		GeneratedAt: in.Now.UTC(),
	}, nil
}
