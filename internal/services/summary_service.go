package services

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-quote-backend/internal/analytics"
	"github.com/tbourn/go-quote-backend/internal/observability"
	"github.com/tbourn/go-quote-backend/internal/repo"
)

// SummaryService computes response statistics for a quote request. Reads
// take no locks; the snapshot is whatever the two queries observe.
type SummaryService struct {
	DB *gorm.DB
}

// Summarize loads the request's invitations and responses and aggregates them.
func (s *SummaryService) Summarize(ctx context.Context, owner, requestID string) (analytics.Summary, error) {
	tr := observability.Tracer("services/SummaryService")
	ctx, span := tr.Start(ctx, "Summarize", trace.WithAttributes(observability.KeyQuoteRequestID.String(requestID)))
	defer span.End()

	if _, err := loadOwned(ctx, s.DB, owner, requestID); err != nil {
		return analytics.Summary{}, err
	}
	invited, err := repo.CountInvitations(ctx, s.DB, requestID)
	if err != nil {
		return analytics.Summary{}, err
	}
	responses, err := repo.ListResponses(ctx, s.DB, requestID)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(int(invited), responses), nil
}
