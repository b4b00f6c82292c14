package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/export"
	"github.com/tbourn/go-quote-backend/internal/observability"
	"github.com/tbourn/go-quote-backend/internal/repo"
)

// ReportService builds exportable reports for a quote request.
type ReportService struct {
	DB *gorm.DB
	// Directory resolves supplier names; the suppliers table when nil.
	Directory export.SupplierDirectory
	// Location is the zone dates are rendered in; UTC when nil.
	Location *time.Location
	Now      Clock
}

// ExportRequest selects a report and its encoding.
type ExportRequest struct {
	Type             string
	Format           string
	IncludeLineItems bool
}

// Report is a ready-to-encode table plus its download metadata.
type Report struct {
	Kind     export.Kind
	Format   export.Format
	Table    export.Table
	Filename string
}

// Export validates the selectors and builds the requested report. Supplier
// names that cannot be resolved render as "Unknown" and never fail the call.
func (s *ReportService) Export(ctx context.Context, owner, requestID string, req ExportRequest) (*Report, error) {
	tr := observability.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "Export",
		trace.WithAttributes(
			observability.KeyQuoteRequestID.String(requestID),
			attribute.String("report.type", req.Type),
			attribute.String("report.format", req.Format),
		),
	)
	defer span.End()

	kind, err := export.ParseKind(req.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}

	q, err := loadOwned(ctx, s.DB, owner, requestID)
	if err != nil {
		return nil, err
	}

	var opp *domain.Opportunity
	if o, err := repo.GetOpportunity(ctx, s.DB, q.OpportunityID); err == nil {
		opp = o
	} else if !isNotFound(err) {
		return nil, err
	}

	invited, err := repo.CountInvitations(ctx, s.DB, requestID)
	if err != nil {
		return nil, err
	}
	responses, err := repo.ListResponses(ctx, s.DB, requestID)
	if err != nil {
		return nil, err
	}

	dir := s.Directory
	if dir == nil {
		dir = repo.SupplierDirectory{DB: s.DB}
	}
	now := s.Now.now()
	in := export.Input{
		Request:      *q,
		Opportunity:  opp,
		InvitedCount: int(invited),
		Responses:    responses,
		Names:        export.ResolveNames(ctx, dir, responses),
		Now:          now,
		Location:     s.Location,
	}

	tbl, err := export.Build(kind, in, export.Options{IncludeLineItems: req.IncludeLineItems})
	if err != nil {
		return nil, err
	}
	return &Report{
		Kind:     kind,
		Format:   format,
		Table:    tbl,
		Filename: fmt.Sprintf("%s-%s-%s.%s", kind, requestID, now.Format("20060102"), export.FileExtension(format)),
	}, nil
}
