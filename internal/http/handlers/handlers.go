package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quote-backend/internal/analytics"
	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/http/middleware"
	"github.com/tbourn/go-quote-backend/internal/services"
	"github.com/tbourn/go-quote-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// QuoteRequestService is the lifecycle surface used by the quote request
// endpoints. Returned requests carry their effective status.
type QuoteRequestService interface {
	Create(ctx context.Context, owner string, in services.CreateInput) (*domain.QuoteRequest, error)
	Get(ctx context.Context, owner, id string) (*domain.QuoteRequest, error)
	ListPage(ctx context.Context, owner string, page, pageSize int) ([]domain.QuoteRequest, int64, error)
	// Stats returns the row count and latest update for conditional GETs.
	Stats(ctx context.Context, owner string) (int64, *time.Time, error)
	Update(ctx context.Context, owner, id string, in services.UpdateInput) (*domain.QuoteRequest, error)
	Delete(ctx context.Context, owner, id string) error
	Send(ctx context.Context, owner, id string) (*domain.QuoteRequest, error)
	Complete(ctx context.Context, owner, id string) (*domain.QuoteRequest, error)
	// Replay returns the request previously created under an Idempotency-Key.
	Replay(ctx context.Context, owner, key string) (*domain.QuoteRequest, bool)
	// Remember records key -> requestID for later replays.
	Remember(ctx context.Context, owner, key, requestID string, ttl time.Duration)
}

// InvitationService manages the supplier invitation ledger.
type InvitationService interface {
	Invite(ctx context.Context, owner, requestID, supplierID string) (*domain.Invitation, error)
	List(ctx context.Context, owner, requestID string) ([]domain.Invitation, error)
}

// ResponseService accepts and lists supplier responses.
type ResponseService interface {
	Submit(ctx context.Context, requestID, supplierID string, p domain.ResponsePayload) (*domain.SupplierResponse, error)
	Decline(ctx context.Context, requestID, supplierID string, notes *string) (*domain.SupplierResponse, error)
	List(ctx context.Context, owner, requestID string) ([]domain.SupplierResponse, error)
	Stats(ctx context.Context, requestID string) (int64, *time.Time, error)
}

// SummaryService aggregates responses.
type SummaryService interface {
	Summarize(ctx context.Context, owner, requestID string) (analytics.Summary, error)
}

// ReportService builds export tables.
type ReportService interface {
	Export(ctx context.Context, owner, requestID string, req services.ExportRequest) (*services.Report, error)
}

// SupplierService maintains the supplier directory.
type SupplierService interface {
	Create(ctx context.Context, id, name string, email *string) (*domain.Supplier, error)
	Get(ctx context.Context, id string) (*domain.Supplier, error)
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers.
type Services struct {
	QuoteRequests QuoteRequestService
	Invitations   InvitationService
	Responses     ResponseService
	Summaries     SummaryService
	Reports       ReportService
	Suppliers     SupplierService

	// IdempotencyTTL bounds create replays; 24h when zero.
	IdempotencyTTL time.Duration
}

// Handlers groups the HTTP endpoints. Transport concerns only: parse, call a
// service, translate the result.
type Handlers struct {
	quotes    QuoteRequestService
	invites   InvitationService
	responses ResponseService
	summaries SummaryService
	reports   ReportService
	suppliers SupplierService
	idemTTL   time.Duration
}

// New constructs Handlers bound to the given services.
func New(s Services) *Handlers {
	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = services.DefaultIdempotencyTTL
	}
	return &Handlers{
		quotes:    s.QuoteRequests,
		invites:   s.Invitations,
		responses: s.Responses,
		summaries: s.Summaries,
		reports:   s.Reports,
		suppliers: s.Suppliers,
		idemTTL:   ttl,
	}
}

// userID is the caller: the buyer on owner routes, the supplier on the
// response intake routes.
func userID(c *gin.Context) string { return middleware.CallerID(c) }

//
// Pagination
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses page and page_size, defaulting to 1 and 20 and
// capping page_size at 100.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPageSize = 20
		maxPageSize     = 100
	)
	p := utils.ParsePage(c.Query("page"), c.Query("page_size"), defaultPageSize, maxPageSize)
	return p.Number, p.Size
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// notModified sets a weak ETag derived from (scope, count, latest update) and
// reports whether If-None-Match already matches it. Stats failures skip the
// ETag rather than failing the request.
func notModified(c *gin.Context, scope, key string, stats func() (int64, *time.Time, error)) bool {
	count, latest, err := stats()
	if err != nil {
		return false
	}
	var ts int64
	if latest != nil {
		ts = latest.UnixNano()
	}
	etag := fmt.Sprintf(`W/"%s:%s:%d:%d"`, scope, key, count, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
