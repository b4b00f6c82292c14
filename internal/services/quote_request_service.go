// Package services – QuoteRequestService
//
// This file implements QuoteRequestService, which owns the lifecycle of a
// quote request: creation as a draft, draft edits, sending to invited
// suppliers, manual completion and the write-back of expiry for requests whose
// deadline passed while they were sent.
//
// Every gate uses the effective status (sent past its deadline reads as
// expired), so correctness never depends on ExpireOverdue having run. Every
// request returned to callers carries its effective status as well.
//
// Observability: public methods are OpenTelemetry-instrumented and lifecycle
// events are logged with the request-scoped zerolog logger.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/observability"
	"github.com/tbourn/go-quote-backend/internal/repo"
	"github.com/tbourn/go-quote-backend/internal/utils"
)

const (
	defaultPageSize = 20
	titleMaxLen     = 255
)

// QuoteRequestService coordinates quote request persistence and state changes.
type QuoteRequestService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Notifier delivers invitations on send; LogNotifier when nil.
	Notifier Notifier
	// Now is the clock; time.Now when nil.
	Now Clock
}

// CreateInput carries the fields of a new draft.
type CreateInput struct {
	OpportunityID string
	Title         string
	Description   *string
	Deadline      time.Time
	Requirements  datatypes.JSON
	AIGenerated   bool
}

// UpdateInput carries optional draft edits; nil fields are left unchanged.
type UpdateInput struct {
	Title        *string
	Description  *string
	Deadline     *time.Time
	Requirements *datatypes.JSON
	AIGenerated  *bool
}

// ExpiryResult reports what one ExpireOverdue pass changed.
type ExpiryResult struct {
	Requests  int64
	Responses int64
}

func (s *QuoteRequestService) tracer() trace.Tracer {
	return observability.Tracer("services/QuoteRequestService")
}

// Create inserts a new draft owned by owner. The linked opportunity must
// exist.
func (s *QuoteRequestService) Create(ctx context.Context, owner string, in CreateInput) (*domain.QuoteRequest, error) {
	ctx, span := s.tracer().Start(ctx, "Create",
		trace.WithAttributes(
			observability.KeyUserID.String(owner),
			observability.KeyOpportunityID.String(in.OpportunityID),
		),
	)
	defer span.End()

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case len([]rune(title)) > titleMaxLen:
		return nil, fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, titleMaxLen)
	case in.Deadline.IsZero():
		return nil, fmt.Errorf("%w: deadline is required", ErrInvalidInput)
	case strings.TrimSpace(in.OpportunityID) == "":
		return nil, fmt.Errorf("%w: opportunity_id is required", ErrInvalidInput)
	}

	if _, err := repo.GetOpportunity(ctx, s.DB, in.OpportunityID); err != nil {
		if isNotFound(err) {
			return nil, ErrOpportunityNotFound
		}
		return nil, err
	}

	now := s.Now.now()
	q := &domain.QuoteRequest{
		UserID:        owner,
		OpportunityID: in.OpportunityID,
		Title:         title,
		Description:   in.Description,
		Status:        domain.StatusDraft,
		Deadline:      in.Deadline.UTC(),
		Requirements:  in.Requirements,
		AIGenerated:   in.AIGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.CreateQuoteRequest(ctx, s.DB, q); err != nil {
		return nil, err
	}
	ctxLogger(ctx).Info().Str("quote_request_id", q.ID).Msg("quote request created")
	return q, nil
}

// Get returns the request with its effective status. Only the owner may read it.
func (s *QuoteRequestService) Get(ctx context.Context, owner, id string) (*domain.QuoteRequest, error) {
	ctx, span := s.tracer().Start(ctx, "Get", trace.WithAttributes(observability.KeyQuoteRequestID.String(id)))
	defer span.End()

	q, err := loadOwned(ctx, s.DB, owner, id)
	if err != nil {
		return nil, err
	}
	out := withEffectiveStatus(*q, s.Now.now())
	return &out, nil
}

// ListPage returns a page of owner's requests, newest first, and the total.
func (s *QuoteRequestService) ListPage(ctx context.Context, owner string, page, pageSize int) ([]domain.QuoteRequest, int64, error) {
	ctx, span := s.tracer().Start(ctx, "ListPage",
		trace.WithAttributes(
			observability.KeyUserID.String(owner),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	total, err := repo.CountQuoteRequests(ctx, s.DB, owner)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.QuoteRequest{}, 0, nil
	}
	items, err := repo.ListQuoteRequestsPage(ctx, s.DB, owner, utils.Page{Number: page, Size: pageSize}.Offset(), pageSize)
	if err != nil {
		return nil, 0, err
	}
	now := s.Now.now()
	for i := range items {
		items[i] = withEffectiveStatus(items[i], now)
	}
	return items, total, nil
}

// Stats feeds conditional GETs on the owner's listing. The returned time is
// the latest of any update and any deadline a sent request has passed, so
// the ETag changes when a listed request starts reading as expired.
func (s *QuoteRequestService) Stats(ctx context.Context, owner string) (int64, *time.Time, error) {
	n, latest, err := repo.QuoteRequestsStats(ctx, s.DB, owner)
	if err != nil || n == 0 {
		return n, latest, err
	}
	overdue, err := repo.LatestOverdueDeadline(ctx, s.DB, owner, s.Now.now())
	if err != nil {
		return 0, nil, err
	}
	if overdue != nil && (latest == nil || overdue.After(*latest)) {
		latest = overdue
	}
	return n, latest, nil
}

// Update edits a draft. Requests that left draft return ErrNotDraft.
func (s *QuoteRequestService) Update(ctx context.Context, owner, id string, in UpdateInput) (*domain.QuoteRequest, error) {
	ctx, span := s.tracer().Start(ctx, "Update", trace.WithAttributes(observability.KeyQuoteRequestID.String(id)))
	defer span.End()

	q, err := loadOwned(ctx, s.DB, owner, id)
	if err != nil {
		return nil, err
	}
	if q.Status != domain.StatusDraft {
		return nil, ErrNotDraft
	}

	updates := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" || len([]rune(t)) > titleMaxLen {
			return nil, fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidInput, titleMaxLen)
		}
		updates["title"] = t
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Deadline != nil {
		if in.Deadline.IsZero() {
			return nil, fmt.Errorf("%w: deadline is required", ErrInvalidInput)
		}
		updates["deadline"] = in.Deadline.UTC()
	}
	if in.Requirements != nil {
		updates["requirements"] = *in.Requirements
	}
	if in.AIGenerated != nil {
		updates["ai_generated"] = *in.AIGenerated
	}

	if err := repo.UpdateQuoteRequestFields(ctx, s.DB, id, updates); err != nil {
		if isNotFound(err) {
			// Sent between our read and the update.
			return nil, ErrNotDraft
		}
		return nil, err
	}
	return s.Get(ctx, owner, id)
}

// Delete removes a request with its invitations and responses.
func (s *QuoteRequestService) Delete(ctx context.Context, owner, id string) error {
	ctx, span := s.tracer().Start(ctx, "Delete", trace.WithAttributes(observability.KeyQuoteRequestID.String(id)))
	defer span.End()

	if _, err := loadOwned(ctx, s.DB, owner, id); err != nil {
		return err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeleteQuoteRequest(ctx, tx, id)
	})
	if isNotFound(err) {
		return ErrQuoteRequestNotFound
	}
	if err == nil {
		ctxLogger(ctx).Info().Str("quote_request_id", id).Msg("quote request deleted")
	}
	return err
}

// Send moves a draft to sent and notifies every invited supplier once.
//
// Preconditions, checked in order: the caller owns the request, its effective
// status allows draft→sent, it has at least one invitation and its deadline
// is strictly in the future.
func (s *QuoteRequestService) Send(ctx context.Context, owner, id string) (*domain.QuoteRequest, error) {
	ctx, span := s.tracer().Start(ctx, "Send", trace.WithAttributes(observability.KeyQuoteRequestID.String(id)))
	defer span.End()

	q, err := loadOwned(ctx, s.DB, owner, id)
	if err != nil {
		return nil, err
	}
	now := s.Now.now()
	from := q.EffectiveStatus(now)
	if !domain.CanTransition(from, domain.StatusSent) {
		return nil, transitionErr(from, domain.StatusSent, nil)
	}

	invs, err := repo.ListInvitations(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, transitionErr(from, domain.StatusSent, ErrNoInvitations)
	}
	if !q.Deadline.After(now) {
		return nil, transitionErr(from, domain.StatusSent, ErrDeadlinePassed)
	}

	if err := repo.SetQuoteRequestStatus(ctx, s.DB, id, domain.StatusDraft, domain.StatusSent, now); err != nil {
		if isNotFound(err) {
			return nil, s.staleTransition(ctx, id, domain.StatusSent, now)
		}
		return nil, err
	}
	q.Status = domain.StatusSent
	q.UpdatedAt = now

	n := notifyPending(ctx, s.markNotified, s.Notifier, *q, invs)
	ctxLogger(ctx).Info().
		Str("quote_request_id", id).
		Int("invitations", len(invs)).
		Int("notified", n).
		Msg("quote request sent")

	out := withEffectiveStatus(*q, now)
	return &out, nil
}

// Complete closes a sent request before its deadline.
func (s *QuoteRequestService) Complete(ctx context.Context, owner, id string) (*domain.QuoteRequest, error) {
	ctx, span := s.tracer().Start(ctx, "Complete", trace.WithAttributes(observability.KeyQuoteRequestID.String(id)))
	defer span.End()

	q, err := loadOwned(ctx, s.DB, owner, id)
	if err != nil {
		return nil, err
	}
	now := s.Now.now()
	from := q.EffectiveStatus(now)
	if !domain.CanTransition(from, domain.StatusCompleted) {
		return nil, transitionErr(from, domain.StatusCompleted, nil)
	}
	if err := repo.SetQuoteRequestStatus(ctx, s.DB, id, domain.StatusSent, domain.StatusCompleted, now); err != nil {
		if isNotFound(err) {
			return nil, s.staleTransition(ctx, id, domain.StatusCompleted, now)
		}
		return nil, err
	}
	requestsCompleted.WithLabelValues("manual").Inc()
	ctxLogger(ctx).Info().Str("quote_request_id", id).Msg("quote request completed")

	q.Status = domain.StatusCompleted
	q.UpdatedAt = now
	return q, nil
}

// ExpireOverdue persists expired for every sent request whose deadline
// passed and expires their pending responses. It is idempotent.
func (s *QuoteRequestService) ExpireOverdue(ctx context.Context) (ExpiryResult, error) {
	ctx, span := s.tracer().Start(ctx, "ExpireOverdue")
	defer span.End()

	now := s.Now.now()
	var res ExpiryResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		overdue, err := repo.ListOverdueSent(ctx, tx, now)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(overdue))
		for _, q := range overdue {
			if err := repo.SetQuoteRequestStatus(ctx, tx, q.ID, domain.StatusSent, domain.StatusExpired, now); err != nil {
				if isNotFound(err) {
					continue
				}
				return err
			}
			ids = append(ids, q.ID)
		}
		n, err := repo.ExpirePendingResponses(ctx, tx, ids, now)
		if err != nil {
			return err
		}
		res = ExpiryResult{Requests: int64(len(ids)), Responses: n}
		return nil
	})
	if err != nil {
		return ExpiryResult{}, err
	}

	span.SetAttributes(
		attribute.Int64("expired.requests", res.Requests),
		attribute.Int64("expired.responses", res.Responses),
	)
	requestsExpired.Add(float64(res.Requests))
	if res.Requests > 0 {
		ctxLogger(ctx).Info().
			Int64("requests", res.Requests).
			Int64("responses", res.Responses).
			Msg("expired overdue quote requests")
	}
	return res, nil
}

// staleTransition builds the error for a conditional status update that lost
// a race: the row no longer holds the status we read.
func (s *QuoteRequestService) staleTransition(ctx context.Context, id string, to domain.Status, now time.Time) error {
	cur, err := loadRequest(ctx, s.DB, id)
	if err != nil {
		return err
	}
	return transitionErr(cur.EffectiveStatus(now), to, nil)
}

func (s *QuoteRequestService) markNotified(ctx context.Context, requestID, supplierID, channel string) (bool, error) {
	return repo.MarkNotified(ctx, s.DB, requestID, supplierID, channel)
}
