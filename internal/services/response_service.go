// Package services – ResponseService
//
// This file implements supplier response intake. A submission passes an
// ordered series of gates, each mapped to a distinct error so clients can tell
// them apart:
//
//  1. the quote request exists                 (ErrQuoteRequestNotFound)
//  2. it is accepting responses                 (ErrNotAcceptingResponses)
//  3. the supplier was invited                  (ErrNotInvited)
//  4. the supplier has not responded yet        (ErrDuplicateResponse)
//  5. the payload is well-formed                (ErrMalformedPayload)
//  6. every line total equals quantity × price  (ErrLineItemMismatch)
//  7. the declared total equals the line sum    (ErrTotalPriceMismatch)
//
// The pre-read in step 4 only orders the errors. The insert itself is guarded
// by the (quote_request_id, supplier_id) unique index and is the first
// statement of its transaction, so concurrent submissions from one supplier
// yield exactly one stored response. After the insert the same transaction
// completes the request when every invitee has a terminal response.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/observability"
	"github.com/tbourn/go-quote-backend/internal/repo"
	"github.com/tbourn/go-quote-backend/internal/validation"
)

// ResponseService accepts supplier responses for quote requests.
type ResponseService struct {
	DB  *gorm.DB
	Now Clock
}

// errGateClosed aborts the insert transaction when the request stopped
// accepting responses after the pre-checks.
var errGateClosed = errors.New("gate closed during insert")

// Submit validates p and stores it as supplierID's submitted response.
func (s *ResponseService) Submit(ctx context.Context, requestID, supplierID string, p domain.ResponsePayload) (*domain.SupplierResponse, error) {
	tr := observability.Tracer("services/ResponseService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			observability.KeyQuoteRequestID.String(requestID),
			observability.KeySupplierID.String(supplierID),
			attribute.Int("line_items", len(p.LineItems)),
		),
	)
	defer span.End()

	now := s.Now.now()
	if err := s.gate(ctx, requestID, supplierID, now); err != nil {
		return nil, s.rejected(ctx, span, requestID, supplierID, err)
	}
	if err := validation.Submission(p); err != nil {
		return nil, s.rejected(ctx, span, requestID, supplierID, err)
	}

	r := &domain.SupplierResponse{
		QuoteRequestID:   requestID,
		SupplierID:       supplierID,
		Status:           domain.ResponseSubmitted,
		LineItems:        datatypes.JSONSlice[domain.LineItem](append([]domain.LineItem(nil), p.LineItems...)),
		TotalPriceCents:  p.TotalPriceCents,
		DeliveryTimeDays: p.DeliveryTimeDays,
		Notes:            trimmedOrNil(p.Notes),
		Attachments:      datatypes.JSONSlice[domain.Attachment](append([]domain.Attachment{}, p.Attachments...)),
		SubmittedAt:      &now,
		ExpiresAt:        p.ExpiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	completed, err := s.store(ctx, r, now)
	if err != nil {
		return nil, s.rejected(ctx, span, requestID, supplierID, err)
	}

	responsesTotal.WithLabelValues(outcomeSubmitted).Inc()
	ctxLogger(ctx).Info().
		Str("quote_request_id", requestID).
		Str("supplier_id", supplierID).
		Str("response_id", r.ID).
		Int64("total_price_cents", r.TotalPriceCents).
		Bool("request_completed", completed).
		Msg("supplier response submitted")
	return r, nil
}

// Decline records that supplierID will not quote. It passes the same
// acceptance gates as Submit and stores a declined response without items.
func (s *ResponseService) Decline(ctx context.Context, requestID, supplierID string, notes *string) (*domain.SupplierResponse, error) {
	tr := observability.Tracer("services/ResponseService")
	ctx, span := tr.Start(ctx, "Decline",
		trace.WithAttributes(
			observability.KeyQuoteRequestID.String(requestID),
			observability.KeySupplierID.String(supplierID),
		),
	)
	defer span.End()

	now := s.Now.now()
	if err := s.gate(ctx, requestID, supplierID, now); err != nil {
		return nil, s.rejected(ctx, span, requestID, supplierID, err)
	}

	r := &domain.SupplierResponse{
		QuoteRequestID: requestID,
		SupplierID:     supplierID,
		Status:         domain.ResponseDeclined,
		LineItems:      datatypes.JSONSlice[domain.LineItem]{},
		Attachments:    datatypes.JSONSlice[domain.Attachment]{},
		Notes:          trimmedOrNil(notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	completed, err := s.store(ctx, r, now)
	if err != nil {
		return nil, s.rejected(ctx, span, requestID, supplierID, err)
	}

	responsesTotal.WithLabelValues(outcomeDeclined).Inc()
	ctxLogger(ctx).Info().
		Str("quote_request_id", requestID).
		Str("supplier_id", supplierID).
		Bool("request_completed", completed).
		Msg("supplier declined")
	return r, nil
}

// List returns every response to the request in creation order. Owner only.
func (s *ResponseService) List(ctx context.Context, owner, requestID string) ([]domain.SupplierResponse, error) {
	if _, err := loadOwned(ctx, s.DB, owner, requestID); err != nil {
		return nil, err
	}
	out, err := repo.ListResponses(ctx, s.DB, requestID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.SupplierResponse{}
	}
	return out, nil
}

// Stats feeds conditional GETs on the response listing.
func (s *ResponseService) Stats(ctx context.Context, requestID string) (int64, *time.Time, error) {
	return repo.ResponsesStats(ctx, s.DB, requestID)
}

// gate runs the pre-insert checks shared by Submit and Decline, in order.
func (s *ResponseService) gate(ctx context.Context, requestID, supplierID string, now time.Time) error {
	q, err := loadRequest(ctx, s.DB, requestID)
	if err != nil {
		return err
	}
	if !q.AcceptingResponses(now) {
		return ErrNotAcceptingResponses
	}
	invited, err := repo.IsInvited(ctx, s.DB, requestID, supplierID)
	if err != nil {
		return err
	}
	if !invited {
		return ErrNotInvited
	}
	if _, err := repo.GetResponseFor(ctx, s.DB, requestID, supplierID); err == nil {
		return ErrDuplicateResponse
	} else if !isNotFound(err) {
		return err
	}
	return nil
}

// store inserts r and runs the completion check in one transaction.
func (s *ResponseService) store(ctx context.Context, r *domain.SupplierResponse, now time.Time) (bool, error) {
	completed := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateResponse(ctx, tx, r); err != nil {
			return err
		}

		// The request may have been completed or deleted since the gate.
		q, err := repo.GetQuoteRequest(ctx, tx, r.QuoteRequestID)
		if err != nil {
			if isNotFound(err) {
				return ErrQuoteRequestNotFound
			}
			return err
		}
		if !q.AcceptingResponses(now) {
			return errGateClosed
		}

		done, err := allInviteesTerminal(ctx, tx, q.ID)
		if err != nil || !done {
			return err
		}
		if err := repo.SetQuoteRequestStatus(ctx, tx, q.ID, domain.StatusSent, domain.StatusCompleted, now); err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		completed = true
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, repo.ErrDuplicate):
		return false, ErrDuplicateResponse
	case errors.Is(err, errGateClosed):
		return false, ErrNotAcceptingResponses
	default:
		return false, err
	}
	if completed {
		requestsCompleted.WithLabelValues("auto").Inc()
	}
	return completed, nil
}

func allInviteesTerminal(ctx context.Context, tx *gorm.DB, requestID string) (bool, error) {
	invited, err := repo.CountInvitations(ctx, tx, requestID)
	if err != nil || invited == 0 {
		return false, err
	}
	terminal, err := repo.CountTerminalResponses(ctx, tx, requestID)
	if err != nil {
		return false, err
	}
	return terminal >= invited, nil
}

func (s *ResponseService) rejected(ctx context.Context, span trace.Span, requestID, supplierID string, err error) error {
	responsesTotal.WithLabelValues(outcomeRejected).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	ctxLogger(ctx).Warn().Err(err).
		Str("quote_request_id", requestID).
		Str("supplier_id", supplierID).
		Msg("supplier response rejected")
	return err
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
