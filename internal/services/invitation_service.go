package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/observability"
	"github.com/tbourn/go-quote-backend/internal/repo"
)

// InvitationService maintains the ledger of suppliers invited to each quote
// request. The (request, supplier) unique index is the single source of truth
// for "already invited".
type InvitationService struct {
	DB *gorm.DB
	// Notifier is used for suppliers invited after the request was sent.
	Notifier Notifier
	Now      Clock
}

// Invite adds supplierID to the request's ledger. The request must be owned
// by owner and still open for invitations (draft or sent, not past its
// deadline), and the supplier must exist. Suppliers added to an already sent
// request are notified right away.
func (s *InvitationService) Invite(ctx context.Context, owner, requestID, supplierID string) (*domain.Invitation, error) {
	tr := observability.Tracer("services/InvitationService")
	ctx, span := tr.Start(ctx, "Invite",
		trace.WithAttributes(
			observability.KeyQuoteRequestID.String(requestID),
			observability.KeySupplierID.String(supplierID),
		),
	)
	defer span.End()

	supplierID = strings.TrimSpace(supplierID)
	if supplierID == "" {
		return nil, fmt.Errorf("%w: supplier_id is required", ErrInvalidInput)
	}

	q, err := loadOwned(ctx, s.DB, owner, requestID)
	if err != nil {
		return nil, err
	}
	now := s.Now.now()
	eff := q.EffectiveStatus(now)
	if eff != domain.StatusDraft && eff != domain.StatusSent {
		return nil, transitionErr(eff, eff, ErrInvitationsClosed)
	}

	if _, err := repo.GetSupplier(ctx, s.DB, supplierID); err != nil {
		if isNotFound(err) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}

	inv, err := repo.CreateInvitation(ctx, s.DB, requestID, supplierID, now)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateInvitation
		}
		return nil, err
	}

	if eff == domain.StatusSent {
		mark := func(ctx context.Context, rid, sid, ch string) (bool, error) {
			return repo.MarkNotified(ctx, s.DB, rid, sid, ch)
		}
		if notifyPending(ctx, mark, s.Notifier, *q, []domain.Invitation{*inv}) == 1 {
			ch := notifierChannel(s.Notifier)
			inv.NotificationSent = true
			inv.NotificationChannel = &ch
		}
	}

	ctxLogger(ctx).Info().
		Str("quote_request_id", requestID).
		Str("supplier_id", supplierID).
		Msg("supplier invited")
	return inv, nil
}

// List returns the request's invitations in insertion order. Owner only.
func (s *InvitationService) List(ctx context.Context, owner, requestID string) ([]domain.Invitation, error) {
	if _, err := loadOwned(ctx, s.DB, owner, requestID); err != nil {
		return nil, err
	}
	invs, err := repo.ListInvitations(ctx, s.DB, requestID)
	if err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []domain.Invitation{}
	}
	return invs, nil
}

// ListInvitees returns the invited supplier IDs in insertion order.
func (s *InvitationService) ListInvitees(ctx context.Context, requestID string) ([]string, error) {
	if _, err := loadRequest(ctx, s.DB, requestID); err != nil {
		return nil, err
	}
	return repo.ListInvitees(ctx, s.DB, requestID)
}

func notifierChannel(n Notifier) string {
	if n == nil {
		return LogNotifier{}.Channel()
	}
	return n.Channel()
}
