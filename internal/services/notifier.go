package services

import (
	"context"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

// DefaultNotificationChannel is used when no channel is configured.
const DefaultNotificationChannel = "email"

// Notifier delivers an invitation to a supplier. Delivery itself (mail, SMS,
// supplier portal) happens outside this service.
type Notifier interface {
	// Channel names the medium recorded on the invitation.
	Channel() string
	// Notify tells the supplier of inv about request q.
	Notify(ctx context.Context, inv domain.Invitation, q domain.QuoteRequest) error
}

// LogNotifier records notifications in the structured log only.
type LogNotifier struct {
	Via string
}

// Channel implements Notifier.
func (n LogNotifier) Channel() string {
	if n.Via == "" {
		return DefaultNotificationChannel
	}
	return n.Via
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ctx context.Context, inv domain.Invitation, q domain.QuoteRequest) error {
	ctxLogger(ctx).Info().
		Str("quote_request_id", q.ID).
		Str("supplier_id", inv.SupplierID).
		Str("channel", n.Channel()).
		Time("deadline", q.Deadline).
		Msg("supplier invitation notified")
	return nil
}

// notifyPending hands every not-yet-notified invitation to n and flags it.
// Failures are logged and counted; they never undo the send.
func notifyPending(ctx context.Context, mark func(ctx context.Context, requestID, supplierID, channel string) (bool, error), n Notifier, q domain.QuoteRequest, invs []domain.Invitation) int {
	if n == nil {
		n = LogNotifier{}
	}
	lg := ctxLogger(ctx)
	sent := 0
	for _, inv := range invs {
		if inv.NotificationSent {
			continue
		}
		if err := n.Notify(ctx, inv, q); err != nil {
			notificationsSent.WithLabelValues("failed").Inc()
			lg.Warn().Err(err).
				Str("quote_request_id", q.ID).
				Str("supplier_id", inv.SupplierID).
				Msg("invitation notification failed")
			continue
		}
		set, err := mark(ctx, q.ID, inv.SupplierID, n.Channel())
		if err != nil {
			lg.Warn().Err(err).
				Str("quote_request_id", q.ID).
				Str("supplier_id", inv.SupplierID).
				Msg("mark notified failed")
			continue
		}
		if set {
			sent++
			notificationsSent.WithLabelValues("sent").Inc()
		}
	}
	return sent
}
