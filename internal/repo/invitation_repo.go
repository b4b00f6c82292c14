package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

// CreateInvitation records that supplierID was invited to requestID at now.
// The (quote_request_id, supplier_id) unique index decides duplicates; a
// violation is reported as an error wrapping ErrDuplicate.
func CreateInvitation(ctx context.Context, db *gorm.DB, requestID, supplierID string, now time.Time) (*domain.Invitation, error) {
	inv := &domain.Invitation{
		ID:             newID(),
		QuoteRequestID: requestID,
		SupplierID:     supplierID,
		InvitedAt:      now.UTC(),
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error; err != nil {
		if IsDuplicate(err) {
			return nil, fmt.Errorf("invitation %s/%s: %w", requestID, supplierID, ErrDuplicate)
		}
		return nil, err
	}
	return inv, nil
}

// ListInvitations returns the invitations of requestID in insertion order.
// Invitations recorded at the same instant fall back to their time-ordered id.
func ListInvitations(ctx context.Context, db *gorm.DB, requestID string) ([]domain.Invitation, error) {
	var out []domain.Invitation
	err := db.WithContext(ctx).
		Where("quote_request_id = ?", requestID).
		Order("invited_at").
		Order("id").
		Find(&out).Error
	return out, err
}

// ListInvitees returns the supplier IDs invited to requestID in insertion order.
func ListInvitees(ctx context.Context, db *gorm.DB, requestID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("quote_request_id = ?", requestID).
		Order("invited_at").
		Order("id").
		Pluck("supplier_id", &ids).Error
	return ids, err
}

// CountInvitations returns how many suppliers were invited to requestID.
func CountInvitations(ctx context.Context, db *gorm.DB, requestID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("quote_request_id = ?", requestID).
		Count(&n).Error
	return n, err
}

// IsInvited reports whether supplierID holds an invitation for requestID.
func IsInvited(ctx context.Context, db *gorm.DB, requestID, supplierID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("quote_request_id = ? AND supplier_id = ?", requestID, supplierID).
		Count(&n).Error
	return n > 0, err
}

// MarkNotified flags an invitation as notified through channel. Only rows
// not yet notified are touched, so the flag is set at most once; the boolean
// reports whether this call set it.
func MarkNotified(ctx context.Context, db *gorm.DB, requestID, supplierID, channel string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("quote_request_id = ? AND supplier_id = ? AND notification_sent = ?", requestID, supplierID, false).
		Updates(map[string]any{"notification_sent": true, "notification_channel": channel})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
