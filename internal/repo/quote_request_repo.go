// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// QuoteRequest model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Ownership and lifecycle rules live in
// services.QuoteRequestService.
//
// Error semantics:
//   - When a request is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Conditional status updates that match no row also return ErrNotFound;
//     callers re-read to learn the current status.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// newID returns a UUIDv7. IDs minted by one process compare in creation
// order, so "ORDER BY <timestamp>, id" keeps insertion order when
// timestamps tie.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CreateQuoteRequest inserts q. A missing ID is filled with newID and a zero
// CreatedAt with the current UTC time; Status defaults to draft.
func CreateQuoteRequest(ctx context.Context, db *gorm.DB, q *domain.QuoteRequest) error {
	if q.ID == "" {
		q.ID = newID()
	}
	if q.Status == "" {
		q.Status = domain.StatusDraft
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}
	return db.WithContext(ctx).Omit(clause.Associations).Create(q).Error
}

// GetQuoteRequest fetches a request by ID regardless of owner, so the caller
// can tell a missing request from a foreign one.
func GetQuoteRequest(ctx context.Context, db *gorm.DB, id string) (*domain.QuoteRequest, error) {
	var q domain.QuoteRequest
	if err := db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// CountQuoteRequests returns the total number of requests owned by userID.
func CountQuoteRequests(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.QuoteRequest{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListQuoteRequestsPage returns a page of userID's requests, newest first.
// The caller is responsible for computing offset and limit.
func ListQuoteRequestsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.QuoteRequest, error) {
	var out []domain.QuoteRequest
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateQuoteRequestFields applies updates to a request that is still in
// status draft. It returns ErrNotFound when no draft row matched.
func UpdateQuoteRequestFields(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.QuoteRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusDraft).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetQuoteRequestStatus moves a request from one persisted status to
// another. The update only applies while the row still holds from, so two
// racing transitions cannot both succeed; the loser gets ErrNotFound.
func SetQuoteRequestStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.Status, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.QuoteRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListOverdueSent returns persisted-sent requests whose deadline is before now.
func ListOverdueSent(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.QuoteRequest, error) {
	var out []domain.QuoteRequest
	err := db.WithContext(ctx).
		Where("status = ? AND deadline < ?", domain.StatusSent, now).
		Order("deadline").
		Find(&out).Error
	return out, err
}

// DeleteQuoteRequest removes a request together with its invitations and
// responses. Children are deleted explicitly so the outcome does not depend on
// the connection having foreign keys enabled. Run it inside a transaction.
func DeleteQuoteRequest(ctx context.Context, db *gorm.DB, id string) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("quote_request_id = ?", id).Delete(&domain.SupplierResponse{}).Error; err != nil {
		return err
	}
	if err := tx.Where("quote_request_id = ?", id).Delete(&domain.Invitation{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&domain.QuoteRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
