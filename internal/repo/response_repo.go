package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

// CreateResponse inserts r. A missing ID is filled with newID. The
// (quote_request_id, supplier_id) unique index is the only authority on
// duplicates; a violation is reported as ErrDuplicate.
func CreateResponse(ctx context.Context, db *gorm.DB, r *domain.SupplierResponse) error {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.Status == "" {
		r.Status = domain.ResponsePending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(r).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetResponseFor returns the response of supplierID to requestID, or
// ErrNotFound.
func GetResponseFor(ctx context.Context, db *gorm.DB, requestID, supplierID string) (*domain.SupplierResponse, error) {
	var r domain.SupplierResponse
	err := db.WithContext(ctx).
		Where("quote_request_id = ? AND supplier_id = ?", requestID, supplierID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListResponses returns every response to requestID in creation order.
func ListResponses(ctx context.Context, db *gorm.DB, requestID string) ([]domain.SupplierResponse, error) {
	var out []domain.SupplierResponse
	err := db.WithContext(ctx).
		Where("quote_request_id = ?", requestID).
		Order("created_at").
		Order("id").
		Find(&out).Error
	return out, err
}

// CountTerminalResponses counts the submitted or declined responses to
// requestID that came from invited suppliers.
func CountTerminalResponses(ctx context.Context, db *gorm.DB, requestID string) (int64, error) {
	var n int64
	invited := db.Model(&domain.Invitation{}).
		Select("supplier_id").
		Where("quote_request_id = ?", requestID)
	err := db.WithContext(ctx).
		Model(&domain.SupplierResponse{}).
		Where("quote_request_id = ? AND status IN ?", requestID,
			[]domain.ResponseStatus{domain.ResponseSubmitted, domain.ResponseDeclined}).
		Where("supplier_id IN (?)", invited).
		Count(&n).Error
	return n, err
}

// ExpirePendingResponses marks the pending responses of the given requests
// as expired and returns how many rows changed.
func ExpirePendingResponses(ctx context.Context, db *gorm.DB, requestIDs []string, now time.Time) (int64, error) {
	if len(requestIDs) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.SupplierResponse{}).
		Where("quote_request_id IN ? AND status = ?", requestIDs, domain.ResponsePending).
		Updates(map[string]any{"status": domain.ResponseExpired, "updated_at": now})
	return res.RowsAffected, res.Error
}
