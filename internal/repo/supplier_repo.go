package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

// CreateSupplier inserts a directory entry; an existing ID yields ErrDuplicate.
func CreateSupplier(ctx context.Context, db *gorm.DB, s *domain.Supplier) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetSupplier fetches a supplier by ID or returns ErrNotFound.
func GetSupplier(ctx context.Context, db *gorm.DB, id string) (*domain.Supplier, error) {
	var s domain.Supplier
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SupplierNames maps each known ID in ids to its display name. Unknown IDs
// are absent from the result.
func SupplierNames(ctx context.Context, db *gorm.DB, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Supplier
	if err := db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s.Name
	}
	return out, nil
}

// SupplierDirectory resolves supplier names from the suppliers table. Lookup
// failures are treated as unresolvable names.
type SupplierDirectory struct {
	DB *gorm.DB
}

// SupplierName implements export.SupplierDirectory.
func (d SupplierDirectory) SupplierName(ctx context.Context, supplierID string) (string, bool) {
	if d.DB == nil {
		return "", false
	}
	var s domain.Supplier
	err := d.DB.WithContext(ctx).Select("id", "name").Where("id = ?", supplierID).Take(&s).Error
	if err != nil || s.Name == "" {
		return "", false
	}
	return s.Name, true
}
