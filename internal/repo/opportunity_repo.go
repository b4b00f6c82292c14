package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

// UpsertOpportunity inserts or refreshes an opportunity row. Opportunities
// are owned by an external feed; this exists for that feed and for seeding.
func UpsertOpportunity(ctx context.Context, db *gorm.DB, o *domain.Opportunity) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "agency", "solicitation_number", "response_deadline", "updated_at"}),
	}).Create(o).Error
}

// GetOpportunity fetches an opportunity by ID or returns ErrNotFound.
func GetOpportunity(ctx context.Context, db *gorm.DB, id string) (*domain.Opportunity, error) {
	var o domain.Opportunity
	if err := db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}
