// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

// QuoteRequestsStats returns the number of requests owned by userID and the
// greatest UpdatedAt among them. With no rows it returns (0, nil, nil).
func QuoteRequestsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	return tableStats(db.WithContext(ctx).Model(&domain.QuoteRequest{}).Where("user_id = ?", userID))
}

// ResponsesStats returns the number of responses to requestID and the
// greatest UpdatedAt among them.
func ResponsesStats(ctx context.Context, db *gorm.DB, requestID string) (count int64, maxUpdatedAt *time.Time, err error) {
	return tableStats(db.WithContext(ctx).Model(&domain.SupplierResponse{}).Where("quote_request_id = ?", requestID))
}

func tableStats(q *gorm.DB) (int64, *time.Time, error) {
	var count int64
	if err := q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err := q.Session(&gorm.Session{}).Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// LatestOverdueDeadline returns the greatest deadline before now among
// userID's persisted-sent requests, or nil. It changes exactly when a sent
// request crosses its deadline, which UpdatedAt alone does not reflect.
func LatestOverdueDeadline(ctx context.Context, db *gorm.DB, userID string, now time.Time) (*time.Time, error) {
	var rows []struct{ Deadline time.Time }
	err := db.WithContext(ctx).Model(&domain.QuoteRequest{}).
		Select("deadline").
		Where("user_id = ? AND status = ? AND deadline < ?", userID, domain.StatusSent, now).
		Order("deadline DESC").
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0].Deadline, nil
}
