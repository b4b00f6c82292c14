package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/repo"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// ctxLogger returns the request-scoped logger attached to ctx, or the global
// logger when none is attached.
func ctxLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// loadRequest fetches a quote request by ID, mapping a missing row to
// ErrQuoteRequestNotFound.
func loadRequest(ctx context.Context, db *gorm.DB, id string) (*domain.QuoteRequest, error) {
	q, err := repo.GetQuoteRequest(ctx, db, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQuoteRequestNotFound
		}
		return nil, err
	}
	return q, nil
}

// loadOwned is loadRequest plus an ownership check.
func loadOwned(ctx context.Context, db *gorm.DB, owner, id string) (*domain.QuoteRequest, error) {
	q, err := loadRequest(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if q.UserID != owner {
		return nil, ErrForbidden
	}
	return q, nil
}

// withEffectiveStatus returns a copy of q whose Status is what callers see.
func withEffectiveStatus(q domain.QuoteRequest, now time.Time) domain.QuoteRequest {
	q.Status = q.EffectiveStatus(now)
	return q
}

func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
