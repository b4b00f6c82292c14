package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/repo"
)

// CreateScope namespaces Idempotency-Key records for quote request creation.
const CreateScope = "quote_requests:create"

// DefaultIdempotencyTTL bounds how long a key can be replayed.
const DefaultIdempotencyTTL = 24 * time.Hour

// Replay returns the request previously created by owner under key, if the
// key was recorded and has not expired.
func (s *QuoteRequestService) Replay(ctx context.Context, owner, key string) (*domain.QuoteRequest, bool) {
	if key == "" {
		return nil, false
	}
	rec, err := repo.GetIdempotency(ctx, s.DB, owner, CreateScope, key, s.Now.now())
	if err != nil || rec == nil {
		return nil, false
	}
	q, err := s.Get(ctx, owner, rec.ResourceID)
	if err != nil {
		return nil, false
	}
	return q, true
}

// Remember records that key created requestID. Best effort: a concurrent
// duplicate or a storage failure only loses the replay.
func (s *QuoteRequestService) Remember(ctx context.Context, owner, key, requestID string, ttl time.Duration) {
	if key == "" {
		return
	}
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if _, err := repo.CreateIdempotency(ctx, s.DB, owner, CreateScope, key, requestID, http.StatusCreated, ttl); err != nil && !errors.Is(err, repo.ErrDuplicate) {
		ctxLogger(ctx).Warn().Err(err).Str("quote_request_id", requestID).Msg("idempotency record not stored")
	}
}

// HasIdempotencyRecord reports whether a live record exists for key. It backs
// the idempotency middleware's lookup hook.
func (s *QuoteRequestService) HasIdempotencyRecord(ctx context.Context, owner, key string) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, owner, CreateScope, key, s.Now.now())
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PurgeIdempotency drops expired idempotency records.
func (s *QuoteRequestService) PurgeIdempotency(ctx context.Context) (int64, error) {
	return repo.PurgeExpiredIdempotency(ctx, s.DB, s.Now.now())
}
