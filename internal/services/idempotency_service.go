package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/repo"
)

// IdempotencyService remembers which resource a keyed create request
// produced, so retries can be answered without creating duplicates.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration
	Now func() time.Time
}

// NewIdempotencyService returns a service keeping records for ttl.
func NewIdempotencyService(db *gorm.DB, ttl time.Duration) *IdempotencyService {
	return &IdempotencyService{DB: db, TTL: ttl, Now: time.Now}
}

// Exists reports whether a live record exists for (userID, scope, key).
func (s *IdempotencyService) Exists(ctx context.Context, userID uint, scope, key string) (bool, error) {
	_, err := s.Lookup(ctx, userID, scope, key)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Lookup returns the live record for (userID, scope, key) or repo.ErrNotFound.
func (s *IdempotencyService) Lookup(ctx context.Context, userID uint, scope, key string) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, s.DB, userID, scope, key, s.Now().UTC())
}

// Remember stores resourceID as the outcome of (userID, scope, key). A record
// written concurrently by a parallel retry is not an error.
func (s *IdempotencyService) Remember(ctx context.Context, userID uint, scope, key string, resourceID uint, status int) {
	if key == "" {
		return
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, scope, key, resourceID, status, s.TTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		log.Ctx(ctx).Warn().Err(err).Str("scope", scope).Msg("idempotency record not stored")
	}
}

// Purge drops expired records and returns how many were removed.
func (s *IdempotencyService) Purge(ctx context.Context) (int64, error) {
	return repo.PurgeExpiredIdempotency(ctx, s.DB, s.Now().UTC())
}
