package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warriorcare/warriorcare-backend/internal/database"
	"github.com/warriorcare/warriorcare-backend/internal/models"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	// idempotencyTTL bounds how long a retry can still be deduplicated. A day
	// comfortably covers client retry loops without keeping keys forever.
	idempotencyTTL = 24 * time.Hour
)

// RedisIdempotencyStore remembers submission outcomes under client-supplied
// keys, scoped per participant.
type RedisIdempotencyStore struct{}

func NewRedisIdempotencyStore() *RedisIdempotencyStore {
	return &RedisIdempotencyStore{}
}

func idempotencyKey(participantID uuid.UUID, key string) string {
	return idempotencyKeyPrefix + participantID.String() + ":" + key
}

func (s *RedisIdempotencyStore) Lookup(ctx context.Context, participantID uuid.UUID, key string) (models.RiskTier, bool, error) {
	if database.RedisClient == nil {
		return "", false, nil
	}

	val, err := database.RedisClient.Get(ctx, idempotencyKey(participantID, key)).Result()
	if err != nil {
		return "", false, nil
	}
	return models.RiskTier(val), true, nil
}

func (s *RedisIdempotencyStore) Remember(ctx context.Context, participantID uuid.UUID, key string, tier models.RiskTier) error {
	if database.RedisClient == nil {
		return nil
	}
	return database.RedisClient.Set(ctx, idempotencyKey(participantID, key), string(tier), idempotencyTTL).Err()
}
