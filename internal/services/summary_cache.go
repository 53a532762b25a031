package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/warriorcare/warriorcare-backend/internal/database"
	"github.com/warriorcare/warriorcare-backend/internal/models"
)

const (
	summaryCacheKeyPrefix = "summary:"
	// summaryCacheTTL keeps entries short-lived. The cache is refreshed on
	// every submit and every recompute; it must never outlive the history it
	// was derived from by much.
	summaryCacheTTL = 10 * time.Minute
)

// RedisSummaryCache caches ParticipantSummary projections in Redis. A broken
// or cold cache degrades to recomputation, never to wrong answers.
type RedisSummaryCache struct{}

func NewRedisSummaryCache() *RedisSummaryCache {
	return &RedisSummaryCache{}
}

func summaryCacheKey(participantID uuid.UUID) string {
	return summaryCacheKeyPrefix + participantID.String()
}

func (c *RedisSummaryCache) Get(ctx context.Context, participantID uuid.UUID) (*models.ParticipantSummary, bool) {
	if database.RedisClient == nil {
		return nil, false
	}

	val, err := database.RedisClient.Get(ctx, summaryCacheKey(participantID)).Result()
	if err != nil {
		return nil, false // cache miss, not an error
	}

	var summary models.ParticipantSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

func (c *RedisSummaryCache) Set(ctx context.Context, summary models.ParticipantSummary) {
	if database.RedisClient == nil {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := database.RedisClient.Set(ctx, summaryCacheKey(summary.ParticipantID), data, summaryCacheTTL).Err(); err != nil {
		log.Printf("summary cache: set failed for %s: %v", summary.ParticipantID, err)
	}
}
