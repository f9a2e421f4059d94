package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nmsportal/backend/services/portal-service/internal/models"
)

// ErrMiss is returned when no summary is cached for the key.
var ErrMiss = errors.New("redisstore: cache miss")

// SummaryStore caches derived summaries keyed by file version and units.
type SummaryStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryStore returns redis-backed store.
func NewSummaryStore(client *redis.Client, ttl time.Duration) *SummaryStore {
	return &SummaryStore{client: client, ttl: ttl}
}

// Key identifies one derivation. A rewritten file gets a new modification time and so a new key.
func Key(file, units string, modified time.Time) string {
	return fmt.Sprintf("portal:summary:%s:%s:%d", file, units, modified.UnixNano())
}

// Save caches summary.
func (s *SummaryStore) Save(ctx context.Context, summary *models.SessionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, Key(summary.File, summary.Units, summary.FileModified), data, s.ttl).Err()
}

// Get returns cached summary.
func (s *SummaryStore) Get(ctx context.Context, file, units string, modified time.Time) (*models.SessionSummary, error) {
	result, err := s.client.Get(ctx, Key(file, units, modified)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	var summary models.SessionSummary
	if err := json.Unmarshal([]byte(result), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
