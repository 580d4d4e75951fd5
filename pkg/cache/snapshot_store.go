package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/constants"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/game"
)

// SnapshotStore keeps the latest game snapshot per session in Redis.
type SnapshotStore struct {
	redis *RedisClient
	ttl   time.Duration
}

func NewSnapshotStore(client *RedisClient, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{redis: client, ttl: ttl}
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf(constants.SnapshotKeyFmt, sessionID)
}

func (s *SnapshotStore) Save(ctx context.Context, snap game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return s.redis.Set(ctx, snapshotKey(snap.SessionID), data, s.ttl)
}

// Load returns nil, nil when no snapshot is stored.
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (*game.Snapshot, error) {
	data, err := s.redis.Get(ctx, snapshotKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap game.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Delete(ctx, snapshotKey(sessionID))
}
