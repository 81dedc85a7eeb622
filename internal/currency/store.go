package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/richxcame/invoice-insights/pkg/redis"
)

// SnapshotKey is the Redis key holding the shared snapshot.
const SnapshotKey = "currency_rates"

type snapshotRecord struct {
	Base      string            `json:"base"`
	Date      string            `json:"date"`
	FetchedAt time.Time         `json:"fetchedAt"`
	Rates     map[string]string `json:"rates"`
}

// RedisSnapshotStore keeps the latest snapshot in Redis until its validity
// window ends.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisSnapshotStore creates a store whose entries expire ttl after the
// snapshot was fetched.
func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl, now: time.Now}
}

// Load returns the stored snapshot, or nil when there is none.
func (s *RedisSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.client.GetString(ctx, SnapshotKey)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rate snapshot: %w", err)
	}

	var rec snapshotRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode rate snapshot: %w", err)
	}

	return NewSnapshot(rec.Base, rec.Date, rec.Rates, rec.FetchedAt), nil
}

// Save stores snapshot for the rest of its validity window.
func (s *RedisSnapshotStore) Save(ctx context.Context, snapshot *Snapshot) error {
	remaining := s.ttl - s.now().Sub(snapshot.FetchedAt)
	if remaining <= 0 {
		return nil
	}

	data, err := json.Marshal(snapshotRecord{
		Base:      snapshot.Base,
		Date:      snapshot.Date,
		FetchedAt: snapshot.FetchedAt,
		Rates:     snapshot.Rates(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode rate snapshot: %w", err)
	}

	if err := s.client.SetWithExpiration(ctx, SnapshotKey, string(data), remaining); err != nil {
		return fmt.Errorf("failed to write rate snapshot: %w", err)
	}
	return nil
}
