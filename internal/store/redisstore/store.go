package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotTTL = 24 * time.Hour

	// ConnTTL bounds how long a crashed instance can keep a session's
	// connection slot. Live gateways refresh well inside it.
	ConnTTL = 90 * time.Second
)

// Store is the ephemeral fast path next to the durable session record:
// session snapshots for low-latency resume, and the one-connection-per-
// session registry shared across instances.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Snapshot is the hot subset of the session record.
type Snapshot struct {
	Status string `json:"status"`
	Stage  string `json:"stage"`
	Turn   uint64 `json:"turn"`
}

func snapshotKey(id string) string { return "interview:snapshot:" + id }
func connKey(id string) string     { return "interview:conn:" + id }

func (s *Store) SaveSnapshot(ctx context.Context, id string, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, snapshotKey(id), b, snapshotTTL).Err()
}

// GetSnapshot returns (nil, nil) on a cache miss; callers fall back to
// the durable record.
func (s *Store) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	b, err := s.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// AcquireConn claims the single live-connection slot for a session.
// Returns false when another connection already holds it.
func (s *Store) AcquireConn(ctx context.Context, id string) (bool, error) {
	return s.rdb.SetNX(ctx, connKey(id), "1", ConnTTL).Result()
}

func (s *Store) RefreshConn(ctx context.Context, id string) error {
	return s.rdb.Expire(ctx, connKey(id), ConnTTL).Err()
}

func (s *Store) ReleaseConn(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, connKey(id)).Err()
}
