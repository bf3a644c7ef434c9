// Package store provides durable snapshot persistence for rooms and player
// sessions: Redis in production, an in-memory map for tests and store-less
// runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nroche/timebomb/internal/game"
)

const (
	// DefaultRoomTTL matches the original deployment's one-hour room expiry.
	// The TTL refreshes on every write, so only abandoned rooms lapse.
	DefaultRoomTTL = time.Hour
	// DefaultSessionTTL is deliberately much longer than the room TTL so a
	// player can still be recognized after the room snapshot went quiet.
	DefaultSessionTTL = 24 * time.Hour
)

// Redis persists snapshots in a Redis instance with per-key expiry.
type Redis struct {
	client     *redis.Client
	roomTTL    time.Duration
	sessionTTL time.Duration
}

// NewRedis connects to the Redis at url (redis:// form) and verifies the
// connection with a ping.
func NewRedis(ctx context.Context, url string, roomTTL, sessionTTL time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if roomTTL <= 0 {
		roomTTL = DefaultRoomTTL
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Redis{client: client, roomTTL: roomTTL, sessionTTL: sessionTTL}, nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func roomKey(roomID string) string      { return "room:" + roomID }
func sessionKey(playerID string) string { return "session:" + playerID }

// SaveRoom writes the full room document and refreshes its TTL.
func (r *Redis) SaveRoom(ctx context.Context, snap *game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, roomKey(snap.ID), data, r.roomTTL).Err(); err != nil {
		return fmt.Errorf("save room %s: %w", snap.ID, err)
	}
	return nil
}

// LoadRoom fetches a room document. A missing key is game.ErrSnapshotNotFound.
func (r *Redis) LoadRoom(ctx context.Context, roomID string) (*game.Snapshot, error) {
	data, err := r.client.Get(ctx, roomKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, game.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", roomID, err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", roomID, err)
	}
	return &snap, nil
}

// DeleteRoom evicts a room document. Deleting an absent key is not an error.
func (r *Redis) DeleteRoom(ctx context.Context, roomID string) error {
	if err := r.client.Del(ctx, roomKey(roomID)).Err(); err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	return nil
}

// SaveSession writes a player's reconnection record with its own, longer TTL.
func (r *Redis) SaveSession(ctx context.Context, playerID string, s game.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(playerID), data, r.sessionTTL).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", playerID, err)
	}
	return nil
}

// LoadSession fetches a player's reconnection record.
func (r *Redis) LoadSession(ctx context.Context, playerID string) (game.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Session{}, game.ErrSnapshotNotFound
	}
	if err != nil {
		return game.Session{}, fmt.Errorf("load session %s: %w", playerID, err)
	}
	var s game.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return game.Session{}, fmt.Errorf("decode session %s: %w", playerID, err)
	}
	return s, nil
}
