package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineTTL = 24 * time.Hour

// RedisStore tracks per-room online users. It is optional: the relay works
// without it and fan-out never depends on it.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// onlineKey returns the key for a room's online-user hash.
func onlineKey(room string) string {
	return fmt.Sprintf("room:%s:online", room)
}

// AddOnline records a user as online in a room.
func (s *RedisStore) AddOnline(ctx context.Context, room, user string) error {
	key := onlineKey(room)
	if err := s.client.HSet(ctx, key, user, time.Now().UnixMilli()).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, onlineTTL).Err()
}

// RemoveOnline removes a user from a room's online hash.
func (s *RedisStore) RemoveOnline(ctx context.Context, room, user string) error {
	return s.client.HDel(ctx, onlineKey(room), user).Err()
}

// Online returns the users currently online in a room.
func (s *RedisStore) Online(ctx context.Context, room string) ([]string, error) {
	return s.client.HKeys(ctx, onlineKey(room)).Result()
}
