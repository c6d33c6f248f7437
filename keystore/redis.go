package keystore

import (
	"context"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values under prefixed keys with no expiry. It lets several client
// processes (a kiosk fleet, a test harness) share one session.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

var _ KeyValueStore = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultNamespace
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
	}
}

// DialRedis connects using a redis:// URL and pings the server before returning.
func DialRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrapf(err, "[DialRedis] redis.ParseURL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "[DialRedis] ping")
	}
	return NewRedisStore(client, prefix), nil
}

func (s *RedisStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.redis.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "[RedisStore.Get] %s", key)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return errors.Wrapf(err, "[RedisStore.Set] %s", key)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Wrapf(err, "[RedisStore.Delete] %s", key)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.redis.Close()
}
