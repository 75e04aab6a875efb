package goPerm

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a [Store] backed by Redis. Masks live in a single hash
// keyed by principal; the admin lives in a string key whose presence
// marks the registry initialized (a renounced registry keeps the key
// with an empty value).
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a Redis-backed store. prefix namespaces the
// registry keys; an empty prefix defaults to "gp".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gp"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) masksKey() string {
	return s.prefix + ":masks"
}

func (s *RedisStore) adminKey() string {
	return s.prefix + ":admin"
}

func (s *RedisStore) Mask(ctx context.Context, p Principal) (Mask, error) {
	val, err := s.client.HGet(ctx, s.masksKey(), string(p)).Result()
	if errors.Is(err, redis.Nil) {
		return MaskNone, nil
	}
	if err != nil {
		return MaskNone, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	raw, err := strconv.ParseUint(val, 10, 8)
	if err != nil {
		return MaskNone, fmt.Errorf("%w: corrupt mask for %q", ErrStoreUnavailable, string(p))
	}
	return Mask(raw), nil
}

func (s *RedisStore) SetMask(ctx context.Context, p Principal, m Mask) error {
	err := s.client.HSet(ctx, s.masksKey(), string(p), strconv.FormatUint(uint64(m.Raw()), 10)).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Admin(ctx context.Context) (Principal, bool, error) {
	val, err := s.client.Get(ctx, s.adminKey()).Result()
	if errors.Is(err, redis.Nil) {
		return NoPrincipal, false, nil
	}
	if err != nil {
		return NoPrincipal, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return Principal(val), true, nil
}

func (s *RedisStore) SetAdmin(ctx context.Context, p Principal) error {
	if err := s.client.Set(ctx, s.adminKey(), string(p), 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
