package kvstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisStore backs the Store port with Redis. Change signals ride on a
// pub/sub channel per key, so a dashboard in one process observes orders
// placed by a storefront in another.
type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the Redis instance at addr. All keys are namespaced
// under prefix to keep a shared instance tidy.
func NewRedis(addr, prefix string) Store {
	return &redisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
	}
}

func (s *redisStore) key(k string) string {
	return fmt.Sprintf("%s:%s", s.prefix, k)
}

func (s *redisStore) channel(k string) string {
	return fmt.Sprintf("%s:changed:%s", s.prefix, k)
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	return val, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	// Best effort: a lost signal only delays a UI refresh.
	_ = s.client.Publish(ctx, s.channel(key), "changed").Err()
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return &PersistenceError{Op: "delete", Key: key, Err: err}
	}
	_ = s.client.Publish(ctx, s.channel(key), "changed").Err()
	return nil
}

func (s *redisStore) Watch(ctx context.Context, key string) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, s.channel(key))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, &PersistenceError{Op: "watch", Key: key, Err: err}
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default: // consumer busy, coalesce
				}
			}
		}
	}()
	return out, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
