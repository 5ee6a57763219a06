package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type redisStore struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisStore constructs a Redis backed session Store.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (Store, error) {
	opts := &redis.Options{Addr: addr, Password: password, DB: db}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &redisStore{
		client:  client,
		prefix:  "hfthemes:session:",
		ttl:     ttl,
		timeout: 2 * time.Second,
	}, nil
}

func (s *redisStore) Get(ctx context.Context, id string) (Record, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("redis get session: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode session record: %w", err)
	}
	return rec, true, nil
}

func (s *redisStore) Save(ctx context.Context, id string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, s.prefix+id, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() {
	_ = s.client.Close()
}
