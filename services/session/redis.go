package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/biglotteryfund/funding/core"
)

const keyPrefix = "session:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(conf core.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         conf.Address,
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (rs *RedisStore) Ping(ctx context.Context) error {
	return errors.Wrap(rs.client.Ping(ctx).Err(), "pinging redis")
}

func (rs *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := rs.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "getting session")
	}
	var s Session
	if err = json.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrap(err, "decoding session")
	}
	return &s, nil
}

func (rs *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return errors.Wrap(rs.client.Set(ctx, keyPrefix+s.ID, raw, rs.ttl).Err(), "saving session")
}

func (rs *RedisStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(rs.client.Del(ctx, keyPrefix+id).Err(), "deleting session")
}
