package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/careportal/internal/domain"
)

// RedisStorage stores sess:<sha256(token)> -> JSON session with the session TTL.
type RedisStorage struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedisStorage(rdb *goredis.Client) *RedisStorage {
	return &RedisStorage{
		rdb:    rdb,
		prefix: "sess:",
	}
}

func (s *RedisStorage) key(token string) string {
	return s.prefix + tokenKey(token)
}

func (s *RedisStorage) Save(ctx context.Context, token string, sess domain.Session, ttl time.Duration) error {
	if s.rdb == nil {
		return errors.New("redis session storage not configured")
	}
	sess.Token = ""
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(token), b, ttl).Err()
}

func (s *RedisStorage) Load(ctx context.Context, token string) (domain.Session, error) {
	if s.rdb == nil {
		return domain.Session{}, errors.New("redis session storage not configured")
	}
	raw, err := s.rdb.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.Session{}, ErrNotFound
		}
		return domain.Session{}, err
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domain.Session{}, err
	}
	sess.Token = token
	return sess, nil
}

// Delete is idempotent.
func (s *RedisStorage) Delete(ctx context.Context, token string) error {
	if s.rdb == nil {
		return errors.New("redis session storage not configured")
	}
	return s.rdb.Del(ctx, s.key(token)).Err()
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	if s.rdb == nil {
		return errors.New("redis session storage not configured")
	}
	return s.rdb.Ping(ctx).Err()
}
