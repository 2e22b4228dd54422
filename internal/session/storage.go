package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/baechuer/careportal/internal/domain"
)

// ErrNotFound is returned by Storage.Load when the token has no stored session.
var ErrNotFound = errors.New("session not found")

// Storage persists sessions keyed by bearer token. Implementations are safe for concurrent use.
type Storage interface {
	Save(ctx context.Context, token string, s domain.Session, ttl time.Duration) error
	Load(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

// tokenKey hashes the token so raw bearer tokens never become storage keys.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
