package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	red "github.com/redis/go-redis/v9"

	"github.com/wisatahub/platform-gateway/internal/core/port"
)

const defaultSessionRevocationPrefix = "gateway:sess:revoked"

// SessionRevocationStore reads session revocation flags written by the
// identity provider. The gateway never writes revocations; it only checks
// them while reading a session.
type SessionRevocationStore struct {
	client *red.Client
	prefix string
}

// NewSessionRevocationStore constructs a Redis-backed revocation reader.
func NewSessionRevocationStore(client *red.Client, keyPrefix string) *SessionRevocationStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSessionRevocationPrefix
	}
	return &SessionRevocationStore{client: client, prefix: prefix}
}

// IsRevoked reports whether the session id carries a revocation flag.
func (s *SessionRevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	key := s.key(sessionID)
	if key == "" {
		return false, fmt.Errorf("session id is required")
	}

	if err := s.client.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get session revocation: %w", err)
	}

	return true, nil
}

func (s *SessionRevocationStore) key(sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", s.prefix, sessionID)
}

var _ port.SessionRevocationStore = (*SessionRevocationStore)(nil)
