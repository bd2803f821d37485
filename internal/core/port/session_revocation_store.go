package port

import "context"

// SessionRevocationStore answers whether a session id has been revoked by
// the identity provider. A lookup failure is reported as an error so the
// caller can fail closed.
type SessionRevocationStore interface {
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
