package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/uniportal/degree-import-api/internal/models"
)

// ErrSessionNotFound signals an unknown or already evicted session key.
var ErrSessionNotFound = errors.New("import session not found")

// SessionRepository stores import sessions in Redis as JSON payloads. Keys
// outlive the session's logical expiry by a grace window so the API can tell
// an expired session apart from an unknown one before the key decays.
//
// Saves replace the payload wholesale: concurrent reviewers on one session are
// last-write-wins.
type SessionRepository struct {
	client *redis.Client
	prefix string
	grace  time.Duration
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(client *redis.Client, grace time.Duration) *SessionRepository {
	if grace <= 0 {
		grace = 24 * time.Hour
	}
	return &SessionRepository{client: client, prefix: "import:session:", grace: grace}
}

func (r *SessionRepository) key(sessionID string) string {
	return r.prefix + sessionID
}

// Save persists a session until its logical expiry plus the grace window.
func (r *SessionRepository) Save(ctx context.Context, session *models.ImportSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal import session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt) + r.grace
	if ttl <= 0 {
		return fmt.Errorf("session %s already past its grace window", session.SessionID)
	}

	if err := r.client.Set(ctx, r.key(session.SessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save import session: %w", err)
	}
	return nil
}

// Get retrieves a session by id. Expiry is not interpreted here; callers
// compare ExpiresAt against the clock.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*models.ImportSession, error) {
	raw, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get import session: %w", err)
	}

	var session models.ImportSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal import session: %w", err)
	}
	return &session, nil
}

// Delete removes a session key, consuming the session.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete import session: %w", err)
	}
	return nil
}
