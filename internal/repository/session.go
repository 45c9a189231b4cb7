package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
)

const (
	sessionKeyPrefix = "chat:session:"
	sessionTTL       = 24 * time.Hour
	// Conversations are capped so a long-running session cannot grow without
	// bound; only the most recent messages are kept.
	sessionMaxMessages = 20
)

// SessionRepository keeps chat conversation history in Redis. Sessions expire
// after a day of inactivity instead of living forever in process memory.
type SessionRepository struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewSessionRepository(client *redis.Client, logger *logrus.Logger) *SessionRepository {
	return &SessionRepository{client: client, logger: logger}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	raw, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session model.ChatSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &session, nil
}

// Save stores the session and refreshes its TTL. The history is trimmed to
// the newest messages before writing.
func (r *SessionRepository) Save(ctx context.Context, sessionID string, session *model.ChatSession) error {
	if len(session.History) > sessionMaxMessages {
		session.History = session.History[len(session.History)-sessionMaxMessages:]
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(sessionID), raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
