package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// SessionStore persists Session snapshots between iterations.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

var _ SessionStore = (*UpstashSessionStore)(nil)

type UpstashSessionStore struct {
	client *UpstashClient
}

func NewUpstashSessionStore(client *UpstashClient) *UpstashSessionStore {
	return &UpstashSessionStore{client: client}
}

func (s *UpstashSessionStore) sessionKey(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return s.client.key("session", sessionID), nil
}

func (s *UpstashSessionStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	key, err := s.sessionKey(sessionID)
	if err != nil {
		return nil, err
	}
	raw, err := s.client.exec(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, ErrSessionNotFound
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(encoded), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session loaded from store: %w", err)
	}
	return &sess, nil
}

func (s *UpstashSessionStore) Save(ctx context.Context, sess *Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	key, err := s.sessionKey(sess.ID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	cmd := []any{"SET", key, string(payload)}
	if s.client.sessionTTL > 0 {
		cmd = append(cmd, "EX", ttlSeconds(s.client.sessionTTL))
	}
	_, err = s.client.exec(ctx, cmd...)
	return err
}

func (s *UpstashSessionStore) Delete(ctx context.Context, sessionID string) error {
	key, err := s.sessionKey(sessionID)
	if err != nil {
		return err
	}
	_, err = s.client.exec(ctx, "DEL", key)
	return err
}
