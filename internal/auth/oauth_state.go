package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// StateStore keeps in-flight OAuth logins server-side.
type StateStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewStateStore(db *gorm.DB, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StateStore{db: db, ttl: ttl, now: time.Now}
}

func (s *StateStore) TTL() time.Duration { return s.ttl }

// Begin records a new login attempt for provider.
func (s *StateStore) Begin(ctx context.Context, provider, redirectURI string) (*OAuthSession, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := &OAuthSession{
		SessionID:    uuid.NewString(),
		Provider:     provider,
		State:        state,
		CodeVerifier: oauth2.GenerateVerifier(),
		RedirectURI:  redirectURI,
		ExpiresAt:    now.Add(s.ttl),
		CreatedAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("store oauth session: %w", err)
	}
	return sess, nil
}

// Consume loads and deletes the session, then checks it belongs to provider,
// has not expired and carries state. A session can be consumed once.
func (s *StateStore) Consume(ctx context.Context, sessionID, provider, state string) (*OAuthSession, error) {
	if sessionID == "" {
		return nil, ErrOAuthProtocol.With("OAuth session not found")
	}

	var sess OAuthSession
	err := s.db.WithContext(ctx).First(&sess, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOAuthProtocol.With("OAuth session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load oauth session: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&OAuthSession{}, "session_id = ?", sessionID).Error; err != nil {
		return nil, fmt.Errorf("delete oauth session: %w", err)
	}

	if s.now().After(sess.ExpiresAt) {
		return nil, ErrOAuthProtocol.With("OAuth session expired")
	}
	if sess.Provider != provider {
		return nil, ErrOAuthProtocol.With("OAuth provider mismatch")
	}
	if state == "" || subtle.ConstantTimeCompare([]byte(sess.State), []byte(state)) != 1 {
		return nil, ErrOAuthProtocol.With("OAuth state mismatch")
	}
	return &sess, nil
}

// PruneExpired deletes sessions past their expiry and reports how many.
func (s *StateStore) PruneExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", s.now().UTC()).Delete(&OAuthSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune oauth sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
