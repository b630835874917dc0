package auth

import "time"

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

type User struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Email                *string    `gorm:"uniqueIndex:idx_users_email" json:"email"`
	Username             *string    `gorm:"uniqueIndex:idx_users_username" json:"username"`
	Name                 *string    `json:"name"`
	HashedPassword       string     `gorm:"not null" json:"-"`
	Provider             string     `gorm:"not null;default:local;index:idx_users_provider_identity" json:"provider"`
	ProviderID           *string    `gorm:"index:idx_users_provider_identity" json:"provider_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	Theme                string     `gorm:"not null;default:light" json:"theme"`
	DisclaimerAcceptedAt *time.Time `json:"disclaimer_accepted_at"`
}

// OAuthSession carries the CSRF state of one in-flight OAuth login. The row
// is keyed by the value of the oauth_session cookie and deleted on callback.
type OAuthSession struct {
	SessionID    string    `gorm:"primaryKey" json:"-"`
	Provider     string    `gorm:"not null"`
	State        string    `gorm:"not null"`
	CodeVerifier string    `gorm:"not null"`
	RedirectURI  string    `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
}

func (OAuthSession) TableName() string { return "oauth_sessions" }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
