package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"
)

const minPasswordLength = 6

// Service implements registration, login and OAuth account reconciliation.
type Service struct {
	store  *Store
	hasher *Hasher
	tokens *TokenManager
	log    *slog.Logger
	now    func() time.Time
}

func NewService(store *Store, hasher *Hasher, tokens *TokenManager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type LoginInput struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password string  `json:"password"`
}

// Profile is the identity an OAuth provider vouches for.
type Profile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Username   string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	email := normalizeEmail(deref(in.Email))
	username := strings.TrimSpace(deref(in.Username))
	name := CapitalizeName(deref(in.Name))

	if email == "" && username == "" {
		return nil, ErrValidation.With("Provide either email or username")
	}
	if email != "" && !validEmail(email) {
		return nil, ErrValidation.With("Invalid email address")
	}
	if in.Password == nil {
		return nil, ErrValidation.With("Password is required")
	}
	if len(*in.Password) < minPasswordLength {
		return nil, ErrValidation.Withf("Password must be at least %d characters", minPasswordLength)
	}

	hashed, err := s.hasher.HashPtr(in.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:          strPtr(email),
		Username:       strPtr(username),
		Name:           strPtr(name),
		HashedPassword: hashed,
		Provider:       ProviderLocal,
		Theme:          "light",
	}

	err = s.store.Transaction(ctx, func(tx *Store) error {
		if email != "" {
			if _, err := tx.FindByEmail(ctx, email); err == nil {
				return ErrDuplicateIdentity
			} else if !errors.Is(err, ErrNotFound) {
				return err
			}
		}
		if username != "" {
			if _, err := tx.FindByUsername(ctx, username); err == nil {
				return ErrDuplicateIdentity.With("Username already taken")
			} else if !errors.Is(err, ErrNotFound) {
				return err
			}
		}
		if err := tx.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateIdentity
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and returns the user with a fresh access token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*User, string, error) {
	email := normalizeEmail(deref(in.Email))
	username := strings.TrimSpace(deref(in.Username))

	if email == "" && username == "" {
		return nil, "", ErrValidation.With("Provide either email or username")
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", ErrValidation.Withf("Password must be at least %d characters", minPasswordLength)
	}

	var (
		user *User
		err  error
	)
	if email != "" {
		user, err = s.store.FindByEmail(ctx, email)
	} else {
		user, err = s.store.FindByUsername(ctx, username)
	}
	if errors.Is(err, ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !s.hasher.Verify(in.Password, user.HashedPassword) {
		s.log.WarnContext(ctx, "login failed", "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) IssueToken(user *User) (string, error) {
	return s.tokens.IssueForUser(user.ID)
}

func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if !s.hasher.Verify(oldPassword, user.HashedPassword) {
		return ErrInvalidCredentials.With("Current password is incorrect")
	}
	if len(newPassword) < minPasswordLength {
		return ErrValidation.Withf("New password must be at least %d characters", minPasswordLength)
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdateFields(ctx, user, map[string]any{"hashed_password": hashed}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// GetOrCreateOAuthUser finds the local account for a provider identity. It
// matches on (provider, provider_id) first, then links an existing account
// with the same email, and only then creates a new one.
func (s *Service) GetOrCreateOAuthUser(ctx context.Context, p Profile) (*User, error) {
	p.Email = normalizeEmail(p.Email)
	p.Name = CapitalizeName(p.Name)
	p.Username = strings.TrimSpace(p.Username)

	if p.Provider == "" || p.ProviderID == "" {
		return nil, ErrOAuthProtocol.With("OAuth provider returned no account id")
	}
	if p.Email == "" {
		return nil, ErrMissingEmail
	}

	var user *User
	err := s.store.Transaction(ctx, func(tx *Store) error {
		existing, err := tx.FindByProvider(ctx, p.Provider, p.ProviderID)
		switch {
		case err == nil:
			user = existing
			return s.refreshProfile(ctx, tx, existing, p)
		case !errors.Is(err, ErrNotFound):
			return err
		}

		byEmail, err := tx.FindByEmail(ctx, p.Email)
		switch {
		case err == nil:
			s.log.WarnContext(ctx, "linking oauth identity to existing account by email",
				"user_id", byEmail.ID, "provider", p.Provider, "previous_provider", byEmail.Provider)
			fields := map[string]any{"provider": p.Provider, "provider_id": p.ProviderID}
			if byEmail.Name == nil && p.Name != "" {
				fields["name"] = p.Name
			}
			if err := tx.UpdateFields(ctx, byEmail, fields); err != nil {
				return fmt.Errorf("link oauth identity: %w", err)
			}
			user = byEmail
			return nil
		case !errors.Is(err, ErrNotFound):
			return err
		}

		created, err := s.createOAuthUser(ctx, tx, p)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) refreshProfile(ctx context.Context, tx *Store, user *User, p Profile) error {
	fields := map[string]any{}
	if p.Name != "" && deref(user.Name) != p.Name {
		fields["name"] = p.Name
	}
	if deref(user.Email) != p.Email {
		other, err := tx.FindByEmail(ctx, p.Email)
		switch {
		case errors.Is(err, ErrNotFound):
			fields["email"] = p.Email
		case err != nil:
			return err
		default:
			s.log.WarnContext(ctx, "oauth email belongs to another account, keeping stored email",
				"user_id", user.ID, "other_user_id", other.ID)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	if err := tx.UpdateFields(ctx, user, fields); err != nil {
		return fmt.Errorf("refresh oauth profile: %w", err)
	}
	return nil
}

func (s *Service) createOAuthUser(ctx context.Context, tx *Store, p Profile) (*User, error) {
	hashed, err := s.hasher.Hash(s.placeholderSecret(p.Provider, p.ProviderID))
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:          strPtr(p.Email),
		Name:           strPtr(p.Name),
		HashedPassword: hashed,
		Provider:       p.Provider,
		ProviderID:     strPtr(p.ProviderID),
		Theme:          "light",
	}

	if p.Provider == ProviderGitHub && p.Username != "" {
		_, err := tx.FindByUsername(ctx, p.Username)
		switch {
		case errors.Is(err, ErrNotFound):
			user.Username = strPtr(p.Username)
		case err != nil:
			return nil, err
		}
	}

	if err := tx.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create oauth user: %w", err)
	}
	s.log.InfoContext(ctx, "oauth user created", "user_id", user.ID, "provider", p.Provider)
	return user, nil
}

func (s *Service) SetTheme(ctx context.Context, userID uint, theme string) (string, error) {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != "light" && theme != "dark" {
		return "", ErrValidation.With("Invalid theme value")
	}
	user := &User{ID: userID}
	if err := s.store.UpdateFields(ctx, user, map[string]any{"theme": theme}); err != nil {
		return "", fmt.Errorf("update theme: %w", err)
	}
	return theme, nil
}

func (s *Service) AcceptDisclaimer(ctx context.Context, userID uint) (time.Time, error) {
	now := s.now().UTC()
	user := &User{ID: userID}
	if err := s.store.UpdateFields(ctx, user, map[string]any{"disclaimer_accepted_at": now}); err != nil {
		return time.Time{}, fmt.Errorf("accept disclaimer: %w", err)
	}
	return now, nil
}

// placeholderSecret fills hashed_password for accounts created through
// OAuth. It is keyed with the token signing secret, so knowing the provider
// and account id is not enough to reproduce it.
func (s *Service) placeholderSecret(provider, providerID string) string {
	mac := hmac.New(sha256.New, s.tokens.secret)
	mac.Write([]byte("oauth-placeholder:" + provider + ":" + providerID))
	return hex.EncodeToString(mac.Sum(nil))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
