package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Subject   string
	UserID    uint
	ExpiresAt time.Time
}

// TokenManager issues and validates HMAC-signed access tokens.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenManager)

// WithClock replaces time.Now for issuing and validating.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) { m.now = now }
}

func NewTokenManager(secret, algorithm string, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}

	m := &TokenManager{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL is how long issued tokens stay valid.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for subject expiring TTL from now.
func (m *TokenManager) Issue(subject string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueForUser is Issue with the user's id as the subject.
func (m *TokenManager) IssueForUser(userID uint) (string, error) {
	return m.Issue(strconv.FormatUint(uint64(userID), 10))
}

// Validate checks signature, algorithm and expiry and returns the claims.
func (m *TokenManager) Validate(token string) (Claims, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return Claims{}, ErrMalformedToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil || id == 0 {
		return Claims{}, ErrMalformedToken
	}

	return Claims{
		Subject:   claims.Subject,
		UserID:    uint(id),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
