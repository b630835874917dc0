package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned by Store lookups that match no row.
var ErrNotFound = errors.New("user not found")

// Store is the gorm-backed credential store.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need a transaction.
func (s *Store) DB() *gorm.DB { return s.db }

// WithTx returns a store bound to tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// Transaction runs fn against a transaction-bound store, committing on nil.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	if err := fn(s.WithTx(tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uint) (*User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *Store) FindByProvider(ctx context.Context, provider, providerID string) (*User, error) {
	return s.first(ctx, "provider = ? AND provider_id = ?", provider, providerID)
}

func (s *Store) first(ctx context.Context, query string, args ...any) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) Create(ctx context.Context, user *User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *Store) Save(ctx context.Context, user *User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// UpdateFields writes only the named columns of the user's row.
func (s *Store) UpdateFields(ctx context.Context, user *User, fields map[string]any) error {
	return s.db.WithContext(ctx).Model(user).Updates(fields).Error
}
