package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// TokenRepo persists access tokens. One live token per user: issuing is a
// get-or-create, logout deletes the row.
type TokenRepo struct {
	db *gorm.DB
}

// NewTokenRepo creates a token repository.
func NewTokenRepo(db *gorm.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// GetOrCreate returns the user's live token, minting one if none exists.
func (r *TokenRepo) GetOrCreate(ctx context.Context, userID uint) (*domain.AccessToken, error) {
	tok := domain.AccessToken{}
	err := r.db.WithContext(ctx).
		Where(domain.AccessToken{UserID: userID}).
		Attrs(domain.AccessToken{Key: newTokenKey()}).
		FirstOrCreate(&tok).Error
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &tok, nil
}

// ResolveUser returns the user owning the given token key.
// An unknown key yields domain.ErrNoToken.
func (r *TokenRepo) ResolveUser(ctx context.Context, key string) (*domain.User, error) {
	var tok domain.AccessToken
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("key = ?", key).
		First(&tok).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoToken
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	if tok.User == nil {
		return nil, domain.ErrNoToken
	}
	return tok.User, nil
}

// DeleteByUser removes the user's live token. Deleting when no token
// exists is a no-op.
func (r *TokenRepo) DeleteByUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.AccessToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// newTokenKey mints an opaque 32-char hex key.
func newTokenKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
