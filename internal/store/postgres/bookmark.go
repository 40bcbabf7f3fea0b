package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// BookmarkRepo persists bookmarks. Every owner-facing query is scoped to
// the owning user: a record owned by someone else behaves exactly like a
// record that does not exist.
type BookmarkRepo struct {
	db *gorm.DB
}

// NewBookmarkRepo creates a bookmark repository.
func NewBookmarkRepo(db *gorm.DB) *BookmarkRepo {
	return &BookmarkRepo{db: db}
}

// Create inserts a new bookmark.
func (r *BookmarkRepo) Create(ctx context.Context, b *domain.Bookmark) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create bookmark: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's bookmarks, newest first.
func (r *BookmarkRepo) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Bookmark, error) {
	var bookmarks []domain.Bookmark
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// GetByOwner returns one bookmark, scoped to its owner.
func (r *BookmarkRepo) GetByOwner(ctx context.Context, ownerID, id uint) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookmarkNotFound
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return &b, nil
}

// Update saves a mutated bookmark and refreshes updated_at.
func (r *BookmarkRepo) Update(ctx context.Context, b *domain.Bookmark) error {
	if err := r.db.WithContext(ctx).Save(b).Error; err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}
	return nil
}

// DeleteByOwner deletes one bookmark, scoped to its owner.
func (r *BookmarkRepo) DeleteByOwner(ctx context.Context, ownerID, id uint) error {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&domain.Bookmark{})
	if tx.Error != nil {
		return fmt.Errorf("failed to delete bookmark: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrBookmarkNotFound
	}
	return nil
}

// ListAll returns every bookmark in the store, across all users.
// Used by the revalidation sweep only.
func (r *BookmarkRepo) ListAll(ctx context.Context) ([]domain.Bookmark, error) {
	var bookmarks []domain.Bookmark
	if err := r.db.WithContext(ctx).Find(&bookmarks).Error; err != nil {
		return nil, fmt.Errorf("failed to list all bookmarks: %w", err)
	}
	return bookmarks, nil
}

// DeleteByID deletes a bookmark regardless of owner. Deleting a record
// that is already gone is not an error; deleted reports whether this call
// removed anything. Used by the revalidation sweep.
func (r *BookmarkRepo) DeleteByID(ctx context.Context, id uint) (deleted bool, err error) {
	tx := r.db.WithContext(ctx).Delete(&domain.Bookmark{}, id)
	if tx.Error != nil {
		return false, fmt.Errorf("failed to delete bookmark: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}
