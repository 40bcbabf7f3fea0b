// Package service implements the application logic on top of the store,
// the cache and the metadata extractor.
package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// BookmarkStore is the persistence contract the service needs.
type BookmarkStore interface {
	Create(ctx context.Context, b *domain.Bookmark) error
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.Bookmark, error)
	GetByOwner(ctx context.Context, ownerID, id uint) (*domain.Bookmark, error)
	Update(ctx context.Context, b *domain.Bookmark) error
	DeleteByOwner(ctx context.Context, ownerID, id uint) error
	ListAll(ctx context.Context) ([]domain.Bookmark, error)
	DeleteByID(ctx context.Context, id uint) (deleted bool, err error)
}

// ListingCache caches per-user bookmark listings.
type ListingCache interface {
	Get(ctx context.Context, ownerID uint) ([]domain.Bookmark, bool, error)
	Set(ctx context.Context, ownerID uint, listing []domain.Bookmark) error
	Invalidate(ctx context.Context, ownerID uint) error
}

// PageFetcher extracts page metadata and probes page existence.
type PageFetcher interface {
	Extract(ctx context.Context, url string) (domain.PageMeta, error)
	Gone(ctx context.Context, url string) (bool, error)
}

// BookmarkService orchestrates bookmark CRUD and the revalidation sweep.
// Every write path ends with a synchronous cache invalidation for the
// affected owner; the TTL on cache entries is only a backstop.
type BookmarkService struct {
	store  BookmarkStore
	cache  ListingCache
	pages  PageFetcher
	logger logger.Logger
}

// NewBookmarkService wires the bookmark service.
func NewBookmarkService(store BookmarkStore, cache ListingCache, pages PageFetcher, log logger.Logger) *BookmarkService {
	return &BookmarkService{store: store, cache: cache, pages: pages, logger: log}
}

// Create fetches the page behind rawURL, extracts its metadata and
// persists a bookmark owned by ownerID. The canonical og:url of the page
// replaces the submitted URL. Extractor failures propagate unchanged.
func (s *BookmarkService) Create(ctx context.Context, ownerID uint, rawURL string) (*domain.Bookmark, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	meta, err := s.pages.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	b := &domain.Bookmark{
		PageTitle:   optional(meta.Title),
		Description: optional(meta.Description),
		ImageURL:    optional(meta.ImageURL),
		PageURL:     meta.CanonicalURL,
		PageType:    meta.PageType,
		UserID:      ownerID,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx, ownerID); err != nil {
		return nil, err
	}

	s.logger.Info("bookmark created",
		logger.Uint("user_id", ownerID),
		logger.Uint("bookmark_id", b.ID),
		logger.String("page_url", b.PageURL))
	return b, nil
}

// List returns the owner's bookmarks, newest first. A cache hit is
// returned verbatim without touching the store; a miss reads the store
// and repopulates the cache. Cache failures degrade to store reads.
func (s *BookmarkService) List(ctx context.Context, ownerID uint) ([]domain.Bookmark, error) {
	listing, ok, err := s.cache.Get(ctx, ownerID)
	if err != nil {
		s.logger.Warn("listing cache read failed, falling back to store",
			logger.Uint("user_id", ownerID),
			logger.Error(err))
	} else if ok {
		return listing, nil
	}

	listing, err = s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// Populating the cache is best effort.
	if err := s.cache.Set(ctx, ownerID, listing); err != nil {
		s.logger.Warn("failed to populate listing cache",
			logger.Uint("user_id", ownerID),
			logger.Error(err))
	}
	return listing, nil
}

// Get returns one bookmark, scoped to its owner.
func (s *BookmarkService) Get(ctx context.Context, ownerID, id uint) (*domain.Bookmark, error) {
	return s.store.GetByOwner(ctx, ownerID, id)
}

// Update applies a partial update to an owned bookmark. The page URL and
// the owner are immutable and extraction is not re-run.
func (s *BookmarkService) Update(ctx context.Context, ownerID, id uint, patch domain.BookmarkPatch) (*domain.Bookmark, error) {
	b, err := s.store.GetByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.PageTitle != nil {
		b.PageTitle = patch.PageTitle
	}
	if patch.Description != nil {
		b.Description = patch.Description
	}
	if patch.ImageURL != nil {
		b.ImageURL = patch.ImageURL
	}
	if patch.PageType != nil {
		b.PageType = *patch.PageType
	}

	if err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx, ownerID); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes an owned bookmark.
func (s *BookmarkService) Delete(ctx context.Context, ownerID, id uint) error {
	if err := s.store.DeleteByOwner(ctx, ownerID, id); err != nil {
		return err
	}
	return s.invalidate(ctx, ownerID)
}

// RevalidateAll probes every bookmark in the store and deletes the ones
// whose page answers 404. Any other status, and any transport failure,
// leaves the record untouched until the next run. Returns the number of
// bookmarks removed.
func (s *BookmarkService) RevalidateAll(ctx context.Context) (int, error) {
	bookmarks, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load bookmarks for revalidation: %w", err)
	}

	removed := 0
	for i := range bookmarks {
		b := &bookmarks[i]

		gone, err := s.pages.Gone(ctx, b.PageURL)
		if err != nil {
			// Transient failure: leave the record alone, re-check next run.
			s.logger.Debug("existence check failed",
				logger.Uint("bookmark_id", b.ID),
				logger.Error(err))
			continue
		}
		if !gone {
			continue
		}

		deleted, err := s.store.DeleteByID(ctx, b.ID)
		if err != nil {
			s.logger.Warn("failed to delete dead bookmark",
				logger.Uint("bookmark_id", b.ID),
				logger.Error(err))
			continue
		}
		if !deleted {
			// Already removed by the owner while we were probing.
			continue
		}

		removed++
		s.logger.Info("removed dead bookmark",
			logger.Uint("bookmark_id", b.ID),
			logger.Uint("user_id", b.UserID),
			logger.String("page_url", b.PageURL))

		// Same invalidation rule as a direct user delete.
		if err := s.cache.Invalidate(ctx, b.UserID); err != nil {
			s.logger.Warn("failed to invalidate listing cache after sweep delete",
				logger.Uint("user_id", b.UserID),
				logger.Error(err))
		}
	}
	return removed, nil
}

// invalidate drops the owner's cached listing after a store write.
// Failure is surfaced to the caller: silently keeping a stale listing
// would break the consistency contract.
func (s *BookmarkService) invalidate(ctx context.Context, ownerID uint) error {
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		return fmt.Errorf("cache invalidation failed: %w", err)
	}
	return nil
}

// validateURL rejects submissions that are not absolute http(s) URLs.
func validateURL(raw string) error {
	if raw == "" {
		return domain.FieldErrors{"url": {"This field is required."}}
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.FieldErrors{"url": {"Enter a valid URL."}}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
