package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

type fakeBookmarkStore struct {
	nextID    uint
	bookmarks map[uint]*domain.Bookmark
	listCalls int
}

func newFakeBookmarkStore() *fakeBookmarkStore {
	return &fakeBookmarkStore{nextID: 1, bookmarks: make(map[uint]*domain.Bookmark)}
}

func (s *fakeBookmarkStore) Create(_ context.Context, b *domain.Bookmark) error {
	b.ID = s.nextID
	s.nextID++
	cp := *b
	s.bookmarks[b.ID] = &cp
	return nil
}

func (s *fakeBookmarkStore) ListByOwner(_ context.Context, ownerID uint) ([]domain.Bookmark, error) {
	s.listCalls++
	var out []domain.Bookmark
	for _, b := range s.bookmarks {
		if b.UserID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookmarkStore) GetByOwner(_ context.Context, ownerID, id uint) (*domain.Bookmark, error) {
	b, ok := s.bookmarks[id]
	if !ok || b.UserID != ownerID {
		return nil, domain.ErrBookmarkNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBookmarkStore) Update(_ context.Context, b *domain.Bookmark) error {
	cp := *b
	s.bookmarks[b.ID] = &cp
	return nil
}

func (s *fakeBookmarkStore) DeleteByOwner(_ context.Context, ownerID, id uint) error {
	b, ok := s.bookmarks[id]
	if !ok || b.UserID != ownerID {
		return domain.ErrBookmarkNotFound
	}
	delete(s.bookmarks, id)
	return nil
}

func (s *fakeBookmarkStore) ListAll(_ context.Context) ([]domain.Bookmark, error) {
	var out []domain.Bookmark
	for _, b := range s.bookmarks {
		out = append(out, *b)
	}
	return out, nil
}

func (s *fakeBookmarkStore) DeleteByID(_ context.Context, id uint) (bool, error) {
	if _, ok := s.bookmarks[id]; !ok {
		return false, nil
	}
	delete(s.bookmarks, id)
	return true, nil
}

type fakeCache struct {
	entries     map[uint][]domain.Bookmark
	getErr      error
	setErr      error
	invErr      error
	invalidated []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uint][]domain.Bookmark)}
}

func (c *fakeCache) Get(_ context.Context, ownerID uint) ([]domain.Bookmark, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	listing, ok := c.entries[ownerID]
	return listing, ok, nil
}

func (c *fakeCache) Set(_ context.Context, ownerID uint, listing []domain.Bookmark) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[ownerID] = listing
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, ownerID uint) error {
	if c.invErr != nil {
		return c.invErr
	}
	delete(c.entries, ownerID)
	c.invalidated = append(c.invalidated, ownerID)
	return nil
}

type fakePages struct {
	meta    domain.PageMeta
	metaErr error
	gone    map[string]bool
	goneErr map[string]error
}

func (p *fakePages) Extract(_ context.Context, _ string) (domain.PageMeta, error) {
	if p.metaErr != nil {
		return domain.PageMeta{}, p.metaErr
	}
	return p.meta, nil
}

func (p *fakePages) Gone(_ context.Context, url string) (bool, error) {
	if err := p.goneErr[url]; err != nil {
		return false, err
	}
	return p.gone[url], nil
}

func newBookmarkService(store *fakeBookmarkStore, cache *fakeCache, pages *fakePages) *BookmarkService {
	return NewBookmarkService(store, cache, pages, logger.New("error", false))
}

func TestBookmarkService_Create(t *testing.T) {
	store := newFakeBookmarkStore()
	cache := newFakeCache()
	pages := &fakePages{meta: domain.PageMeta{
		Title:        "Example",
		Description:  "An example page",
		ImageURL:     "https://example.com/cover.png",
		CanonicalURL: "https://example.com/canonical",
		PageType:     domain.PageTypeArticle,
	}}
	svc := newBookmarkService(store, cache, pages)

	// Pre-warm the cache to prove creation invalidates it.
	cache.entries[1] = []domain.Bookmark{}

	b, err := svc.Create(context.Background(), 1, "https://example.com/page")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if b.PageURL != "https://example.com/canonical" {
		t.Errorf("PageURL = %q, want the canonical og:url", b.PageURL)
	}
	if b.PageType != domain.PageTypeArticle {
		t.Errorf("PageType = %v, want article", b.PageType)
	}
	if b.PageTitle == nil || *b.PageTitle != "Example" {
		t.Errorf("PageTitle = %v, want Example", b.PageTitle)
	}
	if _, ok := cache.entries[1]; ok {
		t.Error("Create should have invalidated the owner's cached listing")
	}
}

func TestBookmarkService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		field string
	}{
		{name: "empty url", url: "", field: "url"},
		{name: "relative url", url: "/no/host", field: "url"},
		{name: "wrong scheme", url: "ftp://example.com/f", field: "url"},
		{name: "not a url", url: "not a url", field: "url"},
	}

	svc := newBookmarkService(newFakeBookmarkStore(), newFakeCache(), &fakePages{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tt.url)
			fe, ok := domain.AsFieldErrors(err)
			if !ok {
				t.Fatalf("Create(%q) error = %v, want FieldErrors", tt.url, err)
			}
			if len(fe[tt.field]) == 0 {
				t.Errorf("Create(%q) should report a %q field error, got %v", tt.url, tt.field, fe)
			}
		})
	}
}

func TestBookmarkService_CreatePropagatesExtractionErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "page missing", err: domain.ErrPageNotFound},
		{name: "metadata incomplete", err: domain.ErrMetadataParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeBookmarkStore()
			svc := newBookmarkService(store, newFakeCache(), &fakePages{metaErr: tt.err})

			_, err := svc.Create(context.Background(), 1, "https://example.com/x")
			if !errors.Is(err, tt.err) {
				t.Fatalf("Create error = %v, want %v", err, tt.err)
			}
			if len(store.bookmarks) != 0 {
				t.Error("nothing should be persisted when extraction fails")
			}
		})
	}
}

func TestBookmarkService_CreateFailsWhenInvalidationFails(t *testing.T) {
	cache := newFakeCache()
	cache.invErr = errors.New("redis down")
	pages := &fakePages{meta: domain.PageMeta{CanonicalURL: "https://example.com/c", PageType: domain.PageTypeWebsite}}
	svc := newBookmarkService(newFakeBookmarkStore(), cache, pages)

	if _, err := svc.Create(context.Background(), 1, "https://example.com/x"); err == nil {
		t.Fatal("Create should fail when the cache cannot be invalidated")
	}
}

func TestBookmarkService_List(t *testing.T) {
	t.Run("cache hit skips the store", func(t *testing.T) {
		store := newFakeBookmarkStore()
		cache := newFakeCache()
		cached := []domain.Bookmark{{ID: 42, UserID: 1, PageURL: "https://example.com"}}
		cache.entries[1] = cached

		svc := newBookmarkService(store, cache, &fakePages{})
		listing, err := svc.List(context.Background(), 1)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(listing) != 1 || listing[0].ID != 42 {
			t.Errorf("List = %v, want the cached listing", listing)
		}
		if store.listCalls != 0 {
			t.Errorf("store queried %d times on a cache hit, want 0", store.listCalls)
		}
	})

	t.Run("cache miss reads the store and repopulates", func(t *testing.T) {
		store := newFakeBookmarkStore()
		store.bookmarks[7] = &domain.Bookmark{ID: 7, UserID: 1, PageURL: "https://example.com"}
		cache := newFakeCache()

		svc := newBookmarkService(store, cache, &fakePages{})
		listing, err := svc.List(context.Background(), 1)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(listing) != 1 {
			t.Fatalf("List returned %d bookmarks, want 1", len(listing))
		}
		if _, ok := cache.entries[1]; !ok {
			t.Error("List should repopulate the cache after a miss")
		}
	})

	t.Run("cache read failure degrades to the store", func(t *testing.T) {
		store := newFakeBookmarkStore()
		store.bookmarks[7] = &domain.Bookmark{ID: 7, UserID: 1, PageURL: "https://example.com"}
		cache := newFakeCache()
		cache.getErr = errors.New("redis down")
		cache.setErr = errors.New("redis down")

		svc := newBookmarkService(store, cache, &fakePages{})
		listing, err := svc.List(context.Background(), 1)
		if err != nil {
			t.Fatalf("List should survive cache failures, got %v", err)
		}
		if len(listing) != 1 {
			t.Errorf("List returned %d bookmarks, want 1", len(listing))
		}
	})
}

func TestBookmarkService_UpdateInvalidatesCache(t *testing.T) {
	store := newFakeBookmarkStore()
	store.bookmarks[3] = &domain.Bookmark{ID: 3, UserID: 1, PageURL: "https://example.com", PageType: domain.PageTypeWebsite}
	cache := newFakeCache()
	cache.entries[1] = []domain.Bookmark{}

	svc := newBookmarkService(store, cache, &fakePages{})

	title := "renamed"
	pt := domain.PageTypeBook
	b, err := svc.Update(context.Background(), 1, 3, domain.BookmarkPatch{PageTitle: &title, PageType: &pt})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if b.PageTitle == nil || *b.PageTitle != "renamed" {
		t.Errorf("PageTitle = %v, want renamed", b.PageTitle)
	}
	if b.PageType != domain.PageTypeBook {
		t.Errorf("PageType = %v, want book", b.PageType)
	}
	if b.PageURL != "https://example.com" {
		t.Errorf("PageURL changed to %q, should be immutable", b.PageURL)
	}
	if _, ok := cache.entries[1]; ok {
		t.Error("Update should have invalidated the owner's cached listing")
	}
}

func TestBookmarkService_UpdateScopedToOwner(t *testing.T) {
	store := newFakeBookmarkStore()
	store.bookmarks[3] = &domain.Bookmark{ID: 3, UserID: 2, PageURL: "https://example.com"}

	svc := newBookmarkService(store, newFakeCache(), &fakePages{})
	_, err := svc.Update(context.Background(), 1, 3, domain.BookmarkPatch{})
	if !errors.Is(err, domain.ErrBookmarkNotFound) {
		t.Fatalf("Update on someone else's bookmark = %v, want ErrBookmarkNotFound", err)
	}
}

func TestBookmarkService_DeleteInvalidatesCache(t *testing.T) {
	store := newFakeBookmarkStore()
	store.bookmarks[3] = &domain.Bookmark{ID: 3, UserID: 1, PageURL: "https://example.com"}
	cache := newFakeCache()
	cache.entries[1] = []domain.Bookmark{}

	svc := newBookmarkService(store, cache, &fakePages{})
	if err := svc.Delete(context.Background(), 1, 3); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := cache.entries[1]; ok {
		t.Error("Delete should have invalidated the owner's cached listing")
	}
}

func TestBookmarkService_RevalidateAll(t *testing.T) {
	store := newFakeBookmarkStore()
	store.bookmarks[1] = &domain.Bookmark{ID: 1, UserID: 10, PageURL: "https://example.com/alive"}
	store.bookmarks[2] = &domain.Bookmark{ID: 2, UserID: 10, PageURL: "https://example.com/gone"}
	store.bookmarks[3] = &domain.Bookmark{ID: 3, UserID: 20, PageURL: "https://example.com/flaky"}

	cache := newFakeCache()
	pages := &fakePages{
		gone:    map[string]bool{"https://example.com/gone": true},
		goneErr: map[string]error{"https://example.com/flaky": errors.New("connection refused")},
	}

	svc := newBookmarkService(store, cache, pages)
	removed, err := svc.RevalidateAll(context.Background())
	if err != nil {
		t.Fatalf("RevalidateAll failed: %v", err)
	}

	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := store.bookmarks[2]; ok {
		t.Error("the 404 bookmark should have been deleted")
	}
	if _, ok := store.bookmarks[1]; !ok {
		t.Error("the live bookmark should have been kept")
	}
	if _, ok := store.bookmarks[3]; !ok {
		t.Error("a transport failure must not delete the bookmark")
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != 10 {
		t.Errorf("invalidated owners = %v, want [10]", cache.invalidated)
	}
}
