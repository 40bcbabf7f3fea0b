package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/service"
	"github.com/MrSnakeDoc/marks/internal/store/postgres"
)

// fakeCache is a map-backed stand-in for the redis listing cache.
type fakeCache struct {
	entries map[uint][]domain.Bookmark
}

func (c *fakeCache) Get(_ context.Context, ownerID uint) ([]domain.Bookmark, bool, error) {
	listing, ok := c.entries[ownerID]
	return listing, ok, nil
}

func (c *fakeCache) Set(_ context.Context, ownerID uint, listing []domain.Bookmark) error {
	c.entries[ownerID] = listing
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, ownerID uint) error {
	delete(c.entries, ownerID)
	return nil
}

// fakePages serves canned metadata instead of fetching real pages.
type fakePages struct {
	meta map[string]domain.PageMeta
	err  map[string]error
}

func (p *fakePages) Extract(_ context.Context, url string) (domain.PageMeta, error) {
	if err := p.err[url]; err != nil {
		return domain.PageMeta{}, err
	}
	meta, ok := p.meta[url]
	if !ok {
		return domain.PageMeta{}, domain.ErrPageNotFound
	}
	return meta, nil
}

func (p *fakePages) Gone(_ context.Context, url string) (bool, error) {
	_, ok := p.meta[url]
	return !ok, nil
}

func newTestRouter(t *testing.T, pages *fakePages) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := postgres.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	log := logger.New("error", false)
	cache := &fakeCache{entries: make(map[uint][]domain.Bookmark)}

	bookmarks := service.NewBookmarkService(postgres.NewBookmarkRepo(db), cache, pages, log)
	users := service.NewUserService(postgres.NewUserRepo(db), postgres.NewTokenRepo(db), 4, log)

	d := deps.Deps{
		Logger:    log,
		StartTime: time.Now(),
		TimeNow:   time.Now,
		DB:        db,
		Bookmarks: bookmarks,
		Users:     users,
	}

	r := chi.NewRouter()
	RegisterAll(r, d)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"s3cret"}`, username, username)
	rec := doJSON(t, h, http.MethodPost, "/api/users/registration", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out.AccessToken == "" {
		t.Fatalf("registration did not return a token: %s", rec.Body.String())
	}
	return out.AccessToken
}

func examplePages() *fakePages {
	return &fakePages{
		meta: map[string]domain.PageMeta{
			"https://example.com/article": {
				Title:        "An Article",
				Description:  "Worth reading",
				ImageURL:     "https://example.com/cover.png",
				CanonicalURL: "https://example.com/article",
				PageType:     domain.PageTypeArticle,
			},
		},
		err: map[string]error{
			"https://example.com/broken": domain.ErrMetadataParse,
		},
	}
}

func TestUserEndpoints(t *testing.T) {
	h := newTestRouter(t, examplePages())

	t.Run("registration rejects duplicates", func(t *testing.T) {
		registerUser(t, h, "alice")
		body := `{"username":"alice","email":"other@example.com","password":"x"}`
		rec := doJSON(t, h, http.MethodPost, "/api/users/registration", "", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var fe map[string][]string
		if err := json.Unmarshal(rec.Body.Bytes(), &fe); err != nil || len(fe["username"]) == 0 {
			t.Errorf("body = %s, want a username field error", rec.Body.String())
		}
	})

	t.Run("login returns the token", func(t *testing.T) {
		registerUser(t, h, "bob")
		rec := doJSON(t, h, http.MethodPost, "/api/users/login", "", `{"username":"bob","password":"s3cret"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("login with bad password", func(t *testing.T) {
		registerUser(t, h, "carol")
		rec := doJSON(t, h, http.MethodPost, "/api/users/login", "", `{"username":"carol","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("profile requires a token", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/users/", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("profile roundtrip and patch", func(t *testing.T) {
		token := registerUser(t, h, "dave")

		rec := doJSON(t, h, http.MethodGet, "/api/users/", token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("profile status = %d, body %s", rec.Code, rec.Body.String())
		}

		rec = doJSON(t, h, http.MethodPatch, "/api/users/", token, `{"first_name":"Dave"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body.String())
		}
		var u domain.User
		if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil || u.FirstName != "Dave" {
			t.Errorf("patched profile = %s, want first_name Dave", rec.Body.String())
		}
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		token := registerUser(t, h, "erin")

		rec := doJSON(t, h, http.MethodPost, "/api/users/logout", token, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("logout status = %d, want 204", rec.Code)
		}

		rec = doJSON(t, h, http.MethodGet, "/api/users/", token, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status after logout = %d, want 401", rec.Code)
		}
	})
}

func TestBookmarkEndpoints(t *testing.T) {
	h := newTestRouter(t, examplePages())
	token := registerUser(t, h, "alice")

	t.Run("create", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/bookmarks/", token, `{"url":"https://example.com/article"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var b domain.Bookmark
		if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if b.PageType != domain.PageTypeArticle {
			t.Errorf("page_type = %v, want article", b.PageType)
		}
		if b.PageTitle == nil || *b.PageTitle != "An Article" {
			t.Errorf("page_title = %v, want An Article", b.PageTitle)
		}
	})

	t.Run("create with missing page", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/bookmarks/", token, `{"url":"https://example.com/missing"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("create with unparseable page", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/bookmarks/", token, `{"url":"https://example.com/broken"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("create with invalid url", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/bookmarks/", token, `{"url":"not a url"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/bookmarks/", token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var listing []domain.Bookmark
		if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if len(listing) != 1 {
			t.Errorf("listing has %d bookmarks, want 1", len(listing))
		}
	})

	t.Run("patch page_type case-insensitively", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, "/api/bookmarks/1/", token, `{"page_type":"BOOK"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var b domain.Bookmark
		if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil || b.PageType != domain.PageTypeBook {
			t.Errorf("page_type = %s, want book", rec.Body.String())
		}
	})

	t.Run("patch rejects an unknown page_type", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, "/api/bookmarks/1/", token, `{"page_type":"podcast"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("cross-owner access looks like a missing record", func(t *testing.T) {
		other := registerUser(t, h, "mallory")
		for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
			rec := doJSON(t, h, method, "/api/bookmarks/1/", other, `{}`)
			if rec.Code != http.StatusNotFound {
				t.Errorf("%s as non-owner: status = %d, want 404", method, rec.Code)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodDelete, "/api/bookmarks/1/", token, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		rec = doJSON(t, h, http.MethodGet, "/api/bookmarks/1/", token, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status after delete = %d, want 404", rec.Code)
		}
	})

	t.Run("unauthenticated requests are rejected", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/bookmarks/", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestProbeEndpoints(t *testing.T) {
	h := newTestRouter(t, examplePages())

	rec := doJSON(t, h, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, body %s", rec.Code, rec.Body.String())
	}
}
