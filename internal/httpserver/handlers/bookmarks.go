package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
)

type createBookmarkRequest struct {
	URL string `json:"url"`
}

type bookmarkPatchRequest struct {
	PageTitle   *string `json:"page_title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	PageType    *string `json:"page_type"`
}

// ListBookmarks returns the authenticated user's bookmarks, newest first.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := mw.UserFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNoToken)
			return
		}

		listing, err := d.Bookmarks.List(r.Context(), u.ID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if listing == nil {
			listing = []domain.Bookmark{}
		}
		writeJSON(w, http.StatusOK, listing)
	}
}

// CreateBookmark saves the submitted URL after extracting its metadata.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := mw.UserFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNoToken)
			return
		}

		var req createBookmarkRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		b, err := d.Bookmarks.Create(r.Context(), u.ID, req.URL)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

// GetBookmark returns one of the authenticated user's bookmarks.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := mw.UserFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNoToken)
			return
		}

		id, err := bookmarkID(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		b, err := d.Bookmarks.Get(r.Context(), u.ID, id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// PatchBookmark applies a partial update to an owned bookmark.
func PatchBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := mw.UserFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNoToken)
			return
		}

		id, err := bookmarkID(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		var req bookmarkPatchRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		patch := domain.BookmarkPatch{
			PageTitle:   req.PageTitle,
			Description: req.Description,
			ImageURL:    req.ImageURL,
		}
		if req.PageType != nil {
			pt, ok := domain.ParsePageType(*req.PageType)
			if !ok {
				writeError(w, d.Logger, domain.FieldErrors{
					"page_type": {fmt.Sprintf("%q is not a valid choice.", *req.PageType)},
				})
				return
			}
			patch.PageType = &pt
		}

		b, err := d.Bookmarks.Update(r.Context(), u.ID, id, patch)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// DeleteBookmark removes one of the authenticated user's bookmarks.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := mw.UserFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNoToken)
			return
		}

		id, err := bookmarkID(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		if err := d.Bookmarks.Delete(r.Context(), u.ID, id); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// bookmarkID parses the {id} route param. A non-numeric id behaves like
// a missing record.
func bookmarkID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, domain.ErrBookmarkNotFound
	}
	return uint(id), nil
}
