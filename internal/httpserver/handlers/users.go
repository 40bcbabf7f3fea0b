package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
	"github.com/MrSnakeDoc/marks/internal/service"
)

type registrationRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       uint   `json:"age"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type userPatchRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Age       *uint   `json:"age"`
}

// Registration creates an account and hands back its access token.
func Registration(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registrationRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		key, err := d.Users.Register(r.Context(), service.RegisterInput{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Age:       req.Age,
			Password:  req.Password,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: key})
	}
}

// Login exchanges credentials for the account's access token.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		key, err := d.Users.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: key})
	}
}

// Logout revokes the caller's access token.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := mw.UserFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNoToken)
			return
		}

		if err := d.Users.Logout(r.Context(), u.ID); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Profile returns the caller's own account.
func Profile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := mw.UserFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNoToken)
			return
		}

		out, err := d.Users.Profile(r.Context(), u.ID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// PatchProfile applies a partial update to the caller's own account.
func PatchProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := mw.UserFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNoToken)
			return
		}

		var req userPatchRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := d.Users.UpdateProfile(r.Context(), u.ID, domain.UserPatch{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Age:       req.Age,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DeleteAccount removes the caller's account along with its bookmarks
// and token.
func DeleteAccount(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := mw.UserFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNoToken)
			return
		}

		if err := d.Users.DeleteAccount(r.Context(), u.ID); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
