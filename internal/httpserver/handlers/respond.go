package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors to their HTTP shape. Validation errors
// render as a field-keyed map, everything else as {"detail": ...}.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	if fe, ok := domain.AsFieldErrors(err); ok {
		writeJSON(w, http.StatusBadRequest, fe)
		return
	}

	switch {
	case errors.Is(err, domain.ErrPageNotFound):
		writeJSON(w, http.StatusNotFound, detailResponse{Detail: "Page not found."})
	case errors.Is(err, domain.ErrBookmarkNotFound):
		writeJSON(w, http.StatusNotFound, detailResponse{Detail: "Not found."})
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, detailResponse{Detail: "Not found."})
	case errors.Is(err, domain.ErrMetadataParse):
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: "Could not extract page metadata."})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, detailResponse{Detail: "Unable to log in with provided credentials."})
	case errors.Is(err, domain.ErrNoToken):
		writeJSON(w, http.StatusUnauthorized, detailResponse{Detail: "Invalid token."})
	default:
		log.Error("request failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, detailResponse{Detail: "Internal server error."})
	}
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.FieldErrors{"non_field_errors": {"Invalid JSON body."}}
	}
	return nil
}
