package domain

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors for the failure modes the HTTP surface has to tell apart.
var (
	// ErrPageNotFound is returned when the target page answers 404.
	ErrPageNotFound = errors.New("target page not found")

	// ErrMetadataParse is returned when the required Open Graph tags
	// cannot be extracted, for whatever reason.
	ErrMetadataParse = errors.New("could not extract page metadata")

	// ErrBookmarkNotFound covers both a missing record and a record
	// owned by someone else. Callers cannot tell the two apart.
	ErrBookmarkNotFound = errors.New("bookmark not found")

	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNoToken is returned when a request carries no valid access token.
	ErrNoToken = errors.New("missing or invalid access token")
)

// FieldErrors maps a field name to its validation messages.
// It renders as a 400 response body keyed by field.
type FieldErrors map[string][]string

// Add appends a message for field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsFieldErrors unwraps err into FieldErrors if it is one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
