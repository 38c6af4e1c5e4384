package backend

import (
	"fmt"
	"net/http"

	"kanban_board/internal/domain"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}

// Unwrap exposes the domain sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	if err := domain.ErrorForCode(e.Code); err != nil {
		return err
	}
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	}
	return nil
}
