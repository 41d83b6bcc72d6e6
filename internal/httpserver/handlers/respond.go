package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartbookmark/bookmarkd/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
// Persistence errors keep the backend's message so the client can show
// it inline.
func writeError(w http.ResponseWriter, err error) {
	var (
		authErr *domain.AuthError
		valErr  *domain.ValidationError
		perErr  *domain.PersistenceError
	)

	switch {
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: valErr.Error()})
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrNotFound.Error()})
	case errors.As(err, &perErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: perErr.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
