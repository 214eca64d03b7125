package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/internal/universe"
)

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondDomainError maps a pipeline error onto an HTTP status
func respondDomainError(w http.ResponseWriter, err error) {
	var ve contracts.ValidationError

	switch {
	case errors.Is(err, contracts.ErrInvalidAssumptions), errors.As(err, &ve), errors.Is(err, universe.ErrUnknownUniverse):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contracts.ErrDataUnavailable):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, contracts.ErrInsufficientData):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
