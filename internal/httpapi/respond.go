package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nyka2002/nekretnine-search/internal/errkind"
	"github.com/nyka2002/nekretnine-search/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("httpapi: failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var kerr *errkind.Error
	if errors.As(err, &kerr) {
		writeJSON(w, statusForKind(kerr.Kind), errorResponse{Error: kerr.Error(), Kind: string(kerr.Kind)})
		return
	}
	logger.Error("httpapi: unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// statusForKind maps the error-kind taxonomy onto HTTP status codes.
func statusForKind(k errkind.Kind) int {
	switch k {
	case errkind.RateLimited:
		return http.StatusTooManyRequests
	case errkind.InvalidFilters, errkind.InvalidResponse:
		return http.StatusBadRequest
	case errkind.NoResults, errkind.NoEmbedding:
		return http.StatusOK
	case errkind.DatabaseError, errkind.NotConfigured:
		return http.StatusServiceUnavailable
	case errkind.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
