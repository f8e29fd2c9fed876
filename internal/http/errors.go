package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
)

type errorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail"`
	RequestID string `json:"requestId,omitempty"`
}

// writeError maps the domain error taxonomy to HTTP. Unclassified errors
// come from collaborators and surface as 500 without translation.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetReqID(r.Context())

	var code int
	var kind string
	switch {
	case errors.Is(err, domain.ErrValidation):
		code, kind = http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		code, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrNoCapacity):
		code, kind = http.StatusConflict, "no_capacity"
	case errors.Is(err, domain.ErrOutsideServiceWindow):
		code, kind = http.StatusUnprocessableEntity, "outside_service_window"
	case errors.Is(err, domain.ErrSerializationFailure):
		code, kind = http.StatusConflict, "conflict"
	default:
		code, kind = http.StatusInternalServerError, "internal_server_error"
	}

	if code >= http.StatusInternalServerError {
		RequestLogger(r.Context(), h.logger).WithFields(map[string]interface{}{
			"request_id": reqID,
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Error("request failed", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorResponse{Error: kind, Detail: err.Error(), RequestID: reqID})
}
