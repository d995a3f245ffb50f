package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"monthgroup/internal/core"
	"monthgroup/internal/jobs"
	"monthgroup/internal/log"
	"monthgroup/internal/services"
	"monthgroup/internal/storage"
)

const (
	kindValidation  = string(core.KindValidation)
	kindRuntime     = string(core.KindRuntime)
	kindNotFound    = "not_found"
	kindUnavailable = "unavailable"
	kindInternal    = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// badRequest marks client input that could not be decoded.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status and kind.
func statusFor(err error) (int, string) {
	var br badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest, kindValidation
	case core.KindOf(err) == core.KindValidation:
		return http.StatusBadRequest, kindValidation
	case core.KindOf(err) == core.KindRuntime:
		return http.StatusUnprocessableEntity, kindRuntime
	case errors.Is(err, jobs.ErrJobNotFound), errors.Is(err, storage.ErrRunNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, services.ErrNoPublisher):
		return http.StatusServiceUnavailable, kindUnavailable
	default:
		return http.StatusInternalServerError, kindInternal
	}
}

// writeError sends the mapped status with the bare error message. Internal
// errors are logged and their detail hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	msg := core.Message(err)
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
