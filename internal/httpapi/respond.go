package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrEthical07/authcore"
)

type errorResponse struct {
	Error string `json:"error"`
}

const internalErrorMessage = "internal error"

// statusFor maps an engine error to its HTTP status. The order matters:
// ErrWeakPassword also matches ErrValidation.
func statusFor(err error) int {
	switch {
	case errors.Is(err, authcore.ErrValidation),
		errors.Is(err, authcore.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, authcore.ErrUnauthorized),
		errors.Is(err, authcore.ErrInvalidCredentials),
		errors.Is(err, authcore.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, authcore.ErrAccountInactive),
		errors.Is(err, authcore.ErrAccountLocked),
		errors.Is(err, authcore.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, authcore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, authcore.ErrAccountExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		writeError(w, status, internalErrorMessage)
		return
	}
	writeError(w, status, err.Error())
}

// decode reads a JSON body into dst. On failure it has already written the
// 400 response.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
