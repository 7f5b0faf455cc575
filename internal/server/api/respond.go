// Package api implements the JSON handlers behind /api.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/ayusman/heroswap/internal/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code errors.Code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: string(code)})
}

// writeAppError writes err with the status its code maps to. Errors without a
// code are logged and reported as internal.
func writeAppError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := errors.GetCode(err)
	if code == "" {
		logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Something went wrong.")
		return
	}
	writeError(w, StatusFor(code), code, errors.UserMessage(err))
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeBusy:
		return http.StatusConflict
	case errors.ErrCodeAssetLoad, errors.ErrCodeNoFace, errors.ErrCodeMissingLandmarks,
		errors.ErrCodeInvalidLandmarks, errors.ErrCodeInvalidCropBounds:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotReady, errors.ErrCodeDetectorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
