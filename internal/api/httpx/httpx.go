package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baharkarakas/blog-backend/internal/models"
)

// maxBodyBytes bounds request bodies; post content tops out well below it.
const maxBodyBytes = 1 << 20

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details any) {
	WriteJSON(w, status, APIError{
		Message: msg,
		Code:    code,
		Details: details,
	})
}

func StatusFor(code string) int {
	switch code {
	case models.CodeConflict, models.CodeBadPassword, models.CodeInvalidToken, models.CodeValidation:
		return http.StatusBadRequest
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeUnauthorized:
		return http.StatusUnauthorized
	case models.CodeForbidden:
		return http.StatusForbidden
	case models.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError writes err as an APIError and returns the status used.
// Errors that are not *models.AppError are reported as internal errors.
func WriteAppError(w http.ResponseWriter, err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	status := StatusFor(appErr.Code)

	var details any
	if appErr.Code == models.CodeInternal && appErr.Err != nil {
		details = appErr.Err.Error()
	}
	WriteError(w, status, appErr.Code, appErr.Message, details)
	return status
}

// DecodeJSON reads a single JSON object into dst. Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return models.NewValidationError("malformed JSON body")
	}
	return nil
}
