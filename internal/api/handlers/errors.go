package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/blog-backend/internal/api/httpx"
	"github.com/baharkarakas/blog-backend/internal/middleware"
)

// writeErr renders err and logs server-side failures with the request id.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := httpx.WriteAppError(w, err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.RequestIDFrom(r.Context()),
			"route", r.URL.Path,
			"err", err,
		)
	}
}

type messageResp struct {
	Message string `json:"message"`
}
