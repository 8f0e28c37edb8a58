package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"bizdesk/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// apiResponse is the success envelope shared with the REST backend.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, apiResponse{Success: true, Data: data})
}

// errInternal marks a failure inside this server, such as rendering an
// export, as opposed to one reported by the row source.
var errInternal = errors.New("internal error")

// classify maps a service error to an HTTP status, an error code and a message
// that is safe to show. Errors marked errInternal are reported as 500. Other
// unknown errors come from the row source and are reported as 502. Both are
// logged.
func classify(r *http.Request, err error) (int, string, string) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHORIZED", "authentication required"
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "you do not have access to this"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest, "BAD_REQUEST", err.Error()
	}
	log.Printf("request %s: %v", requestIDFromContext(r.Context()), err)
	if errors.Is(err, errInternal) {
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
	return http.StatusBadGateway, "UPSTREAM_ERROR", "the data service could not be reached"
}

// writeServiceError writes err as a JSON error response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(r, err)
	writeError(w, r, msg, code, status)
}

// renderServiceError writes err as an HTML error page, sending
// unauthenticated browsers back to the login page.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, _, msg := classify(r, err)
	if status == http.StatusUnauthorized {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	renderHTML(w, status, errorPage(http.StatusText(status), msg))
}
