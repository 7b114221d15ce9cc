package kit

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the error body of every service. Error is a stable
// machine-readable reason; Message, when present, is safe to show to a
// shopper as is.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, details any) {
	writeError(w, r, status, ErrorResponse{Error: msg, Details: details})
}

// WriteUserError answers with a reason plus a message meant for the shopper.
func WriteUserError(w http.ResponseWriter, r *http.Request, status int, msg, userMsg string) {
	writeError(w, r, status, ErrorResponse{Error: msg, Message: userMsg})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, e ErrorResponse) {
	e.RequestID = chimw.GetReqID(r.Context())
	if status == http.StatusServiceUnavailable && w.Header().Get("Retry-After") == "" {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, status, e)
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
