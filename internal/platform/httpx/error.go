package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/akitas-arrow/child-name/internal/platform/requestctx"
)

// Error is the error envelope written to clients. Message is always safe to show a user.
type Error struct {
	Code      string
	Message   string
	Status    int
	RequestID string
	TraceID   string
	Details   map[string]any
}

// NewError constructs a new Error with the provided parameters.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    sanitize(code, 80),
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// Internal is the generic failure shown when nothing more specific is safe to say.
func Internal() Error {
	return NewError("internal_server_error", "エラーが発生しました。時間をおいて再度お試しください。", http.StatusInternalServerError)
}

// WithDetails attaches additional JSON-serialisable metadata.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	copyDetails := make(map[string]any, len(details))
	for k, v := range details {
		copyDetails[k] = v
	}
	e.Details = copyDetails
	return e
}

// WantsJSON reports whether the client expects a JSON body: HTMX requests and explicit
// JSON Accept headers.
func WantsJSON(r *http.Request) bool {
	if r == nil {
		return false
	}
	if strings.EqualFold(r.Header.Get("HX-Request"), "true") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// WriteError writes err as JSON for HTMX/JSON clients and as a small HTML page otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, err Error) {
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	if WantsJSON(r) {
		WriteJSONError(ctx, w, err)
		return
	}
	writeHTMLError(w, err)
}

// WriteJSONError writes the structured error as JSON.
func WriteJSONError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := statusOf(err)

	requestID := err.RequestID
	if requestID == "" {
		requestID = sanitize(middleware.GetReqID(ctx), 80)
	}
	traceID := err.TraceID
	if traceID == "" {
		traceID = sanitize(requestctx.TraceID(ctx), 64)
	}

	payload := map[string]any{
		"error":   err.Code,
		"message": err.Message,
		"status":  status,
	}
	if requestID != "" {
		payload["request_id"] = requestID
	}
	if traceID != "" {
		payload["trace_id"] = traceID
	}
	for k, v := range err.Details {
		payload[k] = v
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeHTMLError(w http.ResponseWriter, err Error) {
	status := statusOf(err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html><html lang="ja"><head><meta charset="utf-8"><title>%d</title></head><body><main class="error"><p class="error-message">%s</p><p><a href="/">トップへ戻る</a></p></main></body></html>`,
		status, html.EscapeString(err.Message))
}

func statusOf(err Error) int {
	if err.Status == 0 {
		return http.StatusInternalServerError
	}
	return err.Status
}

func sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if runes := []rune(value); len(runes) > limit {
		value = string(runes[:limit])
	}
	return value
}
