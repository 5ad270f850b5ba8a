package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteErrorJSONForHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/suggestions", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()

	WriteError(rr, req, NewError("submission_failed", "失敗\nしました", http.StatusServiceUnavailable))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["error"] != "submission_failed" || payload["message"] != "失敗 しました" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestWriteErrorHTMLEscapes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, NewError("bad", "<script>", 0))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected default 500, got %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected html content type")
	}
	if strings.Contains(rr.Body.String(), "<script>") {
		t.Fatalf("message must be escaped")
	}
}

func TestSanitizeKeepsRunes(t *testing.T) {
	if got := sanitize("あいうえお", 3); got != "あいう" {
		t.Fatalf("unexpected %q", got)
	}
}
