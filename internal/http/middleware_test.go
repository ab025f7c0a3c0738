package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("issues a request id and logs completion", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		var sawLogger bool
		handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawLogger = LoggerFromContext(r.Context()) != nil
			w.WriteHeader(http.StatusCreated)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/workshops", nil))

		if !sawLogger {
			t.Fatalf("expected request-scoped logger in context")
		}
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Fatalf("expected %s header", RequestIDHeader)
		}
		out := buf.String()
		for _, want := range []string{`"msg":"request started"`, `"msg":"request completed"`, `"status":201`, `"path":"/workshops"`} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected log output to contain %s, got %s", want, out)
			}
		}
	})

	t.Run("reuses an incoming request id", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		handler := RequestLogger(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
			t.Fatalf("expected request id to be echoed, got %q", got)
		}
		if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
			t.Fatalf("expected request id in logs, got %s", buf.String())
		}
	})
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/library", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "handler panicked") {
		t.Fatalf("expected panic to be logged, got %s", buf.String())
	}
}
