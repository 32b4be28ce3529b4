package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/parkhub/parkhub-server/infrastructure/logging"
)

func TestLoggingMiddleware_SetsTraceHeaderAndContext(t *testing.T) {
	logger := logging.New("test", "info", "json")

	var gotTraceID string
	router := mux.NewRouter()
	router.Use(LoggingMiddleware(logger))
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		gotTraceID = logging.GetTraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Trace-ID") == "" {
		t.Error("response should carry an X-Trace-ID header")
	}
	if gotTraceID == "" {
		t.Error("handler should observe a trace ID via the request context")
	}
	if rec.Header().Get("X-Trace-ID") != gotTraceID {
		t.Errorf("response trace ID %q does not match context trace ID %q", rec.Header().Get("X-Trace-ID"), gotTraceID)
	}
}

func TestLoggingMiddleware_PreservesIncomingTraceID(t *testing.T) {
	logger := logging.New("test", "info", "json")

	router := mux.NewRouter()
	router.Use(LoggingMiddleware(logger))
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "caller-supplied-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Trace-ID"); got != "caller-supplied-id" {
		t.Errorf("X-Trace-ID = %q, want %q", got, "caller-supplied-id")
	}
}
