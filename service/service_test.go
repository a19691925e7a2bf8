package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakeLauncher struct {
	mu   sync.Mutex
	jobs []string
}

func (l *fakeLauncher) Launch(jobID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs = append(l.jobs, jobID)
}

func (l *fakeLauncher) launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.jobs...)
}

func newTestServer() (Server, *fakeLauncher) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	launcher := &fakeLauncher{}
	return Server{Logger: logger, Launcher: launcher}, launcher
}

func TestTranscodeAccepted(t *testing.T) {
	srv, launcher := newTestServer()
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/transcode",
		strings.NewReader(`{"videoId":"abc123"}`)))

	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", w.Code, http.StatusAccepted)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
	if body := w.Body.String(); !strings.Contains(body, "abc123") {
		t.Errorf("acknowledgment %q should mention the job id", body)
	}
	if got := launcher.launched(); len(got) != 1 || got[0] != "abc123" {
		t.Errorf("launched jobs = %v, want [abc123]", got)
	}
}

func TestTranscodeMissingVideoID(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"empty object", "{}"},
		{"blank id", `{"videoId":"  "}`},
		{"malformed json", `{"videoId":`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv, launcher := newTestServer()
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/transcode",
				strings.NewReader(test.body)))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if body := w.Body.String(); body != `{"error":"videoId is required"}` {
				t.Errorf("body = %q, want %q", body, `{"error":"videoId is required"}`)
			}
			if got := launcher.launched(); len(got) != 0 {
				t.Errorf("no job should be launched, got %v", got)
			}
		})
	}
}

func TestLiveness(t *testing.T) {
	for _, path := range []string{"/", "/healthcheck"} {
		srv, _ := newTestServer()
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusOK)
		}
		if w.Body.Len() == 0 {
			t.Errorf("GET %s should return a confirmation body", path)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer()
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcode", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestUnknownPath(t *testing.T) {
	srv, _ := newTestServer()
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/123", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
