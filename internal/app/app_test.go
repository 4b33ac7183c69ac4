package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spec-kit/duty-attendance/internal/auth"
	"github.com/spec-kit/duty-attendance/internal/config"
	"github.com/spec-kit/duty-attendance/internal/persistence"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API:     config.APIConfig{BaseURL: baseURL, RequestTimeoutSeconds: 5},
		Session: config.SessionConfig{Backend: config.SessionBackendMemory},
	}
}

func TestNewWiresLoggedOutSession(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	a, err := New(testConfig(srv.URL), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if _, ok := a.Store.(*persistence.MemoryStore); !ok {
		t.Fatalf("store = %T, want memory", a.Store)
	}
	a.Sessions.Initialize(context.Background())
	if verdict, _ := a.Sessions.Admit(""); verdict != auth.RedirectLogin {
		t.Fatalf("verdict = %v, want redirect to login", verdict)
	}
}

func TestNewSessionStoreBackends(t *testing.T) {
	cfg := testConfig("https://example.test/")
	cfg.Session.Backend = config.SessionBackendFile
	cfg.Session.FilePath = filepath.Join(t.TempDir(), "session.json")

	store, redis, err := NewSessionStore(cfg, nil)
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	if redis != nil {
		t.Fatal("file backend should not open redis")
	}
	if fs, ok := store.(*persistence.FileStore); !ok || fs.Path() != cfg.Session.FilePath {
		t.Fatalf("store = %#v", store)
	}

	cfg.Session.Backend = "sqlite"
	if _, _, err := NewSessionStore(cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	if _, err := New(testConfig("::"), nil, Options{}); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}
