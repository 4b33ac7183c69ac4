package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/spec-kit/duty-attendance/internal/config"
	"github.com/spec-kit/duty-attendance/internal/events"
	"github.com/spec-kit/duty-attendance/internal/gateway"
	"github.com/spec-kit/duty-attendance/internal/persistence"
)

type harness struct {
	server     *httptest.Server
	store      persistence.SessionStore
	dispatcher events.Dispatcher
	sessions   *SessionManager
	gateway    *gateway.Gateway

	invalidations atomic.Int32
}

func newHarness(t *testing.T, handler http.Handler, store persistence.SessionStore) *harness {
	t.Helper()
	if store == nil {
		store = persistence.NewMemoryStore()
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	transport, err := gateway.NewTransport(config.APIConfig{BaseURL: server.URL, RequestTimeoutSeconds: 5}, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}

	h := &harness{
		server:     server,
		store:      store,
		dispatcher: events.NewInMemoryDispatcher(),
	}
	h.dispatcher.Subscribe(events.EventSessionInvalidated, func(context.Context, events.Event) error {
		h.invalidations.Add(1)
		return nil
	})
	h.sessions = NewSessionManager(SessionDependencies{
		Issuer:     gateway.NewAuthAPI(transport),
		Store:      store,
		Dispatcher: h.dispatcher,
	})
	h.gateway = gateway.New(transport, store, h.sessions, nil, nil)
	return h
}

func (h *harness) seed(t *testing.T, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	if access != "" {
		if err := h.store.Set(ctx, persistence.AccessTokenSlot, access); err != nil {
			t.Fatalf("seed access: %v", err)
		}
	}
	if refresh != "" {
		if err := h.store.Set(ctx, persistence.RefreshTokenSlot, refresh); err != nil {
			t.Fatalf("seed refresh: %v", err)
		}
	}
}

func (h *harness) slot(t *testing.T, slot persistence.Slot) string {
	t.Helper()
	value, err := h.store.Get(context.Background(), slot)
	if err != nil {
		t.Fatalf("read %s: %v", slot, err)
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// counted wraps h and counts calls into n.
func counted(n *atomic.Int32, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		h(w, r)
	}
}
