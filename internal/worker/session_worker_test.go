package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/auth/authtest"
	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/persistence"
	"github.com/spec-kit/duty-attendance/internal/service"
)

type fakeIssuer struct {
	refreshes atomic.Int32
	access    string
}

func (f *fakeIssuer) Login(context.Context, string, string) (domain.TokenPair, error) {
	return domain.TokenPair{}, errors.New("not used")
}

func (f *fakeIssuer) Refresh(context.Context, string) (string, error) {
	f.refreshes.Add(1)
	return f.access, nil
}

func newKeptSession(t *testing.T, expiresIn time.Duration) (*service.SessionManager, *fakeIssuer, persistence.SessionStore) {
	t.Helper()
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	access := authtest.MintToken(t, "3", "tina", domain.RoleTeacher, time.Now().Add(expiresIn))
	if err := store.Set(ctx, persistence.AccessTokenSlot, access); err != nil {
		t.Fatalf("seed access: %v", err)
	}
	if err := store.Set(ctx, persistence.RefreshTokenSlot, "refresh-3"); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}

	issuer := &fakeIssuer{access: authtest.Valid(t, "tina", domain.RoleTeacher)}
	sessions := service.NewSessionManager(service.SessionDependencies{Issuer: issuer, Store: store})
	sessions.Initialize(ctx)
	return sessions, issuer, store
}

func TestKeepAliveRefreshesNearExpiry(t *testing.T) {
	sessions, issuer, store := newKeptSession(t, 30*time.Second)

	keepAlive(context.Background(), sessions, time.Minute, zap.NewNop())

	if issuer.refreshes.Load() != 1 {
		t.Fatalf("refreshes = %d, want 1", issuer.refreshes.Load())
	}
	access, _ := store.Get(context.Background(), persistence.AccessTokenSlot)
	if access != issuer.access {
		t.Fatal("access slot should hold the refreshed token")
	}
}

func TestKeepAliveLeavesFreshTokens(t *testing.T) {
	sessions, issuer, _ := newKeptSession(t, 2*time.Hour)

	keepAlive(context.Background(), sessions, time.Minute, zap.NewNop())

	if issuer.refreshes.Load() != 0 {
		t.Fatalf("refreshes = %d, want 0", issuer.refreshes.Load())
	}
}

func TestStartSessionKeeperDisabled(t *testing.T) {
	sessions, issuer, _ := newKeptSession(t, 30*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartSessionKeeper(ctx, sessions, 0, time.Minute, nil)
	time.Sleep(20 * time.Millisecond)

	if issuer.refreshes.Load() != 0 {
		t.Fatalf("refreshes = %d, want 0 with keep-alive disabled", issuer.refreshes.Load())
	}
}
