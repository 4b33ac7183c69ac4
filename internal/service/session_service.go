package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/duty-attendance/internal/auth"
	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/events"
	"github.com/spec-kit/duty-attendance/internal/observability"
	"github.com/spec-kit/duty-attendance/internal/persistence"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// Phase is where the session is in its lifecycle.
type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhaseAuthenticating
	PhaseAuthenticated
	PhaseRefreshingToken
)

func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseRefreshingToken:
		return "refreshing_token"
	default:
		return "unknown"
	}
}

// SessionState is a consistent snapshot of the session.
type SessionState struct {
	User    *domain.Identity
	Loading bool
	Phase   Phase
}

// TokenIssuer talks to the backend's token endpoints.
type TokenIssuer interface {
	Login(ctx context.Context, username, password string) (domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// SessionManager owns the token pair and the identity derived from it.
// It is the only writer of the persisted slots.
type SessionManager struct {
	issuer     TokenIssuer
	codec      *auth.TokenCodec
	store      persistence.SessionStore
	dispatcher events.Dispatcher
	metrics    observability.Recorder
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.RWMutex
	user    *domain.Identity
	loading bool
	phase   Phase

	// sessionMu serializes slot writes with the identity they belong to.
	// generation advances on every login and logout; a refresh that sees
	// it change has outlived its session and must not write.
	sessionMu  sync.Mutex
	generation uint64

	initOnce  sync.Once
	refreshes singleflight.Group
}

// SessionDependencies bundles collaborators of the session manager.
type SessionDependencies struct {
	Issuer     TokenIssuer
	Codec      *auth.TokenCodec
	Store      persistence.SessionStore
	Dispatcher events.Dispatcher
	Metrics    observability.Recorder
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewSessionManager creates a manager in the loading state. Call
// Initialize before reading State.
func NewSessionManager(deps SessionDependencies) *SessionManager {
	codec := deps.Codec
	if codec == nil {
		codec = auth.NewTokenCodec()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		issuer:     deps.Issuer,
		codec:      codec,
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        now,
		loading:    true,
		phase:      PhaseUnauthenticated,
	}
}

// Initialize restores the session from the store. It runs once; later
// calls return immediately. An expired access token is refreshed exactly
// once and the session is cleared if that fails.
func (m *SessionManager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		m.initialize(ctx)
	})
}

func (m *SessionManager) initialize(ctx context.Context) {
	defer m.finishLoading()

	gen := m.currentGeneration()
	access, err := m.store.Get(ctx, persistence.AccessTokenSlot)
	if err != nil {
		m.logger.Warn("read persisted session", zap.Error(err))
		return
	}
	if access == "" {
		return
	}

	identity, err := m.codec.Decode(access)
	if err != nil {
		m.logger.Info("discarding undecodable access token", zap.Error(err))
		m.Logout(ctx)
		return
	}

	if identity.Expired(m.now()) {
		m.logger.Debug("persisted access token expired, refreshing", zap.String("username", identity.Username))
		// On failure the refresh path has already logged out.
		_, _ = m.RefreshAccess(ctx, access)
		return
	}

	m.sessionMu.Lock()
	if m.generation == gen {
		m.setUser(&identity)
	}
	m.sessionMu.Unlock()
}

func (m *SessionManager) finishLoading() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
}

// Login exchanges credentials for a token pair. On success both tokens are
// persisted and the identity is set; on any failure the session is left as
// it was and false is returned.
func (m *SessionManager) Login(ctx context.Context, username, password string) bool {
	previous := m.swapPhase(PhaseAuthenticating)

	pair, err := m.issuer.Login(ctx, username, password)
	if err != nil {
		m.logger.Info("login rejected", zap.String("username", username), zap.Error(err))
		m.swapPhase(previous)
		return false
	}

	identity, err := m.codec.Decode(pair.Access)
	if err != nil {
		m.logger.Warn("login returned undecodable access token", zap.String("username", username), zap.Error(err))
		m.swapPhase(previous)
		return false
	}

	m.sessionMu.Lock()
	err = m.persistPair(ctx, pair)
	if err == nil {
		m.generation++
		m.setUser(&identity)
	}
	m.sessionMu.Unlock()
	if err != nil {
		m.logger.Error("persist session", zap.String("username", username), zap.Error(err))
		m.swapPhase(previous)
		return false
	}

	m.logger.Info("logged in", zap.String("username", identity.Username), zap.String("role", string(identity.Role)))
	m.publish(ctx, events.EventSessionEstablished, identity.Username, events.SessionPayload{Role: identity.Role})
	return true
}

// persistPair writes both slots, putting the previous values back if either
// write fails. Callers hold sessionMu.
func (m *SessionManager) persistPair(ctx context.Context, pair domain.TokenPair) error {
	prevAccess, err := m.store.Get(ctx, persistence.AccessTokenSlot)
	if err != nil {
		return err
	}
	prevRefresh, err := m.store.Get(ctx, persistence.RefreshTokenSlot)
	if err != nil {
		return err
	}

	if err := m.store.Set(ctx, persistence.RefreshTokenSlot, pair.Refresh); err != nil {
		return err
	}
	if err := m.store.Set(ctx, persistence.AccessTokenSlot, pair.Access); err != nil {
		m.restoreSlot(ctx, persistence.RefreshTokenSlot, prevRefresh)
		m.restoreSlot(ctx, persistence.AccessTokenSlot, prevAccess)
		return err
	}
	return nil
}

func (m *SessionManager) restoreSlot(ctx context.Context, slot persistence.Slot, value string) {
	var err error
	if value == "" {
		err = m.store.Delete(ctx, slot)
	} else {
		err = m.store.Set(ctx, slot, value)
	}
	if err != nil {
		m.logger.Warn("restore session slot", zap.String("slot", string(slot)), zap.Error(err))
	}
}

// Logout clears both persisted tokens and the identity. It is idempotent.
func (m *SessionManager) Logout(ctx context.Context) {
	m.sessionMu.Lock()
	previous := m.clearLocked(ctx)
	m.sessionMu.Unlock()

	if previous != nil {
		m.logger.Info("logged out", zap.String("username", previous.Username))
		m.publish(ctx, events.EventLoggedOut, previous.Username, nil)
	}
}

// clearLocked empties both slots and the identity and ends the current
// generation. It returns the identity that was signed in, if any.
func (m *SessionManager) clearLocked(ctx context.Context) *domain.Identity {
	if err := m.store.Delete(ctx, persistence.Slots...); err != nil {
		m.logger.Warn("clear persisted session", zap.Error(err))
	}
	m.generation++

	m.mu.Lock()
	defer m.mu.Unlock()
	previous := m.user
	m.user = nil
	m.loading = false
	m.phase = PhaseUnauthenticated
	return previous
}

func (m *SessionManager) currentGeneration() uint64 {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()
	return m.generation
}

// RefreshAccess returns a usable access token after stale was rejected.
// If the store already holds a different token, that one is returned.
// Otherwise one refresh is performed no matter how many callers arrive
// concurrently; all of them get its result. The refresh itself is not
// cancelled with ctx, but a caller stops waiting when ctx is done.
func (m *SessionManager) RefreshAccess(ctx context.Context, stale string) (string, error) {
	return m.refreshAccess(ctx, stale, false)
}

// refreshAccess runs the shared flight. ahead marks a refresh of a token
// that is still valid; a network failure then leaves the session in place.
func (m *SessionManager) refreshAccess(ctx context.Context, stale string, ahead bool) (string, error) {
	if current, ok := m.replacedToken(ctx, stale); ok {
		m.recordRefresh(observability.RefreshReused)
		return current, nil
	}

	flight := m.refreshes.DoChan("access", func() (interface{}, error) {
		return m.refresh(context.WithoutCancel(ctx), stale, ahead)
	})

	select {
	case <-ctx.Done():
		return "", apperrors.NewNetworkError("request cancelled", ctx.Err())
	case result := <-flight:
		if result.Err != nil {
			return "", result.Err
		}
		return result.Val.(string), nil
	}
}

func (m *SessionManager) refresh(ctx context.Context, stale string, ahead bool) (string, error) {
	// A flight that finished just before this one may already have
	// replaced the token this caller was rejected with.
	if current, ok := m.replacedToken(ctx, stale); ok {
		m.recordRefresh(observability.RefreshReused)
		return current, nil
	}

	gen := m.currentGeneration()
	previous := m.swapPhase(PhaseRefreshingToken)

	refreshToken, err := m.store.Get(ctx, persistence.RefreshTokenSlot)
	if err != nil {
		return m.invalidate(ctx, gen, "refresh token unreadable", err)
	}
	if refreshToken == "" {
		return m.invalidate(ctx, gen, "refresh token absent", nil)
	}

	access, err := m.issuer.Refresh(ctx, refreshToken)
	if err != nil {
		if ahead && apperrors.KindOf(err) == apperrors.KindNetwork {
			return m.deferRefresh(gen, previous, err)
		}
		return m.invalidate(ctx, gen, "refresh rejected", err)
	}

	identity, err := m.codec.Decode(access)
	if err != nil {
		return m.invalidate(ctx, gen, "refreshed token undecodable", err)
	}

	m.sessionMu.Lock()
	if m.generation != gen {
		m.sessionMu.Unlock()
		return m.superseded()
	}
	if err := m.store.Set(ctx, persistence.AccessTokenSlot, access); err != nil {
		m.sessionMu.Unlock()
		return m.invalidate(ctx, gen, "persist refreshed token", err)
	}
	m.setUser(&identity)
	m.sessionMu.Unlock()

	m.recordRefresh(observability.RefreshSucceeded)
	m.logger.Debug("access token refreshed", zap.String("username", identity.Username))
	m.publish(ctx, events.EventSessionRefreshed, identity.Username, events.SessionPayload{Role: identity.Role})
	return access, nil
}

// RefreshIfExpiring refreshes the access token when it expires within
// window. It reports whether a refresh was attempted. The token is still
// valid at that point, so a network failure is returned without ending the
// session.
func (m *SessionManager) RefreshIfExpiring(ctx context.Context, window time.Duration) (bool, error) {
	if m.CurrentUser() == nil {
		return false, nil
	}
	access, err := m.store.Get(ctx, persistence.AccessTokenSlot)
	if err != nil || access == "" {
		return false, err
	}
	if !m.codec.ExpiresWithin(access, m.now(), window) {
		return false, nil
	}
	_, err = m.refreshAccess(ctx, access, true)
	return true, err
}

// deferRefresh gives up on an early refresh that could not reach the
// backend. The current token stays in use.
func (m *SessionManager) deferRefresh(gen uint64, previous Phase, cause error) (string, error) {
	m.logger.Warn("early token refresh unreachable, keeping session", zap.Error(cause))
	m.recordRefresh(observability.RefreshFailed)
	m.sessionMu.Lock()
	if m.generation == gen {
		m.swapPhase(previous)
	}
	m.sessionMu.Unlock()
	return "", cause
}

// superseded reports a refresh that finished after a login or logout
// replaced the session it started from. That session is left untouched.
func (m *SessionManager) superseded() (string, error) {
	m.logger.Info("discarding refresh for a session that has since ended")
	m.recordRefresh(observability.RefreshSuperseded)
	return "", apperrors.ErrSessionInvalidated
}

// invalidate ends the session generation gen after a failed refresh. A
// session that was already empty is not announced again.
func (m *SessionManager) invalidate(ctx context.Context, gen uint64, reason string, cause error) (string, error) {
	m.sessionMu.Lock()
	if m.generation != gen {
		m.sessionMu.Unlock()
		return m.superseded()
	}
	active := m.CurrentUser() != nil || m.hasPersistedTokens(ctx)
	previous := m.clearLocked(ctx)
	m.sessionMu.Unlock()

	m.recordRefresh(observability.RefreshFailed)
	if !active {
		m.logger.Debug("token refresh failed on an empty session", zap.String("reason", reason))
		return "", apperrors.ErrSessionInvalidated
	}

	m.logger.Warn("token refresh failed, clearing session", zap.String("reason", reason), zap.Error(cause))
	if m.metrics != nil {
		m.metrics.RecordInvalidation()
	}

	username := ""
	if previous != nil {
		username = previous.Username
		m.publish(ctx, events.EventLoggedOut, username, nil)
	}
	m.publish(ctx, events.EventSessionInvalidated, username, events.SessionInvalidatedPayload{Reason: reason})
	return "", apperrors.ErrSessionInvalidated
}

// hasPersistedTokens reports whether either slot holds a value. A store
// that cannot be read counts as holding one.
func (m *SessionManager) hasPersistedTokens(ctx context.Context) bool {
	for _, slot := range persistence.Slots {
		value, err := m.store.Get(ctx, slot)
		if err != nil || value != "" {
			return true
		}
	}
	return false
}

func (m *SessionManager) replacedToken(ctx context.Context, stale string) (string, bool) {
	current, err := m.store.Get(ctx, persistence.AccessTokenSlot)
	if err != nil || current == "" || current == stale {
		return "", false
	}
	return current, true
}

// State returns a snapshot of the session.
func (m *SessionManager) State() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := SessionState{Loading: m.loading, Phase: m.phase}
	if m.user != nil {
		user := *m.user
		state.User = &user
	}
	return state
}

// CurrentUser returns a copy of the identity, or nil when logged out.
func (m *SessionManager) CurrentUser() *domain.Identity {
	return m.State().User
}

// Admit applies the route guard to the current state.
func (m *SessionManager) Admit(requiredRole domain.Role) (auth.Verdict, *domain.Identity) {
	state := m.State()
	return auth.Admit(state.Loading, state.User, requiredRole), state.User
}

func (m *SessionManager) setUser(identity *domain.Identity) {
	m.mu.Lock()
	m.user = identity
	m.phase = PhaseAuthenticated
	m.mu.Unlock()
}

func (m *SessionManager) swapPhase(phase Phase) Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous := m.phase
	m.phase = phase
	return previous
}

func (m *SessionManager) recordRefresh(outcome string) {
	if m.metrics != nil {
		m.metrics.RecordRefresh(outcome)
	}
}

func (m *SessionManager) publish(ctx context.Context, eventType events.EventType, username string, payload interface{}) {
	publishEvent(ctx, m.dispatcher, m.logger, eventType, username, payload)
}
