package gateway

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/observability"
	"github.com/spec-kit/duty-attendance/internal/persistence"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// TokenRefresher exchanges the persisted refresh token for a new access
// token. stale is the access token the caller was rejected with; if the
// session already holds a newer one, implementations return it without
// calling the backend. On failure the session is cleared and
// apperrors.ErrSessionInvalidated is returned.
type TokenRefresher interface {
	RefreshAccess(ctx context.Context, stale string) (string, error)
}

// Gateway wraps every authenticated backend call.
type Gateway struct {
	transport *Transport
	store     persistence.SessionStore
	refresher TokenRefresher
	metrics   observability.Recorder
	logger    *zap.Logger
}

// New builds a gateway.
func New(transport *Transport, store persistence.SessionStore, refresher TokenRefresher, metrics observability.Recorder, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		transport: transport,
		store:     store,
		refresher: refresher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Do sends req with the current access token. A 401 triggers exactly one
// refresh and one replay of req; whatever the replay returns, including a
// second 401, goes back to the caller unchanged.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	token, err := g.store.Get(ctx, persistence.AccessTokenSlot)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("read access token: %w", err))
	}

	resp, err := g.transport.Send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	g.logger.Debug("access token rejected, refreshing",
		zap.String("request_id", resp.RequestID),
		zap.String("path", req.Path))

	fresh, err := g.refresher.RefreshAccess(ctx, token)
	if err != nil {
		return nil, err
	}

	if g.metrics != nil {
		g.metrics.RecordRetry()
	}
	return g.transport.Send(ctx, req, fresh)
}

// JSON performs req and decodes a 2xx body into out (which may be nil).
// Non-2xx responses become server errors with fallback as the message when
// the backend sent no detail.
func (g *Gateway) JSON(ctx context.Context, req Request, out any, fallback string) error {
	resp, err := g.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Err(fallback); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.DecodeJSON(out)
}

// List performs req and normalizes the list envelope into out.
func (g *Gateway) List(ctx context.Context, req Request, out any, fallback string, keys ...string) error {
	resp, err := g.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Err(fallback); err != nil {
		return err
	}
	if err := DecodeList(resp.Body, out, keys...); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Reachable reports whether the backend answers at all. Any HTTP status
// counts as reachable; only transport failures are returned.
func (g *Gateway) Reachable(ctx context.Context) error {
	_, err := g.transport.Send(ctx, Request{Method: http.MethodGet}, "")
	return err
}
