package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/spec-kit/duty-attendance/internal/domain"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// InvalidCredentialsMessage is shown for a rejected login.
const InvalidCredentialsMessage = "Invalid credentials!"

// AuthAPI calls the token endpoints. They are sent without a bearer token
// and never go through the refresh path.
type AuthAPI struct {
	transport *Transport
}

// NewAuthAPI builds the API over transport.
func NewAuthAPI(transport *Transport) *AuthAPI {
	return &AuthAPI{transport: transport}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Login exchanges credentials for a token pair.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	resp, err := a.transport.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   "login/",
		Body:   loginRequest{Username: username, Password: password},
	}, "")
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !resp.OK() {
		return domain.TokenPair{}, apperrors.NewAuthError(InvalidCredentialsMessage, resp.Err(InvalidCredentialsMessage))
	}

	var pair domain.TokenPair
	if err := resp.DecodeJSON(&pair); err != nil {
		return domain.TokenPair{}, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return domain.TokenPair{}, apperrors.NewAuthError(InvalidCredentialsMessage, errors.New("login response missing tokens"))
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := a.transport.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   "token/refresh/",
		Body:   refreshRequest{Refresh: refreshToken},
	}, "")
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", apperrors.NewAuthError("token refresh rejected", resp.Err("token refresh rejected"))
	}

	var out refreshResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", apperrors.NewAuthError("token refresh rejected", errors.New("refresh response missing access token"))
	}
	return out.Access, nil
}
