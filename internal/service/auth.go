package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/events"
	"ebikerent/internal/models"
	"ebikerent/internal/query"
	"ebikerent/internal/session"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

type AuthService struct {
	base
}

func NewAuthService(d Deps) *AuthService {
	return &AuthService{base: newBase(d, "auth")}
}

// Login exchanges credentials for a token pair and stores it in the session.
func (s *AuthService) Login(ctx context.Context, creds models.LoginCredentials) error {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		err := &ValidationError{Field: "email", Message: "Email and password are required."}
		s.failure("Login Failed", err, "")
		return err
	}

	res, err := apiclient.Call[models.AuthTokens](ctx, s.api, http.MethodPost, "/users/auth/token/", creds)
	if err != nil {
		s.failure("Login Failed", err, "Login failed. Please try again.")
		return err
	}
	if err := s.session.SetTokens(ctx, res.Data); err != nil {
		return err
	}

	s.invalidate(ctx, KeyUser)
	s.publish(events.EventSessionChanged, session.Change{HasToken: true})
	return nil
}

func (s *AuthService) Signup(ctx context.Context, creds models.SignupCredentials) (models.User, error) {
	var valErr *ValidationError
	switch {
	case strings.TrimSpace(creds.Email) == "" || creds.Password == "":
		valErr = &ValidationError{Field: "email", Message: "Email and password are required."}
	case creds.Password2 != "" && creds.Password != creds.Password2:
		valErr = &ValidationError{Field: "password2", Message: "Passwords do not match"}
	}
	if valErr != nil {
		s.failure("Signup Failed", valErr, "")
		return models.User{}, valErr
	}

	res, err := apiclient.Call[models.User](ctx, s.api, http.MethodPost, "/users/auth/signup/", creds)
	if err != nil {
		s.failure("Signup Failed", err, "Signup failed. Please try again.")
		return models.User{}, err
	}
	s.success("Signup", "", "Account created successfully! Please log in.")
	return res.Data, nil
}

// CurrentUser returns the logged-in user. It is never retried and fails with
// session.ErrNoSession without a request when no token is held.
func (s *AuthService) CurrentUser(ctx context.Context) (models.User, error) {
	if err := s.requireSession(); err != nil {
		return models.User{}, err
	}
	return fetch[models.User](ctx, &s.base, KeyUser, "/users/me/", query.Options{Retry: apiclient.NoRetry})
}

// Refresh trades the refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context) error {
	refresh := s.session.RefreshToken()
	if refresh == "" {
		return session.ErrNoSession
	}

	res, err := apiclient.Call[models.AuthTokens](ctx, s.api, http.MethodPost, "/users/auth/token/refresh/", map[string]string{"refresh": refresh})
	if err != nil {
		return err
	}
	return s.session.SetTokens(ctx, res.Data)
}

// EnsureFresh refreshes the access token when it expires within leeway.
// Tokens without a readable expiry are left alone.
func (s *AuthService) EnsureFresh(ctx context.Context, leeway time.Duration) error {
	exp, ok := s.session.AccessExpiry()
	if !ok || time.Until(exp) > leeway {
		return nil
	}
	s.logger.Debug().Time("expires_at", exp).Msg("refreshing access token")
	return s.Refresh(ctx)
}

// Logout drops both tokens and everything cached for the previous user.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	if err := s.query.Clear(ctx); err != nil {
		return err
	}
	s.publish(events.EventSessionChanged, session.Change{HasToken: false})
	return nil
}
