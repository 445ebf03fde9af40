// Package session holds the authentication tokens of the current user and
// tells interested components when they change.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ebikerent/internal/models"
	"ebikerent/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Storage keys shared with the web client.
const (
	AccessTokenKey  = "token"
	RefreshTokenKey = "refreshToken"
)

// ErrNoSession is returned by operations that need a logged-in user.
var ErrNoSession = errors.New("no active session")

// Change describes the session after a token update.
type Change struct {
	HasToken bool
}

type Session struct {
	mu      sync.RWMutex
	kv      storage.KV
	access  string
	refresh string

	obsMu     sync.Mutex
	observers map[int]func(Change)
	nextID    int

	logger *zerolog.Logger
}

// New loads any persisted tokens from kv.
func New(ctx context.Context, kv storage.KV, logger *zerolog.Logger) (*Session, error) {
	s := &Session{
		kv:        kv,
		observers: make(map[int]func(Change)),
		logger:    logger,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(ctx context.Context) error {
	access, _, err := s.kv.Get(ctx, AccessTokenKey)
	if err != nil {
		return fmt.Errorf("load access token: %w", err)
	}
	refresh, _, err := s.kv.Get(ctx, RefreshTokenKey)
	if err != nil {
		return fmt.Errorf("load refresh token: %w", err)
	}

	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()
	return nil
}

// Reload re-reads the persisted tokens, picking up changes made by another
// process, and notifies observers when the access token changed.
func (s *Session) Reload(ctx context.Context) error {
	before := s.AccessToken()
	if err := s.load(ctx); err != nil {
		return err
	}
	if after := s.AccessToken(); after != before {
		s.notify(Change{HasToken: after != ""})
	}
	return nil
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *Session) HasToken() bool {
	return s.AccessToken() != ""
}

// AccessExpiry reads the exp claim of the access token. The signature is not
// checked; the backend remains the authority on validity. ok is false when no
// token is held or it carries no expiry.
func (s *Session) AccessExpiry() (exp time.Time, ok bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		s.logger.Debug().Err(err).Msg("access token is not a jwt")
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// SetTokens persists a freshly issued token pair.
func (s *Session) SetTokens(ctx context.Context, tokens models.AuthTokens) error {
	if tokens.Access == "" {
		return errors.New("access token is empty")
	}
	if err := s.kv.Set(ctx, AccessTokenKey, tokens.Access); err != nil {
		return err
	}
	if tokens.Refresh != "" {
		if err := s.kv.Set(ctx, RefreshTokenKey, tokens.Refresh); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.access = tokens.Access
	if tokens.Refresh != "" {
		s.refresh = tokens.Refresh
	}
	s.mu.Unlock()

	s.logger.Debug().Msg("session tokens stored")
	s.notify(Change{HasToken: true})
	return nil
}

// Clear removes both tokens.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, AccessTokenKey); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, RefreshTokenKey); err != nil {
		return err
	}

	s.mu.Lock()
	had := s.access != ""
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()

	if had {
		s.logger.Debug().Msg("session cleared")
		s.notify(Change{HasToken: false})
	}
	return nil
}

// Subscribe registers fn for token changes and returns a function removing it.
func (s *Session) Subscribe(fn func(Change)) func() {
	s.obsMu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Session) notify(c Change) {
	s.obsMu.Lock()
	fns := make([]func(Change), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
