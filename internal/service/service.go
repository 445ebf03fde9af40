// Package service exposes the rental backend resources as cached reads and
// mutations. Reads go through the query layer; mutations invalidate or
// rewrite the affected keys and report their outcome on the event bus.
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/events"
	"ebikerent/internal/query"
	"ebikerent/internal/session"

	"github.com/rs/zerolog"
)

// ValidationError is a client-side rejection raised before any request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Deps are the collaborators shared by every resource service.
type Deps struct {
	API     *apiclient.Client
	Query   *query.Client
	Session *session.Session
	Bus     *events.EventBus
	Logger  *zerolog.Logger
}

type base struct {
	api     *apiclient.Client
	query   *query.Client
	session *session.Session
	bus     *events.EventBus
	logger  *zerolog.Logger
}

func newBase(d Deps, component string) base {
	l := d.Logger.With().Str("component", component).Logger()
	return base{
		api:     d.API,
		query:   d.Query,
		session: d.Session,
		bus:     d.Bus,
		logger:  &l,
	}
}

func (b *base) requireSession() error {
	if b.session == nil || !b.session.HasToken() {
		return session.ErrNoSession
	}
	return nil
}

func (b *base) invalidate(ctx context.Context, prefixes ...string) {
	for _, p := range prefixes {
		if err := b.query.Invalidate(ctx, p); err != nil {
			b.logger.Warn().Err(err).Str("prefix", p).Msg("cache invalidation failed")
		}
	}
}

func (b *base) remove(ctx context.Context, prefix string) {
	if err := b.query.Remove(ctx, prefix); err != nil {
		b.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache removal failed")
	}
}

func setData[T any](ctx context.Context, b *base, key string, v T) {
	if err := query.SetData(ctx, b.query, key, v); err != nil {
		b.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (b *base) success(title, message, fallback string) {
	if message == "" {
		message = fallback
	}
	b.bus.Notify(events.LevelSuccess, title, message)
}

// failure surfaces err as an error notification. Backend messages are shown
// verbatim; transport and other errors get fallback. A missing session is
// not reported.
func (b *base) failure(title string, err error, fallback string) {
	if errors.Is(err, session.ErrNoSession) {
		return
	}
	msg := fallback
	var reqErr *apiclient.RequestError
	var valErr *ValidationError
	switch {
	case errors.As(err, &reqErr) && reqErr.Message != "":
		msg = reqErr.Message
	case errors.As(err, &valErr):
		msg = valErr.Message
	}
	b.logger.Debug().Err(err).Str("title", title).Msg("mutation failed")
	b.bus.Notify(events.LevelError, title, msg)
}

func (b *base) publish(eventType string, payload any) {
	if err := b.bus.PublishJSON(eventType, payload); err != nil {
		b.logger.Warn().Err(err).Str("event", eventType).Msg("publish failed")
	}
}

// read are the fetch options of general reads: one retry.
func read(stale time.Duration) query.Options {
	return query.Options{StaleTime: stale, Retry: apiclient.ListRetry}
}

func get[T any](ctx context.Context, b *base, path string) (T, error) {
	res, err := apiclient.Call[T](ctx, b.api, http.MethodGet, path, nil)
	return res.Data, err
}

// fetch reads path through the cache under key.
func fetch[T any](ctx context.Context, b *base, key, path string, opts query.Options) (T, error) {
	return query.Fetch(ctx, b.query, key, opts, func(ctx context.Context) (T, error) {
		return get[T](ctx, b, path)
	})
}

// Services bundles the resource services.
type Services struct {
	Auth      *AuthService
	Bikes     *BikeService
	Bookings  *BookingService
	Ratings   *RatingService
	Favorites *FavoriteService
	Home      *HomeService
}

func New(d Deps) *Services {
	return &Services{
		Auth:      NewAuthService(d),
		Bikes:     NewBikeService(d),
		Bookings:  NewBookingService(d),
		Ratings:   NewRatingService(d),
		Favorites: NewFavoriteService(d),
		Home:      NewHomeService(d),
	}
}
