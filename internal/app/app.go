// Package app owns the console's process-wide state: one session store, one
// gateway client, one session manager and one route guard.
package app

import (
	"fmt"
	"io"

	"github.com/jrsteele09/go-billing-console/apiclient"
	"github.com/jrsteele09/go-billing-console/auth"
	"github.com/jrsteele09/go-billing-console/backoffice"
	"github.com/jrsteele09/go-billing-console/guard"
	"github.com/jrsteele09/go-billing-console/internal/config"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/jrsteele09/go-billing-console/sessions"
	"github.com/jrsteele09/go-billing-console/sessions/filestore"
	"github.com/jrsteele09/go-billing-console/sessions/sqlitestore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type App struct {
	Config  config.Config
	Store   sessions.Store
	Client  *apiclient.Client
	Auth    *apiclient.AuthAPI
	Manager *auth.Manager
	Guard   *guard.Guard
	API     *backoffice.API

	closers []io.Closer
}

// Option configures an App.
type Option func(*options)

type options struct {
	logger    zerolog.Logger
	store     sessions.Store
	transport apiclient.Doer
}

// WithLogger sets the logger handed to the client and manager.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStore bypasses the configured store driver.
func WithStore(s sessions.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithTransport replaces the HTTP transport of the gateway client.
func WithTransport(d apiclient.Doer) Option {
	return func(o *options) {
		o.transport = d
	}
}

// New builds the application from cfg and restores any persisted session.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg}

	store := o.store
	if store == nil {
		var err error
		if store, err = a.openStore(); err != nil {
			return nil, fmt.Errorf("[app New] failed to open session store: %w", err)
		}
	}
	a.Store = store

	clientOpts := []apiclient.ClientOption{
		apiclient.WithLogger(o.logger),
		apiclient.WithTimeout(cfg.GetRequestTimeout()),
	}
	if cfg.GetRateLimit() > 0 {
		clientOpts = append(clientOpts, apiclient.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.GetRateLimit()), cfg.GetRateBurst())))
	}
	if o.transport != nil {
		clientOpts = append(clientOpts, apiclient.WithTransport(o.transport))
	}

	client, err := apiclient.New(cfg.GetAPIBaseURL(), clientOpts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("[app New] failed to create api client: %w", err)
	}
	a.Client = client
	a.Auth = apiclient.NewAuthAPI(client)

	manager, err := auth.NewManager(store, a.Auth, auth.WithLogger(o.logger))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("[app New] failed to create session manager: %w", err)
	}
	a.Manager = manager
	a.Guard = guard.New(manager)
	a.API = backoffice.New(client)

	client.SetRefresher(manager)
	client.SetSessionExpiredHandler(a.Guard.SessionExpired)

	return a, nil
}

func (a *App) openStore() (sessions.Store, error) {
	path := a.Config.GetStorePath()
	switch a.Config.GetStoreDriver() {
	case config.StoreDriverSQLite:
		s, err := sqlitestore.New(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	case config.StoreDriverFile:
		return filestore.New(path)
	default:
		return nil, errs.Wrapf(errs.ErrInvalidRequest, "unknown store driver %q", a.Config.GetStoreDriver())
	}
}

// Close releases the store. It does not end the session.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
