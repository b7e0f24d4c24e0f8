package app

import (
	"fmt"
	"log/slog"

	"github.com/caseboard/sessionkit/internal/authority/idp"
	"github.com/caseboard/sessionkit/internal/authority/service"
	"github.com/caseboard/sessionkit/internal/authority/store"
	"github.com/caseboard/sessionkit/internal/authority/store/drivers/sqlite"
	"github.com/caseboard/sessionkit/pkg/cryptox"
	"github.com/caseboard/sessionkit/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the session authority together with its credential
// store and identity provider connector.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store // nil when no database file is configured
	connector *idp.Connector

	authority *service.Authority
	passwords *service.PasswordService
}

// New creates an Application with all dependencies initialized. A missing
// database file is not an error: the authority simply runs without local
// accounts.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "session-authority",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.connector = idp.New(cfg.RealmURL, cfg.ClientID, cfg.RedirectURI)
	app.connector.ProbeTimeout = cfg.ProbeTimeout
	app.connector.Logger = app.logger

	app.authority = service.New(service.Options{
		Provider:          app.connector,
		Store:             app.db,
		Logger:            app.logger,
		RefreshInterval:   cfg.RefreshInterval,
		LogoutRedirectURI: cfg.RedirectURI,
	})
	app.passwords = &service.PasswordService{Store: app.db, Logger: app.logger}

	return app, nil
}

// Connector exposes the identity provider connector, e.g. to install a
// navigator.
func (app *Application) Connector() *idp.Connector { return app.connector }

// Authority exposes the session state machine.
func (app *Application) Authority() *service.Authority { return app.authority }

// Passwords exposes the local credential service.
func (app *Application) Passwords() *service.PasswordService { return app.passwords }

// Store exposes the credential store; nil when local accounts are disabled.
func (app *Application) Store() store.Store { return app.db }

// Logger exposes the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Close shuts down the state machine and the database.
func (app *Application) Close() error {
	app.authority.Close()
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			return err
		}
	}
	return nil
}

// initDatabase opens the credential store and applies migrations when a
// database file is configured.
func (app *Application) initDatabase() error {
	if app.cfg.DatabaseFile == "" {
		app.logger.Info("no database configured, local accounts disabled")
		return nil
	}

	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.db = db
	app.logger.Info("database migrations applied successfully")
	return nil
}
