package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openlms/auth/internal/gateway/directory"
	httpapi "github.com/openlms/auth/internal/gateway/http"
	"github.com/openlms/auth/internal/gateway/service"
	"github.com/openlms/auth/pkg/jwtx"
	"github.com/openlms/auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application is the auth gateway runtime: the only process that holds
// the RS256 private key and therefore the only one that can mint tokens.
type Application struct {
	cfg    Config
	logger *slog.Logger

	codec *jwtx.Codec

	minter      *service.Minter
	authService *service.AuthService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	switch {
	case cfg.SigningKeyPath == "":
		return nil, errors.New("GATEWAY_SIGNING_KEY is required")
	case cfg.VerificationKeyPath == "":
		return nil, errors.New("GATEWAY_VERIFICATION_KEY is required")
	case cfg.DirectoryURL == "":
		return nil, errors.New("GATEWAY_DIRECTORY_URL is required")
	}

	keys, err := jwtx.LoadKeyPair(cfg.SigningKeyPath, cfg.VerificationKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load key pair: %w", err)
	}
	app.codec = &jwtx.Codec{
		Keys:       keys,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"directory", app.cfg.DirectoryURL,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.logger.Info("gateway stopped")
	return nil
}

func (app *Application) initServices() {
	app.minter = &service.Minter{Codec: app.codec}

	app.authService = &service.AuthService{
		Codec: app.codec,
		Directory: &directory.HTTPClient{
			BaseURL: app.cfg.DirectoryURL,
			Tokens:  app.minter,
		},
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.cfg.DirectoryURL, app.logger)
	router.AuthService = app.authService
	router.Cookies = httpapi.CookieWriter{
		Secure:     app.cfg.Env != "dev" && app.cfg.Env != "local",
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
