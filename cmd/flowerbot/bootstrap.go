package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abdulachik/flowerbot/internal/app"
	"github.com/abdulachik/flowerbot/internal/config"
	"github.com/abdulachik/flowerbot/internal/logging"
	"github.com/abdulachik/flowerbot/internal/poster"
)

// loadApp resolves configuration and wires the application. Configuration
// failures are logged as critical; the caller exits non-zero.
func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		logging.Critical("an error occurred while loading the configuration", "error", err)
		logging.Critical("the bot will now shut down")
		slog.Info("please check the README.md file for more information")
		return nil, err
	}

	a, err := app.New(ctx, cfg, app.Options{JournalPath: journalPath})
	if err != nil {
		err = fmt.Errorf("initialize: %w", err)
		logging.Critical("an error occurred while starting the bot", "error", err)
		return nil, err
	}
	return a, nil
}

// login authenticates and logs the account identity.
func login(ctx context.Context, a *app.App) (*poster.Identity, error) {
	identity, err := a.Login(ctx)
	if err != nil {
		if errors.Is(err, poster.ErrAuthentication) {
			logging.Critical("authentication error!", "error", err)
			slog.Info("please validate your credentials")
		} else {
			logging.Critical("login failed", "error", err)
		}
		return nil, err
	}
	return identity, nil
}

// logFatal records an error that ends the process.
func logFatal(err error) {
	logging.Critical("an unexpected error occurred, the bot will now shut down", "error", err)
	if errors.Is(err, poster.ErrAuthentication) {
		slog.Info("please validate your credentials")
	}
}
