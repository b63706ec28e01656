package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/abdulachik/flowerbot/internal/config"
	"github.com/abdulachik/flowerbot/internal/db"
	"github.com/abdulachik/flowerbot/internal/garden"
	"github.com/abdulachik/flowerbot/internal/poster"
	"github.com/abdulachik/flowerbot/internal/scheduler"
)

// App is the main application container holding all dependencies.
type App struct {
	Config   *config.Config
	Poster   poster.Poster
	Store    *db.Store // nil when the journal is disabled
	Cooldown time.Duration

	rng *rand.Rand
}

// Options tunes New.
type Options struct {
	// JournalPath is the SQLite journal; empty disables it.
	JournalPath string

	// Poster replaces the Twitter client (tests).
	Poster poster.Poster
	// APIBaseURL overrides the Twitter API host.
	APIBaseURL string
	// Rand replaces the time-seeded random source.
	Rand *rand.Rand
}

// New creates a new application instance with all dependencies wired up. The
// cooldown is sampled here, once for the life of the process.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}

	p := opts.Poster
	if p == nil {
		p = poster.NewTwitterPoster(poster.TwitterConfig{
			APIKey:       cfg.Credentials.ConsumerKey,
			APISecret:    cfg.Credentials.ConsumerSecret,
			AccessToken:  cfg.Credentials.AccessKey,
			AccessSecret: cfg.Credentials.AccessSecret,
			BaseURL:      opts.APIBaseURL,
		})
	}

	a := &App{
		Config:   cfg,
		Poster:   p,
		Cooldown: cfg.Intervals.SampleCooldown(rng),
		rng:      rng,
	}

	// The journal is informational; posting goes on without it.
	if opts.JournalPath != "" {
		store, err := db.Open(ctx, opts.JournalPath)
		if err != nil {
			slog.Warn("journal unavailable, posts will not be recorded",
				"path", opts.JournalPath,
				"error", err,
			)
		} else {
			a.Store = store
		}
	}

	slog.Info("cooldown chosen",
		"days", int(a.Cooldown/(24*time.Hour)),
		"min_days", cfg.Intervals.MinDays,
		"max_days", cfg.Intervals.MaxDays,
	)

	return a, nil
}

// Login authenticates with the platform and logs who we are.
func (a *App) Login(ctx context.Context) (*poster.Identity, error) {
	slog.Info("attempting to login", "platform", a.Poster.Platform())

	identity, err := a.Poster.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	slog.Info("account",
		"username", identity.Username,
		"display_name", identity.Name,
		"id", identity.ID,
	)
	slog.Info("successfully logged in")

	return identity, nil
}

// Compose grows a new flower bed using the configured formatting.
func (a *App) Compose() string {
	f := a.Config.Formatting
	return garden.Generate(a.rng, f.Limit(), f.LimitPerLine)
}

// SchedulerOptions are the per-command scheduler switches.
type SchedulerOptions struct {
	DryRun      bool
	PostOnEmpty bool
	Compose     func() string // defaults to a.Compose
}

// Scheduler builds the posting loop.
func (a *App) Scheduler(opts SchedulerOptions) *scheduler.Scheduler {
	compose := opts.Compose
	if compose == nil {
		compose = a.Compose
	}

	cfg := scheduler.Config{
		Poster:      a.Poster,
		Cooldown:    a.Cooldown,
		Compose:     compose,
		DryRun:      opts.DryRun,
		PostOnEmpty: opts.PostOnEmpty,
	}
	if a.Store != nil {
		cfg.Journal = a.Store
	}
	return scheduler.New(cfg)
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
