package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/abdulachik/flowerbot/internal/db"
	"github.com/abdulachik/flowerbot/internal/garden"
	"github.com/abdulachik/flowerbot/internal/logging"
	"github.com/abdulachik/flowerbot/internal/poster"
)

// ErrCIDetected stops the loop before anything is posted from a build or
// test environment.
var ErrCIDetected = errors.New("continuous integration environment detected")

// ciVariables are checked before every poll.
var ciVariables = []string{"CI", "CONTINUOUS_INTEGRATION"}

// Journal records published posts.
type Journal interface {
	CreatePost(ctx context.Context, arg db.CreatePostParams) (int64, error)
}

// Config holds scheduler configuration.
type Config struct {
	Poster   poster.Poster
	Cooldown time.Duration
	Compose  func() string

	// Journal is optional.
	Journal Journal

	// DryRun composes content but never publishes it.
	DryRun bool
	// PostOnEmpty lets an account with no posts publish immediately instead
	// of waiting a full cooldown.
	PostOnEmpty bool

	Now    func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
	Getenv func(key string) string
}

// Scheduler posts a new flower bed whenever the cooldown since the account's
// latest post has elapsed.
type Scheduler struct {
	poster      poster.Poster
	cooldown    time.Duration
	compose     func() string
	journal     Journal
	dryRun      bool
	postOnEmpty bool

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	getenv func(key string) string

	status *Status
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		poster:      cfg.Poster,
		cooldown:    cfg.Cooldown,
		compose:     cfg.Compose,
		journal:     cfg.Journal,
		dryRun:      cfg.DryRun,
		postOnEmpty: cfg.PostOnEmpty,
		now:         cfg.Now,
		sleep:       cfg.Sleep,
		getenv:      cfg.Getenv,
		status:      NewStatus(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sleep == nil {
		s.sleep = SleepContext
	}
	if s.getenv == nil {
		s.getenv = os.Getenv
	}
	return s
}

// Run polls, posts and waits until ctx is cancelled, a CI environment is
// detected (nil error), or the platform returns an error other than rate
// limiting.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("starting scheduler",
		"platform", s.poster.Platform(),
		"cooldown", s.cooldown,
		"dry_run", s.dryRun,
	)

	for {
		wait, err := s.Poll(ctx)
		switch {
		case errors.Is(err, ErrCIDetected):
			logging.Critical("CI detected! Skipping post.")
			logging.Critical("Everything seems to be fine. Exiting...")
			return nil

		case errors.Is(err, poster.ErrRateLimited):
			s.status.rateLimited()
			logging.Critical("posting failed due to rate limit",
				"wait_minutes", int(s.cooldown.Minutes()),
				"error", err,
			)
			wait = s.cooldown

		case err != nil:
			s.status.setState(StateTerminated)
			return err
		}

		s.status.waiting(s.now().Add(wait))
		if err := s.sleep(ctx, wait); err != nil {
			s.status.setState(StateTerminated)
			slog.Info("scheduler shutting down")
			return err
		}
	}
}

// Poll runs one iteration of the loop and returns how long to wait before the
// next one.
func (s *Scheduler) Poll(ctx context.Context) (time.Duration, error) {
	s.status.polled(s.now())

	if InCI(s.getenv) {
		s.status.setState(StateTerminated)
		return 0, ErrCIDetected
	}

	latest, err := s.poster.LatestPost(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch latest post: %w", err)
	}

	now := s.now()
	switch {
	case latest == nil && !s.postOnEmpty:
		s.status.setState(StateCooldownWait)
		slog.Info("account has no posts yet",
			"minutes_from_now", int(s.cooldown.Minutes()),
		)
		return s.cooldown, nil

	case latest != nil:
		if wait := Remaining(s.cooldown, latest.CreatedAt, now); wait > 0 {
			s.status.setState(StateCooldownWait)
			slog.Info("next post scheduled",
				"at", latest.CreatedAt.Add(s.cooldown).Format(time.RFC3339),
				"minutes_from_now", int(wait.Minutes()),
			)
			return wait, nil
		}
	}

	if err := s.publish(ctx, now); err != nil {
		return 0, err
	}

	s.status.setState(StateCooldownWait)
	slog.Info("next post scheduled",
		"minutes_from_now", int(s.cooldown.Minutes()),
	)
	return s.cooldown, nil
}

func (s *Scheduler) publish(ctx context.Context, now time.Time) error {
	s.status.setState(StatePosting)
	text := s.compose()

	if s.dryRun {
		slog.Info("dry run, not posting", "content", poster.Preview(text, 64))
		return nil
	}

	result, err := s.poster.Post(ctx, poster.PostContent{Text: text})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	s.status.posted(now)

	slog.Info("posted a new flower bed",
		"url", result.PostURL,
		"content", poster.Preview(text, 64),
	)

	if s.journal == nil {
		return nil
	}
	_, err = s.journal.CreatePost(ctx, db.CreatePostParams{
		Platform:        s.poster.Platform(),
		PlatformPostID:  sql.NullString{String: result.PostID, Valid: result.PostID != ""},
		PostUrl:         sql.NullString{String: result.PostURL, Valid: result.PostURL != ""},
		Content:         text,
		Symbols:         int64(len(garden.Symbols(text))),
		CooldownSeconds: int64(s.cooldown / time.Second),
		PostedAt:        now,
	})
	if err != nil {
		slog.Warn("failed to record post", "error", err)
	}
	return nil
}

// Status returns the status tracker.
func (s *Scheduler) Status() *Status {
	return s.status
}

// Remaining is how much of cooldown is left after a post at last, clamped to
// [0, cooldown].
func Remaining(cooldown time.Duration, last, now time.Time) time.Duration {
	wait := cooldown - now.Sub(last)
	return max(0, min(wait, cooldown))
}

// InCI reports whether CI or CONTINUOUS_INTEGRATION is set to anything other
// than an empty string or "false".
func InCI(getenv func(string) string) bool {
	for _, name := range ciVariables {
		val := strings.TrimSpace(getenv(name))
		if val != "" && !strings.EqualFold(val, "false") {
			return true
		}
	}
	return false
}

// SleepContext blocks for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
