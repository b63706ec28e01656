package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrConfiguration is wrapped by every error Resolve returns.
var ErrConfiguration = errors.New("configuration error")

// Source identifies where credentials were resolved from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceFile        Source = "file"
)

// Names of the credential environment variables and file keys.
const (
	EnvConsumerKey    = "CONSUMER_KEY"
	EnvConsumerSecret = "CONSUMER_SECRET"
	EnvAccessKey      = "ACCESS_KEY"
	EnvAccessSecret   = "ACCESS_SECRET"
)

// CredentialNames lists the secrets required for a complete credential set.
var CredentialNames = []string{EnvConsumerKey, EnvConsumerSecret, EnvAccessKey, EnvAccessSecret}

// Defaults used when settings come from the environment.
const (
	DefaultMinIntervalDays = 1
	DefaultMaxIntervalDays = 3
	DefaultLines           = 4
	DefaultLimitPerLine    = 4
)

// Credentials holds the four OAuth 1.0a secrets.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessKey      string
	AccessSecret   string
}

// Intervals bounds the cooldown between posts, in days.
type Intervals struct {
	MinDays int
	MaxDays int
}

// Formatting controls the shape of a generated flower bed.
type Formatting struct {
	Lines        int
	LimitPerLine int
}

// Limit is the number of symbols requested for one post.
func (f Formatting) Limit() int {
	return f.Lines * f.LimitPerLine
}

// Config holds all resolved configuration. It is built once by Resolve and
// not modified afterwards.
type Config struct {
	Source      Source
	Path        string // config file used; empty for the environment source
	Credentials Credentials
	Intervals   Intervals
	Formatting  Formatting
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// RandSource is satisfied by *math/rand/v2.Rand.
type RandSource interface {
	IntN(n int) int
}

// Resolve reads configuration from the process environment, falling back to
// the file at path when any credential variable is missing.
func Resolve(path string) (*Config, error) {
	return ResolveWith(os.LookupEnv, path)
}

// ResolveWith is Resolve with an injectable environment lookup.
func ResolveWith(lookup LookupFunc, path string) (*Config, error) {
	missing := missingCredentials(lookup)
	if len(missing) == 0 {
		slog.Info("all environment variables were found, using environment variables")
		return fromEnv(lookup)
	}

	slog.Warn("environment variables were not successfully found",
		"missing", strings.Join(missing, ","),
	)
	slog.Info("using configuration file instead", "path", path)
	return fromFile(path)
}

// SampleCooldown picks a whole number of days in [MinDays, MaxDays].
func (i Intervals) SampleCooldown(src RandSource) time.Duration {
	days := i.MinDays
	if span := i.MaxDays - i.MinDays; span > 0 {
		days += src.IntN(span + 1)
	}
	return time.Duration(days) * 24 * time.Hour
}

// Validate checks the settings and returns every problem at once.
func (c *Config) Validate() error {
	var problems []error

	creds := map[string]string{
		EnvConsumerKey:    c.Credentials.ConsumerKey,
		EnvConsumerSecret: c.Credentials.ConsumerSecret,
		EnvAccessKey:      c.Credentials.AccessKey,
		EnvAccessSecret:   c.Credentials.AccessSecret,
	}
	for _, name := range CredentialNames {
		if creds[name] == "" {
			problems = append(problems, fmt.Errorf("%s is required", name))
		}
	}

	if c.Intervals.MinDays < 1 {
		problems = append(problems, fmt.Errorf("mininterval must be at least 1 day, got %d", c.Intervals.MinDays))
	}
	if c.Intervals.MaxDays < c.Intervals.MinDays {
		problems = append(problems, fmt.Errorf("maxinterval (%d) must not be less than mininterval (%d)",
			c.Intervals.MaxDays, c.Intervals.MinDays))
	}
	if c.Formatting.Lines < 1 {
		problems = append(problems, fmt.Errorf("lines must be at least 1, got %d", c.Formatting.Lines))
	}
	if c.Formatting.LimitPerLine < 1 {
		problems = append(problems, fmt.Errorf("limit_per_line must be at least 1, got %d", c.Formatting.LimitPerLine))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(problems...))
	}
	return nil
}

func missingCredentials(lookup LookupFunc) []string {
	var missing []string
	for _, name := range CredentialNames {
		if val, ok := lookup(name); !ok || val == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func fromEnv(lookup LookupFunc) (*Config, error) {
	getEnv := func(key string) string {
		val, _ := lookup(key)
		return val
	}

	cfg := &Config{
		Source: SourceEnvironment,
		Credentials: Credentials{
			ConsumerKey:    getEnv(EnvConsumerKey),
			ConsumerSecret: getEnv(EnvConsumerSecret),
			AccessKey:      getEnv(EnvAccessKey),
			AccessSecret:   getEnv(EnvAccessSecret),
		},
	}

	var problems []error
	parseInt := func(key string, def int) int {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			return def
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			problems = append(problems, fmt.Errorf("invalid %s: %w", key, err))
			return def
		}
		return n
	}

	cfg.Intervals.MinDays = parseInt("MIN_INTERVAL_DAYS", DefaultMinIntervalDays)
	cfg.Intervals.MaxDays = parseInt("MAX_INTERVAL_DAYS", DefaultMaxIntervalDays)
	cfg.Formatting.Lines = parseInt("LINES", DefaultLines)
	cfg.Formatting.LimitPerLine = parseInt("LIMIT_PER_LINE", DefaultLimitPerLine)

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(problems...))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
