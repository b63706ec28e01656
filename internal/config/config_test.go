package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
}

func fullEnv() map[string]string {
	return map[string]string{
		"CONSUMER_KEY":    "env-ck",
		"CONSUMER_SECRET": "env-cs",
		"ACCESS_KEY":      "env-ak",
		"ACCESS_SECRET":   "env-as",
	}
}

const validINI = `[intervals]
mininterval = 2
maxinterval = 5

[formatting]
lines = 2
limit_per_line = 8

[credentials]
CONSUMER_KEY = file-ck
CONSUMER_SECRET = file-cs
ACCESS_KEY = file-ak
ACCESS_SECRET = file-as
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolve_Environment(t *testing.T) {
	t.Run("complete set never reads the file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "does-not-exist.txt")

		cfg, err := ResolveWith(envLookup(fullEnv()), missing)
		require.NoError(t, err)

		assert.Equal(t, SourceEnvironment, cfg.Source)
		assert.Empty(t, cfg.Path)
		assert.Equal(t, Credentials{
			ConsumerKey:    "env-ck",
			ConsumerSecret: "env-cs",
			AccessKey:      "env-ak",
			AccessSecret:   "env-as",
		}, cfg.Credentials)
		assert.Equal(t, Intervals{MinDays: DefaultMinIntervalDays, MaxDays: DefaultMaxIntervalDays}, cfg.Intervals)
		assert.Equal(t, Formatting{Lines: DefaultLines, LimitPerLine: DefaultLimitPerLine}, cfg.Formatting)
	})

	t.Run("schedule overrides", func(t *testing.T) {
		env := fullEnv()
		env["MIN_INTERVAL_DAYS"] = "3"
		env["MAX_INTERVAL_DAYS"] = "7"
		env["LINES"] = "2"
		env["LIMIT_PER_LINE"] = "8"

		cfg, err := ResolveWith(envLookup(env), "")
		require.NoError(t, err)

		assert.Equal(t, Intervals{MinDays: 3, MaxDays: 7}, cfg.Intervals)
		assert.Equal(t, 16, cfg.Formatting.Limit())
	})

	t.Run("invalid integer", func(t *testing.T) {
		env := fullEnv()
		env["LINES"] = "many"

		_, err := ResolveWith(envLookup(env), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "LINES")
	})

	t.Run("process environment", func(t *testing.T) {
		for k, v := range fullEnv() {
			t.Setenv(k, v)
		}

		cfg, err := Resolve(filepath.Join(t.TempDir(), "missing.txt"))
		require.NoError(t, err)
		assert.Equal(t, SourceEnvironment, cfg.Source)
	})
}

func TestResolve_PartialEnvironmentFallsBack(t *testing.T) {
	path := writeFile(t, "config.txt", validINI)

	names := []string{"CONSUMER_KEY", "CONSUMER_SECRET", "ACCESS_KEY", "ACCESS_SECRET"}
	for drop := range names {
		t.Run("without "+names[drop], func(t *testing.T) {
			env := fullEnv()
			delete(env, names[drop])

			cfg, err := ResolveWith(envLookup(env), path)
			require.NoError(t, err)

			assert.Equal(t, SourceFile, cfg.Source)
			assert.Equal(t, path, cfg.Path)
			assert.Equal(t, Credentials{
				ConsumerKey:    "file-ck",
				ConsumerSecret: "file-cs",
				AccessKey:      "file-ak",
				AccessSecret:   "file-as",
			}, cfg.Credentials)
		})
	}

	t.Run("only consumer key present", func(t *testing.T) {
		env := map[string]string{"CONSUMER_KEY": "env-ck"}

		cfg, err := ResolveWith(envLookup(env), path)
		require.NoError(t, err)
		assert.Equal(t, "file-ck", cfg.Credentials.ConsumerKey)
	})

	t.Run("empty value counts as missing", func(t *testing.T) {
		env := fullEnv()
		env["ACCESS_SECRET"] = ""

		cfg, err := ResolveWith(envLookup(env), path)
		require.NoError(t, err)
		assert.Equal(t, SourceFile, cfg.Source)
	})
}

func TestResolve_File(t *testing.T) {
	noEnv := envLookup(nil)

	t.Run("ini", func(t *testing.T) {
		path := writeFile(t, "config.txt", validINI)

		cfg, err := ResolveWith(noEnv, path)
		require.NoError(t, err)

		assert.Equal(t, Intervals{MinDays: 2, MaxDays: 5}, cfg.Intervals)
		assert.Equal(t, Formatting{Lines: 2, LimitPerLine: 8}, cfg.Formatting)
		assert.Equal(t, "file-as", cfg.Credentials.AccessSecret)
	})

	t.Run("ini keys are case insensitive", func(t *testing.T) {
		path := writeFile(t, "config.ini", `[INTERVALS]
MinInterval = 1
MaxInterval = 1
[Formatting]
Lines = 4
Limit_Per_Line = 4
[credentials]
consumer_key = a
consumer_secret = b
access_key = c
access_secret = d
`)
		cfg, err := ResolveWith(noEnv, path)
		require.NoError(t, err)
		assert.Equal(t, "a", cfg.Credentials.ConsumerKey)
		assert.Equal(t, 1, cfg.Intervals.MaxDays)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `intervals:
  mininterval: 1
  maxinterval: 2
formatting:
  lines: 4
  limit_per_line: 4
credentials:
  CONSUMER_KEY: y-ck
  CONSUMER_SECRET: y-cs
  ACCESS_KEY: y-ak
  ACCESS_SECRET: y-as
`)
		cfg, err := ResolveWith(noEnv, path)
		require.NoError(t, err)

		assert.Equal(t, Intervals{MinDays: 1, MaxDays: 2}, cfg.Intervals)
		assert.Equal(t, Formatting{Lines: 4, LimitPerLine: 4}, cfg.Formatting)
		assert.Equal(t, "y-ck", cfg.Credentials.ConsumerKey)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ResolveWith(noEnv, filepath.Join(t.TempDir(), "nope.txt"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, "config.yml", "intervals: [1, 2\n")
		_, err := ResolveWith(noEnv, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("reports every problem at once", func(t *testing.T) {
		path := writeFile(t, "config.txt", `[intervals]
mininterval = soon
[formatting]
lines = 4
limit_per_line = 4
`)
		_, err := ResolveWith(noEnv, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)

		msg := err.Error()
		assert.Contains(t, msg, "invalid intervals.mininterval")
		assert.Contains(t, msg, "missing intervals.maxinterval")
		assert.Contains(t, msg, "missing section [credentials]")
		assert.Equal(t, 1, countOccurrences(msg, "missing section [credentials]"))
	})

	t.Run("semantic validation", func(t *testing.T) {
		path := writeFile(t, "config.txt", `[intervals]
mininterval = 5
maxinterval = 2
[formatting]
lines = 0
limit_per_line = 4
[credentials]
CONSUMER_KEY = a
CONSUMER_SECRET =
ACCESS_KEY = c
ACCESS_SECRET = d
`)
		_, err := ResolveWith(noEnv, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)

		msg := err.Error()
		assert.Contains(t, msg, "CONSUMER_SECRET is required")
		assert.Contains(t, msg, "maxinterval (2) must not be less than mininterval (5)")
		assert.Contains(t, msg, "lines must be at least 1")
	})
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}

type fixedSource struct{ n int }

func (f fixedSource) IntN(n int) int {
	if f.n >= n {
		return n - 1
	}
	return f.n
}

func TestIntervals_SampleCooldown(t *testing.T) {
	day := 24 * time.Hour

	tests := []struct {
		name      string
		intervals Intervals
		draw      int
		expected  time.Duration
	}{
		{"lower bound", Intervals{MinDays: 1, MaxDays: 3}, 0, day},
		{"upper bound", Intervals{MinDays: 1, MaxDays: 3}, 2, 3 * day},
		{"equal bounds", Intervals{MinDays: 2, MaxDays: 2}, 5, 2 * day},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.intervals.SampleCooldown(fixedSource{n: tt.draw})
			assert.Equal(t, tt.expected, got)
		})
	}
}
