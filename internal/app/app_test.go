package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abdulachik/flowerbot/internal/config"
	"github.com/abdulachik/flowerbot/internal/garden"
	"github.com/abdulachik/flowerbot/internal/poster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPoster struct {
	loginErr error
	latest   *poster.Post
	posted   []string
}

func (s *stubPoster) Platform() string { return "stub" }

func (s *stubPoster) Login(ctx context.Context) (*poster.Identity, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &poster.Identity{ID: "7", Username: "tinyflowerbeds", Name: "Tiny Flower Beds"}, nil
}

func (s *stubPoster) LatestPost(ctx context.Context) (*poster.Post, error) {
	return s.latest, nil
}

func (s *stubPoster) Post(ctx context.Context, content poster.PostContent) (*poster.PostResult, error) {
	s.posted = append(s.posted, content.Text)
	return &poster.PostResult{PostID: "99", PostURL: "https://example.test/99"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Source: config.SourceEnvironment,
		Credentials: config.Credentials{
			ConsumerKey: "a", ConsumerSecret: "b", AccessKey: "c", AccessSecret: "d",
		},
		Intervals:  config.Intervals{MinDays: 2, MaxDays: 2},
		Formatting: config.Formatting{Lines: 2, LimitPerLine: 3},
	}
}

func TestNew(t *testing.T) {
	t.Run("samples cooldown once", func(t *testing.T) {
		a, err := New(context.Background(), testConfig(), Options{Poster: &stubPoster{}})
		require.NoError(t, err)
		defer a.Close()

		assert.Equal(t, 48*time.Hour, a.Cooldown)
		assert.Nil(t, a.Store)
	})

	t.Run("defaults to the twitter client", func(t *testing.T) {
		a, err := New(context.Background(), testConfig(), Options{})
		require.NoError(t, err)
		defer a.Close()

		assert.Equal(t, "twitter", a.Poster.Platform())
	})

	t.Run("opens the journal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "journal", "flowerbot.db")
		a, err := New(context.Background(), testConfig(), Options{
			Poster:      &stubPoster{},
			JournalPath: path,
		})
		require.NoError(t, err)
		defer a.Close()

		require.NotNil(t, a.Store)
		count, err := a.Store.CountPosts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("runs without an unopenable journal", func(t *testing.T) {
		// A regular file where the journal directory should be.
		blocker := filepath.Join(t.TempDir(), "data")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		t.Setenv("CI", "")
		t.Setenv("CONTINUOUS_INTEGRATION", "")

		stub := &stubPoster{latest: &poster.Post{CreatedAt: time.Now().Add(-72 * time.Hour)}}
		a, err := New(context.Background(), testConfig(), Options{
			Poster:      stub,
			JournalPath: filepath.Join(blocker, "flowerbot.db"),
		})
		require.NoError(t, err)
		defer a.Close()

		assert.Nil(t, a.Store)

		_, err = a.Scheduler(SchedulerOptions{}).Poll(context.Background())
		require.NoError(t, err)
		assert.Len(t, stub.posted, 1)
	})
}

func TestApp_Login(t *testing.T) {
	t.Run("returns identity", func(t *testing.T) {
		a, err := New(context.Background(), testConfig(), Options{Poster: &stubPoster{}})
		require.NoError(t, err)

		id, err := a.Login(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tinyflowerbeds", id.Username)
	})

	t.Run("keeps the authentication sentinel", func(t *testing.T) {
		stub := &stubPoster{loginErr: fmt.Errorf("look up user: %w", poster.ErrAuthentication)}
		a, err := New(context.Background(), testConfig(), Options{Poster: stub})
		require.NoError(t, err)

		_, err = a.Login(context.Background())
		assert.ErrorIs(t, err, poster.ErrAuthentication)
	})
}

func TestApp_Compose(t *testing.T) {
	a, err := New(context.Background(), testConfig(), Options{
		Poster: &stubPoster{},
		Rand:   rand.New(rand.NewPCG(3, 4)),
	})
	require.NoError(t, err)

	bed := a.Compose()
	lines := strings.Split(bed, "\n")
	require.Len(t, lines, 2)
	assert.Len(t, garden.Symbols(bed), 6)
}

func TestApp_Scheduler(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("CONTINUOUS_INTEGRATION", "")

	stub := &stubPoster{latest: &poster.Post{CreatedAt: time.Now().Add(-72 * time.Hour)}}
	a, err := New(context.Background(), testConfig(), Options{
		Poster:      stub,
		JournalPath: filepath.Join(t.TempDir(), "flowerbot.db"),
	})
	require.NoError(t, err)
	defer a.Close()

	wait, err := a.Scheduler(SchedulerOptions{}).Poll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Cooldown, wait)
	require.Len(t, stub.posted, 1)

	posts, err := a.Store.ListRecentPosts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, stub.posted[0], posts[0].Content)
	assert.Equal(t, "stub", posts[0].Platform)
}
