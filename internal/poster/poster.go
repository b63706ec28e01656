package poster

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAuthentication is returned when the platform rejects the credentials.
	ErrAuthentication = errors.New("authentication rejected")

	// ErrRateLimited is returned when the platform asks the caller to back off.
	ErrRateLimited = errors.New("rate limited")
)

// Identity describes the authenticated account.
type Identity struct {
	ID       string
	Username string
	Name     string
}

// Post is a post already published on the platform.
type Post struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// PostContent represents the content to be posted.
type PostContent struct {
	Text string
}

// PostResult represents the result of a post.
type PostResult struct {
	PostID  string
	PostURL string
}

// Poster is the interface for posting to social media platforms.
type Poster interface {
	// Platform returns the name of the platform.
	Platform() string

	// Login checks the credentials and returns the authenticated account.
	Login(ctx context.Context) (*Identity, error)

	// LatestPost returns the account's most recent post, or nil if the
	// account has never posted.
	LatestPost(ctx context.Context) (*Post, error)

	// Post publishes content to the platform.
	Post(ctx context.Context, content PostContent) (*PostResult, error)
}
