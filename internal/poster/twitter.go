package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

const (
	twitterBaseURL = "https://api.twitter.com"
	twitterWebURL  = "https://twitter.com"

	defaultRequestTimeout = 30 * time.Second
)

// TwitterPoster posts to Twitter/X through the v2 API using OAuth 1.0a user
// context.
type TwitterPoster struct {
	httpClient *http.Client
	baseURL    string

	user *Identity
}

// TwitterConfig holds configuration for the Twitter poster.
type TwitterConfig struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string

	// BaseURL overrides the API host (tests).
	BaseURL string
	// Timeout bounds every request; zero means 30s.
	Timeout time.Duration
}

// NewTwitterPoster creates a new Twitter poster.
func NewTwitterPoster(cfg TwitterConfig) *TwitterPoster {
	oauthConfig := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)

	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	httpClient.Timeout = cfg.Timeout
	if httpClient.Timeout == 0 {
		httpClient.Timeout = defaultRequestTimeout
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = twitterBaseURL
	}

	return &TwitterPoster{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Platform returns the platform name.
func (t *TwitterPoster) Platform() string {
	return "twitter"
}

type userResponse struct {
	Data struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
}

// Login looks up the authenticated user. It doubles as a credential check.
func (t *TwitterPoster) Login(ctx context.Context) (*Identity, error) {
	var resp userResponse
	if err := t.do(ctx, http.MethodGet, "/2/users/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("look up authenticated user: %w", err)
	}
	if resp.Data.ID == "" {
		return nil, fmt.Errorf("look up authenticated user: empty user id in response")
	}

	t.user = &Identity{
		ID:       resp.Data.ID,
		Username: resp.Data.Username,
		Name:     resp.Data.Name,
	}

	slog.Debug("authenticated with Twitter",
		"username", t.user.Username,
		"id", t.user.ID,
	)

	identity := *t.user
	return &identity, nil
}

func (t *TwitterPoster) ensureLogin(ctx context.Context) error {
	if t.user != nil {
		return nil
	}
	_, err := t.Login(ctx)
	return err
}

type timelineResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// LatestPost returns the most recent post of the authenticated account.
func (t *TwitterPoster) LatestPost(ctx context.Context) (*Post, error) {
	if err := t.ensureLogin(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	// The API does not accept fewer than five results.
	query.Set("max_results", "5")
	query.Set("tweet.fields", "created_at")
	path := "/2/users/" + url.PathEscape(t.user.ID) + "/tweets?" + query.Encode()

	var resp timelineResponse
	if err := t.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch timeline: %w", err)
	}

	var latest *Post
	for _, tweet := range resp.Data {
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of tweet %s: %w", tweet.ID, err)
		}
		if latest == nil || createdAt.After(latest.CreatedAt) {
			latest = &Post{
				ID:        tweet.ID,
				Text:      tweet.Text,
				CreatedAt: createdAt,
			}
		}
	}

	return latest, nil
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// Post publishes content to Twitter.
func (t *TwitterPoster) Post(ctx context.Context, content PostContent) (*PostResult, error) {
	if err := ValidateText(content.Text, TwitterMaxLength); err != nil {
		return nil, err
	}
	if err := t.ensureLogin(ctx); err != nil {
		return nil, err
	}

	var resp createTweetResponse
	if err := t.do(ctx, http.MethodPost, "/2/tweets", createTweetRequest{Text: content.Text}, &resp); err != nil {
		return nil, fmt.Errorf("create tweet: %w", err)
	}

	postURL := ""
	if resp.Data.ID != "" {
		postURL = fmt.Sprintf("%s/%s/status/%s", twitterWebURL, t.user.Username, resp.Data.ID)
	}

	slog.Debug("posted to Twitter",
		"id", resp.Data.ID,
		"url", postURL,
	)

	return &PostResult{
		PostID:  resp.Data.ID,
		PostURL: postURL,
	}, nil
}

// do sends a signed request and decodes a JSON response into out.
func (t *TwitterPoster) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w%s", ErrRateLimited, resetSuffix(resp.Header))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d): %s", ErrAuthentication, resp.StatusCode, string(respBody))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// resetSuffix describes the x-rate-limit-reset header, if present.
func resetSuffix(h http.Header) string {
	raw := h.Get("x-rate-limit-reset")
	if raw == "" {
		return ""
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ""
	}
	return " (window resets at " + time.Unix(secs, 0).UTC().Format(time.RFC3339) + ")"
}
