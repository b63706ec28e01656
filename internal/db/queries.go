package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed width so posted_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the journal statements.
type Queries struct {
	db DBTX
}

// New wraps a connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Post is one published flower bed.
type Post struct {
	ID              int64
	Platform        string
	PlatformPostID  sql.NullString
	PostUrl         sql.NullString
	Content         string
	Symbols         int64
	CooldownSeconds int64
	PostedAt        time.Time
}

// CreatePostParams holds the columns of a new journal row.
type CreatePostParams struct {
	Platform        string
	PlatformPostID  sql.NullString
	PostUrl         sql.NullString
	Content         string
	Symbols         int64
	CooldownSeconds int64
	PostedAt        time.Time
}

const createPost = `
INSERT INTO posts (platform, platform_post_id, post_url, content, symbols, cooldown_seconds, posted_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// CreatePost records a published post and returns its row id.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createPost,
		arg.Platform,
		arg.PlatformPostID,
		arg.PostUrl,
		arg.Content,
		arg.Symbols,
		arg.CooldownSeconds,
		arg.PostedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listRecentPosts = `
SELECT id, platform, platform_post_id, post_url, content, symbols, cooldown_seconds, posted_at
FROM posts
ORDER BY posted_at DESC, id DESC
LIMIT ?
`

// ListRecentPosts returns up to limit posts, newest first.
func (q *Queries) ListRecentPosts(ctx context.Context, limit int64) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listRecentPosts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Post
	for rows.Next() {
		var (
			i        Post
			postedAt string
		)
		if err := rows.Scan(
			&i.ID,
			&i.Platform,
			&i.PlatformPostID,
			&i.PostUrl,
			&i.Content,
			&i.Symbols,
			&i.CooldownSeconds,
			&postedAt,
		); err != nil {
			return nil, err
		}
		i.PostedAt, err = time.Parse(timeLayout, postedAt)
		if err != nil {
			return nil, fmt.Errorf("parse posted_at of post %d: %w", i.ID, err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countPosts = `SELECT COUNT(*) FROM posts`

// CountPosts returns the number of journal rows.
func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPosts).Scan(&count)
	return count, err
}

const countPostsByPlatform = `SELECT COUNT(*) FROM posts WHERE platform = ?`

// CountPostsByPlatform returns the number of journal rows for a platform.
func (q *Queries) CountPostsByPlatform(ctx context.Context, platform string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPostsByPlatform, platform).Scan(&count)
	return count, err
}
