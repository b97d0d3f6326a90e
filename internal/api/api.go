package api

import (
	"context"
	"time"

	"github.com/salmonumbrella/tiptap-cli/internal/tiptap"
)

// PostsAPI defines the operations commands need against the posts table.
// The HTTP Client implements it; tests substitute fakes.
type PostsAPI interface {
	// ListRecentPosts returns up to limit posts, newest first.
	// A limit of 0 means the server default.
	ListRecentPosts(ctx context.Context, limit int) ([]PostSummary, error)

	// InsertPost stores a new post and returns the row as stored.
	InsertPost(ctx context.Context, post NewPost) (*Post, error)

	// GetPostBySlug returns NotFoundError when no post has the slug.
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)

	// Ping verifies the URL and key with a minimal read.
	Ping(ctx context.Context) error

	// Table returns the posts table name.
	Table() string
}

// PostSummary is the subset of columns used for listings and slug checks.
type PostSummary struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	CoverImage *string   `json:"cover_image"`
	CreatedAt  time.Time `json:"created_at"`
}

// Post is a full row of the posts table.
type Post struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Slug       string          `json:"slug"`
	Content    tiptap.Document `json:"content"`
	Excerpt    *string         `json:"excerpt"`
	CoverImage *string         `json:"cover_image"`
	Published  bool            `json:"published"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewPost is the insert payload. Nil pointers are sent as null.
type NewPost struct {
	Title      string          `json:"title"`
	Slug       string          `json:"slug"`
	Content    tiptap.Document `json:"content"`
	Excerpt    *string         `json:"excerpt"`
	CoverImage *string         `json:"cover_image"`
	Published  bool            `json:"published"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Slugs returns the set of slugs in posts.
func Slugs(posts []PostSummary) map[string]bool {
	taken := make(map[string]bool, len(posts))
	for _, p := range posts {
		taken[p.Slug] = true
	}
	return taken
}
