package cmd

import (
	"context"

	"github.com/salmonumbrella/tiptap-cli/internal/api"
)

type fakeClient struct {
	ListRecentPostsFunc func(context.Context, int) ([]api.PostSummary, error)
	InsertPostFunc      func(context.Context, api.NewPost) (*api.Post, error)
	GetPostBySlugFunc   func(context.Context, string) (*api.Post, error)
	PingFunc            func(context.Context) error
	TableName           string
}

func (f *fakeClient) ListRecentPosts(ctx context.Context, limit int) ([]api.PostSummary, error) {
	if f.ListRecentPostsFunc != nil {
		return f.ListRecentPostsFunc(ctx, limit)
	}
	return nil, nil
}

func (f *fakeClient) InsertPost(ctx context.Context, post api.NewPost) (*api.Post, error) {
	if f.InsertPostFunc != nil {
		return f.InsertPostFunc(ctx, post)
	}
	return &api.Post{
		ID:         "00000000-0000-0000-0000-000000000001",
		Title:      post.Title,
		Slug:       post.Slug,
		Content:    post.Content,
		Excerpt:    post.Excerpt,
		CoverImage: post.CoverImage,
		Published:  post.Published,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}, nil
}

func (f *fakeClient) GetPostBySlug(ctx context.Context, slug string) (*api.Post, error) {
	if f.GetPostBySlugFunc != nil {
		return f.GetPostBySlugFunc(ctx, slug)
	}
	return nil, api.NotFoundError{Message: "post not found: " + slug}
}

func (f *fakeClient) Ping(ctx context.Context) error {
	if f.PingFunc != nil {
		return f.PingFunc(ctx)
	}
	return nil
}

func (f *fakeClient) Table() string {
	if f.TableName != "" {
		return f.TableName
	}
	return api.DefaultTable
}

var _ api.PostsAPI = (*fakeClient)(nil)
