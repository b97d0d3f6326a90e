package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/tiptap-cli/internal/api"
	"github.com/salmonumbrella/tiptap-cli/internal/logging"
	"github.com/salmonumbrella/tiptap-cli/internal/output"
	"github.com/salmonumbrella/tiptap-cli/internal/publish"
	"github.com/salmonumbrella/tiptap-cli/internal/tiptap"
)

// Post command group
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish and inspect blog posts",
	Long: `Publish markdown as blog posts and inspect stored posts.

Posts are rows of the configured table (default "posts"). The body is stored
as a Tiptap JSON document in the content column.`,
	Annotations: map[string]string{annotationNeedsClient: "true"},
}

// postResult wraps a created or prepared post. Only Post and DryRun are
// encoded; the rest feeds the text summary.
type postResult struct {
	Post   interface{} `json:"post"`
	DryRun bool        `json:"dry_run,omitempty"`

	title, slug string
	published   bool
	createdAt   time.Time
	excerpt     *string
}

func (r postResult) RenderText(w io.Writer) error {
	status := "published"
	if !r.published {
		status = "draft"
	}
	prefix := "Created post"
	if r.DryRun {
		prefix = "Would create post"
	}
	fmt.Fprintf(w, "%s: %s\n", prefix, r.title)
	fmt.Fprintf(w, "  slug:    %s\n", r.slug)
	fmt.Fprintf(w, "  status:  %s\n", status)
	if r.excerpt != nil {
		fmt.Fprintf(w, "  excerpt: %s\n", *r.excerpt)
	}
	_, err := fmt.Fprintf(w, "  created: %s\n", r.createdAt.Format(time.RFC3339))
	return err
}

var postCreateCmd = &cobra.Command{
	Use:   "create [file]",
	Short: "Convert markdown and publish it as a post",
	Long: `Convert markdown to a Tiptap document and insert it as a new post.

The slug is derived from the title. When a recent post already uses it, a
short random suffix is appended. Without --excerpt the excerpt is taken from
the first paragraph.

Examples:
  tiptap post create post.md --title "Quantum Week"
  cat post.md | tiptap post create --title "Notes" --draft
  tiptap post create --title "Hello" --markdown "## Hi" --dry-run -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		excerpt, _ := cmd.Flags().GetString("excerpt")
		cover, _ := cmd.Flags().GetString("cover-image")
		draftFlag, _ := cmd.Flags().GetBool("draft")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		content, _ := cmd.Flags().GetString("markdown")
		source, _ := cmd.Flags().GetString("markdown-file")

		if len(args) == 1 {
			if source != "" {
				return fmt.Errorf("use only one of a file argument or --markdown-file")
			}
			source = args[0]
		}

		body, err := readMarkdownFromFlags(source, content, cmd.InOrStdin())
		if err != nil {
			return err
		}

		draft := publish.Draft{
			Title:      title,
			Excerpt:    excerpt,
			Body:       body,
			CoverImage: cover,
			Published:  !draftFlag,
		}
		// Build validates too; checking here fails before any request.
		if err := draft.Validate(); err != nil {
			return api.ValidationError{Message: err.Error()}
		}

		ctx := cmd.Context()
		logger := logging.FromContext(ctx)
		client := GetClient()

		existing, err := client.ListRecentPosts(ctx, appConfig.Recent())
		if err != nil {
			return fmt.Errorf("failed to list recent posts: %w", err)
		}

		post, err := publish.Build(draft, existing, nowFunc())
		if err != nil {
			return err
		}
		logger.Debug().
			Str("slug", post.Slug).
			Int("recent", len(existing)).
			Int("blocks", len(post.Content.Content)).
			Msg("post prepared")

		if dryRun {
			return printStructured(postResult{
				Post:      post,
				DryRun:    true,
				title:     post.Title,
				slug:      post.Slug,
				published: post.Published,
				createdAt: post.CreatedAt,
				excerpt:   post.Excerpt,
			})
		}

		created, err := client.InsertPost(ctx, post)
		if err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}

		return printStructured(postResult{
			Post:      created,
			title:     created.Title,
			slug:      created.Slug,
			published: created.Published,
			createdAt: created.CreatedAt,
			excerpt:   created.Excerpt,
		})
	},
}

// postList renders post summaries.
type postList []api.PostSummary

func (l postList) Table() output.Table {
	t := output.Table{Headers: []string{"SLUG", "TITLE", "CREATED", "COVER"}}
	for _, p := range l {
		cover := "-"
		if p.CoverImage != nil && *p.CoverImage != "" {
			cover = *p.CoverImage
		}
		t.Rows = append(t.Rows, []string{
			p.Slug,
			truncateString(p.Title, 50),
			p.CreatedAt.Format("2006-01-02 15:04"),
			cover,
		})
	}
	return t
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent posts",
	Long: `List the most recent posts, newest first.

Examples:
  tiptap post list
  tiptap post list --limit 5 -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = appConfig.Recent()
		}

		posts, err := GetClient().ListRecentPosts(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("failed to list posts: %w", err)
		}

		if structuredOutputRequested() {
			return printStructured(posts)
		}
		if len(posts) == 0 {
			fmt.Fprintln(stdoutFromContext(cmd.Context()), "No posts found.")
			return nil
		}
		return printStructured(postList(posts).Table())
	},
}

var postGetCmd = &cobra.Command{
	Use:   "get <slug>",
	Short: "Show a post",
	Long: `Show one post by slug.

With --content the body is printed as plain text instead of the summary.

Examples:
  tiptap post get quantum-week
  tiptap post get quantum-week --content
  tiptap post get quantum-week -o json --query '.content'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]
		showContent, _ := cmd.Flags().GetBool("content")

		post, err := GetClient().GetPostBySlug(cmd.Context(), slug)
		if err != nil {
			return fmt.Errorf("failed to get post: %w", err)
		}

		out := stdoutFromContext(cmd.Context())
		if showContent {
			text := tiptap.PlainText(post.Content)
			if structuredOutputRequested() {
				return printStructured(map[string]string{"slug": post.Slug, "text": text})
			}
			_, err := fmt.Fprintln(out, text)
			return err
		}

		if structuredOutputRequested() {
			return printStructured(post)
		}

		status := "published"
		if !post.Published {
			status = "draft"
		}
		fmt.Fprintf(out, "Title:   %s\n", post.Title)
		fmt.Fprintf(out, "Slug:    %s\n", post.Slug)
		fmt.Fprintf(out, "Status:  %s\n", status)
		if post.Excerpt != nil {
			fmt.Fprintf(out, "Excerpt: %s\n", *post.Excerpt)
		}
		if post.CoverImage != nil {
			fmt.Fprintf(out, "Cover:   %s\n", *post.CoverImage)
		}
		fmt.Fprintf(out, "Created: %s\n", post.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "Blocks:  %d\n", len(post.Content.Content))
		return nil
	},
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postListCmd)
	postCmd.AddCommand(postGetCmd)

	postCreateCmd.Flags().StringP("title", "t", "", "Post title (required)")
	postCreateCmd.Flags().String("excerpt", "", "Excerpt (default: first paragraph)")
	postCreateCmd.Flags().String("cover-image", "", "Cover image URL")
	postCreateCmd.Flags().Bool("draft", false, "Store as unpublished")
	postCreateCmd.Flags().Bool("dry-run", false, "Print the post instead of inserting it")
	postCreateCmd.Flags().StringP("markdown", "m", "", "Markdown body")
	postCreateCmd.Flags().String("markdown-file", "", "Read markdown body from file (use - for stdin)")
	_ = postCreateCmd.MarkFlagRequired("title")

	postListCmd.Flags().IntP("limit", "l", 0, "Maximum number of posts (default: recent_limit from config)")

	postGetCmd.Flags().Bool("content", false, "Print the post body as plain text")
}
