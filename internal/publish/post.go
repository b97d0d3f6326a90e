// Package publish turns a markdown draft into a post row ready to insert.
package publish

import (
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/salmonumbrella/tiptap-cli/internal/api"
	"github.com/salmonumbrella/tiptap-cli/internal/tiptap"
)

// MaxExcerptRunes bounds stored excerpts. Longer excerpts are cut.
const MaxExcerptRunes = 160

// Draft is the user supplied part of a post.
type Draft struct {
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	Body       string `json:"body"`
	CoverImage string `json:"cover_image"`
	Published  bool   `json:"published"`
}

// Validate checks the draft before any conversion happens.
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required, validation.By(notBlank("title"))),
		validation.Field(&d.Body, validation.Required, validation.By(notBlank("body"))),
		validation.Field(&d.CoverImage, is.URL),
	)
}

func notBlank(name string) validation.RuleFunc {
	return func(value interface{}) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError("validation_"+name+"_blank", "cannot be blank")
		}
		return nil
	}
}

// Build validates the draft, converts the body and picks a slug that does
// not collide with existing posts.
func Build(d Draft, existing []api.PostSummary, now time.Time) (api.NewPost, error) {
	if err := d.Validate(); err != nil {
		return api.NewPost{}, api.ValidationError{Message: err.Error()}
	}

	title := strings.TrimSpace(d.Title)
	base, err := Slugify(title)
	if err != nil {
		return api.NewPost{}, api.ValidationError{Message: err.Error()}
	}

	doc := tiptap.ParseMarkdown(d.Body)

	excerpt := clipExcerpt(strings.TrimSpace(d.Excerpt))
	if excerpt == "" {
		excerpt = tiptap.Excerpt(doc, MaxExcerptRunes)
	}

	now = now.UTC()
	return api.NewPost{
		Title:      title,
		Slug:       UniqueSlug(base, api.Slugs(existing)),
		Content:    doc,
		Excerpt:    optional(excerpt),
		CoverImage: optional(strings.TrimSpace(d.CoverImage)),
		Published:  d.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// clipExcerpt cuts s to MaxExcerptRunes runes.
func clipExcerpt(s string) string {
	if utf8.RuneCountInString(s) <= MaxExcerptRunes {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:MaxExcerptRunes]))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
