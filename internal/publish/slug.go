package publish

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const suffixLen = 6

// ErrEmptySlug is returned when a title has no characters a slug can keep.
var ErrEmptySlug = errors.New("title produces an empty slug")

// newSuffix is swapped in tests.
var newSuffix = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
}

// Slugify turns a post title into a URL slug.
func Slugify(title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", ErrEmptySlug
	}
	s, err := slug.Normalize(title)
	if err != nil {
		return "", fmt.Errorf("slugify %q: %w", title, err)
	}
	if s == "" {
		return "", ErrEmptySlug
	}
	return s, nil
}

// UniqueSlug returns base, or base with a short random suffix when base is
// already taken.
func UniqueSlug(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for {
		candidate := base + "-" + newSuffix()
		if !taken[candidate] {
			return candidate
		}
	}
}
