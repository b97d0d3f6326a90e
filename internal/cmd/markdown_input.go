package cmd

import (
	"errors"
	"io"
	"strings"
)

var errMarkdownRequired = errors.New("markdown content required (use --markdown, --markdown-file, or stdin)")

// readMarkdownFromFlags resolves markdown from --markdown, --markdown-file
// or piped stdin and rejects blank input.
func readMarkdownFromFlags(source, content string, stdin io.Reader) (string, error) {
	markdown, err := readMarkdownInput(source, content, stdin)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(markdown) == "" {
		return "", errMarkdownRequired
	}
	return markdown, nil
}

// readMarkdownInput is readMarkdownFromFlags without the blank check.
// Returns errMarkdownRequired only when no source was given at all.
func readMarkdownInput(source, content string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(source) != "" && content != "" {
		return "", errors.New("use only one of --markdown or --markdown-file")
	}

	if content != "" {
		return content, nil
	}

	if strings.TrimSpace(source) != "" {
		return readInputSource(source, stdin)
	}

	if inputHasData(stdin) {
		return readInputSource("-", stdin)
	}

	return "", errMarkdownRequired
}
