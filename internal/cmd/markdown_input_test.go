package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadMarkdownFromFlags_Content(t *testing.T) {
	got, err := readMarkdownFromFlags("", "## Title", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "## Title" {
		t.Errorf("got %q", got)
	}
}

func TestReadMarkdownFromFlags_BothSources(t *testing.T) {
	_, err := readMarkdownFromFlags("post.md", "text", nil)
	if err == nil || !strings.Contains(err.Error(), "only one of") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestReadMarkdownFromFlags_BlankRejected(t *testing.T) {
	_, err := readMarkdownFromFlags("", "", bytes.NewBufferString("  \n\n"))
	if !errors.Is(err, errMarkdownRequired) {
		t.Fatalf("expected errMarkdownRequired, got %v", err)
	}
}

func TestReadMarkdownFromFlags_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(path, []byte("- a\n- b\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := readMarkdownFromFlags(path, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "- a\n- b" {
		t.Errorf("got %q", got)
	}
}

func TestReadMarkdownInput_AllowsBlank(t *testing.T) {
	got, err := readMarkdownInput("", "", bytes.NewBufferString(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestReadMarkdownInput_NoSourceFromTerminal(t *testing.T) {
	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Skipf("open %s: %v", os.DevNull, err)
	}
	defer f.Close()

	// os.DevNull is a character device, which inputHasData treats as
	// interactive.
	_, err = readMarkdownInput("", "", f)
	if !errors.Is(err, errMarkdownRequired) {
		t.Fatalf("expected errMarkdownRequired, got %v", err)
	}
}
