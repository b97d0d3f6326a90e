package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/tiptap-cli/internal/api"
	"github.com/salmonumbrella/tiptap-cli/internal/output"
)

func TestValidateErrorFormat(t *testing.T) {
	for _, ok := range []string{"", "auto", "text", "json", "yaml", "AUTO", " json "} {
		assert.NoError(t, validateErrorFormat(ok), ok)
	}
	for _, bad := range []string{"xml", "ndjson", "table"} {
		assert.Error(t, validateErrorFormat(bad), bad)
	}
}

func TestEffectiveErrorFormat(t *testing.T) {
	tests := []struct {
		errorFormat  string
		outputFormat output.Format
		want         string
	}{
		{"", output.FormatText, "text"},
		{"auto", output.FormatJSON, "json"},
		{"auto", output.FormatNDJSON, "json"},
		{"auto", output.FormatYAML, "yaml"},
		{"auto", output.FormatTable, "text"},
		{"json", output.FormatText, "json"},
		{"text", output.FormatJSON, "text"},
		{"YAML", output.FormatJSON, "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.errorFormat+"/"+string(tt.outputFormat), func(t *testing.T) {
			ctx := WithErrorFormat(context.Background(), tt.errorFormat)
			ctx = output.WithFormat(ctx, tt.outputFormat)
			assert.Equal(t, tt.want, effectiveErrorFormat(ctx))
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     string
		category string
		hinted   bool
	}{
		{"plain", errors.New("boom"), "error", categorySystem, false},
		{"auth", api.AuthenticationError{Message: "invalid API key"}, "auth", categoryUser, true},
		{"validation", api.ValidationError{Message: "title is required"}, "validation", categoryUser, false},
		{"not found", fmt.Errorf("failed to get post: %w", api.NotFoundError{Message: "post not found: x"}), "not_found", categoryUser, false},
		{"slug taken", api.ConflictError{Message: "conflict: duplicate key value"}, "conflict", categoryUser, true},
		{"rate limit", api.RateLimitError{Message: "rate limit exceeded"}, "rate_limit", categorySystem, true},
		{"deadline", fmt.Errorf("failed to list posts: %w", context.DeadlineExceeded), "timeout", categorySystem, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := classifyError(tt.err)
			assert.Equal(t, tt.err.Error(), body.Message)
			assert.Equal(t, tt.kind, body.Type)
			assert.Equal(t, tt.category, body.Category)
			assert.Equal(t, tt.hinted, body.Hint != "")
		})
	}
}

func errorContext(format string, errBuf *bytes.Buffer) context.Context {
	ctx := withIO(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, errBuf)
	ctx = WithErrorFormat(ctx, format)
	return output.WithFormat(ctx, output.FormatText)
}

func TestPrintCommandError(t *testing.T) {
	t.Run("nil prints nothing", func(t *testing.T) {
		var errBuf bytes.Buffer
		printCommandError(errorContext("json", &errBuf), nil)
		assert.Zero(t, errBuf.Len())
	})

	t.Run("text", func(t *testing.T) {
		var errBuf bytes.Buffer
		printCommandError(errorContext("text", &errBuf), errors.New("markdown input is required"))
		assert.Equal(t, "markdown input is required\n", errBuf.String())
	})

	t.Run("json", func(t *testing.T) {
		var errBuf bytes.Buffer
		printCommandError(errorContext("json", &errBuf), api.ConflictError{Message: "conflict: <slug> taken"})

		var got errorEnvelope
		require.NoError(t, json.Unmarshal(errBuf.Bytes(), &got))
		assert.Equal(t, "conflict", got.Error.Type)
		assert.Equal(t, "conflict: <slug> taken", got.Error.Message)
		assert.NotContains(t, errBuf.String(), `<`)
	})

	t.Run("yaml", func(t *testing.T) {
		var errBuf bytes.Buffer
		printCommandError(errorContext("yaml", &errBuf), api.ValidationError{Message: "title is required"})

		var got errorEnvelope
		require.NoError(t, yaml.Unmarshal(errBuf.Bytes(), &got))
		assert.Equal(t, "validation", got.Error.Type)
		assert.Equal(t, categoryUser, got.Error.Category)
		assert.Empty(t, got.Error.Hint)
		assert.NotContains(t, errBuf.String(), "hint")
	})
}
