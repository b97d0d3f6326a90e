package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/tiptap-cli/internal/api"
	"github.com/salmonumbrella/tiptap-cli/internal/output"
)

const (
	categoryUser   = "user"
	categorySystem = "system"
)

// errorBody is the machine readable form of a failed command.
type errorBody struct {
	Message  string `json:"message" yaml:"message"`
	Type     string `json:"type" yaml:"type"`
	Category string `json:"category" yaml:"category"`
	Hint     string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error" yaml:"error"`
}

// errorClass matches one family of errors. The first match wins.
type errorClass struct {
	kind     string
	category string
	hint     string
	match    func(error) bool
}

func errorAs[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

var errorClasses = []errorClass{
	{"auth", categoryUser, "run 'tiptap auth login' or check SUPABASE_SERVICE_ROLE_KEY", errorAs[api.AuthenticationError]},
	{"validation", categoryUser, "", errorAs[api.ValidationError]},
	{"not_found", categoryUser, "", errorAs[api.NotFoundError]},
	{"conflict", categoryUser, "a post with this slug already exists; retry or change --title", errorAs[api.ConflictError]},
	{"rate_limit", categorySystem, "wait a moment and retry", errorAs[api.RateLimitError]},
	{"timeout", categorySystem, "raise timeout with 'tiptap config set timeout 60s'", func(err error) bool {
		return errors.Is(err, context.DeadlineExceeded)
	}},
}

func classifyError(err error) errorBody {
	body := errorBody{Message: err.Error(), Type: "error", Category: categorySystem}
	for _, c := range errorClasses {
		if c.match(err) {
			body.Type = c.kind
			body.Category = c.category
			body.Hint = c.hint
			break
		}
	}
	return body
}

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("invalid --error-format %q (expected auto|text|json|yaml)", format)
}

// effectiveErrorFormat resolves "auto" against the output format.
func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format != "" && format != "auto" {
		return format
	}
	switch output.FormatFromContext(ctx) {
	case output.FormatJSON, output.FormatNDJSON:
		return "json"
	case output.FormatYAML:
		return "yaml"
	}
	return "text"
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	w := stderrFromContext(ctx)
	envelope := errorEnvelope{Error: classifyError(err)}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(envelope)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		_ = enc.Encode(envelope)
		_ = enc.Close()
	default:
		_, _ = fmt.Fprintln(w, err)
	}
}
