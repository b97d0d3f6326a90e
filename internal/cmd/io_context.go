package cmd

import (
	"context"
	"io"
	"os"

	"github.com/salmonumbrella/tiptap-cli/internal/output"
)

// streams are the command's stdin, stdout and stderr. Commands read them
// from the context so tests can run rootCmd against buffers.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

type (
	streamsKey     struct{}
	errorFormatKey struct{}
)

func withIO(ctx context.Context, in io.Reader, out, err io.Writer) context.Context {
	return context.WithValue(ctx, streamsKey{}, streams{in: in, out: out, err: err})
}

func streamsFromContext(ctx context.Context) streams {
	var s streams
	if ctx != nil {
		s, _ = ctx.Value(streamsKey{}).(streams)
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.err == nil {
		s.err = os.Stderr
	}
	return s
}

func stdinFromContext(ctx context.Context) io.Reader  { return streamsFromContext(ctx).in }
func stdoutFromContext(ctx context.Context) io.Writer { return streamsFromContext(ctx).out }
func stderrFromContext(ctx context.Context) io.Writer { return streamsFromContext(ctx).err }

// WithErrorFormat stores the --error-format value in the context.
func WithErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, format)
}

// ErrorFormatFromContext returns the stored error format, or "".
func ErrorFormatFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	format, _ := ctx.Value(errorFormatKey{}).(string)
	return format
}

// currentContext is the context of the executing command.
func currentContext() context.Context {
	if ctx := rootCmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func structuredOutputRequested() bool {
	return output.IsStructured(GetOutputFormat())
}

// printStructured writes data to stdout in the selected output format.
func printStructured(data interface{}) error {
	ctx := currentContext()
	return output.NewPrinter(stdoutFromContext(ctx), GetOutputFormat()).Print(ctx, data)
}
