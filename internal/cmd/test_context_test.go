package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/salmonumbrella/tiptap-cli/internal/output"
)

// withTestContext points rootCmd and the format globals at format and
// returns the buffer stdout is written to. State is restored on cleanup.
func withTestContext(t *testing.T, format output.Format) *bytes.Buffer {
	t.Helper()
	out := &bytes.Buffer{}

	ctx := withIO(context.Background(), &bytes.Buffer{}, out, &bytes.Buffer{})
	ctx = output.WithFormat(ctx, format)
	ctx = output.WithQuiet(ctx, true)
	rootCmd.SetContext(ctx)

	prevType, prevFmt := outputType, outputFmt
	outputType, outputFmt = format, string(format)

	t.Cleanup(func() {
		outputType, outputFmt = prevType, prevFmt
		rootCmd.SetContext(context.Background())
	})
	return out
}
