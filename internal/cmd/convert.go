package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/tiptap-cli/internal/logging"
	"github.com/salmonumbrella/tiptap-cli/internal/output"
	"github.com/salmonumbrella/tiptap-cli/internal/tiptap"
)

// documentResult prints a converted document. Structured formats get the
// Tiptap JSON through the embedded Document's MarshalJSON.
type documentResult struct {
	tiptap.Document
}

// RenderText writes an indented outline, one node per line.
func (r documentResult) RenderText(w io.Writer) error {
	if _, err := fmt.Fprintln(w, tiptap.TypeDoc); err != nil {
		return err
	}
	var err error
	tiptap.Walk(r.Document, func(node interface{}, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth+1), describeNode(node))
		return true
	})
	return err
}

// Table lists node counts by type.
func (r documentResult) Table() output.Table {
	return nodeStats(tiptap.Stats(r.Document)).Table()
}

func describeNode(node interface{}) string {
	switch n := node.(type) {
	case *tiptap.Heading:
		return fmt.Sprintf("%s level=%d", tiptap.TypeHeading, n.Level)
	case *tiptap.CodeBlock:
		lang := "none"
		if n.Language != nil {
			lang = *n.Language
		}
		lines := 0
		if n.RawText != "" {
			lines = strings.Count(n.RawText, "\n") + 1
		}
		return fmt.Sprintf("%s language=%s lines=%d", tiptap.TypeCodeBlock, lang, lines)
	case *tiptap.OrderedList:
		return fmt.Sprintf("%s start=%d", tiptap.TypeOrderedList, n.Start)
	case tiptap.Text:
		s := tiptap.TypeText + " " + strconv.Quote(n.Text)
		for _, m := range n.Marks {
			if m.Type == tiptap.MarkLink {
				s += " [link " + m.Href + "]"
				continue
			}
			s += " [" + string(m.Type) + "]"
		}
		return s
	default:
		return tiptap.NodeTypeOf(node)
	}
}

// nodeStats maps node and mark type names to counts.
type nodeStats map[string]int

func (s nodeStats) Table() output.Table {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	t := output.Table{Headers: []string{"TYPE", "COUNT"}}
	for _, name := range names {
		t.Rows = append(t.Rows, []string{name, strconv.Itoa(s[name])})
	}
	return t
}

// RenderText prints the counts as a two column table.
func (s nodeStats) RenderText(w io.Writer) error {
	for _, row := range s.Table().Rows {
		if _, err := fmt.Fprintf(w, "%-12s %s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert markdown to a Tiptap document",
	Long: `Convert markdown to a Tiptap (ProseMirror) JSON document.

Input comes from --markdown, --markdown-file, a file argument, or stdin.
Empty input produces an empty document. No credentials are needed.

Output:
  json/yaml/ndjson  the document tree
  text              an indented outline of the nodes
  table             node counts by type

Examples:
  tiptap convert post.md -o json
  echo "## Hello" | tiptap convert -o json
  tiptap convert --markdown "See [docs](https://example.com)" -o json --query '.content[0]'
  tiptap convert post.md --stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, _ := cmd.Flags().GetString("markdown")
		source, _ := cmd.Flags().GetString("markdown-file")
		showStats, _ := cmd.Flags().GetBool("stats")
		plain, _ := cmd.Flags().GetBool("plain")

		if len(args) == 1 {
			if source != "" {
				return fmt.Errorf("use only one of a file argument or --markdown-file")
			}
			source = args[0]
		}

		markdown, err := readMarkdownInput(source, content, cmd.InOrStdin())
		if err != nil && !errors.Is(err, errMarkdownRequired) {
			return err
		}

		doc := tiptap.ParseMarkdown(markdown)

		stats := tiptap.Stats(doc)
		logger := logging.FromContext(cmd.Context())
		logger.Debug().
			Int("blocks", len(doc.Content)).
			Int("nodes", totalNodes(stats)).
			Msg("converted markdown")

		switch {
		case showStats:
			return printStructured(nodeStats(stats))
		case plain:
			text := tiptap.PlainText(doc)
			if structuredOutputRequested() {
				return printStructured(map[string]string{"text": text})
			}
			_, err := fmt.Fprintln(stdoutFromContext(cmd.Context()), text)
			return err
		default:
			return printStructured(documentResult{doc})
		}
	},
}

func totalNodes(stats map[string]int) int {
	n := 0
	for name, count := range stats {
		switch tiptap.MarkType(name) {
		case tiptap.MarkBold, tiptap.MarkItalic, tiptap.MarkLink:
			continue
		}
		n += count
	}
	return n
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("markdown", "m", "", "Markdown content")
	convertCmd.Flags().String("markdown-file", "", "Read markdown from file (use - for stdin)")
	convertCmd.Flags().Bool("stats", false, "Print node counts instead of the document")
	convertCmd.Flags().Bool("plain", false, "Print the document as plain text")
}
