package tiptap

import (
	"regexp"
	"strings"
)

const (
	codeFence   = "```"
	quotePrefix = "> "
)

var (
	headingPattern = regexp.MustCompile(`^(#{2,3})\s+(.+)$`)
	bulletPattern  = regexp.MustCompile(`^\s*[-*]\s+`)
	orderedPattern = regexp.MustCompile(`^\s*\d+\.\s+`)
)

// blockRule tries to recognise a block starting at lines[i]. It reports
// how many lines it consumed; a nil block with ok set means the lines were
// skipped.
type blockRule func(lines []string, i int) (b Block, consumed int, ok bool)

// blockRules are tried in order; the first match wins. scanParagraph
// always matches, so every iteration advances.
var blockRules = []blockRule{
	scanCodeFence,
	scanBlank,
	scanHeading,
	scanBlockquote,
	scanBulletList,
	scanOrderedList,
	scanParagraph,
}

// ParseMarkdown converts a markdown body into a document. Surrounding
// whitespace is trimmed and line endings are normalised before the body is
// split into lines.
func ParseMarkdown(text string) Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ParseDocument(nil)
	}
	return ParseDocument(strings.Split(text, "\n"))
}

// ParseDocument converts lines of markdown into a document in a single
// forward pass. It never fails: unterminated fences close at the end of
// input and anything unrecognised becomes a paragraph, one per line.
func ParseDocument(lines []string) Document {
	content := make([]Block, 0)
	for i := 0; i < len(lines); {
		for _, rule := range blockRules {
			b, consumed, ok := rule(lines, i)
			if !ok {
				continue
			}
			if b != nil {
				content = append(content, b)
			}
			i += consumed
			break
		}
	}
	return Document{Content: content}
}

func scanCodeFence(lines []string, i int) (Block, int, bool) {
	opening := strings.TrimSpace(lines[i])
	if !strings.HasPrefix(opening, codeFence) {
		return nil, 0, false
	}

	code := &CodeBlock{}
	if lang := strings.TrimSpace(strings.TrimLeft(opening, "`")); lang != "" {
		code.Language = &lang
	}

	j := i + 1
	var body []string
	for j < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[j]), codeFence) {
		body = append(body, lines[j])
		j++
	}
	if j < len(lines) {
		j++
	}
	code.RawText = strings.Join(body, "\n")
	return code, j - i, true
}

func scanBlank(lines []string, i int) (Block, int, bool) {
	if strings.TrimSpace(lines[i]) != "" {
		return nil, 0, false
	}
	return nil, 1, true
}

func scanHeading(lines []string, i int) (Block, int, bool) {
	m := headingPattern.FindStringSubmatch(lines[i])
	if m == nil {
		return nil, 0, false
	}
	return &Heading{Level: len(m[1]), Content: ParseInline(m[2])}, 1, true
}

func scanBlockquote(lines []string, i int) (Block, int, bool) {
	line := strings.TrimSpace(lines[i])
	if !strings.HasPrefix(line, quotePrefix) {
		return nil, 0, false
	}
	quote := &Blockquote{Content: []*Paragraph{{Content: ParseInline(line[len(quotePrefix):])}}}
	return quote, 1, true
}

func scanBulletList(lines []string, i int) (Block, int, bool) {
	items, consumed := scanListRun(lines, i, bulletPattern)
	if consumed == 0 {
		return nil, 0, false
	}
	return &BulletList{Items: items}, consumed, true
}

func scanOrderedList(lines []string, i int) (Block, int, bool) {
	items, consumed := scanListRun(lines, i, orderedPattern)
	if consumed == 0 {
		return nil, 0, false
	}
	// Source numbering is not carried over.
	return &OrderedList{Start: 1, Items: items}, consumed, true
}

// scanListRun greedily collects consecutive lines whose prefix matches
// marker. Indentation is ignored, so nested-looking items stay flat.
func scanListRun(lines []string, i int, marker *regexp.Regexp) ([]*ListItem, int) {
	var items []*ListItem
	j := i
	for j < len(lines) {
		loc := marker.FindStringIndex(lines[j])
		if loc == nil {
			break
		}
		items = append(items, newListItem(ParseInline(lines[j][loc[1]:])))
		j++
	}
	return items, j - i
}

func scanParagraph(lines []string, i int) (Block, int, bool) {
	return &Paragraph{Content: ParseInline(lines[i])}, 1, true
}
