package tiptap

import (
	"strings"
	"unicode/utf8"
)

// Walk visits the document depth-first. fn receives each Block, *ListItem,
// nested *Paragraph and Text run together with its depth (top-level blocks
// are depth 0). Returning false skips the node's children. A *Raw block is
// visited but its children are not.
func Walk(doc Document, fn func(node interface{}, depth int) bool) {
	for _, b := range doc.Content {
		walkBlock(b, 0, fn)
	}
}

func walkBlock(b Block, depth int, fn func(interface{}, int) bool) {
	if !fn(b, depth) {
		return
	}
	switch b := b.(type) {
	case *Heading:
		walkRuns(b.Content, depth+1, fn)
	case *Paragraph:
		walkRuns(b.Content, depth+1, fn)
	case *Blockquote:
		for _, p := range b.Content {
			walkBlock(p, depth+1, fn)
		}
	case *BulletList:
		walkItems(b.Items, depth+1, fn)
	case *OrderedList:
		walkItems(b.Items, depth+1, fn)
	}
}

func walkItems(items []*ListItem, depth int, fn func(interface{}, int) bool) {
	for _, item := range items {
		if !fn(item, depth) {
			continue
		}
		for _, p := range item.Content {
			walkBlock(p, depth+1, fn)
		}
	}
}

func walkRuns(runs []Text, depth int, fn func(interface{}, int) bool) {
	for _, r := range runs {
		fn(r, depth)
	}
}

// NodeTypeOf returns the JSON type name of a node passed to a Walk
// callback, or "" for values that are not nodes.
func NodeTypeOf(node interface{}) string {
	switch n := node.(type) {
	case Block:
		return n.NodeType()
	case *ListItem:
		return TypeListItem
	case Text:
		return TypeText
	default:
		return ""
	}
}

// Stats counts nodes by type name. Marks are counted under their mark type.
// Nodes inside a *Raw block are counted too.
func Stats(doc Document) map[string]int {
	counts := map[string]int{TypeDoc: 1}
	Walk(doc, func(node interface{}, _ int) bool {
		counts[NodeTypeOf(node)]++
		switch n := node.(type) {
		case Text:
			for _, m := range n.Marks {
				counts[string(m.Type)]++
			}
		case *Raw:
			if tree, ok := n.tree(); ok {
				tree.count(counts)
			}
		}
		return true
	})
	return counts
}

// PlainText flattens the document to text: one line per paragraph,
// heading, quote line or list item, code blocks verbatim, marks dropped.
// Raw blocks give one line per textblock, with hard breaks kept.
func PlainText(doc Document) string {
	var lines []string
	for _, b := range doc.Content {
		lines = append(lines, blockLines(b)...)
	}
	return strings.Join(lines, "\n")
}

func blockLines(b Block) []string {
	switch b := b.(type) {
	case *Heading:
		return []string{runsText(b.Content)}
	case *Paragraph:
		return []string{runsText(b.Content)}
	case *CodeBlock:
		return []string{b.RawText}
	case *Blockquote:
		return paragraphLines(b.Content)
	case *BulletList:
		return itemLines(b.Items)
	case *OrderedList:
		return itemLines(b.Items)
	case *Raw:
		if tree, ok := b.tree(); ok {
			return tree.lines()
		}
		return nil
	default:
		return nil
	}
}

func paragraphLines(paras []*Paragraph) []string {
	lines := make([]string, 0, len(paras))
	for _, p := range paras {
		lines = append(lines, runsText(p.Content))
	}
	return lines
}

func itemLines(items []*ListItem) []string {
	var lines []string
	for _, item := range items {
		lines = append(lines, paragraphLines(item.Content)...)
	}
	return lines
}

func runsText(runs []Text) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Excerpt returns the text of the first top-level paragraph, cut to at
// most max runes. A cut text ends on a word boundary followed by "…".
func Excerpt(doc Document, max int) string {
	if max <= 0 {
		return ""
	}
	for _, b := range doc.Content {
		p, ok := b.(*Paragraph)
		if !ok {
			continue
		}
		text := strings.TrimSpace(runsText(p.Content))
		if text == "" {
			continue
		}
		return truncateRunes(text, max)
	}
	return ""
}

func truncateRunes(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max-1])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:.") + "…"
}
