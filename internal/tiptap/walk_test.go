package tiptap

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	doc := ParseMarkdown(string(readFixture(t, "post.md")))

	want := map[string]int{
		TypeDoc:         1,
		TypeParagraph:   7,
		TypeHeading:     2,
		TypeBulletList:  1,
		TypeOrderedList: 1,
		TypeListItem:    4,
		TypeBlockquote:  1,
		TypeCodeBlock:   1,
		TypeText:        17,
		"bold":          2,
		"italic":        1,
		"link":          1,
	}
	assert.Equal(t, want, Stats(doc))
}

func TestWalk_DepthAndSkip(t *testing.T) {
	doc := ParseDocument([]string{"- **a**", "> q"})

	type visit struct {
		typ   string
		depth int
	}
	var got []visit
	Walk(doc, func(node interface{}, depth int) bool {
		got = append(got, visit{NodeTypeOf(node), depth})
		return NodeTypeOf(node) != TypeBlockquote
	})

	assert.Equal(t, []visit{
		{TypeBulletList, 0},
		{TypeListItem, 1},
		{TypeParagraph, 2},
		{TypeText, 3},
		{TypeBlockquote, 0},
	}, got)
}

func TestNodeTypeOf_Unknown(t *testing.T) {
	assert.Equal(t, "", NodeTypeOf(42))
}

func TestPlainText(t *testing.T) {
	doc := ParseDocument([]string{
		"## Title",
		"Some **bold** [link](https://x.y)",
		"- one",
		"1. two",
		"> quote",
		"```",
		"code *stays*",
		"```",
	})

	assert.Equal(t, "Title\nSome bold link\none\ntwo\nquote\ncode *stays*", PlainText(doc))
}

func TestExcerpt(t *testing.T) {
	doc := ParseDocument([]string{
		"## Heading is skipped",
		"",
		"Quantum computing is moving fast this year",
		"Second paragraph",
	})

	assert.Equal(t, "Quantum computing is moving fast this year", Excerpt(doc, 160))
	assert.Equal(t, "Quantum computing…", Excerpt(doc, 20))
	assert.Equal(t, "", Excerpt(doc, 0))
	assert.Equal(t, "", Excerpt(ParseDocument([]string{"- list only"}), 50))
}

func TestExcerpt_RespectsRuneLimit(t *testing.T) {
	doc := ParseDocument([]string{"Ünïcödé wörds ärë cöünted äs rünes nöt bytes"})

	got := Excerpt(doc, 15)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 15)
	assert.Equal(t, "Ünïcödé wörds…", got)
}
