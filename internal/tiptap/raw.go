package tiptap

import (
	"encoding/json"
	"strings"
)

// TypeHardBreak is the editor's inline line break.
const TypeHardBreak = "hardBreak"

// Raw is a top-level block outside the model above, such as an image, a
// horizontal rule or a paragraph holding a hard break. Documents written
// by a rich editor carry these. The node's JSON is kept and encoded back
// unchanged.
type Raw struct {
	Type string
	JSON json.RawMessage
}

func (r *Raw) NodeType() string { return r.Type }
func (*Raw) block()             {}

// rawNode is a generic view of any node, used to read text and count
// nested nodes inside a Raw block.
type rawNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []rawNode `json:"content"`
	Marks   []struct {
		Type string `json:"type"`
	} `json:"marks"`
}

func (r *Raw) tree() (rawNode, bool) {
	var n rawNode
	if err := json.Unmarshal(r.JSON, &n); err != nil {
		return rawNode{}, false
	}
	return n, true
}

// lines returns one line per textblock. Hard breaks become newlines and
// leaf nodes without text produce nothing.
func (n rawNode) lines() []string {
	if n.Type == TypeText {
		return []string{n.Text}
	}
	if n.isTextblock() {
		var sb strings.Builder
		for _, c := range n.Content {
			switch c.Type {
			case TypeText:
				sb.WriteString(c.Text)
			case TypeHardBreak:
				sb.WriteByte('\n')
			}
		}
		return []string{sb.String()}
	}
	var lines []string
	for _, c := range n.Content {
		lines = append(lines, c.lines()...)
	}
	return lines
}

func (n rawNode) isTextblock() bool {
	for _, c := range n.Content {
		if c.Type == TypeText || c.Type == TypeHardBreak {
			return true
		}
	}
	return false
}

// count adds every node below n and its marks to counts.
func (n rawNode) count(counts map[string]int) {
	for _, c := range n.Content {
		counts[c.Type]++
		for _, m := range c.Marks {
			counts[m.Type]++
		}
		c.count(counts)
	}
}
