package tiptap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// jsonNode is the wire shape shared by every node in a Tiptap document.
type jsonNode struct {
	Type    string          `json:"type"`
	Attrs   json.RawMessage `json:"attrs,omitempty"`
	Content []jsonNode      `json:"content,omitempty"`
	Text    string          `json:"text,omitempty"`
	Marks   []jsonMark      `json:"marks,omitempty"`
}

type jsonMark struct {
	Type  MarkType        `json:"type"`
	Attrs json.RawMessage `json:"attrs,omitempty"`
}

// jsonDoc keeps "content" on the root even when it is empty.
type jsonDoc struct {
	Type    string            `json:"type"`
	Content []json.RawMessage `json:"content"`
}

type headingAttrs struct {
	Level int `json:"level"`
}

type codeBlockAttrs struct {
	Language *string `json:"language"`
}

type orderedListAttrs struct {
	Start int `json:"start"`
}

type linkAttrs struct {
	Href   string `json:"href"`
	Target string `json:"target"`
}

// MarshalJSON encodes the document as Tiptap JSON. Text runs with empty
// text are left out, since ProseMirror rejects empty text nodes.
func (d Document) MarshalJSON() ([]byte, error) {
	root := jsonDoc{Type: TypeDoc, Content: make([]json.RawMessage, 0, len(d.Content))}
	for _, b := range d.Content {
		data, err := encodeBlockJSON(b)
		if err != nil {
			return nil, err
		}
		root.Content = append(root.Content, data)
	}
	return marshal(root)
}

// UnmarshalJSON decodes Tiptap JSON. A top-level block is modelled only
// when encoding the model keeps every value it had. Any other block, such
// as one with unknown node or mark types or extra attributes, is kept as
// *Raw.
func (d *Document) UnmarshalJSON(data []byte) error {
	var root struct {
		Type    string            `json:"type"`
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	if root.Type != TypeDoc {
		return fmt.Errorf("decode document: root type %q, want %q", root.Type, TypeDoc)
	}

	content := make([]Block, 0, len(root.Content))
	for i, raw := range root.Content {
		b, err := decodeTopLevel(raw)
		if err != nil {
			return fmt.Errorf("decode document: content[%d]: %w", i, err)
		}
		content = append(content, b)
	}
	d.Content = content
	return nil
}

func decodeTopLevel(data json.RawMessage) (Block, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	if head.Type == "" {
		return nil, errors.New("node has no type")
	}

	var n jsonNode
	if err := json.Unmarshal(data, &n); err == nil {
		if b, err := decodeBlock(n); err == nil && reproduces(b, data) {
			return b, nil
		}
	}
	return &Raw{Type: head.Type, JSON: append(json.RawMessage(nil), data...)}, nil
}

// reproduces reports whether encoding b keeps every value in data.
func reproduces(b Block, data []byte) bool {
	encoded, err := encodeBlockJSON(b)
	if err != nil {
		return false
	}
	var in, out interface{}
	if json.Unmarshal(data, &in) != nil || json.Unmarshal(encoded, &out) != nil {
		return false
	}
	return covers(in, out)
}

// covers reports whether out holds every value of in. out may carry
// attributes the encoder always writes, such as a default list start, and
// an empty array in in matches a missing key in out.
func covers(in, out interface{}) bool {
	switch in := in.(type) {
	case map[string]interface{}:
		o, ok := out.(map[string]interface{})
		if !ok {
			return false
		}
		for k, v := range in {
			ov, present := o[k]
			if !present {
				if arr, isArr := v.([]interface{}); isArr && len(arr) == 0 {
					continue
				}
				return false
			}
			if !covers(v, ov) {
				return false
			}
		}
		return true
	case []interface{}:
		o, ok := out.([]interface{})
		if !ok || len(o) != len(in) {
			return false
		}
		for i := range in {
			if !covers(in[i], o[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(in, out)
	}
}

func encodeBlockJSON(b Block) (json.RawMessage, error) {
	if r, ok := b.(*Raw); ok {
		return r.JSON, nil
	}
	n, err := encodeBlock(b)
	if err != nil {
		return nil, err
	}
	return marshal(n)
}

func encodeBlock(b Block) (jsonNode, error) {
	n := jsonNode{Type: b.NodeType()}
	var attrs interface{}

	switch b := b.(type) {
	case *Heading:
		attrs = headingAttrs{Level: b.Level}
		n.Content = encodeRuns(b.Content)
	case *Paragraph:
		n.Content = encodeRuns(b.Content)
	case *CodeBlock:
		attrs = codeBlockAttrs{Language: b.Language}
		if b.RawText != "" {
			n.Content = []jsonNode{{Type: TypeText, Text: b.RawText}}
		}
	case *Blockquote:
		n.Content = encodeParagraphs(b.Content)
	case *BulletList:
		n.Content = encodeItems(b.Items)
	case *OrderedList:
		attrs = orderedListAttrs{Start: b.Start}
		n.Content = encodeItems(b.Items)
	default:
		return jsonNode{}, fmt.Errorf("encode block: unsupported node %T", b)
	}

	if attrs != nil {
		raw, err := marshal(attrs)
		if err != nil {
			return jsonNode{}, err
		}
		n.Attrs = raw
	}
	return n, nil
}

func encodeRuns(runs []Text) []jsonNode {
	nodes := make([]jsonNode, 0, len(runs))
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		n := jsonNode{Type: TypeText, Text: r.Text}
		for _, m := range r.Marks {
			n.Marks = append(n.Marks, encodeMark(m))
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func encodeMark(m Mark) jsonMark {
	jm := jsonMark{Type: m.Type}
	if m.Type == MarkLink {
		// linkAttrs only holds strings, so marshal cannot fail.
		jm.Attrs, _ = marshal(linkAttrs{Href: m.Href, Target: m.Target})
	}
	return jm
}

func encodeParagraphs(paras []*Paragraph) []jsonNode {
	nodes := make([]jsonNode, 0, len(paras))
	for _, p := range paras {
		nodes = append(nodes, jsonNode{Type: TypeParagraph, Content: encodeRuns(p.Content)})
	}
	return nodes
}

func encodeItems(items []*ListItem) []jsonNode {
	nodes := make([]jsonNode, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, jsonNode{Type: TypeListItem, Content: encodeParagraphs(item.Content)})
	}
	return nodes
}

func decodeBlock(n jsonNode) (Block, error) {
	switch n.Type {
	case TypeHeading:
		var attrs headingAttrs
		if err := decodeAttrs(n, &attrs); err != nil {
			return nil, err
		}
		runs, err := decodeRuns(n.Content)
		if err != nil {
			return nil, err
		}
		return &Heading{Level: attrs.Level, Content: runs}, nil
	case TypeParagraph:
		return decodeParagraph(n)
	case TypeCodeBlock:
		var attrs codeBlockAttrs
		if err := decodeAttrs(n, &attrs); err != nil {
			return nil, err
		}
		var text strings.Builder
		for _, c := range n.Content {
			if c.Type != TypeText {
				return nil, fmt.Errorf("codeBlock: unexpected child %q", c.Type)
			}
			text.WriteString(c.Text)
		}
		return &CodeBlock{Language: attrs.Language, RawText: text.String()}, nil
	case TypeBlockquote:
		paras, err := decodeParagraphs(n.Content)
		if err != nil {
			return nil, err
		}
		return &Blockquote{Content: paras}, nil
	case TypeBulletList:
		items, err := decodeItems(n.Content)
		if err != nil {
			return nil, err
		}
		return &BulletList{Items: items}, nil
	case TypeOrderedList:
		attrs := orderedListAttrs{Start: 1}
		if err := decodeAttrs(n, &attrs); err != nil {
			return nil, err
		}
		items, err := decodeItems(n.Content)
		if err != nil {
			return nil, err
		}
		return &OrderedList{Start: attrs.Start, Items: items}, nil
	default:
		return nil, fmt.Errorf("unsupported node type %q", n.Type)
	}
}

func decodeAttrs(n jsonNode, v interface{}) error {
	if len(n.Attrs) == 0 {
		return nil
	}
	if err := json.Unmarshal(n.Attrs, v); err != nil {
		return fmt.Errorf("%s attrs: %w", n.Type, err)
	}
	return nil
}

func decodeParagraph(n jsonNode) (*Paragraph, error) {
	if n.Type != TypeParagraph {
		return nil, fmt.Errorf("expected %q, got %q", TypeParagraph, n.Type)
	}
	runs, err := decodeRuns(n.Content)
	if err != nil {
		return nil, err
	}
	return &Paragraph{Content: runs}, nil
}

func decodeParagraphs(nodes []jsonNode) ([]*Paragraph, error) {
	paras := make([]*Paragraph, 0, len(nodes))
	for _, n := range nodes {
		p, err := decodeParagraph(n)
		if err != nil {
			return nil, err
		}
		paras = append(paras, p)
	}
	return paras, nil
}

func decodeItems(nodes []jsonNode) ([]*ListItem, error) {
	items := make([]*ListItem, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != TypeListItem {
			return nil, fmt.Errorf("expected %q, got %q", TypeListItem, n.Type)
		}
		paras, err := decodeParagraphs(n.Content)
		if err != nil {
			return nil, fmt.Errorf("listItem: %w", err)
		}
		items = append(items, &ListItem{Content: paras})
	}
	return items, nil
}

func decodeRuns(nodes []jsonNode) ([]Text, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	runs := make([]Text, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != TypeText {
			return nil, fmt.Errorf("unsupported inline node %q", n.Type)
		}
		run := Text{Text: n.Text}
		for _, jm := range n.Marks {
			m, err := decodeMark(jm)
			if err != nil {
				return nil, err
			}
			run.Marks = append(run.Marks, m)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func decodeMark(jm jsonMark) (Mark, error) {
	switch jm.Type {
	case MarkBold, MarkItalic:
		return Mark{Type: jm.Type}, nil
	case MarkLink:
		var attrs linkAttrs
		if len(jm.Attrs) > 0 {
			if err := json.Unmarshal(jm.Attrs, &attrs); err != nil {
				return Mark{}, fmt.Errorf("link attrs: %w", err)
			}
		}
		return Mark{Type: MarkLink, Href: attrs.Href, Target: attrs.Target}, nil
	default:
		return Mark{}, fmt.Errorf("unsupported mark type %q", jm.Type)
	}
}

// marshal encodes v without HTML escaping so link URLs keep their "&".
func marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
