// Package tiptap converts constrained markdown into Tiptap (ProseMirror)
// document trees.
//
// The tree is a flat list of block nodes. Textual blocks hold inline text
// runs, and each run carries at most one mark:
//
//	doc := tiptap.ParseMarkdown("## Title\n\nSee [docs](https://example.com)")
//	data, err := json.Marshal(doc)
//
// The node and mark vocabulary (type names and attribute names) matches the
// Tiptap StarterKit and Link extensions, which is what downstream renderers
// read.
package tiptap

// Node type names used in the JSON encoding.
const (
	TypeDoc         = "doc"
	TypeParagraph   = "paragraph"
	TypeHeading     = "heading"
	TypeCodeBlock   = "codeBlock"
	TypeBlockquote  = "blockquote"
	TypeBulletList  = "bulletList"
	TypeOrderedList = "orderedList"
	TypeListItem    = "listItem"
	TypeText        = "text"
)

// LinkTarget is the target attribute every link mark carries.
const LinkTarget = "_blank"

// MarkType identifies an inline mark.
type MarkType string

const (
	MarkBold   MarkType = "bold"
	MarkItalic MarkType = "italic"
	MarkLink   MarkType = "link"
)

// Mark is a style or link annotation on a text run. Href and Target are
// only set for links.
type Mark struct {
	Type   MarkType
	Href   string
	Target string
}

// Bold returns a bold mark.
func Bold() Mark { return Mark{Type: MarkBold} }

// Italic returns an italic mark.
func Italic() Mark { return Mark{Type: MarkItalic} }

// Link returns a link mark opening href in a new tab.
func Link(href string) Mark {
	return Mark{Type: MarkLink, Href: href, Target: LinkTarget}
}

// Text is an inline run: a piece of text and the marks applied to it.
type Text struct {
	Text  string
	Marks []Mark
}

// HasMark reports whether the run carries a mark of the given type.
func (t Text) HasMark(typ MarkType) bool {
	for _, m := range t.Marks {
		if m.Type == typ {
			return true
		}
	}
	return false
}

// Block is a top-level node of a Document.
type Block interface {
	// NodeType returns the node's type name in the JSON encoding.
	NodeType() string
	block()
}

// Document is the root of a converted tree.
type Document struct {
	Content []Block
}

// Heading is a section heading. Level is 2 or 3.
type Heading struct {
	Level   int
	Content []Text
}

// Paragraph is a single line of inline content.
type Paragraph struct {
	Content []Text
}

// CodeBlock holds verbatim text from a fenced block. Language is nil when
// the opening fence had no tag.
type CodeBlock struct {
	Language *string
	RawText  string
}

// Blockquote wraps quoted paragraphs.
type Blockquote struct {
	Content []*Paragraph
}

// ListItem is one entry of a bullet or ordered list.
type ListItem struct {
	Content []*Paragraph
}

// BulletList is an unordered list.
type BulletList struct {
	Items []*ListItem
}

// OrderedList is a numbered list. Start is always 1 for parsed documents.
type OrderedList struct {
	Start int
	Items []*ListItem
}

func (*Heading) NodeType() string     { return TypeHeading }
func (*Paragraph) NodeType() string   { return TypeParagraph }
func (*CodeBlock) NodeType() string   { return TypeCodeBlock }
func (*Blockquote) NodeType() string  { return TypeBlockquote }
func (*BulletList) NodeType() string  { return TypeBulletList }
func (*OrderedList) NodeType() string { return TypeOrderedList }
func (*ListItem) NodeType() string    { return TypeListItem }

func (*Heading) block()     {}
func (*Paragraph) block()   {}
func (*CodeBlock) block()   {}
func (*Blockquote) block()  {}
func (*BulletList) block()  {}
func (*OrderedList) block() {}

func newListItem(content []Text) *ListItem {
	return &ListItem{Content: []*Paragraph{{Content: content}}}
}
