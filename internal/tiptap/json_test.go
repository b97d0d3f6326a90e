package tiptap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestMarshalJSON_Golden(t *testing.T) {
	doc := ParseMarkdown(string(readFixture(t, "post.md")))

	got, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, string(readFixture(t, "post.json")), string(got))
	assert.Contains(t, string(got), "ref=a&b=c", "link hrefs must not be HTML-escaped")
}

func TestMarshalJSON_EmptyDocumentKeepsContent(t *testing.T) {
	got, err := json.Marshal(ParseDocument(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[]}`, string(got))
}

func TestMarshalJSON_CodeBlockWithoutLanguage(t *testing.T) {
	doc := Document{Content: []Block{
		&CodeBlock{},
		&CodeBlock{RawText: "ls -la"},
	}}

	got, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[
		{"type":"codeBlock","attrs":{"language":null}},
		{"type":"codeBlock","attrs":{"language":null},"content":[{"type":"text","text":"ls -la"}]}
	]}`, string(got))
}

func TestMarshalJSON_DropsEmptyTextRuns(t *testing.T) {
	doc := ParseDocument([]string{"- "})

	got, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[
		{"type":"bulletList","content":[{"type":"listItem","content":[{"type":"paragraph"}]}]}
	]}`, string(got))
}

func TestUnmarshalJSON_RoundTrip(t *testing.T) {
	want := ParseMarkdown(string(readFixture(t, "post.md")))

	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got Document
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestUnmarshalJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"wrong root", `{"type":"paragraph"}`, `root type "paragraph"`},
		{"block without type", `{"type":"doc","content":[{"content":[]}]}`, `content[0]: node has no type`},
		{"block not an object", `{"type":"doc","content":["paragraph"]}`, `content[0]`},
		{"malformed", `{"type":`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc Document
			err := json.Unmarshal([]byte(tt.in), &doc)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestUnmarshalJSON_OrderedListDefaultsStart(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"type":"doc","content":[{"type":"orderedList","content":[]}]}`), &doc))

	require.Len(t, doc.Content, 1)
	assert.Equal(t, 1, doc.Content[0].(*OrderedList).Start)
}

// editorDoc is shaped like what the StarterKit, Image and Link editor
// extensions store.
const editorDoc = `{"type":"doc","content":[
	{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Launch notes"}]},
	{"type":"paragraph","content":[{"type":"text","text":"hi"},{"type":"hardBreak"},{"type":"text","marks":[{"type":"strike"}],"text":"there"}]},
	{"type":"image","attrs":{"src":"https://img.example/a.png","alt":"chart","title":null}},
	{"type":"horizontalRule"},
	{"type":"paragraph","content":[{"type":"text","marks":[{"type":"link","attrs":{"href":"https://example.com","target":"_blank","rel":"noopener noreferrer nofollow","class":null}}],"text":"docs"}]},
	{"type":"bulletList","content":[{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"outer"}]},{"type":"bulletList","content":[{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","marks":[{"type":"code"}],"text":"inner"}]}]}]}]}]},
	{"type":"paragraph","content":[{"type":"text","text":"plain "},{"type":"text","marks":[{"type":"bold"}],"text":"end"}]}
]}`

func TestUnmarshalJSON_EditorDocument(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(editorDoc), &doc))
	require.Len(t, doc.Content, 7)

	assert.IsType(t, &Heading{}, doc.Content[0])
	assert.IsType(t, &Paragraph{}, doc.Content[6])

	wantRaw := map[int]string{1: TypeParagraph, 2: "image", 3: "horizontalRule", 4: TypeParagraph, 5: TypeBulletList}
	for i, typ := range wantRaw {
		raw, ok := doc.Content[i].(*Raw)
		require.True(t, ok, "content[%d] is %T", i, doc.Content[i])
		assert.Equal(t, typ, raw.NodeType())
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, editorDoc, string(data))
}

func TestEditorDocument_TextAndStats(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(editorDoc), &doc))

	assert.Equal(t, "Launch notes\nhi\nthere\ndocs\nouter\ninner\nplain end", PlainText(doc))

	stats := Stats(doc)
	assert.Equal(t, 1, stats["image"])
	assert.Equal(t, 1, stats["horizontalRule"])
	assert.Equal(t, 1, stats[TypeHardBreak])
	assert.Equal(t, 1, stats["strike"])
	assert.Equal(t, 2, stats[TypeBulletList])
	assert.Equal(t, 1, stats["code"])
	assert.Equal(t, 1, stats[string(MarkBold)])
}
