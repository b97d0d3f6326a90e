package output

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

type post struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

var posts = []post{
	{Slug: "b-post", Title: "B & C", CreatedAt: "2026-03-02T00:00:00Z"},
	{Slug: "a-post", Title: "A", CreatedAt: "2026-03-03T00:00:00Z"},
	{Slug: "c-post", Title: "C", CreatedAt: "2026-03-01T00:00:00Z"},
}

type outline struct{}

func (outline) RenderText(w io.Writer) error {
	_, err := io.WriteString(w, "doc\n  paragraph\n")
	return err
}

func (outline) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"doc","content":[]}`), nil
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "JSON": FormatJSON, " yaml ": FormatYAML, "ndjson": FormatNDJSON, "table": FormatTable} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) expected error")
	}
}

func TestPrinter_JSONDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatJSON).Print(context.Background(), posts[0]); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if !strings.Contains(buf.String(), `"title": "B & C"`) {
		t.Errorf("json output = %s", buf.String())
	}
}

func TestPrinter_QueryRunsOnJSONEncoding(t *testing.T) {
	ctx := WithQuery(context.Background(), ".type")

	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatJSON).Print(ctx, outline{}); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if strings.TrimSpace(buf.String()) != `"doc"` {
		t.Errorf("query output = %q, want \"doc\"", buf.String())
	}

	buf.Reset()
	bad := WithQuery(context.Background(), ".[")
	if err := NewPrinter(&buf, FormatJSON).Print(bad, outline{}); err == nil {
		t.Error("expected error for invalid query")
	}
}

func TestPrinter_TextRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatText).Print(context.Background(), outline{}); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if buf.String() != "doc\n  paragraph\n" {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestPrinter_NDJSONOneLinePerItem(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatNDJSON).Print(context.Background(), posts); err != nil {
		t.Fatalf("Print: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	var first map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil || first["slug"] != "b-post" {
		t.Errorf("first line = %q (%v)", lines[0], err)
	}
}

func TestPrinter_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatYAML).Print(context.Background(), outline{}); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if !strings.Contains(buf.String(), "type: doc") || !strings.Contains(buf.String(), "content: []") {
		t.Errorf("yaml output = %q", buf.String())
	}
}

func TestPrinter_SortAndLimit(t *testing.T) {
	ctx := WithSort(context.Background(), "created-at", true)
	ctx = WithLimit(ctx, 2)

	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatNDJSON).Print(ctx, posts); err != nil {
		t.Fatalf("Print: %v", err)
	}
	got := buf.String()
	if strings.Count(got, "\n") != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	if strings.Index(got, "a-post") > strings.Index(got, "b-post") || strings.Contains(got, "c-post") {
		t.Errorf("unexpected order: %q", got)
	}
}

func TestPrinter_TableFromStructs(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatTable).Print(context.Background(), posts[:1]); err != nil {
		t.Fatalf("Print: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("table = %q", buf.String())
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, ",") != "created_at,slug,title" {
		t.Errorf("headers = %v", fields)
	}
}

func TestPrinter_TableValue(t *testing.T) {
	table := Table{
		Headers: []string{"TYPE", "COUNT"},
		Rows:    [][]string{{"paragraph", "3"}, {"heading", "1"}},
	}

	var buf bytes.Buffer
	ctx := WithSort(context.Background(), "type", false)
	if err := NewPrinter(&buf, FormatTable).Print(ctx, table); err != nil {
		t.Fatalf("Print: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "heading") {
		t.Errorf("table = %q", buf.String())
	}

	buf.Reset()
	if err := NewPrinter(&buf, FormatJSON).Print(context.Background(), table); err != nil {
		t.Fatalf("Print: %v", err)
	}
	var records []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 2 || records[0]["TYPE"] != "paragraph" || records[0]["COUNT"] != "3" {
		t.Errorf("records = %v", records)
	}
}

func TestPrinter_TextMap(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]interface{}{"slug": "a", "tags": []string{"x"}, "count": 2}
	if err := NewPrinter(&buf, FormatText).Print(context.Background(), data); err != nil {
		t.Fatalf("Print: %v", err)
	}
	want := "count: 2\nslug: a\ntags: [\"x\"]\n"
	if buf.String() != want {
		t.Errorf("text = %q, want %q", buf.String(), want)
	}
}
