package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is human-readable output (default).
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable is tabular format for lists.
	FormatTable Format = "table"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON:
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected text|json|ndjson|table|yaml)")
	}
}

// IsStructured reports whether the format is machine-readable structured output.
func IsStructured(format Format) bool {
	switch format {
	case FormatJSON, FormatNDJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// TextRenderer is implemented by results with their own text form.
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// Tabular is implemented by results that know their table columns.
type Tabular interface {
	Table() Table
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Print outputs data in the configured format. Structured formats see data
// as its JSON encoding, so custom MarshalJSON methods shape every format
// and --query runs against exactly what --output json would print.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	if data == nil {
		return nil
	}

	switch p.format {
	case FormatText:
		if r, ok := data.(TextRenderer); ok {
			return r.RenderText(p.w)
		}
	case FormatTable:
		if t, ok := data.(Tabular); ok {
			return p.printTable(ApplyAgentOptionsToTable(ctx, t.Table()))
		}
	}
	if t, ok := data.(Table); ok {
		if p.format == FormatTable || p.format == FormatText {
			return p.printTable(ApplyAgentOptionsToTable(ctx, t))
		}
		data = t.Records()
	}

	generic, err := Normalize(data)
	if err != nil {
		return err
	}
	generic = ApplyAgentOptions(ctx, generic)

	switch p.format {
	case FormatJSON:
		return p.printJSON(ctx, generic)
	case FormatNDJSON:
		return p.printNDJSON(ctx, generic)
	case FormatYAML:
		return p.printYAML(generic)
	case FormatTable:
		return p.printTable(tableFromGeneric(generic))
	case FormatText:
		return p.printText(generic)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// Normalize converts data to the plain maps, slices and scalars its JSON
// encoding describes.
func Normalize(data interface{}) (interface{}, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(buf.Bytes(), &generic); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return generic, nil
}

func runQuery(query string, data interface{}, emit func(interface{}) error) error {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	iter := code.Run(data)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", err)
		}
		if err := emit(v); err != nil {
			return err
		}
	}
}

func (p *Printer) printJSON(ctx context.Context, data interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	query := QueryFromContext(ctx)
	if query == "" {
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return runQuery(query, data, enc.Encode)
}

func (p *Printer) printNDJSON(ctx context.Context, data interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	if query := QueryFromContext(ctx); query != "" {
		return runQuery(query, data, enc.Encode)
	}
	if items, ok := data.([]interface{}); ok {
		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(data)
}

func (p *Printer) printYAML(data interface{}) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

func (p *Printer) printText(data interface{}) error {
	switch v := data.(type) {
	case map[string]interface{}:
		return p.printTextMap(v, "")
	case []interface{}:
		for i, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				if i > 0 {
					fmt.Fprintln(p.w)
				}
				if err := p.printTextMap(m, ""); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintln(p.w, textValue(item)); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(p.w, textValue(v))
		return err
	}
}

func (p *Printer) printTextMap(m map[string]interface{}, indent string) error {
	for _, key := range sortedKeys(m) {
		if _, err := fmt.Fprintf(p.w, "%s%s: %s\n", indent, key, textValue(m[key])); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTable(t Table) error {
	if len(t.Headers) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func tableFromGeneric(data interface{}) Table {
	items, ok := data.([]interface{})
	if !ok {
		items = []interface{}{data}
	}
	if len(items) == 0 {
		return Table{}
	}

	first, ok := items[0].(map[string]interface{})
	if !ok {
		t := Table{Headers: []string{"value"}}
		for _, item := range items {
			t.Rows = append(t.Rows, []string{textValue(item)})
		}
		return t
	}

	t := Table{Headers: sortedKeys(first)}
	for _, item := range items {
		m, _ := item.(map[string]interface{})
		row := make([]string, len(t.Headers))
		for i, h := range t.Headers {
			row[i] = textValue(m[h])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// textValue renders a scalar plainly and anything nested as compact JSON.
func textValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]interface{}, []interface{}:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return fmt.Sprint(val)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	default:
		return fmt.Sprint(val)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
