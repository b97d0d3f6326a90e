package output

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ApplyAgentOptions applies --result-sort-by, --result-desc and
// --result-limit to normalized list output. Anything that is not a list is
// returned unchanged.
func ApplyAgentOptions(ctx context.Context, data interface{}) interface{} {
	limit := LimitFromContext(ctx)
	sortBy, desc := SortFromContext(ctx)
	if limit == 0 && sortBy == "" {
		return data
	}

	items, ok := data.([]interface{})
	if !ok {
		return data
	}

	out := make([]interface{}, len(items))
	copy(out, items)

	if sortBy != "" {
		path := strings.Split(sortBy, ".")
		sort.SliceStable(out, func(i, j int) bool {
			return lessByPath(out[i], out[j], path, desc)
		})
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// ApplyAgentOptionsToTable sorts and limits table rows by header name.
func ApplyAgentOptionsToTable(ctx context.Context, t Table) Table {
	limit := LimitFromContext(ctx)
	sortBy, desc := SortFromContext(ctx)
	if limit == 0 && sortBy == "" {
		return t
	}

	rows := make([][]string, len(t.Rows))
	copy(rows, t.Rows)

	if col := headerIndex(t.Headers, sortBy); col >= 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := cell(rows[i], col), cell(rows[j], col)
			if desc {
				return a > b
			}
			return a < b
		})
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return Table{Headers: t.Headers, Rows: rows}
}

func headerIndex(headers []string, name string) int {
	if name == "" {
		return -1
	}
	norm := normalizeName(name)
	for i, h := range headers {
		if normalizeName(h) == norm {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// lessByPath orders items missing the sort key last regardless of direction.
func lessByPath(a, b interface{}, path []string, desc bool) bool {
	av, aok := lookupPath(a, path)
	bv, bok := lookupPath(b, path)
	switch {
	case !aok && !bok:
		return false
	case !aok:
		return false
	case !bok:
		return true
	}
	cmp := compareValues(av, bv)
	if desc {
		return cmp > 0
	}
	return cmp < 0
}

func lookupPath(v interface{}, path []string) (interface{}, bool) {
	for _, key := range path {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok = findKey(m, key)
		if !ok {
			return nil, false
		}
	}
	return v, v != nil
}

func findKey(m map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	norm := normalizeName(name)
	for k, v := range m {
		if normalizeName(k) == norm {
			return v, true
		}
	}
	return nil, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, "_", ""), "-", ""))
}

func compareValues(a, b interface{}) int {
	switch va := a.(type) {
	case float64:
		if vb, ok := b.(float64); ok {
			switch {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return 0
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0
			case !va:
				return -1
			}
			return 1
		}
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(va, vb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
