package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ToTOON renders a JSON value in Pierre's TOON dialect (glossary: "an
// alternate compact JSON-like serialization selectable per tool call"):
// indentation instead of braces, unquoted keys, and tabular rows for
// homogeneous arrays of objects — the shape that saves the most tokens in
// LLM contexts. It is applied as a transform after the handler's JSON
// result is produced (spec.md §4.5 guarantee 1), never as the handler's
// native return type.
func ToTOON(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("tools: invalid json for toon encoding: %w", err)
	}
	var b strings.Builder
	encodeTOON(&b, v, 0)
	return strings.TrimRight(b.String(), "\n"), nil
}

func encodeTOON(b *strings.Builder, v any, depth int) {
	switch val := v.(type) {
	case map[string]any:
		encodeTOONObject(b, val, depth)
	case []any:
		encodeTOONArray(b, val, depth)
	default:
		b.WriteString(scalarTOON(val))
		b.WriteString("\n")
	}
}

func encodeTOONObject(b *strings.Builder, m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indent := strings.Repeat("  ", depth)
	for _, k := range keys {
		v := m[k]
		switch v.(type) {
		case map[string]any, []any:
			b.WriteString(indent + k + ":\n")
			encodeTOON(b, v, depth+1)
		default:
			b.WriteString(indent + k + ": " + scalarTOON(v) + "\n")
		}
	}
}

// encodeTOONArray renders a homogeneous array of flat objects as a
// tabular block (header row + one row per element), which is where TOON
// saves the most tokens versus repeating every key per element.
func encodeTOONArray(b *strings.Builder, arr []any, depth int) {
	indent := strings.Repeat("  ", depth)
	if len(arr) == 0 {
		b.WriteString(indent + "[]\n")
		return
	}

	if cols, ok := tabularColumns(arr); ok {
		b.WriteString(indent + "[" + fmt.Sprintf("%d", len(arr)) + "]{" + strings.Join(cols, ",") + "}:\n")
		rowIndent := strings.Repeat("  ", depth+1)
		for _, el := range arr {
			row := el.(map[string]any)
			vals := make([]string, len(cols))
			for i, c := range cols {
				vals[i] = scalarTOON(row[c])
			}
			b.WriteString(rowIndent + strings.Join(vals, ",") + "\n")
		}
		return
	}

	for _, el := range arr {
		b.WriteString(indent + "-\n")
		encodeTOON(b, el, depth+1)
	}
}

// tabularColumns reports the shared flat-scalar key set of arr, if every
// element is a flat object sharing exactly that key set, in stable sorted
// order.
func tabularColumns(arr []any) ([]string, bool) {
	first, ok := arr[0].(map[string]any)
	if !ok {
		return nil, false
	}
	cols := make([]string, 0, len(first))
	for k, v := range first {
		if isNested(v) {
			return nil, false
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)

	for _, el := range arr[1:] {
		m, ok := el.(map[string]any)
		if !ok || len(m) != len(cols) {
			return nil, false
		}
		for _, c := range cols {
			v, present := m[c]
			if !present || isNested(v) {
				return nil, false
			}
		}
	}
	return cols, true
}

func isNested(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func scalarTOON(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if strings.ContainsAny(val, ":\n,") {
			b, _ := json.Marshal(val)
			return string(b)
		}
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return trimFloat(val)
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}
