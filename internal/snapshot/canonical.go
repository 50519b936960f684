package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// ToCanonicalMap converts the graph to the plain maps and slices accepted
// by MarshalCanonical, for embedding in a larger document.
func (g Graph) ToCanonicalMap() map[string]any {
	nodes := make([]any, len(g.Nodes))
	for i, n := range g.Nodes {
		parents := make([]any, len(n.Parents))
		for j, p := range n.Parents {
			parents[j] = p
		}
		nodes[i] = map[string]any{
			"id":      n.ID,
			"op":      n.Op,
			"value":   n.Value,
			"parents": parents,
		}
	}
	outputs := make([]any, len(g.Outputs))
	for i, o := range g.Outputs {
		outputs[i] = o
	}
	return map[string]any{
		"nodes":   nodes,
		"outputs": outputs,
	}
}

// MarshalCanonical produces canonical JSON for the graph: object keys
// sorted, no insignificant whitespace, no HTML escaping and NFC-normalized
// strings. Two captures of the same program yield identical bytes.
func (g Graph) MarshalCanonical() ([]byte, error) {
	return MarshalCanonical(g.ToCanonicalMap())
}

// MarshalCanonical encodes strings, ints, bools, []any and map[string]any.
// Floats are rejected: callers format them with FormatValue first so the
// output never depends on float encoding.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return writeString(buf, val)
	case int:
		fmt.Fprintf(buf, "%d", val)
	case int64:
		fmt.Fprintf(buf, "%d", val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return norm.NFC.String(keys[i]) < norm.NFC.String(keys[j])
		})

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case float64, float32:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
