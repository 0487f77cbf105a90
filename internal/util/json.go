package util

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON encodes v without HTML escaping, so "&", "<" and ">" stay
// literal. Escapes emitted by nested json.Marshaler implementations are
// rewritten as well. The result ends with a newline.
func MarshalJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return unescapeHTML(buf.Bytes()), nil
}

var htmlEscapes = map[string]byte{
	`\u003c`: '<',
	`\u003e`: '>',
	`\u0026`: '&',
}

// unescapeHTML walks escape sequences left to right so an escaped backslash
// followed by "u0026" is left alone.
func unescapeHTML(blob []byte) []byte {
	if !bytes.Contains(blob, []byte(`\u00`)) {
		return blob
	}
	out := make([]byte, 0, len(blob))
	for i := 0; i < len(blob); i++ {
		if blob[i] != '\\' || i+1 >= len(blob) {
			out = append(out, blob[i])
			continue
		}
		if i+6 <= len(blob) {
			if c, ok := htmlEscapes[string(blob[i:i+6])]; ok {
				out = append(out, c)
				i += 5
				continue
			}
		}
		out = append(out, blob[i], blob[i+1])
		i++
	}
	return out
}
