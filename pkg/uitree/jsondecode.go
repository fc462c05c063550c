package uitree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// isJSON reports whether src is a JSON object document. YAML is a superset
// of JSON but the YAML decoder rejects some valid JSON (`\/` escapes,
// repeated keys), so JSON objects take the encoding/json path.
func isJSON(src []byte) bool {
	trimmed := bytes.TrimLeft(src, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// decodeJSONData decodes a JSON object into plain values. Integral numbers
// become int, all others float64, matching the YAML path.
func decodeJSONData(src []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected content after top-level object")
	}
	for k, v := range out {
		out[k] = fromJSON(v)
	}
	return out, nil
}

// decodeJSONProps decodes a JSON object into Props in source key order.
// A repeated key keeps its first position and takes the last value, as
// JSON.parse does.
func decodeJSONProps(src []byte) (Props, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object, got %v", tok)
	}

	var props Props
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a key, got %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("prop %q: %w", name, err)
		}
		value = fromJSON(value)
		if i, dup := seen[name]; dup {
			props[i].Value = value
			continue
		}
		seen[name] = len(props)
		props = append(props, Prop{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if props == nil {
		props = Props{}
	}
	return props, nil
}

// fromJSON replaces json.Number values with int or float64.
func fromJSON(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n)
		}
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = fromJSON(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = fromJSON(item)
		}
		return val
	default:
		return v
	}
}
