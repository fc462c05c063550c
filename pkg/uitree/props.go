package uitree

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Prop is a single named property value.
type Prop struct {
	Name  string
	Value any
}

// Props is an ordered property list. Order is significant: serialized
// attributes follow it.
type Props []Prop

// P builds Props from alternating name/value arguments.
// It panics on an odd argument count or a non-string name; it is meant for
// literals in code and tests.
func P(kv ...any) Props {
	if len(kv)%2 != 0 {
		panic("uitree.P: odd number of arguments")
	}
	props := make(Props, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("uitree.P: argument %d is not a string", i))
		}
		props = append(props, Prop{Name: name, Value: kv[i+1]})
	}
	return props
}

// Get returns the value of the first prop with the given name.
func (p Props) Get(name string) (any, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return nil, false
}

// Names returns the prop names in order.
func (p Props) Names() []string {
	names := make([]string, len(p))
	for i, prop := range p {
		names[i] = prop.Name
	}
	return names
}

// WithoutNil returns a copy with nil-valued entries removed.
func (p Props) WithoutNil() Props {
	out := make(Props, 0, len(p))
	for _, prop := range p {
		if prop.Value == nil {
			continue
		}
		out = append(out, prop)
	}
	return out
}

// MarshalJSON encodes Props as a JSON object in prop order.
func (p Props) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, fmt.Errorf("prop %q: %w", prop.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping source key order.
func (p *Props) UnmarshalJSON(data []byte) error {
	props, err := decodeJSONProps(data)
	if err != nil {
		return fmt.Errorf("decode props: %w", err)
	}
	*p = props
	return nil
}

// UnmarshalYAML decodes a mapping node keeping source key order.
func (p *Props) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*p = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("props: expected a mapping at line %d", node.Line)
	}
	props := make(Props, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var value any
		if err := valNode.Decode(&value); err != nil {
			return fmt.Errorf("prop %q: %w", keyNode.Value, err)
		}
		props = append(props, Prop{Name: keyNode.Value, Value: normalize(value)})
	}
	*p = props
	return nil
}

// normalize converts YAML-decoded containers into the JSON-shaped values the
// serializer expects (map[string]any instead of map[any]any).
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}
