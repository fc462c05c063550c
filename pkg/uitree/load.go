package uitree

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a tree from JSON or YAML source. Prop key order survives
// decoding in both formats. Elements whose key field is empty inherit their
// map key.
func Parse(data []byte) (*Tree, error) {
	var tree Tree
	unmarshal := yaml.Unmarshal
	if isJSON(data) {
		unmarshal = json.Unmarshal
	}
	if err := unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	for key, el := range tree.Elements {
		if el == nil {
			delete(tree.Elements, key)
			continue
		}
		if el.Key == "" {
			el.Key = key
		}
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return &tree, nil
}

// LoadFile reads and parses a tree file.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the CLI user
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	tree, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// ParseData decodes a data object from JSON or YAML. An empty document yields
// an empty object.
func ParseData(data []byte) (map[string]any, error) {
	if isJSON(data) {
		out, err := decodeJSONData(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data: %w", err)
		}
		return out, nil
	}

	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	for k, v := range out {
		out[k] = normalize(v)
	}
	return out, nil
}

// LoadDataFile reads and parses a data file.
func LoadDataFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the CLI user
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	out, err := ParseData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
