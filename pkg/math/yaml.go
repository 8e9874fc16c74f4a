package math

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes the vector as a flow sequence [x, y, z].
func (v Vec3) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, f := range [3]float64{v.X, v.Y, v.Z} {
		var item yaml.Node
		if err := item.Encode(f); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &item)
	}
	return node, nil
}

// UnmarshalYAML accepts either [x, y, z] or a mapping with x/y/z keys.
// Keys missing from a mapping keep their current value.
func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var parts []float64
		if err := value.Decode(&parts); err != nil {
			return err
		}
		if len(parts) != 3 {
			return fmt.Errorf("line %d: vector needs 3 components, got %d", value.Line, len(parts))
		}
		v.X, v.Y, v.Z = parts[0], parts[1], parts[2]
		return nil
	case yaml.MappingNode:
		m := map[string]*float64{"x": &v.X, "y": &v.Y, "z": &v.Z}
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i].Value
			dst, ok := m[key]
			if !ok {
				return fmt.Errorf("line %d: unknown vector key %q", value.Content[i].Line, key)
			}
			if err := value.Content[i+1].Decode(dst); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: cannot decode vector from %s", value.Line, describeKind(value.Kind))
	}
}

func describeKind(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "node"
	}
}
