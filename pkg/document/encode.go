package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/observer"
)

// Encode renders v in the given format. JSON and YAML output keep object
// key order; TOML output requires an object at the root and sorts keys.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case JSON:
		return encodeJSON(v)
	case YAML:
		return encodeYAML(v)
	case TOML:
		return encodeTOML(v)
	}
	parsed, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	return Encode(v, parsed)
}

func encodeJSON(v any) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, v, make(map[any]bool)); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any, active map[any]bool) error {
	if observer.IsContainer(v) {
		if active[v] {
			return fmt.Errorf("document: cycle through %v", v)
		}
		active[v] = true
		defer delete(active, v)
	}

	switch c := v.(type) {
	case *observer.Object:
		buf.WriteByte('{')
		for i, k := range c.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(k)
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, c.Get(k), active); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case *observer.Array:
		buf.WriteByte('[')
		for i := 0; i < c.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, c.At(i), active); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func encodeYAML(v any) ([]byte, error) {
	node, err := toYAMLNode(v, make(map[any]bool))
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func toYAMLNode(v any, active map[any]bool) (*yaml.Node, error) {
	if observer.IsContainer(v) {
		if active[v] {
			return nil, fmt.Errorf("document: cycle through %v", v)
		}
		active[v] = true
		defer delete(active, v)
	}

	switch c := v.(type) {
	case *observer.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range c.Keys() {
			val, err := toYAMLNode(c.Get(k), active)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				val)
		}
		return n, nil
	case *observer.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := 0; i < c.Len(); i++ {
			val, err := toYAMLNode(c.At(i), active)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, val)
		}
		return n, nil
	}

	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return &n, nil
}

func encodeTOML(v any) ([]byte, error) {
	if _, ok := v.(*observer.Object); !ok {
		return nil, errors.New("D302").
			WithDetail(fmt.Sprintf("TOML documents need an object at the root, got %T", v))
	}
	native, err := ToNative(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(native); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
