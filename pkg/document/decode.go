package document

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/observer"
)

// syntaxError carries the source position of a parse failure.
type syntaxError struct {
	line, column int
	err          error
}

func (e *syntaxError) Error() string { return e.err.Error() }
func (e *syntaxError) Unwrap() error { return e.err }

// Decode parses data in the given format into containers and scalars.
// Parse failures are returned as D301 errors.
func Decode(data []byte, format Format) (any, error) {
	return decode(data, format, "")
}

// Load reads and decodes the file at path, picking the format from its
// extension. Parse failures point at the offending line of the file.
func Load(path string) (any, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("D301").
			WithDetail("Failed to read " + path).
			Wrap(err)
	}
	return decode(data, format, path)
}

func decode(data []byte, format Format, file string) (any, error) {
	var (
		v   any
		err error
	)
	switch format {
	case JSON:
		v, err = decodeJSON(data)
	case YAML:
		v, err = decodeYAML(data)
	case TOML:
		v, err = decodeTOML(data)
	default:
		parsed, perr := ParseFormat(string(format))
		if perr != nil {
			return nil, perr
		}
		return decode(data, parsed, file)
	}
	if err == nil {
		return v, nil
	}

	re := errors.New("D301").
		WithDetail(fmt.Sprintf("Invalid %s: %v", strings.ToUpper(string(format)), err)).
		Wrap(err)
	var se *syntaxError
	if stderrors.As(err, &se) && se.line > 0 {
		re = re.WithLocation(file, se.line, se.column)
	}
	return nil, re
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readJSONValue(dec)
	if err == nil {
		if _, extra := dec.Token(); extra != io.EOF {
			err = fmt.Errorf("unexpected data after top-level value")
		}
	}
	if err != nil {
		line, col := position(data, int(dec.InputOffset()))
		var se *json.SyntaxError
		if stderrors.As(err, &se) {
			line, col = position(data, int(se.Offset))
		}
		return nil, &syntaxError{line: line, column: col, err: err}
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := observer.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				val, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				_ = obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			var items []any
			for dec.More() {
				val, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return observer.NewArray(items...), nil
		}
		return nil, fmt.Errorf("unexpected %q", rune(t))
	case json.Number:
		return normalizeScalar(t), nil
	}
	return tok, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int) (line, col int) {
	if offset > len(data) {
		offset = len(data)
	}
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = offset - bytes.LastIndexByte(before, '\n')
	return line, col
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func decodeYAML(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		se := &syntaxError{err: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			se.line, _ = strconv.Atoi(m[1])
		}
		return nil, se
	}
	return fromYAMLNode(&root)
}

func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return observer.NewArray(items...), nil
	case yaml.MappingNode:
		obj := observer.NewObject()
		var merged []*observer.Object
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			v, err := fromYAMLNode(vn)
			if err != nil {
				return nil, err
			}
			if k.Tag == "!!merge" {
				merged = append(merged, mergeSources(v)...)
				continue
			}
			_ = obj.Set(k.Value, v)
		}
		// Explicit keys win over merged ones.
		for _, src := range merged {
			for _, key := range src.Keys() {
				if !obj.HasOwn(key) {
					_ = obj.Set(key, src.Get(key))
				}
			}
		}
		return obj, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &syntaxError{line: n.Line, column: n.Column, err: err}
		}
		return normalizeScalar(v), nil
	}
	return nil, &syntaxError{line: n.Line, column: n.Column, err: fmt.Errorf("unsupported YAML node kind %d", n.Kind)}
}

func mergeSources(v any) []*observer.Object {
	switch t := v.(type) {
	case *observer.Object:
		return []*observer.Object{t}
	case *observer.Array:
		var out []*observer.Object
		for _, item := range t.Items() {
			if obj, ok := item.(*observer.Object); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

func decodeTOML(data []byte) (any, error) {
	var raw map[string]any
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		se := &syntaxError{err: err}
		var pe toml.ParseError
		if stderrors.As(err, &pe) {
			se.line = pe.Position.Line
		}
		return nil, se
	}

	order := make(map[string]int)
	for i, key := range meta.Keys() {
		p := strings.Join(key, "\x00")
		if _, ok := order[p]; !ok {
			order[p] = i
		}
	}
	return fromTOML(raw, nil, order), nil
}

// fromTOML converts decoded TOML values, ordering table keys by their
// first appearance in the document.
func fromTOML(v any, path []string, order map[string]int) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		rank := func(k string) int {
			if r, ok := order[strings.Join(append(path[:len(path):len(path)], k), "\x00")]; ok {
				return r
			}
			return len(order)
		}
		sort.SliceStable(keys, func(i, j int) bool {
			ri, rj := rank(keys[i]), rank(keys[j])
			if ri != rj {
				return ri < rj
			}
			return keys[i] < keys[j]
		})
		obj := observer.NewObject()
		for _, k := range keys {
			_ = obj.Set(k, fromTOML(t[k], append(path[:len(path):len(path)], k), order))
		}
		return obj
	case []map[string]any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = fromTOML(item, path, order)
		}
		return observer.NewArray(items...)
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = fromTOML(item, path, order)
		}
		return observer.NewArray(items...)
	}
	return normalizeScalar(v)
}
