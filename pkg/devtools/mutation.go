package devtools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/document"
	"github.com/vango-dev/reactive/pkg/observer"
	"github.com/vango-dev/reactive/pkg/telemetry"
)

// Mutation operations.
const (
	OpSet     = "set"
	OpDel     = "del"
	OpPush    = "push"
	OpPop     = "pop"
	OpShift   = "shift"
	OpUnshift = "unshift"
	OpSplice  = "splice"
	OpSort    = "sort"
	OpReverse = "reverse"
)

// Mutation is one structural operation on a state tree. Set and del
// address a key through Path; the array operations address the array
// itself. Values are plain JSON-like data and become containers when
// applied.
type Mutation struct {
	Op    string `json:"op" yaml:"op" toml:"op"`
	Path  string `json:"path" yaml:"path" toml:"path"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Items []any  `json:"items,omitempty" yaml:"items,omitempty" toml:"items,omitempty"`

	// Start and Count parameterize splice. A nil Count removes everything
	// from Start on.
	Start int  `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	Count *int `json:"count,omitempty" yaml:"count,omitempty" toml:"count,omitempty"`
}

// ParseScript decodes a list of mutations. JSON and YAML scripts are a
// top-level sequence; TOML scripts use [[mutation]] tables.
func ParseScript(data []byte, format document.Format) ([]Mutation, error) {
	var script []Mutation
	switch format {
	case document.JSON, document.YAML:
		// YAML is a superset of JSON.
		if err := yaml.Unmarshal(data, &script); err != nil {
			return nil, errors.New("X404").WithDetail("script: " + err.Error()).Wrap(err)
		}
	case document.TOML:
		var doc struct {
			Mutation []Mutation `toml:"mutation"`
		}
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, errors.New("X404").WithDetail("script: " + err.Error()).Wrap(err)
		}
		script = doc.Mutation
	default:
		return nil, errors.New("D302").WithDetail(fmt.Sprintf("unknown format %q", format))
	}
	for i, m := range script {
		if err := m.validate(); err != nil {
			return nil, errors.New("X404").WithDetail(fmt.Sprintf("mutation %d: %v", i, err)).Wrap(err)
		}
	}
	return script, nil
}

func (m Mutation) validate() error {
	switch m.Op {
	case OpSet, OpDel:
		if m.Path == "" {
			return fmt.Errorf("%s needs a path below the root", m.Op)
		}
	case OpPush, OpPop, OpShift, OpUnshift, OpSplice, OpSort, OpReverse:
	case "":
		return fmt.Errorf("missing op")
	default:
		return fmt.Errorf("unknown op %q", m.Op)
	}
	return nil
}

// checkAppend refuses a set that would grow an array by more than one
// element. Scripts and requests may append but never open holes.
func checkAppend(m Mutation, container any, key string) error {
	arr, ok := container.(*observer.Array)
	if !ok {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil || n <= float64(arr.Len()) {
		return nil
	}
	return errors.New("X404").
		WithDetail(fmt.Sprintf("set: index %s of %q is past the end (length %d)", key, m.Path, arr.Len()))
}

// Apply performs m on root through tracer and returns the operation's
// result in plain form: the assigned value for set, the new length for
// push and unshift, the removed elements for pop, shift and splice.
func Apply(ctx context.Context, tracer *telemetry.Tracer, root any, m Mutation) (any, error) {
	if err := m.validate(); err != nil {
		return nil, errors.New("X404").WithDetail(err.Error()).Wrap(err)
	}

	switch m.Op {
	case OpSet:
		container, key, err := document.Parent(root, m.Path)
		if err != nil {
			return nil, err
		}
		if err := checkAppend(m, container, key); err != nil {
			return nil, err
		}
		val, err := tracer.Set(ctx, container, key, document.FromNative(m.Value))
		if err != nil {
			return nil, mutationError(m, err)
		}
		return native(tracer.Runtime(), val), nil

	case OpDel:
		container, key, err := document.Parent(root, m.Path)
		if err != nil {
			return nil, err
		}
		if err := tracer.Del(ctx, container, key); err != nil {
			return nil, mutationError(m, err)
		}
		return nil, nil
	}

	target, err := document.Resolve(root, m.Path)
	if err != nil {
		return nil, err
	}
	arr, ok := target.(*observer.Array)
	if !ok {
		return nil, errors.New("X404").
			WithDetail(fmt.Sprintf("%s: %q is %T, not an array", m.Op, m.Path, target))
	}

	var result any
	err = tracer.Do(ctx, "reactive.array."+m.Op, func(context.Context) error {
		result = applyArray(arr, m)
		return nil
	}, attribute.String("reactive.path", m.Path))
	if err != nil {
		return nil, err
	}
	return native(tracer.Runtime(), result), nil
}

func applyArray(arr *observer.Array, m Mutation) any {
	items := make([]any, len(m.Items))
	for i, item := range m.Items {
		items[i] = document.FromNative(item)
	}

	switch m.Op {
	case OpPush:
		return int64(arr.Push(items...))
	case OpPop:
		return arr.Pop()
	case OpShift:
		return arr.Shift()
	case OpUnshift:
		return int64(arr.Unshift(items...))
	case OpSplice:
		count := arr.Len()
		if m.Count != nil {
			count = *m.Count
		}
		return observer.NewArray(arr.Splice(m.Start, count, items...)...)
	case OpSort:
		arr.Sort(nil)
	case OpReverse:
		arr.Reverse()
	}
	return nil
}

func mutationError(m Mutation, err error) error {
	return errors.New("X404").
		WithDetail(fmt.Sprintf("%s %s: %v", m.Op, m.Path, err)).
		Wrap(err)
}

// native converts v for output without subscribing the active target.
func native(rt *observer.Runtime, v any) any {
	var out any
	rt.Untracked(func() {
		var err error
		if out, err = document.ToNative(v); err != nil {
			out = strings.TrimSpace(fmt.Sprint(v))
		}
	})
	return out
}
