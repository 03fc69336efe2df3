package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/observer"
)

// SplitPath splits a dot-separated path. The empty path has no segments
// and addresses the root.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Resolve returns the value at path below root.
func Resolve(root any, path string) (any, error) {
	cur := root
	for i, seg := range SplitPath(path) {
		next, err := child(cur, seg)
		if err != nil {
			return nil, pathError(path, SplitPath(path)[:i+1], err)
		}
		cur = next
	}
	return cur, nil
}

// Parent resolves everything but the last segment of path and returns the
// container found there with the last segment as key. Use it to mutate the
// addressed value through Runtime.Set or Runtime.Del.
func Parent(root any, path string) (container any, key string, err error) {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return nil, "", errors.New("D304").
			WithDetail("The root has no parent; name a key below it")
	}
	container, err = Resolve(root, strings.Join(segs[:len(segs)-1], "."))
	if err != nil {
		return nil, "", err
	}
	if !observer.IsContainer(container) {
		return nil, "", pathError(path, segs[:len(segs)-1], fmt.Errorf("%T is not an object or array", container))
	}
	return container, segs[len(segs)-1], nil
}

func child(v any, seg string) (any, error) {
	switch c := v.(type) {
	case *observer.Object:
		if c == nil || !c.Has(seg) {
			return nil, fmt.Errorf("no key %q", seg)
		}
		return c.Get(seg), nil
	case *observer.Array:
		idx, err := strconv.Atoi(seg)
		if err != nil || c == nil || idx < 0 || idx >= c.Len() {
			return nil, fmt.Errorf("no index %q", seg)
		}
		return c.At(idx), nil
	}
	return nil, fmt.Errorf("%T has no key %q", v, seg)
}

func pathError(path string, at []string, err error) error {
	return errors.New("D304").
		WithDetail(fmt.Sprintf("%s: at %q: %v", path, strings.Join(at, "."), err)).
		Wrap(err)
}
