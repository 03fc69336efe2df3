package document

import (
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/observer"
)

func errorCode(err error) string {
	var re *errors.ReactiveError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return ""
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{
			name:   "json",
			format: JSON,
			input:  `{"title": "todo", "count": 2, "ratio": 0.5, "done": false, "tags": ["a", "b"], "owner": null}`,
		},
		{
			name:   "yaml",
			format: YAML,
			input: `title: todo
count: 2
ratio: 0.5
done: false
tags: [a, b]
owner: null
`,
		},
		{
			name:   "toml",
			format: TOML,
			input: `title = "todo"
count = 2
ratio = 0.5
done = false
tags = ["a", "b"]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode([]byte(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			obj, ok := v.(*observer.Object)
			if !ok {
				t.Fatalf("Decode returned %T, want *observer.Object", v)
			}

			wantKeys := []string{"title", "count", "ratio", "done", "tags", "owner"}
			if tt.format == TOML {
				wantKeys = wantKeys[:5]
			}
			if got := obj.Keys(); !slices.Equal(got, wantKeys) {
				t.Errorf("Keys() = %v, want %v", got, wantKeys)
			}
			if obj.Get("count") != int64(2) {
				t.Errorf("count = %#v, want int64(2)", obj.Get("count"))
			}
			if obj.Get("ratio") != 0.5 {
				t.Errorf("ratio = %#v, want 0.5", obj.Get("ratio"))
			}
			if obj.Get("done") != false {
				t.Errorf("done = %#v", obj.Get("done"))
			}
			tags, ok := obj.Get("tags").(*observer.Array)
			if !ok || !slices.Equal(tags.Items(), []any{"a", "b"}) {
				t.Errorf("tags = %v", obj.Get("tags"))
			}
		})
	}
}

func TestDecodeTOMLTables(t *testing.T) {
	input := `name = "app"

[server]
port = 8080
host = "localhost"

[[users]]
name = "ada"

[[users]]
name = "grace"
`
	v, err := Decode([]byte(input), TOML)
	if err != nil {
		t.Fatal(err)
	}
	root := v.(*observer.Object)
	if got := root.Keys(); !slices.Equal(got, []string{"name", "server", "users"}) {
		t.Errorf("Keys() = %v", got)
	}
	server := root.Get("server").(*observer.Object)
	if got := server.Keys(); !slices.Equal(got, []string{"port", "host"}) {
		t.Errorf("server keys = %v", got)
	}
	users := root.Get("users").(*observer.Array)
	if users.Len() != 2 || users.At(1).(*observer.Object).Get("name") != "grace" {
		t.Errorf("users = %v", users.Items())
	}
}

func TestDecodeYAMLAnchorsAndMerge(t *testing.T) {
	input := `base: &base
  color: red
  size: 1
item:
  <<: *base
  size: 2
copy: *base
`
	v, err := Decode([]byte(input), YAML)
	if err != nil {
		t.Fatal(err)
	}
	root := v.(*observer.Object)
	item := root.Get("item").(*observer.Object)
	if item.Get("color") != "red" || item.Get("size") != int64(2) {
		t.Errorf("item = color:%v size:%v", item.Get("color"), item.Get("size"))
	}
	if root.Get("copy") == root.Get("base") {
		t.Error("aliases should decode to distinct containers")
	}
}

func TestDecodeScalarsAndEmpty(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		want   any
	}{
		{name: "json number", format: JSON, input: `42`, want: int64(42)},
		{name: "json big float", format: JSON, input: `1e400`, want: "1e400"},
		{name: "json string", format: JSON, input: `"x"`, want: "x"},
		{name: "yaml empty", format: YAML, input: ``, want: nil},
		{name: "yaml scalar", format: YAML, input: `hello`, want: "hello"},
		{name: "toml empty", format: TOML, input: ``, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode([]byte(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if obj, ok := v.(*observer.Object); ok && tt.want == nil {
				if obj.Len() != 0 {
					t.Errorf("expected empty object, got %v keys", obj.Keys())
				}
				return
			}
			if v != tt.want {
				t.Errorf("Decode = %#v, want %#v", v, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		input    string
		wantLine int
	}{
		{name: "json syntax", format: JSON, input: "{\n  \"a\": 1,\n  \"b\": ]\n}", wantLine: 3},
		{name: "json truncated", format: JSON, input: `{"a": `},
		{name: "json empty", format: JSON, input: ``},
		{name: "json trailing", format: JSON, input: `{} {}`},
		{name: "yaml", format: YAML, input: "a: 1\n  b: 2\n", wantLine: 2},
		{name: "toml", format: TOML, input: "a = 1\nb = \n", wantLine: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input), tt.format)
			if code := errorCode(err); code != "D301" {
				t.Fatalf("err = %v, want D301", err)
			}
			if tt.wantLine == 0 {
				return
			}
			var re *errors.ReactiveError
			stderrors.As(err, &re)
			if re.Location == nil || re.Location.Line != tt.wantLine {
				t.Errorf("Location = %v, want line %d", re.Location, tt.wantLine)
			}
		})
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := Decode([]byte(`{}`), Format("xml")); errorCode(err) != "D302" {
		t.Errorf("err = %v, want D302", err)
	}
	if v, err := Decode([]byte(`a: 1`), Format("yml")); err != nil || v == nil {
		t.Errorf("yml alias: v = %v, err = %v", v, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")
	if err := os.WriteFile(path, []byte("a:\n  b: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got, _ := Resolve(v, "a.b"); got != int64(1) {
		t.Errorf("a.b = %v", got)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{\n\n  oops\n}"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(bad)
	var re *errors.ReactiveError
	if !stderrors.As(err, &re) || re.Location == nil || re.Location.File != bad || re.Location.Line != 3 {
		t.Errorf("err = %v, location = %v", err, re.Location)
	}
	if len(re.Context) == 0 {
		t.Error("expected source context lines")
	}

	if _, err := Load(filepath.Join(dir, "state.ini")); errorCode(err) != "D302" {
		t.Errorf("unknown extension: err = %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); errorCode(err) != "D301" {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	src := observer.ObjectOf(
		"zeta", int64(1),
		"alpha", "two",
		"list", observer.NewArray(int64(1), int64(2)),
		"records", observer.NewArray(observer.ObjectOf("k", true)),
		"nested", observer.ObjectOf("x", 1.5),
	)

	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(src, format)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			back, err := Decode(data, format)
			if err != nil {
				t.Fatalf("Decode error: %v\n%s", err, data)
			}

			want, _ := ToNative(src)
			got, _ := ToNative(back)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip = %#v, want %#v", got, want)
			}
			if format != TOML {
				if keys := back.(*observer.Object).Keys(); !slices.Equal(keys, []string{"zeta", "alpha", "list", "records", "nested"}) {
					t.Errorf("key order lost: %v", keys)
				}
			}
		})
	}
}

func TestEncodeJSONOrder(t *testing.T) {
	data, err := Encode(observer.ObjectOf("b", 1, "a", 2), JSON)
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"b\": 1,\n  \"a\": 2\n}\n"; string(data) != want {
		t.Errorf("Encode = %q, want %q", data, want)
	}
}

func TestEncodeErrors(t *testing.T) {
	cyclic := observer.NewObject()
	_ = cyclic.Set("self", cyclic)

	for _, format := range Formats {
		if _, err := Encode(cyclic, format); err == nil || !strings.Contains(err.Error(), "cycle") {
			t.Errorf("%s: err = %v, want cycle error", format, err)
		}
	}
	if _, err := Encode(observer.NewArray(1), TOML); errorCode(err) != "D302" {
		t.Errorf("TOML array root: err = %v", err)
	}
	if _, err := Encode(math.NaN(), JSON); err == nil {
		t.Error("NaN is not valid JSON")
	}
}

func TestFromNative(t *testing.T) {
	v := FromNative(map[string]any{
		"b": []any{1, map[any]any{"x": uint8(2)}},
		"a": float32(1.5),
	})

	obj := v.(*observer.Object)
	if got := obj.Keys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v", got)
	}
	if obj.Get("a") != 1.5 {
		t.Errorf("a = %#v", obj.Get("a"))
	}
	if got, _ := Resolve(v, "b.1.x"); got != int64(2) {
		t.Errorf("b.1.x = %#v", got)
	}
	if got, _ := Resolve(v, "b.0"); got != int64(1) {
		t.Errorf("b.0 = %#v", got)
	}

	existing := observer.NewObject()
	if FromNative(existing) != any(existing) {
		t.Error("containers should pass through")
	}
}

func TestResolveAndParent(t *testing.T) {
	root := FromNative(map[string]any{
		"todos": []any{map[string]any{"title": "write"}},
		"name":  "list",
	})

	tests := []struct {
		path    string
		want    any
		wantErr bool
	}{
		{path: "", want: root},
		{path: "name", want: "list"},
		{path: "todos.0.title", want: "write"},
		{path: "todos.1", wantErr: true},
		{path: "todos.x", wantErr: true},
		{path: "name.length", wantErr: true},
		{path: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Resolve(root, tt.path)
			if tt.wantErr {
				if errorCode(err) != "D304" {
					t.Errorf("err = %v, want D304", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}

	container, key, err := Parent(root, "todos.0.title")
	if err != nil {
		t.Fatal(err)
	}
	if key != "title" || container.(*observer.Object).Get("title") != "write" {
		t.Errorf("Parent = %v, %q", container, key)
	}

	if _, _, err := Parent(root, ""); errorCode(err) != "D304" {
		t.Errorf("root parent: err = %v", err)
	}
	if _, _, err := Parent(root, "name.x"); errorCode(err) != "D304" {
		t.Errorf("primitive parent: err = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"json": JSON, ".yml": YAML, "YAML": YAML, "toml": TOML}
	for in, want := range tests {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := FormatFromPath("noext"); errorCode(err) != "D302" {
		t.Errorf("err = %v", err)
	}
}
