package document

import (
	"path/filepath"
	"strings"

	"github.com/vango-dev/reactive/internal/errors"
)

// Format identifies a document encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, TOML}

// ParseFormat parses a format name such as "yaml" or "yml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", errors.New("D302").
		WithDetail("Unknown document format \"" + name + "\"").
		WithSuggestion("Use one of: json, yaml, toml")
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New("D302").
			WithDetail(path + " has no file extension").
			WithSuggestion("Name the file with a .json, .yaml or .toml extension")
	}
	return ParseFormat(ext)
}
