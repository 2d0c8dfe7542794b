package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads configuration from a YAML or JSON file, chosen by the
// file extension (.yaml, .yml, .json).
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(raw)
	case ".json":
		return FromJSON(raw)
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
}

// FromYAML parses YAML data into a Config.
func FromYAML(raw []byte) (Config, error) {
	return decodeWith(raw, yaml.Unmarshal, "yaml")
}

// FromJSON parses JSON data into a Config.
func FromJSON(raw []byte) (Config, error) {
	return decodeWith(raw, json.Unmarshal, "json")
}

func decodeWith(raw []byte, unmarshal func([]byte, any) error, format string) (Config, error) {
	var values map[string]any
	if err := unmarshal(raw, &values); err != nil {
		return Config{}, fmt.Errorf("parse %s config: %w", format, err)
	}
	return New(values), nil
}
