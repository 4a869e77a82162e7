package forms

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// DecodeJSON reads a form from its JSON shape.
func DecodeJSON(data []byte) (*Form, error) {
	var f Form
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return &f, nil
}

// DecodeYAML reads a form written in YAML using the same field names as JSON.
func DecodeYAML(data []byte) (*Form, error) {
	var f Form
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &f, nil
}

// EncodeYAML writes f in YAML.
func EncodeYAML(f *Form) ([]byte, error) {
	js, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(js, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}

// LoadFile reads a form from path, choosing YAML for .yaml/.yml files and JSON otherwise.
func LoadFile(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}
