package instance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"binrent/internal/opt"
)

// Load reads an instance from a .yaml, .yml or .json file and validates it.
func Load(path string) (opt.Instance, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return opt.Instance{}, err
	}
	inst, err := Decode(b, formatOf(path))
	if err != nil {
		return opt.Instance{}, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// Save writes inst in the format implied by the extension.
func Save(path string, inst opt.Instance) error {
	b, err := Encode(inst, formatOf(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Decode parses "yaml" or "json" and returns an instance with empty bins.
func Decode(b []byte, format string) (opt.Instance, error) {
	var inst opt.Instance
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(b, &inst)
	default:
		err = yaml.Unmarshal(b, &inst)
	}
	if err != nil {
		return opt.Instance{}, err
	}
	inst = inst.Clone()
	if err := Validate(inst); err != nil {
		return opt.Instance{}, err
	}
	return inst, nil
}

// Encode renders the catalogs and budget only.
func Encode(inst opt.Instance, format string) ([]byte, error) {
	inst = inst.Clone()
	if format == "json" {
		return json.MarshalIndent(inst, "", "  ")
	}
	return yaml.Marshal(inst)
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}
