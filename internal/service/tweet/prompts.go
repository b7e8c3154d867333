package tweet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoPrompts is returned when the prompts file holds no usable prompts.
var ErrNoPrompts = errors.New("no prompts found in prompts file")

type promptFile struct {
	Prompts []string `json:"prompts" yaml:"prompts"`
}

// LoadPrompts reads a JSON or YAML file of the form {"prompts": [...]}.
func LoadPrompts(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("prompts file not found at %s", path)
		}
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	var file promptFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("invalid YAML in prompts file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("invalid JSON in prompts file: %w", err)
		}
	}

	prompts := make([]string, 0, len(file.Prompts))
	for _, p := range file.Prompts {
		if p = strings.TrimSpace(p); p != "" {
			prompts = append(prompts, p)
		}
	}
	if len(prompts) == 0 {
		return nil, ErrNoPrompts
	}
	return prompts, nil
}
