package social

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileCursor persists the id of the last processed mention in a file.
type FileCursor struct {
	path string
}

// NewFileCursor creates a cursor stored at path.
func NewFileCursor(path string) *FileCursor {
	return &FileCursor{path: path}
}

// Load returns the saved id, or "" when nothing was saved yet.
func (c *FileCursor) Load() (string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read cursor %s: %w", c.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save overwrites the saved id.
func (c *FileCursor) Save(id string) error {
	if err := os.WriteFile(c.path, []byte(id), 0o644); err != nil {
		return fmt.Errorf("write cursor %s: %w", c.path, err)
	}
	return nil
}
