package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Register is a file holding a single value that is replaced as a whole.
type Register struct {
	path string
}

func NewRegister(path string) *Register {
	return &Register{path: path}
}

func (r *Register) Path() string {
	return r.path
}

// Read returns the trimmed value. A register that was never written is empty.
func (r *Register) Read() (string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("store: read %s: %w", r.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadLines splits the value into non-empty lines.
func (r *Register) ReadLines() ([]string, error) {
	value, err := r.Read()
	if err != nil || value == "" {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// Write replaces the value through a rename so readers see either the old or
// the new value, never a torn one.
func (r *Register) Write(value string) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: ensure dir for %s: %w", r.path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*")
	if err != nil {
		return fmt.Errorf("store: create temp for %s: %w", r.path, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", r.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: close temp for %s: %w", r.path, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: replace %s: %w", r.path, err)
	}
	return nil
}

func (r *Register) WriteLines(lines []string) error {
	return r.Write(strings.Join(lines, "\n"))
}
