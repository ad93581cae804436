package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Log is an append-only, line-oriented file. Each Log file has exactly one
// writing process; any number of processes may read it.
type Log struct {
	path string
}

func NewLog(path string) *Log {
	return &Log{path: path}
}

func (l *Log) Path() string {
	return l.path
}

// Append writes line as a single O_APPEND write call, adding the trailing
// newline when it is missing. Lines from separate Log values on one path never
// interleave.
func (l *Log) Append(line string) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("store: ensure dir for %s: %w", l.path, err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", l.path, err)
	}
	defer file.Close()
	if _, err := io.WriteString(file, line); err != nil {
		return fmt.Errorf("store: append %s: %w", l.path, err)
	}
	return nil
}

// ReadFrom returns the complete lines that come after the first offset lines,
// without their newline. A trailing line still being flushed by its writer is
// not returned; it shows up on a later read. A missing file has no lines.
func (l *Log) ReadFrom(offset int) ([]string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", l.path, err)
	}
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, nil
	}
	lines := strings.Split(string(data[:end]), "\n")
	if offset >= len(lines) {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	out := make([]string, len(lines)-offset)
	for i, line := range lines[offset:] {
		out[i] = strings.TrimRight(line, "\r")
	}
	return out, nil
}

// Lines returns every complete line.
func (l *Log) Lines() ([]string, error) {
	return l.ReadFrom(0)
}

// Cursor remembers how far its owner has read a Log. It defines "new since
// last poll" for that reader only.
type Cursor struct {
	log    *Log
	offset int
}

func (l *Log) Cursor() *Cursor {
	return &Cursor{log: l}
}

// Next returns the lines appended since the previous call.
func (c *Cursor) Next() ([]string, error) {
	lines, err := c.log.ReadFrom(c.offset)
	if err != nil {
		return nil, err
	}
	c.offset += len(lines)
	return lines, nil
}

// Skip moves the cursor past everything currently in the log.
func (c *Cursor) Skip() error {
	_, err := c.Next()
	return err
}

func (c *Cursor) Offset() int {
	return c.offset
}
