// Package outputs says where generated files go: a local directory,
// an S3 bucket or memory (for tests). The generator only asks for a
// writer by name and closes it when it is done with that file.
package outputs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Outputs hands out writers for named files.
type Outputs interface {
	Create(ctx context.Context, name string) (io.WriteCloser, error)
	Describe() string
}

const (
	s3Scheme  = "s3://"
	memScheme = "mem:"
)

// Open picks an implementation from a destination string.
//
//	s3://bucket/prefix   S3 (see s3.go for environment variables)
//	mem:                 in memory
//	anything else        a local directory, "" is the current one
func Open(ctx context.Context, dest string) (Outputs, error) {
	switch {
	case strings.HasPrefix(dest, s3Scheme):
		return OpenS3FromEnv(ctx, dest)
	case dest == memScheme:
		return NewMemory(), nil
	default:
		return NewDir(dest)
	}
}

// checkName stops names escaping the destination.
func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty output name")
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return fmt.Errorf("invalid output name %q", name)
	}
	return nil
}

// Dir writes files under a root directory.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root, creating it if needed.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Create(_ context.Context, name string) (io.WriteCloser, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(d.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func (d *Dir) Describe() string { return d.root }

// Path is where a file called name ends up.
func (d *Dir) Path(name string) string { return filepath.Join(d.root, filepath.FromSlash(name)) }

// Memory keeps files in a map. A file only appears once it is closed.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemory() *Memory { return &Memory{files: make(map[string][]byte)} }

type memFile struct {
	bytes.Buffer
	name string
	m    *Memory
}

func (f *memFile) Close() error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.files[f.name] = bytes.Clone(f.Bytes())
	return nil
}

func (m *Memory) Create(_ context.Context, name string) (io.WriteCloser, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return &memFile{name: name, m: m}, nil
}

func (m *Memory) Describe() string { return memScheme }

// Get returns a closed file's contents.
func (m *Memory) Get(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[name]
	return b, ok
}

// Names lists closed files, sorted.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for k := range m.files {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
