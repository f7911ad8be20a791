package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Scratch is a per-invocation temporary directory. Everything written through
// it disappears on Close.
type Scratch struct {
	dir  string
	once sync.Once
	err  error
}

// NewScratch creates a fresh directory under base (os.TempDir() when empty).
func NewScratch(base string) (*Scratch, error) {
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return nil, fmt.Errorf("create scratch base: %w", err)
		}
	}
	dir, err := os.MkdirTemp(base, "concrete-ai-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

func (s *Scratch) Dir() string { return s.dir }

// WriteFile stores data as name inside the scratch directory.
func (s *Scratch) WriteFile(name string, data []byte) (string, error) {
	p := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	return p, nil
}

// Close removes the directory and its contents. Safe to call more than once.
func (s *Scratch) Close() error {
	s.once.Do(func() {
		s.err = os.RemoveAll(s.dir)
	})
	return s.err
}
