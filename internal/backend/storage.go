package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"kanban_board/internal/domain"

	"gopkg.in/yaml.v3"
)

// SessionStorage persists the session between processes.
// Load returns nil, nil when nothing is stored.
type SessionStorage interface {
	Load() (*domain.Session, error)
	Save(*domain.Session) error
	Clear() error
}

// FileStorage keeps the session in a YAML file only the owner can read.
type FileStorage struct {
	Path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

func (f *FileStorage) Load() (*domain.Session, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s domain.Session
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", f.Path, err)
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

func (f *FileStorage) Save(s *domain.Session) error {
	if s == nil {
		return f.Clear()
	}
	raw, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".session-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}

func (f *FileStorage) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStorage forgets the session when the process exits.
type MemoryStorage struct {
	mu sync.Mutex
	s  *domain.Session
}

func (m *MemoryStorage) Load() (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemoryStorage) Save(s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		m.s = nil
		return nil
	}
	cp := *s
	m.s = &cp
	return nil
}

func (m *MemoryStorage) Clear() error {
	return m.Save(nil)
}
