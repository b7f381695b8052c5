package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oshokin/alarm-clock/internal/config"
)

// Store defines persistence operations for named records.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// ErrNotFound is returned when a record has never been written.
var ErrNotFound = errors.New("record not found")

// errEmptyName is returned for blank record names.
var errEmptyName = errors.New("record name must be provided")

// FileStore persists every record to its own JSON file in a directory.
type FileStore struct {
	// dir is the folder holding record files.
	dir string
	// mu serialises access to the record files.
	mu sync.Mutex
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}

	return &FileStore{
		dir: filepath.Clean(dir),
	}
}

// Path returns the file backing the named record.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, fileName(name))
}

// Read loads the named record from disk.
func (s *FileStore) Read(_ context.Context, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read record file: %w", err)
	}

	return contents, nil
}

// Write replaces the named record. The payload is written to a temporary
// file first and renamed over the old one.
func (s *FileStore) Write(_ context.Context, name string, data []byte) error {
	if strings.TrimSpace(name) == "" {
		return errEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}

	path := s.Path(name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace record file: %w", err)
	}

	return nil
}

// fileName maps a record name such as "alarm-clock:alarms" to a safe file name.
func fileName(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(name))

	return safe + ".json"
}
