package mocks

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

type fileEntry struct {
	data    []byte
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

// FileSystem is an in-memory test double for ports.FileSystem.
type FileSystem struct {
	mu      sync.RWMutex
	entries map[string]*fileEntry
	errors  map[string]error
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		entries: make(map[string]*fileEntry),
		errors:  make(map[string]error),
	}
}

// AddFile seeds the mock with a file at path.
func (m *FileSystem) AddFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[path] = &fileEntry{data: data, mode: 0o644, modTime: time.Now()}
}

// AddDir seeds the mock with a directory at path.
func (m *FileSystem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[path] = &fileEntry{mode: 0o755 | os.ModeDir, modTime: time.Now(), isDir: true}
}

// SetModTime overrides the modification time of an existing entry.
func (m *FileSystem) SetModTime(path string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[path]; ok {
		entry.modTime = t
	}
}

// AddError makes any operation on path return err.
func (m *FileSystem) AddError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[path] = err
}

// ReadFile returns the seeded content of path.
func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.errors[path]; ok {
		return nil, err
	}
	entry, ok := m.entries[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	if entry.isDir {
		return nil, fmt.Errorf("read %s: is a directory", path)
	}

	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, nil
}

// WriteFile stores data at path.
func (m *FileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.errors[path]; ok {
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	m.entries[path] = &fileEntry{data: stored, mode: perm, modTime: time.Now()}
	return nil
}

// AppendFile appends data to path, creating the entry if absent.
func (m *FileSystem) AppendFile(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.errors[path]; ok {
		return err
	}

	entry, ok := m.entries[path]
	if !ok {
		entry = &fileEntry{mode: perm}
		m.entries[path] = entry
	}
	entry.data = append(entry.data, data...)
	entry.modTime = time.Now()
	return nil
}

// Exists reports whether path was seeded or written.
func (m *FileSystem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[path]
	return ok
}

// IsDir reports whether path is a seeded directory.
func (m *FileSystem) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[path]
	return ok && entry.isDir
}

// MkdirAll records a directory entry at path.
func (m *FileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.errors[path]; ok {
		return err
	}
	m.entries[path] = &fileEntry{mode: perm | os.ModeDir, modTime: time.Now(), isDir: true}
	return nil
}

// GetFileInfo returns metadata for path.
func (m *FileSystem) GetFileInfo(path string) (ports.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.errors[path]; ok {
		return ports.FileInfo{}, err
	}
	entry, ok := m.entries[path]
	if !ok {
		return ports.FileInfo{}, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
	}
	return ports.FileInfo{
		Size:    int64(len(entry.data)),
		Mode:    entry.mode,
		ModTime: entry.modTime,
		IsDir:   entry.isDir,
	}, nil
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
