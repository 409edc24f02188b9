package ports

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo contains file metadata.
type FileInfo struct {
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
	IsDir   bool
}

// FileSystem provides the file system operations steps need: reading and
// writing project-local files, appending managed lines to shell profiles,
// and existence checks used as preconditions.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error

	// AppendFile appends data to a file, creating it if absent.
	AppendFile(path string, data []byte, perm os.FileMode) error

	Exists(path string) bool
	IsDir(path string) bool
	MkdirAll(path string, perm os.FileMode) error
	GetFileInfo(path string) (FileInfo, error)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
