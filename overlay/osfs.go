package overlay

import (
	"io"
	"os"
	"path/filepath"
)

// OSFileSystem resolves sibling-file names against a directory on disk.
type OSFileSystem struct {
	Dir string
}

func (fs OSFileSystem) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(fs.Dir, name))
}
