package uploads

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sbilibin2017/gw-secondchance/internal/logger"
)

// DiskStorage persists uploaded files under a base directory. Saved files are
// referenced as /images/<name>, matching the route they are served from.
type DiskStorage struct {
	dir string
}

// NewDiskStorage creates a DiskStorage rooted at dir.
func NewDiskStorage(dir string) *DiskStorage {
	return &DiskStorage{dir: dir}
}

// Save writes the payload under the original file name and returns the image
// reference. Path separators in the name are stripped.
func (s *DiskStorage) Save(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	name = filepath.Base(name)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", err
	}

	logger.Log.Infow("file stored", "name", name, "dir", s.dir)
	return "/images/" + name, nil
}
