package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiskStorage_Save(t *testing.T) {
	dir := t.TempDir()
	storage := NewDiskStorage(dir)

	ref, err := storage.Save("chair.png", strings.NewReader("payload"))
	assert.NoError(t, err)
	assert.Equal(t, "/images/chair.png", ref)

	data, err := os.ReadFile(filepath.Join(dir, "chair.png"))
	assert.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestDiskStorage_Save_StripsPath(t *testing.T) {
	dir := t.TempDir()
	storage := NewDiskStorage(dir)

	ref, err := storage.Save("../../outside.png", strings.NewReader("payload"))
	assert.NoError(t, err)
	assert.Equal(t, "/images/outside.png", ref)

	_, err = os.Stat(filepath.Join(dir, "outside.png"))
	assert.NoError(t, err)
}

func TestDiskStorage_Save_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "images")
	storage := NewDiskStorage(dir)

	_, err := storage.Save("a.png", strings.NewReader("x"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "a.png"))
	assert.NoError(t, err)
}
