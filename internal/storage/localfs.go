// Package storage holds uploaded files (property photos, job attachments)
// and hands back public URLs.
package storage

import (
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalFS stores objects under a root directory. The same interface fronts a
// hosted object store in deployments that need one.
type LocalFS struct {
	Root    string
	BaseURL string
}

func NewLocalFS(root, baseURL string) *LocalFS {
	return &LocalFS{Root: root, BaseURL: baseURL}
}

// Put writes the object under a collision-free name and returns its public URL.
func (l *LocalFS) Put(filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + "-" + filepath.Base(filepath.Clean(filename))
	abs := filepath.Join(l.Root, name)
	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(abs)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return path.Join(l.BaseURL, name), nil
}

func (l *LocalFS) Open(name string) (*os.File, error) {
	return os.Open(filepath.Join(l.Root, filepath.Base(filepath.Clean(name))))
}

func (l *LocalFS) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(l.Root, filepath.Base(filepath.Clean(name))))
	return err == nil
}
