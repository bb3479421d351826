package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type fileBackend struct {
	dir string
}

func newFileBackend(dir string) (*fileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &fileBackend{dir: dir}, nil
}

func (b *fileBackend) Name() string {
	return "file:" + b.dir
}

func (b *fileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

func (b *fileBackend) ReadDocument(_ context.Context, name string) ([]byte, error) {
	body, err := os.ReadFile(b.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrDocumentNotFound
	}
	return body, err
}

// WriteDocument replaces the file through a rename so readers never see a torn document.
// Two concurrent writers still race, the last rename wins.
func (b *fileBackend) WriteDocument(_ context.Context, name string, body []byte) error {
	tmp, err := os.CreateTemp(b.dir, name+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, b.path(name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (b *fileBackend) Close() error {
	return nil
}
