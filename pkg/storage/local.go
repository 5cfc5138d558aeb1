package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local writes files into a directory served statically under urlPrefix.
type Local struct {
	dir       string
	urlPrefix string
}

func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Local{dir: dir, urlPrefix: urlPrefix}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Save(_ context.Context, name, _ string, body io.Reader) (string, error) {
	path := filepath.Join(l.dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return l.urlPrefix + "/" + filepath.Base(name), nil
}

// Delete removes a previously saved file. Unknown URLs and missing files are ignored.
func (l *Local) Delete(_ context.Context, url string) error {
	key, ok := keyFromURL(l.urlPrefix, url)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
