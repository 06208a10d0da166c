// Package artifact stores generated audio files and hands back public URLs.
package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Store interface {
	Put(ctx context.Context, name string, reader io.Reader, contentType string) (string, error)
	Name() string
}

// LocalStore writes into a directory that the api serves statically.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) Name() string {
	return "local"
}

func (s *LocalStore) Put(ctx context.Context, name string, reader io.Reader, contentType string) (string, error) {
	name = filepath.Base(name)
	path := filepath.Join(s.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return s.BaseURL + "/" + name, nil
}
