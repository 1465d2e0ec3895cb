package fetch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// DirFetcher serves fetch keys from a static build directory: the key
// "/static/docs/sidebar.json" maps to <root>/static/docs/sidebar.json.
type DirFetcher struct {
	root string
}

// NewDirFetcher returns a fetcher rooted at dir. The directory must exist.
func NewDirFetcher(dir string) (*DirFetcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "resolve source dir").Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "source dir not accessible").
			WithContext("dir", abs).Build()
	}
	if !info.IsDir() {
		return nil, ferrors.ConfigError("source dir is not a directory").
			WithContext("dir", abs).Build()
	}
	return &DirFetcher{root: abs}, nil
}

// Root returns the absolute directory the fetcher reads from.
func (d *DirFetcher) Root() string { return d.root }

// FetchJSON implements Fetcher.
func (d *DirFetcher) FetchJSON(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean("/" + key)
	if strings.Contains(key, "..") || clean == "/" {
		return nil, ferrors.NotFoundError("invalid fetch key").
			WithContext("fetch_key", key).Build()
	}
	full := filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))

	info, err := os.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, ferrors.NotFoundError("resource not found").
			WithContext("fetch_key", key).Build()
	case err != nil:
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat resource").
			Retryable().
			WithContext("fetch_key", key).Build()
	case info.IsDir():
		return nil, ferrors.NotFoundError("resource is a directory").
			WithContext("fetch_key", key).Build()
	case info.Size() > maxResponseBytes:
		return nil, ferrors.DecodeError("resource too large").
			WithContext("fetch_key", key).Build()
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read resource").
			Retryable().
			WithContext("fetch_key", key).Build()
	}
	return data, nil
}
