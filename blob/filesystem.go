package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FilesystemSource reads model files from a local directory.
// This is the default: the backend keeps its weights next to its code.
type FilesystemSource struct {
	dir string
}

// NewFilesystemSource creates a FilesystemSource rooted at dir. The directory
// is not required to exist; every lookup then reports ErrNotFound.
func NewFilesystemSource(dir string) *FilesystemSource {
	return &FilesystemSource{dir: dir}
}

func (f *FilesystemSource) Location(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *FilesystemSource) Stat(_ context.Context, name string) (Object, error) {
	info, err := os.Stat(f.Location(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Object{}, errors.Wrap(ErrNotFound, name)
		}
		return Object{}, errors.WithStack(err)
	}
	if info.IsDir() {
		return Object{}, errors.Errorf("%s is a directory", f.Location(name))
	}
	return Object{
		Name:    name,
		Size:    info.Size(),
		Mode:    info.Mode().Perm(),
		ModTime: info.ModTime(),
	}, nil
}

func (f *FilesystemSource) Open(ctx context.Context, name string) (io.ReadCloser, Object, error) {
	obj, err := f.Stat(ctx, name)
	if err != nil {
		return nil, Object{}, err
	}
	file, err := os.Open(f.Location(name))
	if err != nil {
		return nil, Object{}, errors.WithStack(err)
	}
	return file, obj, nil
}
