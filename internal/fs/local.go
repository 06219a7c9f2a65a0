package fs

import (
	"os"
	"path"
	"path/filepath"

	"github.com/rwx-research/tirag/internal/errors"
)

var _ FileSystem = Local{}

// Local is a volume backed by a directory on the host.
type Local struct {
	Root string
}

func (l Local) Create(name string) (File, error) {
	fd, err := os.OpenFile(l.hostPath(name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %q", name)
	}

	return fd, nil
}

func (l Local) Open(name string) (File, error) {
	info, err := os.Stat(l.hostPath(name))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %q", name)
	}
	if info.IsDir() {
		return nil, errors.Errorf("path %q is a directory", name)
	}

	fd, err := os.OpenFile(l.hostPath(name), os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %q", name)
	}

	return fd, nil
}

func (l Local) ReadDir(name string) ([]DirEntry, error) {
	files, err := os.ReadDir(l.hostPath(name))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %q", name)
	}

	entries := make([]DirEntry, len(files))
	for i, file := range files {
		entries[i] = file
	}

	return entries, nil
}

func (l Local) MkdirAll(path string) error {
	return errors.WithStack(os.MkdirAll(l.hostPath(path), os.ModePerm))
}

func (l Local) Remove(name string) error {
	if err := os.Remove(l.hostPath(name)); err != nil {
		return errors.Wrapf(err, "unable to delete %q", name)
	}

	return nil
}

func (l Local) RemoveAll(path string) error {
	if _, err := os.Stat(l.hostPath(path)); err != nil {
		return errors.Wrapf(err, "unable to remove %q", path)
	}

	return errors.WithStack(os.RemoveAll(l.hostPath(path)))
}

func (l Local) Stat(name string) (DirEntry, error) {
	info, err := os.Stat(l.hostPath(name))
	if err != nil {
		return nil, err
	}

	return info, nil
}

// Usage sums the sizes of every regular file below the root.
func (l Local) Usage() (int64, error) {
	var total int64
	err := filepath.WalkDir(l.Root, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "unable to measure %q", l.Root)
	}

	return total, nil
}

func (l Local) hostPath(name string) string {
	return filepath.Join(l.Root, filepath.FromSlash(path.Clean("/"+name)))
}
