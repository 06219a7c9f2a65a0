package fs

import (
	"io"
	iofs "io/fs"
)

// FileSystem is a single storage volume. Names are slash-separated and
// relative to the volume root; "/" is the root itself.
type FileSystem interface {
	Create(name string) (File, error)
	Open(name string) (File, error)
	ReadDir(name string) ([]DirEntry, error)
	MkdirAll(path string) error
	Remove(name string) error
	RemoveAll(path string) error
	Stat(name string) (DirEntry, error)
}

// File is an open, read/write handle. Callers must Close it.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Truncate(size int64) error
	Stat() (iofs.FileInfo, error)
}

type DirEntry interface {
	Name() string
	IsDir() bool
}

// Volume describes a mounted or attached storage unit.
type Volume struct {
	Name string
	Size int64
}
