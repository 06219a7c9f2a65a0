package mocks

import (
	"bytes"
	iofs "io/fs"
	"time"
)

type File struct {
	Name      string
	Contents  *bytes.Buffer
	MockWrite func(p []byte) (int, error)
	MockClose func() error
	Closed    bool
}

func NewFile(name, content string) *File {
	return &File{Name: name, Contents: bytes.NewBufferString(content)}
}

func (f *File) Read(p []byte) (int, error) {
	return f.Contents.Read(p)
}

func (f *File) Write(p []byte) (int, error) {
	if f.MockWrite != nil {
		return f.MockWrite(p)
	}

	return f.Contents.Write(p)
}

func (f *File) Truncate(size int64) error {
	f.Contents.Truncate(int(size))
	return nil
}

func (f *File) Stat() (iofs.FileInfo, error) {
	return fileInfo{name: f.Name, size: int64(f.Contents.Len())}, nil
}

func (f *File) Close() error {
	f.Closed = true
	if f.MockClose != nil {
		return f.MockClose()
	}

	return nil
}

type fileInfo struct {
	name string
	size int64
}

func (fi fileInfo) Name() string        { return fi.name }
func (fi fileInfo) Size() int64         { return fi.size }
func (fi fileInfo) Mode() iofs.FileMode { return 0o644 }
func (fi fileInfo) ModTime() time.Time  { return time.Time{} }
func (fi fileInfo) IsDir() bool         { return false }
func (fi fileInfo) Sys() any            { return nil }
