package memoryfs

import (
	"bytes"
	"io"
	iofs "io/fs"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/rwx-research/tirag/internal/fs"
)

var _ fs.File = (*BufferedFile)(nil)

var ErrClosed = iofs.ErrClosed

type MemFile struct {
	Mode     iofs.FileMode
	ModTime  time.Time
	contents []byte
	Sys      any
}

func (mf *MemFile) Bytes() []byte {
	return bytes.Clone(mf.contents)
}

func (mf *MemFile) replaceContents(contents []byte) {
	mf.contents = contents
	mf.ModTime = time.Now()
}

// BufferedFile holds a private copy of a file's contents. Reads, writes and
// truncation act on the copy; Close hands the copy to commit when anything
// changed.
type BufferedFile struct {
	name    string
	buf     []byte
	offset  int64
	closed  bool
	changes bool
	commit  func([]byte) error
	mu      sync.Mutex
}

func NewBufferedFile(name string, contents []byte, commit func([]byte) error) *BufferedFile {
	return &BufferedFile{
		name:   path.Base(name),
		buf:    contents,
		commit: commit,
	}
}

func (fd *BufferedFile) Read(p []byte) (n int, err error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.closed {
		return 0, ErrClosed
	}
	if fd.empty() {
		return 0, io.EOF
	}

	n = copy(p, fd.buf[fd.offset:])
	fd.offset += int64(n)

	return n, nil
}

func (fd *BufferedFile) empty() bool {
	return int64(len(fd.buf)) <= fd.offset
}

func (fd *BufferedFile) Write(p []byte) (n int, err error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.closed {
		return 0, ErrClosed
	}

	if int64(len(fd.buf)) < fd.offset {
		fd.buf = append(fd.buf, make([]byte, fd.offset-int64(len(fd.buf)))...)
	}

	end := fd.offset + int64(len(p))
	if end > int64(len(fd.buf)) {
		// Grow and reslice
		fd.buf = slices.Grow(fd.buf, int(end)-len(fd.buf))[:end]
	}

	n = copy(fd.buf[fd.offset:], p)
	fd.offset += int64(n)
	fd.changes = true

	return
}

// Truncate changes the size of the file. The offset is left untouched.
func (fd *BufferedFile) Truncate(size int64) error {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.closed {
		return ErrClosed
	}
	if size < 0 {
		return iofs.ErrInvalid
	}

	if size <= int64(len(fd.buf)) {
		fd.buf = fd.buf[:size]
	} else {
		fd.buf = append(fd.buf, make([]byte, size-int64(len(fd.buf)))...)
	}
	fd.changes = true

	return nil
}

func (fd *BufferedFile) Stat() (iofs.FileInfo, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.closed {
		return nil, ErrClosed
	}

	return &handleInfo{name: fd.name, size: int64(len(fd.buf))}, nil
}

func (fd *BufferedFile) Close() error {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.closed {
		return ErrClosed
	}
	fd.closed = true

	if fd.changes && fd.commit != nil {
		return fd.commit(fd.buf)
	}

	return nil
}
