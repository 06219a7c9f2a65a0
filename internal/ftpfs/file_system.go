// Package ftpfs mounts a directory on an FTP server as a volume. Files are
// downloaded when opened and uploaded again when closed.
package ftpfs

import (
	"bytes"
	"io"
	iofs "io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/fs"
	"github.com/rwx-research/tirag/internal/memoryfs"
)

var _ fs.FileSystem = (*FileSystem)(nil)

const dialTimeout = 10 * time.Second

type Config struct {
	Address  string
	User     string
	Password string
	Root     string
}

func (c Config) Validate() error {
	if c.Address == "" {
		return errors.New("missing address")
	}

	return nil
}

// ServerConn is the subset of an FTP control connection used by the volume.
type ServerConn interface {
	List(path string) ([]*ftp.Entry, error)
	MakeDir(path string) error
	RemoveDirRecur(path string) error
	Delete(path string) error
	Retr(path string) (io.ReadCloser, error)
	Stor(path string, r io.Reader) error
	Quit() error
}

type conn struct {
	*ftp.ServerConn
}

func (c conn) Retr(path string) (io.ReadCloser, error) {
	response, err := c.ServerConn.Retr(path)
	if err != nil {
		return nil, err
	}

	return response, nil
}

// FileSystem serializes every command since an FTP control connection
// handles one transfer at a time.
type FileSystem struct {
	conn ServerConn
	root string
	mu   sync.Mutex
}

func New(conn ServerConn, root string) *FileSystem {
	if root == "" {
		root = "/"
	}

	return &FileSystem{conn: conn, root: root}
}

// Dial connects and logs in. An empty user logs in anonymously.
func Dial(cfg Config) (*FileSystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	serverConn, err := ftp.Dial(cfg.Address, ftp.DialWithTimeout(dialTimeout))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to %s", cfg.Address)
	}

	user, password := cfg.User, cfg.Password
	if user == "" {
		user, password = "anonymous", "anonymous"
	}

	if err := serverConn.Login(user, password); err != nil {
		_ = serverConn.Quit()
		return nil, errors.Wrapf(err, "unable to log in to %s as %s", cfg.Address, user)
	}

	return New(conn{serverConn}, cfg.Root), nil
}

func (f *FileSystem) Create(name string) (fs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	remote := f.remote(name)
	if err := f.conn.Stor(remote, bytes.NewReader(nil)); err != nil {
		return nil, errors.Wrapf(err, "unable to create %q", name)
	}

	return f.buffer(remote, nil), nil
}

func (f *FileSystem) Open(name string) (fs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	remote := f.remote(name)
	entry, err := f.stat(remote)
	if err != nil {
		return nil, err
	}
	if entry.IsDir() {
		return nil, errors.Errorf("path %q is a directory", name)
	}

	response, err := f.conn.Retr(remote)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to download %q", name)
	}
	defer response.Close()

	contents, err := io.ReadAll(response)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to download %q", name)
	}

	return f.buffer(remote, contents), nil
}

// buffer returns a local copy of a remote file that is uploaded on Close.
func (f *FileSystem) buffer(remote string, contents []byte) *memoryfs.BufferedFile {
	return memoryfs.NewBufferedFile(remote, contents, func(contents []byte) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		return errors.Wrapf(f.conn.Stor(remote, bytes.NewReader(contents)), "unable to upload %q", remote)
	})
}

func (f *FileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.list(f.remote(name))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %q", name)
	}

	return entries, nil
}

func (f *FileSystem) list(remote string) ([]fs.DirEntry, error) {
	listing, err := f.conn.List(remote)
	if err != nil {
		return nil, err
	}

	entries := make([]fs.DirEntry, 0, len(listing))
	for _, entry := range listing {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		entries = append(entries, dirEntry{entry})
	}

	return entries, nil
}

func (f *FileSystem) MkdirAll(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := f.root
	for _, segment := range strings.Split(strings.Trim(path.Clean("/"+name), "/"), "/") {
		if segment == "" {
			continue
		}
		dir = path.Join(dir, segment)

		entry, err := f.stat(dir)
		if err == nil {
			if !entry.IsDir() {
				return errors.Errorf("unable to create subdirectory of regular file at %q", dir)
			}
			continue
		}
		if !errors.Is(err, errors.ErrNotExist) {
			return err
		}

		if err := f.conn.MakeDir(dir); err != nil {
			return errors.Wrapf(err, "unable to create %q", dir)
		}
	}

	return nil
}

func (f *FileSystem) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return errors.Wrapf(f.conn.Delete(f.remote(name)), "unable to delete %q", name)
}

func (f *FileSystem) RemoveAll(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return errors.Wrapf(f.conn.RemoveDirRecur(f.remote(name)), "unable to remove %q", name)
}

func (f *FileSystem) Stat(name string) (fs.DirEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stat(f.remote(name))
}

// stat finds remote in the listing of its parent. The root always exists.
func (f *FileSystem) stat(remote string) (fs.DirEntry, error) {
	if remote == f.root || remote == "/" {
		return rootEntry{}, nil
	}

	entries, err := f.list(path.Dir(remote))
	if err != nil {
		return nil, &iofs.PathError{Op: "stat", Path: remote, Err: errors.ErrNotExist}
	}

	base := path.Base(remote)
	for _, entry := range entries {
		if entry.Name() == base {
			return entry, nil
		}
	}

	return nil, &iofs.PathError{Op: "stat", Path: remote, Err: errors.ErrNotExist}
}

// Usage sums the sizes of every file below the root.
func (f *FileSystem) Usage() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.usage(f.root)
}

func (f *FileSystem) usage(dir string) (int64, error) {
	listing, err := f.conn.List(dir)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to read %q", dir)
	}

	var total int64
	for _, entry := range listing {
		switch {
		case entry.Name == "." || entry.Name == "..":
		case entry.Type == ftp.EntryTypeFolder:
			size, err := f.usage(path.Join(dir, entry.Name))
			if err != nil {
				return 0, err
			}
			total += size
		default:
			total += int64(entry.Size)
		}
	}

	return total, nil
}

func (f *FileSystem) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.conn.Quit()
}

func (f *FileSystem) remote(name string) string {
	return path.Join(f.root, path.Clean("/"+name))
}

type dirEntry struct {
	entry *ftp.Entry
}

func (d dirEntry) Name() string { return d.entry.Name }
func (d dirEntry) IsDir() bool  { return d.entry.Type == ftp.EntryTypeFolder }

type rootEntry struct{}

func (rootEntry) Name() string { return "/" }
func (rootEntry) IsDir() bool  { return true }
