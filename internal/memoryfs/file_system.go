package memoryfs

import (
	"fmt"
	iofs "io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rwx-research/tirag/internal/fs"
)

const Separator = "/"

var _ fs.FileSystem = (*MemoryFS)(nil)

var (
	ErrExist    = iofs.ErrExist
	ErrNotExist = iofs.ErrNotExist
)

type MemoryFS struct {
	entries map[string]*MemFile
	mu      sync.RWMutex
}

func NewFS() *MemoryFS {
	return &MemoryFS{
		entries: map[string]*MemFile{
			"/": {Mode: iofs.ModeDir, ModTime: time.Now()},
		},
	}
}

func (mfs *MemoryFS) Create(name string) (fs.File, error) {
	fullPath := abs(name)
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if _, ok := mfs.entries[fullPath]; ok {
		return nil, &iofs.PathError{Op: "create", Path: name, Err: ErrExist}
	}

	parent := mfs.lookup(path.Dir(fullPath))
	if parent == nil {
		return nil, fmt.Errorf("parent directory doesn't exist at %q", path.Dir(name))
	}
	if !parent.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", path.Dir(name))
	}

	mfs.entries[fullPath] = &MemFile{ModTime: time.Now()}
	return mfs.open(fullPath)
}

func (mfs *MemoryFS) Open(name string) (fs.File, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.open(name)
}

func (mfs *MemoryFS) open(name string) (fs.File, error) {
	file := mfs.lookup(name)
	if file == nil {
		return nil, &iofs.PathError{Op: "open", Path: name, Err: ErrNotExist}
	}
	if file.IsDir() {
		return nil, fmt.Errorf("path %q is a directory", name)
	}

	// Commits happen under the write lock.
	mf := file.mf
	return NewBufferedFile(name, mf.Bytes(), func(contents []byte) error {
		mfs.mu.Lock()
		defer mfs.mu.Unlock()
		mf.replaceContents(contents)
		return nil
	}), nil
}

func (mfs *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	fullPath := abs(name)
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	info := mfs.lookup(fullPath)
	if info == nil {
		return nil, &iofs.PathError{Op: "readdir", Path: name, Err: ErrNotExist}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", name)
	}

	entries := make([]fs.DirEntry, 0)
	for _, entryPath := range mfs.children(fullPath) {
		entries = append(entries, &memFileInfo{
			name: path.Base(entryPath),
			mf:   mfs.entries[entryPath],
		})
	}

	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return entries, nil
}

// children lists the direct descendants of dir.
func (mfs *MemoryFS) children(dir string) []string {
	prefix := strings.TrimSuffix(dir, Separator) + Separator
	found := make([]string, 0)
	for entryPath := range mfs.entries {
		if entryPath == dir || !strings.HasPrefix(entryPath, prefix) {
			continue
		}
		if strings.Contains(entryPath[len(prefix):], Separator) {
			continue
		}
		found = append(found, entryPath)
	}
	return found
}

func (mfs *MemoryFS) MkdirAll(name string) error {
	fullPath := abs(name)
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	parts := strings.Split(strings.TrimPrefix(fullPath, Separator), Separator)

	for i := 0; i < len(parts); i++ {
		dir := Separator + strings.Join(parts[:i+1], Separator)
		info := mfs.lookup(dir)
		if info != nil {
			if info.IsDir() {
				continue
			}
			return fmt.Errorf("unable to create subdirectory of regular file at %q", dir)
		}

		mfs.entries[dir] = &MemFile{
			Mode:    iofs.ModeDir,
			ModTime: time.Now(),
		}
	}

	return nil
}

func (mfs *MemoryFS) Remove(name string) error {
	fullPath := abs(name)
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	info := mfs.lookup(fullPath)
	if info == nil {
		return &iofs.PathError{Op: "remove", Path: name, Err: ErrNotExist}
	}
	if info.IsDir() && len(mfs.children(fullPath)) > 0 {
		return fmt.Errorf("directory %q is not empty", name)
	}
	if fullPath == Separator {
		return fmt.Errorf("unable to remove the root directory")
	}

	delete(mfs.entries, fullPath)
	return nil
}

func (mfs *MemoryFS) RemoveAll(name string) error {
	fullPath := abs(name)
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if fullPath == Separator {
		return fmt.Errorf("unable to remove the root directory")
	}
	if mfs.lookup(fullPath) == nil {
		return &iofs.PathError{Op: "remove", Path: name, Err: ErrNotExist}
	}

	prefix := fullPath + Separator
	for entryPath := range mfs.entries {
		if entryPath == fullPath || strings.HasPrefix(entryPath, prefix) {
			delete(mfs.entries, entryPath)
		}
	}

	return nil
}

func (mfs *MemoryFS) Stat(name string) (fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	if info := mfs.lookup(name); info != nil {
		return info, nil
	}

	return nil, &iofs.PathError{Op: "stat", Path: name, Err: ErrNotExist}
}

// Usage sums the sizes of every regular file.
func (mfs *MemoryFS) Usage() (int64, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	var total int64
	for _, entry := range mfs.entries {
		total += int64(len(entry.contents))
	}
	return total, nil
}

func (mfs *MemoryFS) lookup(name string) *memFileInfo {
	fullPath := abs(name)

	if file, ok := mfs.entries[fullPath]; ok {
		return &memFileInfo{
			name: path.Base(fullPath),
			mf:   file,
		}
	}

	return nil
}

func abs(name string) string {
	return path.Clean(Separator + name)
}

// WriteFiles creates the given files, including any necessary directory structure.
func (mfs *MemoryFS) WriteFiles(files map[string][]byte) error {
	for name, contents := range files {
		name = abs(name)
		dir := path.Dir(name)
		if err := mfs.MkdirAll(dir); err != nil {
			return err
		}

		file, err := mfs.Create(name)
		if err != nil {
			return err
		}
		if _, err = file.Write(contents); err != nil {
			return err
		}
		if err = file.Close(); err != nil {
			return err
		}
	}
	return nil
}
