package memoryfs

import (
	iofs "io/fs"
	"time"

	"github.com/rwx-research/tirag/internal/fs"
)

var _ iofs.FileInfo = (*memFileInfo)(nil)
var _ fs.DirEntry = (*memFileInfo)(nil)
var _ iofs.FileInfo = (*handleInfo)(nil)

type memFileInfo struct {
	name string
	mf   *MemFile
}

func (fi *memFileInfo) Name() string {
	return fi.name
}

func (fi *memFileInfo) Size() int64 {
	return int64(len(fi.mf.contents))
}

func (fi *memFileInfo) Mode() iofs.FileMode {
	return fi.mf.Mode
}

func (fi *memFileInfo) ModTime() time.Time {
	return fi.mf.ModTime
}

func (fi *memFileInfo) IsDir() bool {
	return fi.mf.Mode.IsDir()
}

func (fi *memFileInfo) Sys() any {
	return fi.mf.Sys
}

// handleInfo describes an open BufferedFile as it currently stands.
type handleInfo struct {
	name string
	size int64
}

func (hi *handleInfo) Name() string { return hi.name }
func (hi *handleInfo) Size() int64 { return hi.size }
func (hi *handleInfo) Mode() iofs.FileMode { return 0o644 }
func (hi *handleInfo) ModTime() time.Time { return time.Time{} }
func (hi *handleInfo) IsDir() bool { return false }
func (hi *handleInfo) Sys() any { return nil }
