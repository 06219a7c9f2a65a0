package shell

import "github.com/rwx-research/tirag/internal/fs"

// Storage is the volume service the shell operates on. Paths are absolute
// drive paths such as `0:\docs\a.txt`.
type Storage interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	MkdirAll(path string) error
	RemoveAll(path string) error
	Create(path string) (fs.File, error)
	Remove(path string) error
	Open(path string) (fs.File, error)
	Volumes() ([]fs.Volume, error)
}

// Power ends the session. Both calls return the error that stops the session.
type Power interface {
	Shutdown() error
	Reboot() error
}

// LineReader shows prompt and yields the next line of input without its line
// terminator. It returns io.EOF once the input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}
