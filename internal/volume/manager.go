package volume

import (
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/fs"
)

const bytesPerMB = 1024 * 1024

// Mount binds a backend to a drive number.
type Mount struct {
	Name string
	FS   fs.FileSystem
	// Size is the reported capacity in bytes. Zero means the backend is
	// measured on every enumeration.
	Size int64
}

type measurer interface {
	Usage() (int64, error)
}

// Manager is the storage service seen by the shell. Paths take the form
// `<drive>:\<segment>\<segment>`; `/` is accepted as a separator as well.
// Drives are numbered by mount order, followed by every directory found in
// the hot-plug directory at the time of the call.
type Manager struct {
	mounts     []Mount
	hotplugDir string
	logger     *slog.Logger
}

func NewManager(mounts []Mount, hotplugDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Manager{mounts: mounts, hotplugDir: hotplugDir, logger: logger}
}

// Root returns the root marker of a drive, e.g. `0:\`.
func Root(drive int) string {
	return strconv.Itoa(drive) + `:\`
}

func (m *Manager) ReadDir(p string) ([]fs.DirEntry, error) {
	vol, rel, err := m.locate(p)
	if err != nil {
		return nil, err
	}

	// FTP servers answer LIST on a file with the file itself.
	entry, err := vol.Stat(rel)
	if err != nil {
		return nil, pathError("readdir", p, err)
	}
	if !entry.IsDir() {
		return nil, errors.Errorf("%s is not a directory", p)
	}

	entries, err := vol.ReadDir(rel)
	if err != nil {
		return nil, pathError("readdir", p, err)
	}

	return entries, nil
}

// MkdirAll creates the directory at p together with any missing parents. It
// fails when something already exists at p.
func (m *Manager) MkdirAll(p string) error {
	vol, rel, err := m.locate(p)
	if err != nil {
		return err
	}

	if _, err := vol.Stat(rel); err == nil {
		return &iofs.PathError{Op: "mkdir", Path: p, Err: errors.ErrExist}
	}

	if err := vol.MkdirAll(rel); err != nil {
		return pathError("mkdir", p, err)
	}

	m.logger.Debug("created directory", "path", p)
	return nil
}

// RemoveAll deletes the directory at p and everything below it.
func (m *Manager) RemoveAll(p string) error {
	vol, rel, err := m.locate(p)
	if err != nil {
		return err
	}

	if rel == "/" {
		return errors.Errorf("unable to remove the root of %s", p)
	}

	entry, err := vol.Stat(rel)
	if err != nil {
		return pathError("rmdir", p, err)
	}
	if !entry.IsDir() {
		return errors.Errorf("%s is not a directory", p)
	}

	if err := vol.RemoveAll(rel); err != nil {
		return pathError("rmdir", p, err)
	}

	m.logger.Debug("removed directory", "path", p)
	return nil
}

// Create makes a new empty file at p and returns it opened for writing.
func (m *Manager) Create(p string) (fs.File, error) {
	vol, rel, err := m.locate(p)
	if err != nil {
		return nil, err
	}

	if _, err := vol.Stat(rel); err == nil {
		return nil, &iofs.PathError{Op: "create", Path: p, Err: errors.ErrExist}
	}

	file, err := vol.Create(rel)
	if err != nil {
		return nil, pathError("create", p, err)
	}

	return file, nil
}

func (m *Manager) Remove(p string) error {
	vol, rel, err := m.locate(p)
	if err != nil {
		return err
	}

	entry, err := vol.Stat(rel)
	if err != nil {
		return pathError("delete", p, err)
	}
	if entry.IsDir() {
		return errors.Errorf("%s is a directory", p)
	}

	if err := vol.Remove(rel); err != nil {
		return pathError("delete", p, err)
	}

	return nil
}

func (m *Manager) Open(p string) (fs.File, error) {
	vol, rel, err := m.locate(p)
	if err != nil {
		return nil, err
	}

	entry, err := vol.Stat(rel)
	if err != nil {
		return nil, pathError("open", p, err)
	}
	if entry.IsDir() {
		return nil, errors.Errorf("%s is a directory", p)
	}

	file, err := vol.Open(rel)
	if err != nil {
		return nil, pathError("open", p, err)
	}

	return file, nil
}

// Volumes enumerates the mounted volumes followed by the attached ones.
func (m *Manager) Volumes() ([]fs.Volume, error) {
	mounts := m.allMounts()
	volumes := make([]fs.Volume, 0, len(mounts))

	for _, mount := range mounts {
		size, err := mountSize(mount)
		if err != nil {
			m.logger.Debug("unable to measure volume", "volume", mount.Name, "error", err)
		}

		volumes = append(volumes, fs.Volume{Name: mount.Name, Size: size})
	}

	return volumes, nil
}

// Close releases every backend that holds a connection or other resource.
func (m *Manager) Close() error {
	var group errgroup.Group

	for _, mount := range m.mounts {
		closer, ok := mount.FS.(io.Closer)
		if !ok {
			continue
		}

		group.Go(func() error {
			if err := closer.Close(); err != nil {
				return errors.Wrapf(err, "unable to close volume %s", mount.Name)
			}
			return nil
		})
	}

	return group.Wait()
}

func (m *Manager) locate(p string) (fs.FileSystem, string, error) {
	drive, rest, ok := strings.Cut(p, ":")
	if !ok {
		return nil, "", errors.Errorf("path %q does not start with a drive", p)
	}

	index, err := strconv.Atoi(drive)
	if err != nil || index < 0 {
		return nil, "", errors.Errorf("path %q does not start with a drive", p)
	}

	mounts := m.mounts
	if index >= len(mounts) {
		mounts = m.allMounts()
	}
	if index >= len(mounts) {
		return nil, "", &iofs.PathError{Op: "mount", Path: Root(index), Err: errors.ErrNotExist}
	}

	rel := path.Clean("/" + strings.ReplaceAll(rest, `\`, "/"))
	return mounts[index].FS, rel, nil
}

// allMounts appends one local mount per directory in the hot-plug directory.
func (m *Manager) allMounts() []Mount {
	if m.hotplugDir == "" {
		return m.mounts
	}

	entries, err := os.ReadDir(m.hotplugDir)
	if err != nil {
		m.logger.Debug("unable to scan hot-plug directory", "dir", m.hotplugDir, "error", err)
		return m.mounts
	}

	mounts := slices.Clone(m.mounts)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		mounts = append(mounts, Mount{
			Name: entry.Name(),
			FS:   fs.Local{Root: filepath.Join(m.hotplugDir, entry.Name())},
		})
	}

	return mounts
}

func mountSize(mount Mount) (int64, error) {
	if mount.Size > 0 {
		return mount.Size, nil
	}

	if measured, ok := mount.FS.(measurer); ok {
		return measured.Usage()
	}

	return 0, nil
}

func pathError(op, p string, err error) error {
	var pathErr *iofs.PathError
	if errors.As(err, &pathErr) {
		return &iofs.PathError{Op: op, Path: p, Err: pathErr.Err}
	}

	return errors.Wrap(err, fmt.Sprintf("%s %s", op, p))
}
