package volume

import (
	"log/slog"
	"os"

	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/fs"
	"github.com/rwx-research/tirag/internal/ftpfs"
	"github.com/rwx-research/tirag/internal/memoryfs"
	"github.com/rwx-research/tirag/internal/sftpfs"
)

// MountAll mounts every configured volume in order. When one of them fails,
// the volumes mounted so far are closed again.
func MountAll(cfg Config, logger *slog.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	hotplugDir, err := ExpandTilde(cfg.HotplugDir)
	if err != nil {
		return nil, err
	}

	mounts := make([]Mount, 0, len(cfg.Volumes))
	for i, vc := range cfg.Volumes {
		backend, err := mountOne(vc)
		if err != nil {
			_ = NewManager(mounts, "", logger).Close()
			return nil, errors.Wrapf(err, "unable to mount volume %d (%s)", i, vc.Kind)
		}

		name := vc.Name
		if name == "" {
			name = Root(i)
		}

		size := vc.SizeMB * bytesPerMB
		if size == 0 && vc.Kind == KindMemory {
			size = DefaultMemorySizeMB * bytesPerMB
		}

		mounts = append(mounts, Mount{Name: name, FS: backend, Size: size})
		if logger != nil {
			logger.Debug("mounted volume", "drive", Root(i), "name", name, "kind", vc.Kind)
		}
	}

	return NewManager(mounts, hotplugDir, logger), nil
}

func mountOne(vc VolumeConfig) (fs.FileSystem, error) {
	switch vc.Kind {
	case KindMemory:
		mfs := memoryfs.NewFS()
		files := make(map[string][]byte, len(vc.Files))
		for name, contents := range vc.Files {
			files[name] = []byte(contents)
		}
		if err := mfs.WriteFiles(files); err != nil {
			return nil, errors.Wrap(err, "unable to seed files")
		}
		return mfs, nil

	case KindLocal:
		root, err := ExpandTilde(vc.Path)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(root, os.ModePerm); err != nil {
			return nil, errors.Wrapf(err, "unable to create %q", root)
		}
		return fs.Local{Root: root}, nil

	case KindSFTP:
		keyFile, err := ExpandTilde(vc.KeyFile)
		if err != nil {
			return nil, err
		}
		knownHosts, err := ExpandTilde(vc.KnownHosts)
		if err != nil {
			return nil, err
		}
		backend, err := sftpfs.Dial(sftpfs.Config{
			Address:    vc.Address,
			User:       vc.User,
			Password:   vc.Password,
			KeyFile:    keyFile,
			KnownHosts: knownHosts,
			Root:       vc.Path,
		})
		if err != nil {
			return nil, err
		}
		return backend, nil

	case KindFTP:
		backend, err := ftpfs.Dial(ftpfs.Config{
			Address:  vc.Address,
			User:     vc.User,
			Password: vc.Password,
			Root:     vc.Path,
		})
		if err != nil {
			return nil, err
		}
		return backend, nil
	}

	return nil, errors.Errorf("unknown kind %q", vc.Kind)
}
