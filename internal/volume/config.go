package volume

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/rwx-research/tirag/internal/errors"
)

const (
	KindMemory = "memory"
	KindLocal  = "local"
	KindSFTP   = "sftp"
	KindFTP    = "ftp"

	DefaultMemorySizeMB = 32
)

// Config is the volume table read from the launcher's YAML file.
type Config struct {
	Volumes    []VolumeConfig `yaml:"volumes"`
	HotplugDir string         `yaml:"hotplug_dir"`
	LockFile   string         `yaml:"lock_file"`
}

type VolumeConfig struct {
	Name       string            `yaml:"name"`
	Kind       string            `yaml:"kind"`
	SizeMB     int64             `yaml:"size_mb"`
	Path       string            `yaml:"path"`
	Files      map[string]string `yaml:"files"`
	Address    string            `yaml:"address"`
	User       string            `yaml:"user"`
	Password   string            `yaml:"password"`
	KeyFile    string            `yaml:"key_file"`
	KnownHosts string            `yaml:"known_hosts"`
}

// DefaultConfig mounts a single memory volume.
func DefaultConfig() Config {
	return Config{
		Volumes: []VolumeConfig{{Kind: KindMemory, SizeMB: DefaultMemorySizeMB}},
	}
}

// LoadConfig reads the YAML file at path. An empty path yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to read %q", path)
	}

	cfg, err := ParseConfig(contents)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to load %q", path)
	}

	return cfg, nil
}

func ParseConfig(contents []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid YAML")
	}

	if len(cfg.Volumes) == 0 {
		cfg.Volumes = DefaultConfig().Volumes
	}

	for i := range cfg.Volumes {
		if cfg.Volumes[i].Kind == "" {
			cfg.Volumes[i].Kind = KindMemory
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "validation failed")
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Volumes) == 0 {
		return errors.New("at least one volume must be configured")
	}

	for i, v := range c.Volumes {
		if err := v.Validate(); err != nil {
			return errors.Wrapf(err, "volume %d", i)
		}
	}

	return nil
}

func (c VolumeConfig) Validate() error {
	if c.SizeMB < 0 {
		return errors.New("size_mb cannot be negative")
	}

	switch c.Kind {
	case KindMemory:
		return nil
	case KindLocal:
		if c.Path == "" {
			return errors.New("missing path")
		}
	case KindSFTP:
		if c.Address == "" {
			return errors.New("missing address")
		}
		if c.User == "" {
			return errors.New("missing user")
		}
		if c.Password == "" && c.KeyFile == "" {
			return errors.New("either password or key_file needs to be set")
		}
	case KindFTP:
		if c.Address == "" {
			return errors.New("missing address")
		}
	default:
		return errors.Errorf("unknown kind %q", c.Kind)
	}

	return nil
}

var tildeSlash = "~" + string(os.PathSeparator)

// ExpandTilde replaces a leading "~" with the current user's home directory.
func ExpandTilde(dir string) (string, error) {
	if dir != "~" && !strings.HasPrefix(dir, tildeSlash) {
		return dir, nil
	}

	current, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "unable to determine the home directory")
	}

	if dir == "~" {
		return current.HomeDir, nil
	}

	return filepath.Join(current.HomeDir, strings.TrimPrefix(dir, tildeSlash)), nil
}
