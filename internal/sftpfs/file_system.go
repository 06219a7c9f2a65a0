// Package sftpfs mounts a directory on a remote host as a volume over SFTP.
package sftpfs

import (
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/fs"
)

var _ fs.FileSystem = (*FileSystem)(nil)

const dialTimeout = 10 * time.Second

type Config struct {
	Address    string
	User       string
	Password   string
	KeyFile    string
	KnownHosts string
	Root       string
}

func (c Config) Validate() error {
	if c.Address == "" {
		return errors.New("missing address")
	}

	if c.User == "" {
		return errors.New("missing user")
	}

	if c.Password == "" && c.KeyFile == "" {
		return errors.New("either a password or a key file needs to be set")
	}

	return nil
}

// Client is the subset of *sftp.Client used by the volume.
type Client interface {
	Create(path string) (*sftp.File, error)
	OpenFile(path string, f int) (*sftp.File, error)
	ReadDir(p string) ([]os.FileInfo, error)
	MkdirAll(path string) error
	Remove(path string) error
	RemoveDirectory(path string) error
	Stat(p string) (os.FileInfo, error)
	Close() error
}

type FileSystem struct {
	client Client
	root   string
	conn   *ssh.Client
}

// New wraps an established SFTP session. Names are resolved below root.
func New(client Client, root string) *FileSystem {
	if root == "" {
		root = "/"
	}

	return &FileSystem{client: client, root: root}
}

// Dial connects to the SSH server and starts an SFTP session on it.
func Dial(cfg Config) (*FileSystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		hostKeyCallback, err = knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read known hosts from %q", cfg.KnownHosts)
		}
	}

	conn, err := ssh.Dial("tcp", cfg.Address, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         dialTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to establish SSH connection to %s", cfg.Address)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "unable to start SFTP session on %s", cfg.Address)
	}

	f := New(client, cfg.Root)
	f.conn = conn
	return f, nil
}

func authMethods(cfg Config) ([]ssh.AuthMethod, error) {
	methods := make([]ssh.AuthMethod, 0, 2)

	if cfg.KeyFile != "" {
		pem, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read %q", cfg.KeyFile)
		}

		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to parse key material in %q", cfg.KeyFile)
		}

		methods = append(methods, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	return methods, nil
}

func (f *FileSystem) Create(name string) (fs.File, error) {
	file, err := f.client.Create(f.remote(name))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %q", name)
	}

	return file, nil
}

func (f *FileSystem) Open(name string) (fs.File, error) {
	file, err := f.client.OpenFile(f.remote(name), os.O_RDWR)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %q", name)
	}

	return file, nil
}

func (f *FileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := f.client.ReadDir(f.remote(name))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %q", name)
	}

	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = info
	}

	return entries, nil
}

func (f *FileSystem) MkdirAll(name string) error {
	return errors.Wrapf(f.client.MkdirAll(f.remote(name)), "unable to create %q", name)
}

func (f *FileSystem) Remove(name string) error {
	return errors.Wrapf(f.client.Remove(f.remote(name)), "unable to delete %q", name)
}

func (f *FileSystem) RemoveAll(name string) error {
	return errors.Wrapf(f.removeAll(f.remote(name)), "unable to remove %q", name)
}

// removeAll deletes children before their parent; SFTP only removes empty directories.
func (f *FileSystem) removeAll(remote string) error {
	info, err := f.client.Stat(remote)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return f.client.Remove(remote)
	}

	children, err := f.client.ReadDir(remote)
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := f.removeAll(path.Join(remote, child.Name())); err != nil {
			return err
		}
	}

	return f.client.RemoveDirectory(remote)
}

func (f *FileSystem) Stat(name string) (fs.DirEntry, error) {
	info, err := f.client.Stat(f.remote(name))
	if err != nil {
		return nil, err
	}

	return info, nil
}

// Close ends the SFTP session and, when dialed by this package, the SSH connection.
func (f *FileSystem) Close() error {
	err := f.client.Close()
	if f.conn != nil {
		if connErr := f.conn.Close(); err == nil {
			err = connErr
		}
	}

	return err
}

func (f *FileSystem) remote(name string) string {
	return path.Join(f.root, path.Clean("/"+name))
}
