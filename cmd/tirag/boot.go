package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/gofrs/flock"
	tsize "github.com/kopoli/go-terminal-size"
	"golang.org/x/term"

	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/messages"
	"github.com/rwx-research/tirag/internal/power"
	"github.com/rwx-research/tirag/internal/shell"
	"github.com/rwx-research/tirag/internal/versions"
	"github.com/rwx-research/tirag/internal/volume"
)

// boot runs sessions until one of them shuts the system down or the input
// ends. A reboot mounts every volume again and starts over at the root.
func boot(logger *slog.Logger) error {
	cfg, err := volume.LoadConfig(ConfigPath)
	if err != nil {
		return err
	}

	unlock, err := acquireLock(cfg.LockFile)
	if err != nil {
		return err
	}
	defer unlock()

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))

	var input shell.LineReader
	if interactive {
		reader, err := shell.NewTerminalReader(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		defer reader.Close()
		input = reader
	} else {
		input = shell.NewConsole(os.Stdin, os.Stdout, !term.IsTerminal(int(os.Stdin.Fd())))
	}

	for {
		err := runSession(cfg, input, interactive, logger)

		switch {
		case errors.Is(err, power.ErrReboot):
			logger.Debug("rebooting")
		case errors.Is(err, power.ErrShutdown):
			return nil
		default:
			return err
		}
	}
}

func runSession(cfg volume.Config, input shell.LineReader, interactive bool, logger *slog.Logger) error {
	fmt.Fprint(os.Stdout, messages.FormatBanner(versions.Describe()))

	manager, err := volume.MountAll(cfg, logger)
	if err != nil {
		return err
	}

	powerService, err := power.NewService(power.Config{
		Volumes: manager,
		Stdout:  os.Stdout,
		Spinner: interactive,
	})
	if err != nil {
		_ = manager.Close()
		return err
	}

	session, err := shell.NewSession(shell.Config{
		Storage: manager,
		Power:   powerService,
		Input:   input,
		Stdout:  os.Stdout,
		Root:    volume.Root(0),
		Version: versions.Describe(),
		Width:   terminalWidth,
		Logger:  logger,
	})
	if err != nil {
		_ = manager.Close()
		return err
	}

	err = session.Run()
	switch {
	case err == nil:
		return errors.Wrap(manager.Close(), "unable to sync volumes")
	case errors.Is(err, power.ErrReboot), errors.Is(err, power.ErrShutdown):
		return err
	default:
		_ = manager.Close()
		return err
	}
}

// acquireLock keeps a second session from running against the same volumes.
func acquireLock(lockFile string) (func(), error) {
	if lockFile == "" {
		return func() {}, nil
	}

	path, err := volume.ExpandTilde(lockFile)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "unable to create %q", filepath.Dir(path))
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to lock %q", path)
	}
	if !locked {
		return nil, errors.Errorf("another session is already running (%s is locked)", path)
	}

	return func() { _ = lock.Unlock() }, nil
}

func terminalWidth() int {
	size, err := tsize.GetSize()
	if err != nil || size.Width <= 0 {
		return shell.DefaultWidth
	}

	return size.Width
}
