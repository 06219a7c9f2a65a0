// Package power ends a session. Both operations sync the volumes and then
// return a sentinel error telling the launcher whether to halt or boot again.
package power

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/rwx-research/tirag/internal/errors"
)

var (
	ErrShutdown = errors.New("system halted")
	ErrReboot   = errors.New("system rebooting")
)

type Config struct {
	// Volumes is closed before the session ends.
	Volumes io.Closer
	Stdout  io.Writer
	// Spinner animates the sync; it is meant for interactive terminals.
	Spinner bool
}

func (c Config) Validate() error {
	if c.Volumes == nil {
		return errors.New("missing volumes")
	}

	if c.Stdout == nil {
		return errors.New("missing stdout")
	}

	return nil
}

type Service struct {
	Config
}

func NewService(cfg Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return Service{}, errors.Wrap(err, "validation failed")
	}

	return Service{cfg}, nil
}

// Shutdown syncs the volumes and returns ErrShutdown, or the sync failure.
func (s Service) Shutdown() error {
	return s.halt(ErrShutdown)
}

// Reboot syncs the volumes and returns ErrReboot, or the sync failure.
func (s Service) Reboot() error {
	return s.halt(ErrReboot)
}

func (s Service) halt(sentinel error) error {
	var indicator *spinner.Spinner
	if s.Spinner {
		indicator = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(s.Stdout))
		indicator.Suffix = " Syncing volumes..."
		indicator.Start()
	}

	err := s.Volumes.Close()

	if indicator != nil {
		indicator.Stop()
	}

	if err != nil {
		return errors.Wrap(err, "unable to sync volumes")
	}

	fmt.Fprintln(s.Stdout, "Volumes synced.")
	return sentinel
}
