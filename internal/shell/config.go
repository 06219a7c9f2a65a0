package shell

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rwx-research/tirag/internal/errors"
)

// DefaultWidth is the separator width used when the terminal size is unknown.
const DefaultWidth = 57

type Config struct {
	Storage Storage
	Power   Power
	Input   LineReader
	Stdout  io.Writer
	// Root is the drive root the session starts in, e.g. `0:\`.
	Root string
	// Version is printed by `ver`.
	Version string
	Now     func() time.Time
	Width   func() int
	Logger  *slog.Logger
}

func (c Config) Validate() error {
	if c.Storage == nil {
		return errors.New("missing storage service")
	}

	if c.Power == nil {
		return errors.New("missing power service")
	}

	if c.Input == nil {
		return errors.New("missing input")
	}

	if c.Stdout == nil {
		return errors.New("missing stdout")
	}

	if !strings.HasSuffix(c.Root, Separator) {
		return errors.Errorf("root %q must end with %s", c.Root, Separator)
	}

	return nil
}
