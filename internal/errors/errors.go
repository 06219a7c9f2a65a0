package errors

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

var (
	ErrExist    = os.ErrExist
	ErrNotExist = os.ErrNotExist

	As        = errors.As
	Errorf    = errors.Errorf
	Is        = errors.Is
	New       = errors.New
	WithStack = errors.WithStack
	Wrap      = errors.Wrap
	Wrapf     = errors.Wrapf
)

// UsageError is returned when a command is invoked with too few arguments.
// It never reaches the storage layer.
type UsageError struct {
	Usage string
}

func (e UsageError) Error() string {
	return "Usage: " + e.Usage
}

// NotFoundError reports a path that the storage layer could not find.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s could not be found", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err == nil {
		return ErrNotExist
	}
	return e.Err
}

// NotFound converts a storage failure into a *NotFoundError when it signals a
// missing path, and returns every other error unchanged.
func NotFound(path string, err error) error {
	if err == nil || !errors.Is(err, ErrNotExist) {
		return err
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return err
	}

	return &NotFoundError{Path: path, Err: err}
}
