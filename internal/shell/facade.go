package shell

import (
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/fs"
)

// Files performs one storage operation per shell verb. File handles never
// outlive the call that opened them, and missing paths are reported as
// *errors.NotFoundError.
type Files struct {
	Storage Storage
}

// Text is stored as single-byte ISO 8859-1. Runes outside of it become '?'.
var codec = charmap.ISO8859_1

var latin1Only = runes.Map(func(r rune) rune {
	if r > 0xFF {
		return '?'
	}
	return r
})

func (f Files) List(dir string) ([]fs.DirEntry, error) {
	entries, err := f.Storage.ReadDir(dir)
	if err != nil {
		return nil, errors.NotFound(dir, err)
	}

	return entries, nil
}

func (f Files) MakeDir(path string) error {
	return errors.NotFound(path, f.Storage.MkdirAll(path))
}

func (f Files) RemoveDir(path string) error {
	return errors.NotFound(path, f.Storage.RemoveAll(path))
}

func (f Files) Touch(path string) error {
	file, err := f.Storage.Create(path)
	if err != nil {
		return errors.NotFound(path, err)
	}

	return errors.Wrapf(file.Close(), "unable to close %s", path)
}

func (f Files) Delete(path string) error {
	return errors.NotFound(path, f.Storage.Remove(path))
}

// Overwrite replaces the contents of an existing file with text.
func (f Files) Overwrite(path, text string) (err error) {
	contents, _, err := transform.String(transform.Chain(latin1Only, codec.NewEncoder()), text)
	if err != nil {
		return errors.Wrap(err, "unable to encode file content")
	}

	file, err := f.Storage.Open(path)
	if err != nil {
		return errors.NotFound(path, err)
	}
	defer closeFile(file, path, &err)

	if err := file.Truncate(0); err != nil {
		return errors.Wrapf(err, "unable to truncate %s", path)
	}

	if _, err := io.WriteString(file, contents); err != nil {
		return errors.Wrapf(err, "unable to write %s", path)
	}

	return nil
}

// ReadAll returns the full contents of a file as text.
func (f Files) ReadAll(path string) (text string, err error) {
	file, err := f.Storage.Open(path)
	if err != nil {
		return "", errors.NotFound(path, err)
	}
	defer closeFile(file, path, &err)

	info, err := file.Stat()
	if err != nil {
		return "", errors.Wrapf(err, "unable to stat %s", path)
	}

	contents := make([]byte, info.Size())
	if _, err := io.ReadFull(file, contents); err != nil {
		return "", errors.Wrapf(err, "unable to read %s", path)
	}

	text, err = codec.NewDecoder().String(string(contents))
	if err != nil {
		return "", errors.Wrap(err, "unable to decode file content")
	}

	return text, nil
}

// Copy streams src into dst. An existing dst file is overwritten; a file is
// never copied onto itself.
func (f Files) Copy(src, dst string) (err error) {
	source, err := f.Storage.Open(src)
	if err != nil {
		return errors.NotFound(src, err)
	}
	defer closeFile(source, src, &err)

	if samePath(src, dst) {
		return errors.Errorf("%s cannot be copied onto itself", src)
	}

	dest, err := f.destination(dst)
	if err != nil {
		return err
	}
	defer closeFile(dest, dst, &err)

	if _, err := io.Copy(dest, source); err != nil {
		return errors.Wrapf(err, "unable to copy %s to %s", src, dst)
	}

	return nil
}

func (f Files) destination(path string) (fs.File, error) {
	file, err := f.Storage.Create(path)
	if err == nil {
		return file, nil
	}
	if !errors.Is(err, errors.ErrExist) {
		return nil, errors.NotFound(path, err)
	}

	file, err = f.Storage.Open(path)
	if err != nil {
		return nil, errors.NotFound(path, err)
	}

	if err := file.Truncate(0); err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "unable to truncate %s", path)
	}

	return file, nil
}

func samePath(a, b string) bool {
	clean := func(p string) string {
		return path.Clean(strings.ReplaceAll(p, Separator, "/"))
	}

	return clean(a) == clean(b)
}

// closeFile closes file and reports its failure through err unless an
// earlier failure is already being returned.
func closeFile(file fs.File, path string, err *error) {
	if closeErr := file.Close(); closeErr != nil && *err == nil {
		*err = errors.Wrapf(closeErr, "unable to close %s", path)
	}
}
