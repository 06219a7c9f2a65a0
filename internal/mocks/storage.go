package mocks

import (
	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/fs"
)

// Storage records the name of every operation invoked on it in Calls.
type Storage struct {
	MockReadDir   func(path string) ([]fs.DirEntry, error)
	MockMkdirAll  func(path string) error
	MockRemoveAll func(path string) error
	MockCreate    func(path string) (fs.File, error)
	MockRemove    func(path string) error
	MockOpen      func(path string) (fs.File, error)
	MockVolumes   func() ([]fs.Volume, error)

	Calls []string
}

func (s *Storage) ReadDir(path string) ([]fs.DirEntry, error) {
	s.Calls = append(s.Calls, "ReadDir")
	if s.MockReadDir != nil {
		return s.MockReadDir(path)
	}

	return nil, errors.New("MockReadDir was not configured")
}

func (s *Storage) MkdirAll(path string) error {
	s.Calls = append(s.Calls, "MkdirAll")
	if s.MockMkdirAll != nil {
		return s.MockMkdirAll(path)
	}

	return errors.New("MockMkdirAll was not configured")
}

func (s *Storage) RemoveAll(path string) error {
	s.Calls = append(s.Calls, "RemoveAll")
	if s.MockRemoveAll != nil {
		return s.MockRemoveAll(path)
	}

	return errors.New("MockRemoveAll was not configured")
}

func (s *Storage) Create(path string) (fs.File, error) {
	s.Calls = append(s.Calls, "Create")
	if s.MockCreate != nil {
		return s.MockCreate(path)
	}

	return nil, errors.New("MockCreate was not configured")
}

func (s *Storage) Remove(path string) error {
	s.Calls = append(s.Calls, "Remove")
	if s.MockRemove != nil {
		return s.MockRemove(path)
	}

	return errors.New("MockRemove was not configured")
}

func (s *Storage) Open(path string) (fs.File, error) {
	s.Calls = append(s.Calls, "Open")
	if s.MockOpen != nil {
		return s.MockOpen(path)
	}

	return nil, errors.New("MockOpen was not configured")
}

// Volumes reports no volumes when unconfigured so that sessions can poll it.
func (s *Storage) Volumes() ([]fs.Volume, error) {
	s.Calls = append(s.Calls, "Volumes")
	if s.MockVolumes != nil {
		return s.MockVolumes()
	}

	return nil, nil
}
