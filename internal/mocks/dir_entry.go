package mocks

type DirEntry struct {
	EntryName string
	Directory bool
}

func (d DirEntry) Name() string {
	return d.EntryName
}

func (d DirEntry) IsDir() bool {
	return d.Directory
}
