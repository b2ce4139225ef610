package pairing

import (
	"io/fs"
	"os"
	"strings"

	"addsubs/internal/services"
)

// FileSet is an ordered list of file names found in one scan.
type FileSet []string

// DirReader lists the entries of a single directory.
type DirReader interface {
	ReadDir(dir string) ([]fs.DirEntry, error)
}

// OSDirReader reads from the host filesystem.
type OSDirReader struct{}

func (OSDirReader) ReadDir(dir string) ([]fs.DirEntry, error) {
	return os.ReadDir(dir)
}

// FSDirReader adapts an fs.FS, mainly for tests.
type FSDirReader struct {
	FS fs.FS
}

func (r FSDirReader) ReadDir(dir string) ([]fs.DirEntry, error) {
	return fs.ReadDir(r.FS, dir)
}

// Scanner partitions directory entries into primary and secondary sets.
type Scanner struct {
	reader DirReader
}

// NewScanner returns a Scanner backed by reader, or the host filesystem
// when reader is nil.
func NewScanner(reader DirReader) *Scanner {
	if reader == nil {
		reader = OSDirReader{}
	}
	return &Scanner{reader: reader}
}

// Scan reads dir once, non-recursively. Only regular files are considered;
// directories, symlinks, devices, sockets and pipes are skipped. A name
// containing primaryToken goes to the primary set even when it also contains
// secondaryToken.
func (s *Scanner) Scan(dir, primaryToken, secondaryToken string) (FileSet, FileSet, error) {
	entries, err := s.reader.ReadDir(dir)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrDirectory, "scan", "read directory", dir, err)
	}

	var primary, secondary FileSet
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.Contains(name, primaryToken):
			primary = append(primary, name)
		case strings.Contains(name, secondaryToken):
			secondary = append(secondary, name)
		}
	}
	return primary, secondary, nil
}
