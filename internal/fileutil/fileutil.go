package fileutil

import (
	"errors"
	"fmt"
	"os"
)

// DirMode is the permission used for directories the tool creates.
const DirMode os.FileMode = 0o755

// EnsureDir creates path as a single directory level. An existing directory
// counts as success and reports created=false; an existing non-directory is
// an error. Parents are never created.
func EnsureDir(path string) (bool, error) {
	err := os.Mkdir(path, DirMode)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return false, err
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		return false, statErr
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s exists and is not a directory", path)
	}
	return false, nil
}
