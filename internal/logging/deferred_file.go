package logging

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// DeferredFile holds log output in memory until Open creates the file. A run
// that ends before Open, such as a rejected confirmation, leaves no log
// directory behind.
type DeferredFile struct {
	mu      sync.Mutex
	path    string
	pending bytes.Buffer
	file    *os.File
}

// NewDeferredFile returns a writer for path. Nothing touches the filesystem
// until Open.
func NewDeferredFile(path string) *DeferredFile {
	return &DeferredFile{path: path}
}

func (d *DeferredFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file != nil {
		return d.file.Write(p)
	}
	return d.pending.Write(p)
}

// Open creates the file and its directory, flushes buffered records and
// sends later writes straight through. Calls after a successful Open are
// no-ops.
func (d *DeferredFile) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file != nil {
		return nil
	}
	file, err := openLogFile(d.path)
	if err != nil {
		return err
	}
	if _, err := d.pending.WriteTo(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("flush log file %s: %w", d.path, err)
	}
	d.file = file
	return nil
}

// Close closes the file if Open created it. Records buffered by a run that
// never opened the file are dropped.
func (d *DeferredFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending.Reset()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
