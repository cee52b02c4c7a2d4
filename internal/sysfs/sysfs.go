// Package sysfs reads and writes single-value kernel nodes. Every
// failure is logged where it happens and returned as a coded error;
// nothing here panics or retries.
package sysfs

import (
	"io"
	"os"
	"path/filepath"

	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
	"github.com/spf13/afero"
)

// Nodes performs node I/O against a filesystem.
type Nodes struct {
	fs     afero.Fs
	logger logger.Logger
}

// New returns Nodes backed by fs.
func New(fs afero.Fs, log logger.Logger) *Nodes {
	return &Nodes{fs: fs, logger: log}
}

// NewOS returns Nodes on the host filesystem. A root other than "/"
// re-roots every node path under it.
func NewOS(root string, log logger.Logger) *Nodes {
	var fs afero.Fs = afero.NewOsFs()
	if root != "" && filepath.Clean(root) != "/" {
		fs = afero.NewBasePathFs(fs, root)
	}

	return New(fs, log)
}

// Read returns at most maxLen-1 bytes of the node at path from a single
// read. The content is returned as-is, trailing newline included.
func (n *Nodes) Read(path string, maxLen int) (string, error) {
	errFactory := errors.New()

	if path == "" {
		return "", errFactory.New(ErrPathUnset)
	}

	f, err := n.fs.Open(path)
	if err != nil {
		n.logger.Error().Str("path", path).Err(err).Msg("Error opening node")
		return "", errFactory.Wrap(ErrOpenFailed, err)
	}
	defer f.Close()

	size := maxLen - 1
	if size < 1 {
		size = 1
	}

	buf := make([]byte, size)
	count, err := f.Read(buf)
	if err != nil && err != io.EOF {
		n.logger.Error().Str("path", path).Err(err).Msg("Error reading node")
		return "", errFactory.Wrap(ErrReadFailed, err)
	}

	return string(buf[:count]), nil
}

// Write stores value in the node at path. An unset path or an empty
// value is a no-op that opens nothing.
func (n *Nodes) Write(path, value string) error {
	errFactory := errors.New()

	if path == "" || value == "" {
		return nil
	}

	f, err := n.fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		n.logger.Error().Str("path", path).Err(err).Msg("Error opening node")
		return errFactory.Wrap(ErrOpenFailed, err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, value); err != nil {
		n.logger.Error().Str("path", path).Err(err).Msg("Error writing node")
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	n.logger.Debug().Str("path", path).Str("value", value).Msg("Node written")

	return nil
}

// Exists reports whether a node is present at path.
func (n *Nodes) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := n.fs.Stat(path)

	return err == nil
}

// OpenWriter opens the node at path for repeated writes. The caller
// owns the returned handle. Failures are returned without logging so
// the caller can decide how loudly to report them.
func (n *Nodes) OpenWriter(path string) (io.WriteCloser, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.New(ErrPathUnset)
	}

	f, err := n.fs.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, errFactory.Wrap(ErrOpenFailed, err)
	}

	return f, nil
}
