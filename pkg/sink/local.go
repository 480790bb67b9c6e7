package sink

import (
	"fmt"
	"path/filepath"

	"github.com/ethpandaops/reportoor/pkg/fsutil"
)

// Compile-time interface check.
var _ Sink = (*localSink)(nil)

// localSink writes report files into a directory on the local filesystem.
type localSink struct {
	dir   string
	owner *fsutil.OwnerConfig
}

// NewLocal creates a Sink rooted at dir. When owner is non-nil, written
// files and directories are chowned to it.
func NewLocal(dir string, owner *fsutil.OwnerConfig) Sink {
	return &localSink{dir: dir, owner: owner}
}

// WriteFile stores one file under the sink root.
func (s *localSink) WriteFile(relPath string, data []byte) error {
	path := filepath.Join(s.dir, filepath.FromSlash(relPath))

	if err := fsutil.MkdirAll(filepath.Dir(path), 0o755, s.owner); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := fsutil.WriteFile(path, data, 0o644, s.owner); err != nil {
		return fmt.Errorf("writing %s: %w", relPath, err)
	}

	return nil
}
