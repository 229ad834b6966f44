package readiness

import (
	"os"
	"time"
)

// MTimeStrategy reports ready once two consecutive polls observe the same
// modification time and size.
type MTimeStrategy struct {
	seen    bool
	modTime time.Time
	size    int64
}

func (s *MTimeStrategy) Name() string { return "mtime" }

func (s *MTimeStrategy) Reset() {
	*s = MTimeStrategy{}
}

func (s *MTimeStrategy) Check(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	stable := s.seen && info.ModTime().Equal(s.modTime) && info.Size() == s.size
	s.seen = true
	s.modTime = info.ModTime()
	s.size = info.Size()
	return stable, nil
}

// RenameStrategy renames the file onto itself. Platforms that lock files
// held open for writing fail the rename; success means ready. On Linux the
// rename succeeds even while a writer is active, so this strategy only
// guarantees the path exists there.
type RenameStrategy struct{}

func (RenameStrategy) Name() string { return "rename" }

func (RenameStrategy) Reset() {}

func (RenameStrategy) Check(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, err
	}
	if err := os.Rename(path, path); err != nil {
		return false, err
	}
	return true, nil
}
