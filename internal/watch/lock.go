package watch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"subextract/internal/services"
	"subextract/internal/textutil"
)

// LockPath returns the lock file guarding dir inside stateDir.
func LockPath(stateDir, dir string) string {
	return filepath.Join(stateDir, "watch-"+textutil.SanitizeToken(dir)+".lock")
}

// acquireLock takes the per-directory watcher lock. A lock held by another
// process is a configuration error.
func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "lock", "create state directory", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "lock", "acquire "+path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "lock",
			fmt.Sprintf("another watcher already owns this directory (%s)", path), nil)
	}
	return lock, nil
}
