// Package reflock implements the per-repo advisory lock: a scoped
// acquisition spanning both threads (a process-wide
// table of mutexes keyed by repo identity) and processes (an
// exclusive file lock on a lockfile inside the repo, via
// github.com/gofrs/flock, which blocks on contention rather than failing
// immediately the way an O_EXCL lockfile would).
package reflock

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// lockFileName is the advisory lockfile created inside a bare repository
// directory. A file-backed repo ("<repo>.lock" for that case) is not
// modeled by this implementation: every repo vost opens
// is a directory (see repo.Open), so only the directory form is needed.
const lockFileName = "vost.lock"

var (
	tableMu sync.Mutex
	table   = map[string]*sync.Mutex{}
)

// keyFor returns the process-wide table key for repoPath: its (device,
// inode) pair when stat succeeds, falling back to the cleaned absolute
// path on platforms or error conditions where that's unavailable. This is
// what makes two paths that resolve to the same repo (symlinks included)
// share one in-process mutex.
func keyFor(repoPath string) string {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		abs = repoPath
	}
	if key, ok := inodeKey(abs); ok {
		return key
	}
	return filepath.Clean(abs)
}

func mutexFor(key string) *sync.Mutex {
	tableMu.Lock()
	defer tableMu.Unlock()
	m, ok := table[key]
	if !ok {
		m = &sync.Mutex{}
		table[key] = m
	}
	return m
}

// Lock is a held repo lock: an in-process mutex plus a cross-process file
// lock, both acquired on Lock() and both released, in reverse order, on
// Unlock(). Unlock must be called exactly once per Lock; callers should
// always pair Lock with a deferred Unlock.
type Lock struct {
	mu   *sync.Mutex
	file *flock.Flock
}

// Acquire blocks until it holds the lock for repoPath (a bare repository
// directory), both the in-process critical section and the cross-process
// file lock, returning a Lock the caller must Unlock.
func Acquire(repoPath string) (*Lock, error) {
	mu := mutexFor(keyFor(repoPath))
	mu.Lock()

	path := filepath.Join(repoPath, lockFileName)
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		mu.Unlock()
		return nil, err
	}
	return &Lock{mu: mu, file: fl}, nil
}

// Unlock releases the file lock and then the in-process mutex, the reverse
// of acquisition order, and removes the lockfile best-effort (its presence
// carries no state between acquisitions).
func (l *Lock) Unlock() error {
	err := l.file.Unlock()
	_ = os.Remove(l.file.Path())
	l.mu.Unlock()
	return err
}

// With acquires the lock for repoPath, runs fn, and always releases the
// lock afterward.
func With(repoPath string, fn func() error) error {
	l, err := Acquire(repoPath)
	if err != nil {
		return err
	}
	defer l.Unlock()
	return fn()
}
