// Package lock keeps wallhop to a single live instance and throttles how
// often wallpaper-changing commands may run.
//
// The lock is a file created with O_EXCL holding the owner's pid and the
// acquisition time. A lock is stale once it is older than the staleness
// threshold or its owner is no longer running. This is a heuristic: a slow
// but live process past the threshold can be evicted.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/darkawower/wallhop/internal/fsutil"
)

var (
	// ErrBusy indicates another live instance holds the lock.
	ErrBusy = errors.New("another instance is running")

	// ErrRateLimited indicates the previous throttled run was too recent.
	ErrRateLimited = errors.New("called again too soon")
)

const (
	lockFileName   = "wallhop.lock"
	markerFileName = "last-run"
)

// Options configures a Locker.
type Options struct {
	// StaleAfter is the age after which a lock is evicted regardless of its owner.
	StaleAfter time.Duration

	// MinInterval is the minimum time between two throttled runs.
	MinInterval time.Duration
}

// Locker acquires the process-wide lock in a directory.
type Locker struct {
	dir  string
	opts Options

	now      func() time.Time
	pid      int
	pidAlive func(pid int) bool
}

// New creates a Locker storing its files in dir.
func New(dir string, opts Options) *Locker {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 2 * time.Minute
	}
	return &Locker{
		dir:      dir,
		opts:     opts,
		now:      time.Now,
		pid:      os.Getpid(),
		pidAlive: processAlive,
	}
}

// Handle is a held lock.
type Handle struct {
	path string
	pid  int
	once sync.Once
}

// LockPath returns the lock file path.
func (l *Locker) LockPath() string {
	return filepath.Join(l.dir, lockFileName)
}

// MarkerPath returns the rate-limit marker path.
func (l *Locker) MarkerPath() string {
	return filepath.Join(l.dir, markerFileName)
}

// Acquire takes the lock. Throttled acquisitions also enforce MinInterval
// and, on success, record the current time in the marker file.
func (l *Locker) Acquire(throttled bool) (*Handle, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	h, err := l.tryCreate()
	if errors.Is(err, os.ErrExist) {
		if !l.isStale() {
			return nil, ErrBusy
		}
		log.Debug().Str("path", l.LockPath()).Msg("removing stale lock")
		if rmErr := os.Remove(l.LockPath()); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("remove stale lock: %w", rmErr)
		}
		h, err = l.tryCreate()
		if errors.Is(err, os.ErrExist) {
			return nil, ErrBusy
		}
	}
	if err != nil {
		return nil, err
	}

	if !throttled {
		return h, nil
	}

	if last, ok := l.lastRun(); ok && l.opts.MinInterval > 0 {
		if elapsed := l.now().Sub(last); elapsed >= 0 && elapsed < l.opts.MinInterval {
			h.Release()
			return nil, fmt.Errorf("%w: %s since last run", ErrRateLimited, elapsed.Truncate(time.Millisecond))
		}
	}

	stamp := strconv.FormatInt(l.now().Unix(), 10) + "\n"
	if err := fsutil.WriteFileAtomic(l.MarkerPath(), []byte(stamp), 0o644); err != nil {
		h.Release()
		return nil, fmt.Errorf("write rate-limit marker: %w", err)
	}

	return h, nil
}

func (l *Locker) tryCreate() (*Handle, error) {
	path := l.LockPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, os.ErrExist
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	_, werr := fmt.Fprintf(f, "%d\n%d\n", l.pid, l.now().Unix())
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write lock file: %w", errors.Join(werr, cerr))
	}

	return &Handle{path: path, pid: l.pid}, nil
}

// isStale reports whether the existing lock may be evicted. A lock whose
// contents cannot be read is aged by its modification time, since its owner
// may not have written it yet.
func (l *Locker) isStale() bool {
	pid, acquired, err := readLock(l.LockPath())
	if err != nil {
		info, serr := os.Stat(l.LockPath())
		if serr != nil {
			return os.IsNotExist(serr)
		}
		return l.now().Sub(info.ModTime()) >= l.opts.StaleAfter
	}
	if l.now().Sub(acquired) >= l.opts.StaleAfter {
		return true
	}
	return !l.pidAlive(pid)
}

func (l *Locker) lastRun() (time.Time, bool) {
	data, err := os.ReadFile(l.MarkerPath())
	if err != nil {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}

// Release removes the lock file if it still belongs to this process. Safe to
// call more than once.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		pid, _, err := readLock(h.path)
		if err != nil || pid != h.pid {
			return
		}
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", h.path).Msg("failed to remove lock")
		}
	})
}

func readLock(path string) (int, time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, time.Time{}, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0, time.Time{}, fmt.Errorf("malformed lock file %s", path)
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("malformed pid in %s: %w", path, err)
	}
	sec, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("malformed timestamp in %s: %w", path, err)
	}
	return pid, time.Unix(sec, 0), nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	ok, err := process.PidExists(int32(pid))
	if err != nil {
		return true
	}
	return ok
}
