//go:build linux || darwin || freebsd || netbsd || openbsd

package reflock

import (
	"fmt"
	"syscall"
)

// inodeKey returns the (device, inode) identity of abs on POSIX platforms,
// so two paths for the same repo (e.g. one reached through a symlink)
// share the same in-process mutex.
func inodeKey(abs string) (string, bool) {
	var st syscall.Stat_t
	if err := syscall.Stat(abs, &st); err != nil {
		return "", false
	}
	return fmt.Sprintf("dev:%d/ino:%d", st.Dev, st.Ino), true
}
