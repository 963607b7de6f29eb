//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package reflock

// inodeKey has no (device, inode) equivalent on this platform; callers
// fall back to the canonicalized path.
func inodeKey(abs string) (string, bool) {
	return "", false
}
