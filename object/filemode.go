package object

import "fmt"

// FileMode is one of the four file types the data model recognizes: a
// regular file, an executable file, a symlink, or a tree (directory).
// Values are the literal git octal modes, following the convention of
// representing a FileMode as its on-disk git integer rather than an
// opaque enum.
type FileMode uint32

// Regular, Executable, Symlink, and Dir name the four modes; the names
// deliberately avoid colliding with the Blob/Tree object-type identifiers
// in the rest of this package, since a file's mode and its object kind are
// independent concepts that happen to correlate for directories.
const (
	Regular    FileMode = 0o100644
	Executable FileMode = 0o100755
	Symlink    FileMode = 0o120000
	Dir        FileMode = 0o040000
)

// String renders the mode as a readable name ("regular", "executable",
// "symlink", "dir", or "unknown(<octal>)"). The octal form stored in tree
// entries is written by Tree.Encode, not by String.
func (m FileMode) String() string {
	switch m {
	case Regular:
		return "regular"
	case Executable:
		return "executable"
	case Symlink:
		return "symlink"
	case Dir:
		return "dir"
	default:
		return fmt.Sprintf("unknown(%o)", uint32(m))
	}
}

// IsDir reports whether m denotes a tree entry.
func (m FileMode) IsDir() bool {
	return m == Dir
}

// IsLink reports whether m denotes a symlink entry.
func (m FileMode) IsLink() bool {
	return m == Symlink
}

// IsRegular reports whether m denotes a blob or executable entry (i.e. not
// a tree or symlink).
func (m FileMode) IsRegular() bool {
	return m == Regular || m == Executable
}

// ParseFileMode parses the octal mode string found in an encoded tree entry
// (e.g. "100644", "40000") into a FileMode.
func ParseFileMode(s string) (FileMode, error) {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '7' {
			return 0, fmt.Errorf("object: invalid mode digit %q in %q", c, s)
		}
		v = v*8 + uint32(c-'0')
	}
	switch FileMode(v) {
	case Regular, Executable, Symlink, Dir:
		return FileMode(v), nil
	default:
		return 0, fmt.Errorf("object: unsupported file mode %q", s)
	}
}
