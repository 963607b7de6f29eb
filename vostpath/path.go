// Package vostpath normalizes and manipulates the slash-separated paths
// used throughout vost. The root of a snapshot is denoted by the empty
// string; no accepted path begins or ends with '/'.
package vostpath

import (
	"strings"

	"github.com/vost-dev/vost/voserr"
)

// Root is the canonical representation of the snapshot root.
const Root = ""

// Normalize strips leading/trailing slashes and rejects empty segments,
// ".", and ".." segments. The empty string (after stripping) denotes the
// root and is always valid.
func Normalize(p string) (string, error) {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return Root, nil
	}
	segments := strings.Split(trimmed, "/")
	for _, seg := range segments {
		switch seg {
		case "":
			return "", voserr.InvalidPath(p, "empty path segment")
		case ".":
			return "", voserr.InvalidPath(p, "'.' segment not allowed")
		case "..":
			return "", voserr.InvalidPath(p, "'..' segment not allowed")
		}
	}
	return strings.Join(segments, "/"), nil
}

// Segments splits an already-normalized path into its components. The root
// splits into an empty slice.
func Segments(p string) []string {
	if p == Root {
		return nil
	}
	return strings.Split(p, "/")
}

// Join joins a normalized directory path and a single name, producing a
// normalized child path. dir may be Root.
func Join(dir, name string) string {
	if dir == Root {
		return name
	}
	return dir + "/" + name
}

// Split separates the final segment of a normalized non-root path from its
// parent directory. Split(Root) is invalid and returns (Root, Root).
func Split(p string) (dir, base string) {
	if p == Root {
		return Root, Root
	}
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return Root, p
	}
	return p[:i], p[i+1:]
}

// IsDotfile reports whether name (a single path segment, not a full path)
// begins with '.'. Used by glob to exclude dotfiles from '*'/'**' matches
// unless the pattern segment itself begins with '.'.
func IsDotfile(name string) bool {
	return strings.HasPrefix(name, ".")
}
