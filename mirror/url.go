package mirror

import (
	"strings"

	"github.com/vost-dev/vost/voserr"
)

// endpointKind classifies a mirror target: a path on this filesystem, or
// one of the smart-protocol schemes.
type endpointKind int

const (
	kindLocal endpointKind = iota
	kindHTTP
	kindHTTPS
	kindGit
	kindSSH
	kindFile
)

// classifyURL decides how raw should be reached: as a path on this
// filesystem, or over one of the git smart-protocol schemes via go-git's
// transport registry. scp-style remotes ("user@host:path", as opposed to
// "ssh://host/path") are rejected outright in favor of requiring the
// explicit ssh:// form.
func classifyURL(raw string) (endpointKind, error) {
	if isWindowsDriveLocal(raw) {
		return kindLocal, nil
	}
	if idx := strings.Index(raw, "://"); idx >= 0 {
		switch raw[:idx] {
		case "http":
			return kindHTTP, nil
		case "https":
			return kindHTTPS, nil
		case "git":
			return kindGit, nil
		case "ssh":
			return kindSSH, nil
		case "file":
			return kindFile, nil
		default:
			return 0, voserr.InvalidArgument("unsupported mirror URL scheme: " + raw[:idx])
		}
	}
	if looksLikeSCP(raw) {
		return 0, voserr.InvalidArgument("scp-style remote \"" + raw + "\" is not supported; use the ssh:// form")
	}
	return kindLocal, nil
}

func isWindowsDriveLocal(raw string) bool {
	return len(raw) >= 3 && isASCIILetter(raw[0]) && raw[1] == ':' && (raw[2] == '/' || raw[2] == '\\')
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// looksLikeSCP matches git's "[user@]host:path" shorthand: a colon with no
// preceding path separator and no "://" anywhere in the string.
func looksLikeSCP(raw string) bool {
	colon := strings.IndexByte(raw, ':')
	if colon <= 0 {
		return false
	}
	before := raw[:colon]
	return !strings.ContainsAny(before, "/\\")
}

// isBundlePath reports whether raw names a bundle file rather than a live
// transport endpoint, by extension — the bundle format has no URL scheme
// of its own, it's always a local path ending in ".bundle".
func isBundlePath(raw string) bool {
	return strings.HasSuffix(raw, ".bundle")
}
