package main

import (
	"strconv"
	"strings"

	"github.com/vost-dev/vost/voserr"
)

// refPath is a parsed ref-path argument:
// ":path", "name:path", "name~N:path", "~N:path", or a bare local
// filesystem path.
type refPath struct {
	Local    string // set if this is a local path, not a ref-path
	Ref      string // empty means the repo's default branch
	Ancestor int
	Path     string
}

// parseRefPath classifies raw: Windows drive letters
// ("C:/...", "C:\...") and any string without a colon are local paths;
// a colon whose left side contains a path separator is also a local
// path (a ref short name never contains '/' before the ':' in this
// syntax, even though ref names themselves may use '/' internally —
// disambiguating that case is left to the "name:path" form); everything
// else is "[name][~N]:path".
func parseRefPath(raw string) (refPath, error) {
	if isWindowsDriveLocal(raw) {
		return refPath{Local: raw}, nil
	}
	colon := strings.IndexByte(raw, ':')
	if colon < 0 {
		return refPath{Local: raw}, nil
	}
	refPart := raw[:colon]
	pathPart := raw[colon+1:]
	if strings.ContainsAny(refPart, `/\`) {
		return refPath{Local: raw}, nil
	}

	name := refPart
	ancestor := 0
	if tilde := strings.IndexByte(refPart, '~'); tilde >= 0 {
		name = refPart[:tilde]
		n, err := strconv.Atoi(refPart[tilde+1:])
		if err != nil {
			return refPath{}, voserr.InvalidArgument("bad ancestor count in ref-path " + raw)
		}
		ancestor = n
	}
	return refPath{Ref: name, Ancestor: ancestor, Path: pathPart}, nil
}

func isWindowsDriveLocal(raw string) bool {
	return len(raw) >= 3 && isASCIILetter(raw[0]) && raw[1] == ':' && (raw[2] == '/' || raw[2] == '\\')
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
