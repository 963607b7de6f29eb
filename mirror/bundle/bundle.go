// Package bundle reads and writes git bundle v2 files: the
// "# v2 git bundle" signature line, one "<oid> <refname>" line per ref, a
// blank separator line, and a standard packfile carrying the refs' object
// closure. The container is git's own, so any git client can clone or
// fetch from a bundle this package writes.
package bundle

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vost-dev/vost/hash"
)

const signature = "# v2 git bundle\n"

// Refs maps full ref names to the commits they point at.
type Refs map[string]hash.Hash

// Write emits a bundle to w: the v2 signature, refs sorted by name, a
// blank separator line, and the packfile bytes read from pack. The
// packfile must contain every object reachable from the listed refs —
// bundles this package writes are self-contained and carry no
// prerequisite lines.
func Write(w io.Writer, refs Refs, pack io.Reader) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(signature); err != nil {
		return err
	}
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(bw, "%s %s\n", refs[name], name); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	if _, err := io.Copy(bw, pack); err != nil {
		return err
	}
	return bw.Flush()
}

// Read parses a bundle's header from r and returns its refs plus a reader
// positioned at the first byte of the embedded packfile. A bundle
// declaring prerequisite commits ("-<oid>" lines) is rejected: restore
// always expects a self-contained bundle.
func Read(r io.Reader) (Refs, io.Reader, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, nil, err
	}
	if line != signature {
		return nil, nil, fmt.Errorf("bundle: bad signature %q", strings.TrimSuffix(line, "\n"))
	}

	refs := Refs{}
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, nil, err
		}
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "-") {
			return nil, nil, fmt.Errorf("bundle: prerequisite %q not supported: bundle is not self-contained", strings.TrimPrefix(line, "-"))
		}
		oidHex, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, nil, fmt.Errorf("bundle: malformed ref line %q", line)
		}
		h, err := hash.FromHexStrict(oidHex)
		if err != nil {
			return nil, nil, err
		}
		refs[name] = h
	}
	return refs, br, nil
}
