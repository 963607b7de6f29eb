package fs

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/odb"
	"github.com/vost-dev/vost/tree"
	"github.com/vost-dev/vost/vostpath"
)

// Glob matches pattern against every path in the snapshot:
// '*' matches one path segment excluding '/'; '?' matches one non-'/'
// character; '**' matches zero or more whole segments; dotfile-named
// segments are excluded from '*'/'**' matches unless the corresponding
// pattern segment itself begins with '.'. Results are deduplicated and
// sorted. The matcher works segment-by-segment over the in-memory tree
// rather than adapting a filesystem-oriented glob library, since the
// dotfile rule applies per pattern segment.
func (s *Snapshot) Glob(pattern string) ([]string, error) {
	root, err := s.TreeHash()
	if err != nil {
		return nil, err
	}
	patSegs := strings.Split(strings.Trim(pattern, "/"), "/")

	all, err := collectAllPaths(s.h.Store, root)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var matches []string
	for _, p := range all {
		if seen[p] {
			continue
		}
		if matchGlob(patSegs, vostpath.Segments(p)) {
			seen[p] = true
			matches = append(matches, p)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func collectAllPaths(store *odb.Store, root hash.Hash) ([]string, error) {
	var paths []string
	err := tree.WalkTree(store, root, vostpath.Root, func(e tree.WalkEntry) error {
		for _, sd := range e.Subdirs {
			paths = append(paths, vostpath.Join(e.Dir, sd))
		}
		for _, f := range e.Files {
			paths = append(paths, vostpath.Join(e.Dir, f))
		}
		return nil
	})
	return paths, err
}

// matchGlob recursively matches pattern segments against path segments,
// expanding a leading "**" both to zero segments and to "consume one more
// segment and retry" (skipping any expansion through a dotfile segment,
// since "**" never traverses hidden entries).
func matchGlob(pat, path []string) bool {
	if len(pat) == 0 {
		return len(path) == 0
	}
	if pat[0] == "**" {
		if matchGlob(pat[1:], path) {
			return true
		}
		if len(path) > 0 && !vostpath.IsDotfile(path[0]) && matchGlob(pat, path[1:]) {
			return true
		}
		return false
	}
	if len(path) == 0 {
		return false
	}
	if !matchSegment(pat[0], path[0]) {
		return false
	}
	return matchGlob(pat[1:], path[1:])
}

var (
	segmentRegexCacheMu sync.Mutex
	segmentRegexCache   = map[string]*regexp.Regexp{}
)

func matchSegment(pat, name string) bool {
	if vostpath.IsDotfile(name) && !vostpath.IsDotfile(pat) && strings.ContainsAny(pat, "*?") {
		return false
	}
	return segmentRegexFor(pat).MatchString(name)
}

func segmentRegexFor(pat string) *regexp.Regexp {
	segmentRegexCacheMu.Lock()
	defer segmentRegexCacheMu.Unlock()
	if re, ok := segmentRegexCache[pat]; ok {
		return re
	}
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pat {
		switch r {
		case '*':
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re := regexp.MustCompile(b.String())
	segmentRegexCache[pat] = re
	return re
}
