// Package changeset is the small shared type both fs and batch use to
// record "what changed" (or, on a dry run, "what would change") and to
// render a commit message from it against a placeholder grammar
// ({add_count}, {update_count}, {delete_count}, {total_count},
// {op}, {default}). Factored out of fs/batch because both packages need
// identical behavior here.
package changeset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vost-dev/vost/voserr"
)

// Kind classifies one path's change.
type Kind int

const (
	Add Kind = iota
	Update
	Delete
)

// Change is one affected path.
type Change struct {
	Path string
	Kind Kind
}

// Set is an ordered collection of Changes, used both for a committed
// batch's change report and for a dry-run snapshot's predicted changes.
type Set struct {
	Changes []Change
}

// Add appends a change of the given kind for path.
func (s *Set) Add(path string, kind Kind) {
	s.Changes = append(s.Changes, Change{Path: path, Kind: kind})
}

// Counts returns the number of add/update/delete entries.
func (s *Set) Counts() (add, update, del int) {
	for _, c := range s.Changes {
		switch c.Kind {
		case Add:
			add++
		case Update:
			update++
		case Delete:
			del++
		}
	}
	return add, update, del
}

// Total is the number of changes recorded.
func (s *Set) Total() int {
	return len(s.Changes)
}

var placeholderRe = regexp.MustCompile(`\{[a-z_]+\}`)

// Render expands tmpl's placeholders against s and the caller-supplied
// operation name op (empty string if none was given). An empty tmpl is
// treated as "{default}". Render fails with voserr.ErrInvalidMessage if
// tmpl references a placeholder this grammar doesn't recognize.
func Render(tmpl, op string, s *Set) (string, error) {
	if tmpl == "" {
		tmpl = "{default}"
	}
	add, update, del := s.Counts()
	total := add + update + del

	var badPlaceholder string
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(tok string) string {
		name := tok[1 : len(tok)-1]
		switch name {
		case "add_count":
			return strconv.Itoa(add)
		case "update_count":
			return strconv.Itoa(update)
		case "delete_count":
			return strconv.Itoa(del)
		case "total_count":
			return strconv.Itoa(total)
		case "op":
			return op
		case "default":
			return defaultMessage(op, add, update, del, total, s)
		default:
			if badPlaceholder == "" {
				badPlaceholder = name
			}
			return tok
		}
	})
	if badPlaceholder != "" {
		return "", voserr.InvalidMessage(badPlaceholder)
	}
	return out, nil
}

func defaultMessage(op string, add, update, del, total int, s *Set) string {
	if total == 0 {
		return "No changes"
	}
	if total == 1 && add == 1 {
		for _, c := range s.Changes {
			if c.Kind == Add {
				return "+ " + c.Path
			}
		}
	}
	var parts []string
	if add > 0 {
		parts = append(parts, fmt.Sprintf("+%d", add))
	}
	if update > 0 {
		parts = append(parts, fmt.Sprintf("~%d", update))
	}
	if del > 0 {
		parts = append(parts, fmt.Sprintf("-%d", del))
	}
	prefix := "Batch "
	if op != "" {
		prefix += op + ": "
	}
	return prefix + strings.Join(parts, " ")
}
