package object

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vost-dev/vost/hash"
)

// Tag is an annotated tag: a named, signed-off pointer at another object,
// almost always a Commit (tags must resolve to a commit).
type Tag struct {
	Object     hash.Hash
	ObjectType Type
	Name       string
	Tagger     Signature
	Message    string
}

func (t *Tag) Type() Type { return TagType }

func (t *Tag) Encode(w io.Writer) (int64, error) {
	headers := []string{
		fmt.Sprintf("object %s", t.Object),
		fmt.Sprintf("type %s", t.ObjectType),
		fmt.Sprintf("tag %s", t.Name),
		fmt.Sprintf("tagger %s", t.Tagger.Encode()),
	}
	n, err := fmt.Fprintf(w, "%s\n\n%s", strings.Join(headers, "\n"), t.Message)
	return int64(n), err
}

func (t *Tag) Decode(r io.Reader, size int64) error {
	br := bufio.NewReader(io.LimitReader(r, size))
	var message strings.Builder
	var finishedHeaders bool
	*t = Tag{}

	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return readErr
		}

		if finishedHeaders {
			message.WriteString(line)
		} else {
			text := strings.TrimSuffix(line, "\n")
			if len(text) == 0 {
				finishedHeaders = true
				if readErr == io.EOF {
					break
				}
				continue
			}

			field, value, ok := strings.Cut(text, " ")
			if !ok {
				return fmt.Errorf("object: invalid tag header %q", text)
			}

			switch field {
			case "object":
				h, err := hash.FromHexStrict(value)
				if err != nil {
					return fmt.Errorf("object: malformed tag object oid: %w", err)
				}
				t.Object = h
			case "type":
				ty, err := TypeFromString(value)
				if err != nil {
					return err
				}
				t.ObjectType = ty
			case "tag":
				t.Name = value
			case "tagger":
				sig, err := ParseSignature(value)
				if err != nil {
					return err
				}
				t.Tagger = sig
			default:
				// forward-compatible with headers this implementation
				// doesn't interpret yet
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	t.Message = message.String()
	return nil
}
