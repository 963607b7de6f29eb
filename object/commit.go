package object

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vost-dev/vost/hash"
)

// Commit records one snapshot of the tree: its root tree OID, an optional
// parent commit, who committed it and when, and a message. Unlike git
// proper, vost commits carry at most one parent — there is no merge
// operation in this system.
type Commit struct {
	Tree      hash.Hash
	Parent    *hash.Hash
	Author    Signature
	Committer Signature
	Message   string
}

func (c *Commit) Type() Type { return CommitType }

func (c *Commit) Encode(w io.Writer) (int64, error) {
	var n int64
	write := func(s string) error {
		wn, err := io.WriteString(w, s)
		n += int64(wn)
		return err
	}
	if err := write(fmt.Sprintf("tree %s\n", c.Tree)); err != nil {
		return n, err
	}
	if c.Parent != nil {
		if err := write(fmt.Sprintf("parent %s\n", c.Parent)); err != nil {
			return n, err
		}
	}
	if err := write(fmt.Sprintf("author %s\n", c.Author.Encode())); err != nil {
		return n, err
	}
	if err := write(fmt.Sprintf("committer %s\n", c.Committer.Encode())); err != nil {
		return n, err
	}
	if err := write("\n" + c.Message); err != nil {
		return n, err
	}
	return n, nil
}

func (c *Commit) Decode(r io.Reader, size int64) error {
	br := bufio.NewReader(io.LimitReader(r, size))
	*c = Commit{}
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		trimmed := strings.TrimSuffix(line, "\n")
		if trimmed == "" {
			break
		}
		key, rest, ok := strings.Cut(trimmed, " ")
		if !ok {
			return fmt.Errorf("object: malformed commit header %q", trimmed)
		}
		switch key {
		case "tree":
			h, err := hash.FromHexStrict(rest)
			if err != nil {
				return fmt.Errorf("object: malformed commit tree oid: %w", err)
			}
			c.Tree = h
		case "parent":
			h, err := hash.FromHexStrict(rest)
			if err != nil {
				return fmt.Errorf("object: malformed commit parent oid: %w", err)
			}
			c.Parent = &h
		case "author":
			sig, err := ParseSignature(rest)
			if err != nil {
				return err
			}
			c.Author = sig
		case "committer":
			sig, err := ParseSignature(rest)
			if err != nil {
				return err
			}
			c.Committer = sig
		default:
			// forward-compatible with headers this implementation doesn't
			// interpret yet
		}
		if err == io.EOF {
			break
		}
	}
	msg, err := io.ReadAll(br)
	if err != nil {
		return err
	}
	c.Message = string(msg)
	return nil
}
