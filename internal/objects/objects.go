// Package objects implements the content-addressed object model: blobs,
// trees and commits in canonical Git encoding, addressed by SHA-1.
//
// The encoding is kept bit-compatible with Git loose objects so that a
// support tool can inspect a project's history with standard tooling.
// Only single-parent commits are ever produced; the engine has no merge
// concept.
package objects

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ID is a SHA-1 object id over the canonical object bytes.
type ID [20]byte

// String returns the 40-char hex form of the id.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the abbreviated hex form used in user-facing messages.
func (id ID) Short() string {
	return id.String()[:8]
}

// IsZero reports whether the id is the all-zero sentinel.
func (id ID) IsZero() bool {
	return id == ID{}
}

// ParseID decodes a 40-char hex object id.
func ParseID(s string) (ID, error) {
	var id ID
	if len(s) != 40 {
		return id, fmt.Errorf("%w: bad object id %q", ErrNotFound, s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: bad object id %q", ErrNotFound, s)
	}
	copy(id[:], raw)
	return id, nil
}

// Sentinel errors for the object store. Io failures are wrapped os errors
// and are reported verbatim; these two cover the structural cases.
var (
	ErrNotFound = errors.New("object not found")
	ErrCorrupt  = errors.New("corrupt object")
)

// Object types as they appear in the canonical header.
const (
	TypeBlob   = "blob"
	TypeTree   = "tree"
	TypeCommit = "commit"
)

// Tree entry modes. Every file is stored as a regular non-executable
// blob; the engine versions opaque artifacts, not build trees.
const (
	ModeBlob = "100644"
	ModeTree = "40000"
)

// TreeEntry is one row of a tree listing: a named blob or subtree.
type TreeEntry struct {
	Mode string
	Name string
	ID   ID
}

// IsTree reports whether the entry references a subtree.
func (e TreeEntry) IsTree() bool {
	return e.Mode == ModeTree
}

// Tree is an immutable, sorted directory listing.
type Tree struct {
	Entries []TreeEntry
}

// Commit is a snapshot with a history link. Parent is nil for the root
// commit; there is never more than one parent.
type Commit struct {
	Tree    ID
	Parent  *ID
	Author  string // "Name <email>"
	Time    time.Time
	Message string
}

// header produces the canonical "<type> <len>\x00" prefix Git hashes.
func header(objType string, size int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", objType, size))
}

// canonical frames a payload with its header.
func canonical(objType string, payload []byte) []byte {
	h := header(objType, len(payload))
	out := make([]byte, 0, len(h)+len(payload))
	out = append(out, h...)
	out = append(out, payload...)
	return out
}

// HashObject returns the id of a payload under the given object type.
func HashObject(objType string, payload []byte) ID {
	return sha1.Sum(canonical(objType, payload))
}

// sortKey implements Git's tree ordering: directories compare as if their
// name carried a trailing slash.
func sortKey(e TreeEntry) string {
	if e.IsTree() {
		return e.Name + "/"
	}
	return e.Name
}

// EncodeTree serializes a tree listing into canonical payload bytes.
// Entries are sorted here so callers never have to care about order.
func EncodeTree(t *Tree) []byte {
	entries := make([]TreeEntry, len(t.Entries))
	copy(entries, t.Entries)
	sort.Slice(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})

	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.ID[:])
	}
	return buf.Bytes()
}

// DecodeTree parses canonical tree payload bytes.
func DecodeTree(payload []byte) (*Tree, error) {
	tree := &Tree{}
	rest := payload
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("%w: tree entry missing mode separator", ErrCorrupt)
		}
		mode := string(rest[:sp])
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: tree entry missing name terminator", ErrCorrupt)
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]

		if len(rest) < 20 {
			return nil, fmt.Errorf("%w: truncated tree entry id", ErrCorrupt)
		}
		var id ID
		copy(id[:], rest[:20])
		rest = rest[20:]

		tree.Entries = append(tree.Entries, TreeEntry{Mode: mode, Name: name, ID: id})
	}
	return tree, nil
}

// Lookup finds a direct entry by name.
func (t *Tree) Lookup(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// EncodeCommit serializes a commit into canonical payload bytes. The
// timestamp is written in UTC so identical inputs hash identically on
// every machine.
func EncodeCommit(c *Commit) []byte {
	var buf bytes.Buffer
	buf.WriteString("tree ")
	buf.WriteString(c.Tree.String())
	buf.WriteByte('\n')

	if c.Parent != nil {
		buf.WriteString("parent ")
		buf.WriteString(c.Parent.String())
		buf.WriteByte('\n')
	}

	ident := fmt.Sprintf("%s %d +0000\n", c.Author, c.Time.Unix())
	buf.WriteString("author ")
	buf.WriteString(ident)
	buf.WriteString("committer ")
	buf.WriteString(ident)

	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	if !strings.HasSuffix(c.Message, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// DecodeCommit parses canonical commit payload bytes.
func DecodeCommit(payload []byte) (*Commit, error) {
	commit := &Commit{}
	lines := bytes.Split(payload, []byte{'\n'})

	var messageStart int
	for i, line := range lines {
		if len(line) == 0 {
			messageStart = i + 1
			break
		}

		fields := bytes.SplitN(line, []byte{' '}, 2)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: malformed commit header line", ErrCorrupt)
		}
		key, value := string(fields[0]), string(fields[1])

		switch key {
		case "tree":
			id, err := ParseID(value)
			if err != nil {
				return nil, fmt.Errorf("%w: bad tree id in commit", ErrCorrupt)
			}
			commit.Tree = id

		case "parent":
			if commit.Parent != nil {
				return nil, fmt.Errorf("%w: multiple parents in commit", ErrCorrupt)
			}
			id, err := ParseID(value)
			if err != nil {
				return nil, fmt.Errorf("%w: bad parent id in commit", ErrCorrupt)
			}
			commit.Parent = &id

		case "author":
			author, when, err := parseIdent(value)
			if err != nil {
				return nil, err
			}
			commit.Author = author
			commit.Time = when

		case "committer":
			// Same identity as author; nothing extra to record.
		}
	}

	if commit.Tree.IsZero() {
		return nil, fmt.Errorf("%w: commit has no tree", ErrCorrupt)
	}

	if messageStart > 0 && messageStart < len(lines) {
		msg := bytes.Join(lines[messageStart:], []byte{'\n'})
		commit.Message = string(bytes.TrimSuffix(msg, []byte{'\n'}))
	}
	return commit, nil
}

// parseIdent splits "Name <email> <unix> <tz>" into identity and time.
func parseIdent(value string) (string, time.Time, error) {
	fields := strings.Fields(value)
	if len(fields) < 3 {
		return "", time.Time{}, fmt.Errorf("%w: malformed commit identity", ErrCorrupt)
	}
	secs, err := strconv.ParseInt(fields[len(fields)-2], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: malformed commit timestamp", ErrCorrupt)
	}
	ident := strings.Join(fields[:len(fields)-2], " ")
	return ident, time.Unix(secs, 0).UTC(), nil
}
