package objects

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
)

// Store is a loose-object database rooted at a directory. Objects are
// zlib-compressed canonical bytes in two-level fan-out subdirectories,
// the same on-disk shape Git uses. The store is append-only: objects are
// written once and never mutated or collected.
type Store struct {
	root string
}

// NewStore opens (creating if needed) an object database at root.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create objects dir: %w", err)
	}
	return &Store{root: root}, nil
}

// path returns the fan-out file path for an id, e.g. ab/cdef1234...
func (s *Store) path(id ID) string {
	hexStr := id.String()
	return filepath.Join(s.root, hexStr[:2], hexStr[2:])
}

// Has checks whether an object exists.
func (s *Store) Has(id ID) (bool, error) {
	_, err := os.Stat(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", id, err)
	}
	return true, nil
}

// write stores canonical payload bytes under their computed id. Writing
// the same content twice is a no-op, which is what makes every blob and
// tree write idempotent.
func (s *Store) write(objType string, payload []byte) (ID, error) {
	canon := canonical(objType, payload)
	id := ID(sha1.Sum(canon))

	path := s.path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ID{}, fmt.Errorf("create fan-out dir: %w", err)
	}

	// Compress to a temp file, then rename so readers never observe a
	// partial object.
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return ID{}, fmt.Errorf("create temp object: %w", err)
	}

	zw := zlib.NewWriter(f)
	_, werr := zw.Write(canon)
	if cerr := zw.Close(); werr == nil {
		werr = cerr
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmp)
		return ID{}, fmt.Errorf("write object %s: %w", id, werr)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ID{}, fmt.Errorf("finalize object %s: %w", id, err)
	}
	return id, nil
}

// read loads an object, verifies its id against the stored bytes, and
// returns its type and payload.
func (s *Store) read(id ID) (string, []byte, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", nil, fmt.Errorf("open object %s: %w", id, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, err)
	}
	defer zr.Close()

	canon, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, err)
	}

	if sha1.Sum(canon) != [20]byte(id) {
		return "", nil, fmt.Errorf("%w: %s: content does not match id", ErrCorrupt, id)
	}

	sep := bytes.IndexByte(canon, 0)
	if sep < 0 {
		return "", nil, fmt.Errorf("%w: %s: missing header terminator", ErrCorrupt, id)
	}

	var objType string
	var size int
	if n, err := fmt.Sscanf(string(canon[:sep]), "%s %d", &objType, &size); err != nil || n != 2 {
		return "", nil, fmt.Errorf("%w: %s: bad header", ErrCorrupt, id)
	}

	payload := canon[sep+1:]
	if len(payload) != size {
		return "", nil, fmt.Errorf("%w: %s: header size %d, payload %d", ErrCorrupt, id, size, len(payload))
	}
	return objType, payload, nil
}

// expect loads an object and checks its type.
func (s *Store) expect(id ID, want string) ([]byte, error) {
	objType, payload, err := s.read(id)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("%w: %s is a %s, expected %s", ErrCorrupt, id, objType, want)
	}
	return payload, nil
}

// WriteBlob stores file content and returns its id.
func (s *Store) WriteBlob(content []byte) (ID, error) {
	return s.write(TypeBlob, content)
}

// ReadBlob loads file content by id.
func (s *Store) ReadBlob(id ID) ([]byte, error) {
	return s.expect(id, TypeBlob)
}

// WriteTree stores a directory listing and returns its id.
func (s *Store) WriteTree(t *Tree) (ID, error) {
	return s.write(TypeTree, EncodeTree(t))
}

// ReadTree loads a directory listing by id.
func (s *Store) ReadTree(id ID) (*Tree, error) {
	payload, err := s.expect(id, TypeTree)
	if err != nil {
		return nil, err
	}
	return DecodeTree(payload)
}

// WriteCommit stores a commit and returns its id. Identical inputs
// always produce the same id.
func (s *Store) WriteCommit(c *Commit) (ID, error) {
	return s.write(TypeCommit, EncodeCommit(c))
}

// ReadCommit loads a commit by id.
func (s *Store) ReadCommit(id ID) (*Commit, error) {
	payload, err := s.expect(id, TypeCommit)
	if err != nil {
		return nil, err
	}
	return DecodeCommit(payload)
}

// HasCommit reports whether id names a commit present in the store.
func (s *Store) HasCommit(id ID) (bool, error) {
	ok, err := s.Has(id)
	if err != nil || !ok {
		return false, err
	}
	objType, _, err := s.read(id)
	if err != nil {
		return false, err
	}
	return objType == TypeCommit, nil
}

// IsAncestor reports whether anc is a strict ancestor of desc along the
// first-parent chain. Commits are single-parent, so this is a plain walk.
func (s *Store) IsAncestor(anc, desc ID) (bool, error) {
	current := desc
	for {
		commit, err := s.ReadCommit(current)
		if err != nil {
			return false, err
		}
		if commit.Parent == nil {
			return false, nil
		}
		if *commit.Parent == anc {
			return true, nil
		}
		current = *commit.Parent
	}
}

// ChainContains reports whether the first-parent chain starting at head
// (inclusive) passes through id.
func (s *Store) ChainContains(head, id ID) (bool, error) {
	current := head
	for {
		if current == id {
			return true, nil
		}
		commit, err := s.ReadCommit(current)
		if err != nil {
			return false, err
		}
		if commit.Parent == nil {
			return false, nil
		}
		current = *commit.Parent
	}
}

// ChainLength counts commits along the first-parent chain from head
// (inclusive) to the root.
func (s *Store) ChainLength(head ID) (int, error) {
	count := 0
	current := head
	for {
		commit, err := s.ReadCommit(current)
		if err != nil {
			return 0, err
		}
		count++
		if commit.Parent == nil {
			return count, nil
		}
		current = *commit.Parent
	}
}
