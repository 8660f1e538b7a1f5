// Package worktree moves content between the working directory and the
// object store.
//
// The working directory is the single source of truth for current
// content: BuildTree reads it bottom-up into blob and tree objects, and
// Materialize overwrites it from a stored tree. Hidden entries (names
// starting with ".") are invisible to both directions, which is also
// what keeps the version store itself out of its own snapshots.
package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lukechampine.com/blake3"

	"github.com/muninn-vcs/muninn/internal/objects"
	"github.com/muninn-vcs/muninn/internal/store"
)

// Builder snapshots a working directory into the object store. The
// optional cache skips rehashing files whose size and mtime are
// unchanged since the last snapshot.
type Builder struct {
	Store *objects.Store
	Cache *store.DB
}

// BuildTree hashes the visible contents of dir into the store and
// returns the root tree id. Identical content always yields the same id.
func (b *Builder) BuildTree(dir string) (objects.ID, error) {
	return b.buildDir(dir, "")
}

func (b *Builder) buildDir(dir, rel string) (objects.ID, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return objects.ID{}, fmt.Errorf("read dir %s: %w", dir, err)
	}

	tree := &objects.Tree{}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		childPath := filepath.Join(dir, name)

		switch {
		case entry.IsDir():
			subID, err := b.buildDir(childPath, childRel)
			if err != nil {
				return objects.ID{}, err
			}
			tree.Entries = append(tree.Entries, objects.TreeEntry{
				Mode: objects.ModeTree,
				Name: name,
				ID:   subID,
			})

		case entry.Type().IsRegular():
			blobID, err := b.buildFile(childPath, childRel)
			if err != nil {
				return objects.ID{}, err
			}
			tree.Entries = append(tree.Entries, objects.TreeEntry{
				Mode: objects.ModeBlob,
				Name: name,
				ID:   blobID,
			})
		}
		// Symlinks and other special entries are not artifacts; skip.
	}

	return b.Store.WriteTree(tree)
}

// buildFile hashes one file, consulting the blob cache first.
func (b *Builder) buildFile(path, rel string) (objects.ID, error) {
	info, err := os.Stat(path)
	if err != nil {
		return objects.ID{}, fmt.Errorf("stat %s: %w", rel, err)
	}

	// A file modified within the last couple of seconds may share its
	// recorded mtime with a newer write; only trust the stat fast path
	// once the timestamp has settled.
	settled := time.Since(info.ModTime()) > 2*time.Second

	if b.Cache != nil && settled {
		if entry, err := b.Cache.GetBlobCache(rel); err == nil {
			if entry.Size == info.Size() && entry.ModTime == info.ModTime().UnixNano() {
				return objects.ID(entry.BlobID), nil
			}
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return objects.ID{}, fmt.Errorf("read %s: %w", rel, err)
	}

	checksum := blake3.Sum256(content)

	// A touched file with identical content keeps its blob id; refresh
	// the stat fields and skip the object write.
	if b.Cache != nil {
		if entry, err := b.Cache.GetBlobCache(rel); err == nil && entry.Checksum == checksum {
			entry.Size = info.Size()
			entry.ModTime = info.ModTime().UnixNano()
			if err := b.Cache.PutBlobCache(rel, entry); err == nil {
				return objects.ID(entry.BlobID), nil
			}
		}
	}

	blobID, err := b.Store.WriteBlob(content)
	if err != nil {
		return objects.ID{}, err
	}

	if b.Cache != nil {
		_ = b.Cache.PutBlobCache(rel, store.CacheEntry{
			Size:     info.Size(),
			ModTime:  info.ModTime().UnixNano(),
			Checksum: checksum,
			BlobID:   [20]byte(blobID),
		})
	}
	return blobID, nil
}

// Materialize overwrites the visible contents of dir with a stored tree.
// Existing visible entries are removed first: a checkout is a reset, not
// a merge.
func Materialize(st *objects.Store, dir string, treeID objects.ID) error {
	if err := clearVisible(dir); err != nil {
		return err
	}
	return writeTree(st, dir, treeID)
}

func clearVisible(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("clear %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func writeTree(st *objects.Store, dir string, treeID objects.ID) error {
	tree, err := st.ReadTree(treeID)
	if err != nil {
		return err
	}
	for _, entry := range tree.Entries {
		path := filepath.Join(dir, entry.Name)
		if entry.IsTree() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return fmt.Errorf("create dir %s: %w", entry.Name, err)
			}
			if err := writeTree(st, path, entry.ID); err != nil {
				return err
			}
			continue
		}
		content, err := st.ReadBlob(entry.ID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("write %s: %w", entry.Name, err)
		}
	}
	return nil
}

// ReadFileAt walks a stored tree to a relative path and returns the
// file's bytes.
func ReadFileAt(st *objects.Store, treeID objects.ID, relPath string) ([]byte, error) {
	parts := strings.Split(strings.Trim(relPath, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("%w: empty path", objects.ErrNotFound)
	}

	current := treeID
	for i, part := range parts {
		tree, err := st.ReadTree(current)
		if err != nil {
			return nil, err
		}
		entry, ok := tree.Lookup(part)
		if !ok {
			return nil, fmt.Errorf("%w: no file %q at this version", objects.ErrNotFound, relPath)
		}
		if i == len(parts)-1 {
			if entry.IsTree() {
				return nil, fmt.Errorf("%w: %q is a directory at this version", objects.ErrNotFound, relPath)
			}
			return st.ReadBlob(entry.ID)
		}
		if !entry.IsTree() {
			return nil, fmt.Errorf("%w: no file %q at this version", objects.ErrNotFound, relPath)
		}
		current = entry.ID
	}
	return nil, fmt.Errorf("%w: no file %q at this version", objects.ErrNotFound, relPath)
}
