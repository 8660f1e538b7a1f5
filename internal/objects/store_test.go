package objects

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestBlobWriteRead(t *testing.T) {
	store := newTestStore(t)
	content := []byte("file content")

	id, err := store.WriteBlob(content)
	if err != nil {
		t.Fatalf("WriteBlob failed: %v", err)
	}

	got, err := store.ReadBlob(id)
	if err != nil {
		t.Fatalf("ReadBlob failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("Read content should match written content")
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	id1, err := store.WriteBlob([]byte("same"))
	if err != nil {
		t.Fatalf("WriteBlob failed: %v", err)
	}
	id2, err := store.WriteBlob([]byte("same"))
	if err != nil {
		t.Fatalf("Second WriteBlob failed: %v", err)
	}
	if id1 != id2 {
		t.Error("Identical content should dedup to the same id")
	}
}

func TestReadMissingObject(t *testing.T) {
	store := newTestStore(t)
	_, err := store.ReadBlob(HashObject(TypeBlob, []byte("never written")))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReadWrongType(t *testing.T) {
	store := newTestStore(t)
	id, err := store.WriteBlob([]byte("a blob"))
	if err != nil {
		t.Fatalf("WriteBlob failed: %v", err)
	}
	if _, err := store.ReadCommit(id); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Reading a blob as a commit should be ErrCorrupt, got %v", err)
	}
}

func TestReadCorruptObject(t *testing.T) {
	store := newTestStore(t)
	id, err := store.WriteBlob([]byte("soon to be damaged"))
	if err != nil {
		t.Fatalf("WriteBlob failed: %v", err)
	}

	if err := os.WriteFile(store.path(id), []byte("not zlib at all"), 0644); err != nil {
		t.Fatalf("Tamper failed: %v", err)
	}

	if _, err := store.ReadBlob(id); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt, got %v", err)
	}
}

func TestTreeStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	blobID, err := store.WriteBlob([]byte("x"))
	if err != nil {
		t.Fatalf("WriteBlob failed: %v", err)
	}

	treeID, err := store.WriteTree(&Tree{Entries: []TreeEntry{
		{Mode: ModeBlob, Name: "x.txt", ID: blobID},
	}})
	if err != nil {
		t.Fatalf("WriteTree failed: %v", err)
	}

	tree, err := store.ReadTree(treeID)
	if err != nil {
		t.Fatalf("ReadTree failed: %v", err)
	}
	if entry, ok := tree.Lookup("x.txt"); !ok || entry.ID != blobID {
		t.Error("Tree entry did not survive storage")
	}
}

// chain writes n commits, each the parent of the next, and returns ids
// oldest first.
func chain(t *testing.T, store *Store, n int) []ID {
	t.Helper()
	ids := make([]ID, 0, n)
	treeID, err := store.WriteTree(&Tree{})
	if err != nil {
		t.Fatalf("WriteTree failed: %v", err)
	}

	var parent *ID
	for i := 0; i < n; i++ {
		commit := &Commit{
			Tree:    treeID,
			Parent:  parent,
			Author:  "A <a@b>",
			Time:    time.Unix(1700000000+int64(i), 0),
			Message: "snapshot",
		}
		id, err := store.WriteCommit(commit)
		if err != nil {
			t.Fatalf("WriteCommit failed: %v", err)
		}
		ids = append(ids, id)
		p := id
		parent = &p
	}
	return ids
}

func TestIsAncestor(t *testing.T) {
	store := newTestStore(t)
	ids := chain(t, store, 3)

	if ok, err := store.IsAncestor(ids[0], ids[2]); err != nil || !ok {
		t.Errorf("Root should be an ancestor of the tip (ok=%v err=%v)", ok, err)
	}
	if ok, err := store.IsAncestor(ids[2], ids[0]); err != nil || ok {
		t.Errorf("Tip should not be an ancestor of the root (ok=%v err=%v)", ok, err)
	}
	if ok, err := store.IsAncestor(ids[1], ids[1]); err != nil || ok {
		t.Errorf("Ancestry is strict; a commit is not its own ancestor (ok=%v err=%v)", ok, err)
	}
}

func TestChainContains(t *testing.T) {
	store := newTestStore(t)
	ids := chain(t, store, 3)

	if ok, err := store.ChainContains(ids[2], ids[2]); err != nil || !ok {
		t.Errorf("Chain should contain its own head (ok=%v err=%v)", ok, err)
	}
	if ok, err := store.ChainContains(ids[2], ids[0]); err != nil || !ok {
		t.Errorf("Chain should contain the root (ok=%v err=%v)", ok, err)
	}
	if ok, err := store.ChainContains(ids[0], ids[2]); err != nil || ok {
		t.Errorf("Chain from the root should not contain the tip (ok=%v err=%v)", ok, err)
	}
}

func TestChainLength(t *testing.T) {
	store := newTestStore(t)
	ids := chain(t, store, 4)

	n, err := store.ChainLength(ids[3])
	if err != nil {
		t.Fatalf("ChainLength failed: %v", err)
	}
	if n != 4 {
		t.Errorf("ChainLength = %d, want 4", n)
	}
}

func TestHasCommit(t *testing.T) {
	store := newTestStore(t)
	ids := chain(t, store, 1)

	if ok, err := store.HasCommit(ids[0]); err != nil || !ok {
		t.Errorf("HasCommit should find a written commit (ok=%v err=%v)", ok, err)
	}

	blobID, err := store.WriteBlob([]byte("not a commit"))
	if err != nil {
		t.Fatalf("WriteBlob failed: %v", err)
	}
	if ok, err := store.HasCommit(blobID); err != nil || ok {
		t.Errorf("HasCommit should reject a blob id (ok=%v err=%v)", ok, err)
	}
}
