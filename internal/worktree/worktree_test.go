package worktree

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/muninn-vcs/muninn/internal/objects"
	"github.com/muninn-vcs/muninn/internal/store"
)

func newTestBuilder(t *testing.T) (*Builder, string) {
	t.Helper()
	workDir := t.TempDir()

	objStore, err := objects.NewStore(filepath.Join(t.TempDir(), "objects"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	db, err := store.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open db failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &Builder{Store: objStore, Cache: db}, workDir
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestBuildTreeDeterministic(t *testing.T) {
	b, dir := newTestBuilder(t)
	write(t, dir, "a.txt", "one")
	write(t, dir, "docs/b.txt", "two")

	id1, err := b.BuildTree(dir)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}
	id2, err := b.BuildTree(dir)
	if err != nil {
		t.Fatalf("Second BuildTree failed: %v", err)
	}
	if id1 != id2 {
		t.Error("Unchanged directory should produce the same tree id")
	}
}

func TestBuildTreeSkipsHiddenEntries(t *testing.T) {
	b, dir := newTestBuilder(t)
	write(t, dir, "a.txt", "visible")

	bare, err := b.BuildTree(dir)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	write(t, dir, ".hidden", "secret")
	write(t, dir, ".muninn/objects/dummy", "store data")

	withHidden, err := b.BuildTree(dir)
	if err != nil {
		t.Fatalf("BuildTree with hidden entries failed: %v", err)
	}
	if bare != withHidden {
		t.Error("Hidden entries should not affect the tree id")
	}
}

func TestMaterializeRoundTrip(t *testing.T) {
	b, dir := newTestBuilder(t)
	write(t, dir, "a.txt", "alpha")
	write(t, dir, "nested/deep/b.txt", "beta")

	treeID, err := b.BuildTree(dir)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	other := t.TempDir()
	if err := Materialize(b.Store, other, treeID); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	rebuilt, err := (&Builder{Store: b.Store}).BuildTree(other)
	if err != nil {
		t.Fatalf("BuildTree on materialized dir failed: %v", err)
	}
	if rebuilt != treeID {
		t.Error("Materialize then BuildTree should reproduce the tree id")
	}

	content, err := os.ReadFile(filepath.Join(other, "nested", "deep", "b.txt"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(content, []byte("beta")) {
		t.Errorf("Materialized content = %q, want %q", content, "beta")
	}
}

func TestMaterializeResetsExistingContent(t *testing.T) {
	b, dir := newTestBuilder(t)
	write(t, dir, "keep.txt", "kept")

	treeID, err := b.BuildTree(dir)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	write(t, dir, "stale.txt", "should vanish")
	write(t, dir, ".private", "untouched")

	if err := Materialize(b.Store, dir, treeID); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "stale.txt")); !os.IsNotExist(err) {
		t.Error("Checkout should remove content not in the tree")
	}
	if _, err := os.Stat(filepath.Join(dir, ".private")); err != nil {
		t.Error("Checkout should leave hidden entries alone")
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.txt")); err != nil {
		t.Error("Tree content should be present after checkout")
	}
}

func TestReadFileAt(t *testing.T) {
	b, dir := newTestBuilder(t)
	write(t, dir, "a.txt", "top")
	write(t, dir, "docs/b.txt", "nested")

	treeID, err := b.BuildTree(dir)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	content, err := ReadFileAt(b.Store, treeID, "docs/b.txt")
	if err != nil {
		t.Fatalf("ReadFileAt failed: %v", err)
	}
	if string(content) != "nested" {
		t.Errorf("Content = %q, want %q", content, "nested")
	}

	if _, err := ReadFileAt(b.Store, treeID, "missing.txt"); !errors.Is(err, objects.ErrNotFound) {
		t.Errorf("Missing file should be ErrNotFound, got %v", err)
	}
	if _, err := ReadFileAt(b.Store, treeID, "docs"); !errors.Is(err, objects.ErrNotFound) {
		t.Errorf("Directory path should be ErrNotFound, got %v", err)
	}
	if _, err := ReadFileAt(b.Store, treeID, "a.txt/impossible"); !errors.Is(err, objects.ErrNotFound) {
		t.Errorf("Path through a file should be ErrNotFound, got %v", err)
	}
}

func TestBuildTreeContentChange(t *testing.T) {
	b, dir := newTestBuilder(t)
	write(t, dir, "a.txt", "before")

	id1, err := b.BuildTree(dir)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	write(t, dir, "a.txt", "after!")
	id2, err := b.BuildTree(dir)
	if err != nil {
		t.Fatalf("Second BuildTree failed: %v", err)
	}
	if id1 == id2 {
		t.Error("Changed content must change the tree id")
	}
}

func TestBuildTreeWithoutCache(t *testing.T) {
	objStore, err := objects.NewStore(filepath.Join(t.TempDir(), "objects"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	dir := t.TempDir()
	write(t, dir, "a.txt", "no cache")

	b := &Builder{Store: objStore}
	if _, err := b.BuildTree(dir); err != nil {
		t.Fatalf("BuildTree without cache failed: %v", err)
	}
}
