package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBlobCacheRoundTrip(t *testing.T) {
	db := newTestDB(t)

	entry := CacheEntry{
		Size:    42,
		ModTime: 1700000000123456789,
	}
	for i := range entry.Checksum {
		entry.Checksum[i] = byte(i)
	}
	for i := range entry.BlobID {
		entry.BlobID[i] = byte(200 - i)
	}

	if err := db.PutBlobCache("docs/a.txt", entry); err != nil {
		t.Fatalf("PutBlobCache failed: %v", err)
	}
	got, err := db.GetBlobCache("docs/a.txt")
	if err != nil {
		t.Fatalf("GetBlobCache failed: %v", err)
	}
	if got != entry {
		t.Errorf("Entry = %+v, want %+v", got, entry)
	}
}

func TestBlobCacheMissing(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.GetBlobCache("nope.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Missing key should be ErrNotFound, got %v", err)
	}
}

func TestBlobCacheOverwrite(t *testing.T) {
	db := newTestDB(t)

	if err := db.PutBlobCache("a.txt", CacheEntry{Size: 1}); err != nil {
		t.Fatalf("PutBlobCache failed: %v", err)
	}
	if err := db.PutBlobCache("a.txt", CacheEntry{Size: 2}); err != nil {
		t.Fatalf("Second PutBlobCache failed: %v", err)
	}
	got, err := db.GetBlobCache("a.txt")
	if err != nil {
		t.Fatalf("GetBlobCache failed: %v", err)
	}
	if got.Size != 2 {
		t.Errorf("Size = %d, want the newer value", got.Size)
	}
}

func TestDecodeCacheEntryMalformed(t *testing.T) {
	if _, err := decodeCacheEntry([]byte("too short")); err == nil {
		t.Error("decodeCacheEntry should reject a truncated value")
	}
}
