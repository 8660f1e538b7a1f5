// Package store wraps the engine-private bbolt database that lives next
// to the object store. It holds the blob build cache, so unchanged files
// are not rehashed on every snapshot.
package store

import (
	"encoding/binary"
	"errors"

	"go.etcd.io/bbolt"
)

// BucketBlobCache maps a workdir-relative path to its CacheEntry.
var BucketBlobCache = []byte("blob-cache")

// ErrNotFound is returned for missing cache keys.
var ErrNotFound = errors.New("key not found")

type DB struct{ *bbolt.DB }

func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0666, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(BucketBlobCache)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func (db *DB) Close() error { return db.DB.Close() }

// CacheEntry records what a workdir file hashed to the last time it was
// snapshotted. Size and ModTime gate the fast path; the BLAKE3 checksum
// lets a touched-but-unchanged file reuse its blob id without a rewrite.
type CacheEntry struct {
	Size     int64
	ModTime  int64 // unix nanoseconds
	Checksum [32]byte
	BlobID   [20]byte
}

const cacheEntryLen = 8 + 8 + 32 + 20

func encodeCacheEntry(e CacheEntry) []byte {
	buf := make([]byte, cacheEntryLen)
	binary.BigEndian.PutUint64(buf[0:8], uint64(e.Size))
	binary.BigEndian.PutUint64(buf[8:16], uint64(e.ModTime))
	copy(buf[16:48], e.Checksum[:])
	copy(buf[48:68], e.BlobID[:])
	return buf
}

func decodeCacheEntry(buf []byte) (CacheEntry, error) {
	var e CacheEntry
	if len(buf) != cacheEntryLen {
		return e, errors.New("malformed cache entry")
	}
	e.Size = int64(binary.BigEndian.Uint64(buf[0:8]))
	e.ModTime = int64(binary.BigEndian.Uint64(buf[8:16]))
	copy(e.Checksum[:], buf[16:48])
	copy(e.BlobID[:], buf[48:68])
	return e, nil
}

// PutBlobCache stores the cache entry for a workdir-relative path.
func (db *DB) PutBlobCache(path string, e CacheEntry) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketBlobCache).Put([]byte(path), encodeCacheEntry(e))
	})
}

// GetBlobCache loads the cache entry for a workdir-relative path.
func (db *DB) GetBlobCache(path string) (CacheEntry, error) {
	var entry CacheEntry
	err := db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(BucketBlobCache).Get([]byte(path))
		if v == nil {
			return ErrNotFound
		}
		var derr error
		entry, derr = decodeCacheEntry(v)
		return derr
	})
	return entry, err
}
