package cache

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	indexFileName = "index.db"
	indexBucket   = "artifacts"
)

// Index is an advisory catalog of published artifacts, stored in a
// BoltDB file at the cache root. It exists so operators can list and
// size the cache without walking the tree; the filesystem check of
// out/<binary> stays authoritative and nothing consults the index when
// deciding cache-hit vs. rebuild.
type Index struct {
	db *bbolt.DB
}

// IndexEntry describes one published artifact.
type IndexEntry struct {
	Service string    `json:"service"`
	Key     string    `json:"key"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Commit  string    `json:"commit"`
	Dirty   bool      `json:"dirty"`
	BuiltAt time.Time `json:"built_at"`
}

// OpenIndex opens (creating if needed) the index database under
// cacheRoot.
func OpenIndex(cacheRoot string) (*Index, error) {
	dbPath := filepath.Join(cacheRoot, indexFileName)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache index: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(indexBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index bucket: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the index database.
func (ix *Index) Close() error {
	if ix.db != nil {
		return ix.db.Close()
	}

	return nil
}

// Put records a published artifact, replacing any previous record for
// the same (service, key).
func (ix *Index) Put(e IndexEntry) error {
	return ix.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(indexBucket))

		data, err := json.Marshal(e)
		if err != nil {
			return err
		}

		return b.Put([]byte(e.Service+"/"+e.Key), data)
	})
}

// List returns all recorded artifacts, newest first.
func (ix *Index) List() ([]IndexEntry, error) {
	var entries []IndexEntry

	err := ix.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(indexBucket))

		return b.ForEach(func(_, v []byte) error {
			var e IndexEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}

			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].BuiltAt.After(entries[j].BuiltAt)
	})

	return entries, nil
}

// Stats returns the number of recorded artifacts and their total size
// in bytes.
func (ix *Index) Stats() (int, int64, error) {
	entries, err := ix.List()
	if err != nil {
		return 0, 0, err
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}

	return len(entries), total, nil
}
