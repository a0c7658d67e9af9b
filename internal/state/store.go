// Package state provides the transactional key-value persistence for
// per-file change-detection records. Keys are UTF-8 path strings; values
// are fixed-layout FileState records. bbolt supplies the serializable
// transactions; this package only narrows its surface to what the
// sessions need.
package state

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	dexerrors "github.com/filedex/filedex/internal/errors"
)

const (
	// DBFilename is the state store file inside the data directory.
	DBFilename = "file_states.db"

	bucketName = "file_states"
)

// Store is the process-wide handle to the state database.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the state database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeStoreOpen, err)
	}

	db, err := bolt.Open(filepath.Join(dir, DBFilename), 0o600, &bolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeStoreOpen, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, dexerrors.Wrap(dexerrors.ErrCodeStoreOpen, err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRead opens a read-only transaction. The caller must Rollback it.
func (s *Store) BeginRead() (*ReadTxn, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeStoreTxn, err)
	}
	return &ReadTxn{tx: tx}, nil
}

// BeginWrite opens a writable transaction. The caller must Commit or
// Rollback it exactly once.
func (s *Store) BeginWrite() (*WriteTxn, error) {
	tx, err := s.db.Begin(true)
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeStoreTxn, err)
	}
	return &WriteTxn{tx: tx}, nil
}

// ReadTxn is a point-in-time read-only view of the state table.
type ReadTxn struct {
	tx *bolt.Tx
}

// Get returns the FileState for path, or nil if absent.
func (t *ReadTxn) Get(path string) (*FileState, error) {
	return get(t.tx, path)
}

// ForEach invokes fn for every entry in the store's native key order.
func (t *ReadTxn) ForEach(fn func(path string, fs FileState) error) error {
	return forEach(t.tx, fn)
}

// Rollback releases the transaction.
func (t *ReadTxn) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return dexerrors.Wrap(dexerrors.ErrCodeStoreTxn, err)
	}
	return nil
}

// WriteTxn is an uncommitted mutation set over the state table.
// Its own writes are visible to its reads; nothing is visible to other
// transactions until Commit.
type WriteTxn struct {
	tx *bolt.Tx
}

// Get returns the FileState for path as visible inside this transaction,
// or nil if absent.
func (t *WriteTxn) Get(path string) (*FileState, error) {
	return get(t.tx, path)
}

// Put upserts the FileState for path.
func (t *WriteTxn) Put(path string, fs FileState) error {
	if err := t.bucket().Put([]byte(path), encodeFileState(fs)); err != nil {
		return dexerrors.Wrap(dexerrors.ErrCodeStoreTxn, err)
	}
	return nil
}

// Delete removes the entry for path. Deleting an absent key is not an error.
func (t *WriteTxn) Delete(path string) error {
	if err := t.bucket().Delete([]byte(path)); err != nil {
		return dexerrors.Wrap(dexerrors.ErrCodeStoreTxn, err)
	}
	return nil
}

// Keys returns every key visible inside this transaction, staged
// mutations included.
func (t *WriteTxn) Keys() ([]string, error) {
	var keys []string
	err := t.bucket().ForEach(func(k, _ []byte) error {
		keys = append(keys, string(k))
		return nil
	})
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeStoreTxn, err)
	}
	return keys, nil
}

// ForEach invokes fn for every entry visible inside this transaction.
func (t *WriteTxn) ForEach(fn func(path string, fs FileState) error) error {
	return forEach(t.tx, fn)
}

// Commit durably applies the transaction.
func (t *WriteTxn) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return dexerrors.Wrap(dexerrors.ErrCodeStoreCommit, err)
	}
	return nil
}

// Rollback discards the transaction.
func (t *WriteTxn) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return dexerrors.Wrap(dexerrors.ErrCodeStoreTxn, err)
	}
	return nil
}

func (t *WriteTxn) bucket() *bolt.Bucket {
	return t.tx.Bucket([]byte(bucketName))
}

func get(tx *bolt.Tx, path string) (*FileState, error) {
	data := tx.Bucket([]byte(bucketName)).Get([]byte(path))
	if data == nil {
		return nil, nil
	}
	fs, err := decodeFileState(data)
	if err != nil {
		return nil, err
	}
	return &fs, nil
}

func forEach(tx *bolt.Tx, fn func(path string, fs FileState) error) error {
	err := tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
		fs, err := decodeFileState(v)
		if err != nil {
			return err
		}
		return fn(string(k), fs)
	})
	if err != nil {
		if _, ok := err.(*dexerrors.DexError); ok {
			return err
		}
		return dexerrors.Wrap(dexerrors.ErrCodeStoreTxn, err)
	}
	return nil
}
