package session

import (
	"github.com/filedex/filedex/internal/engine"
	"github.com/filedex/filedex/internal/state"
)

// Entry is one indexed file as reported by List.
type Entry struct {
	Path  string `json:"path"`
	Epoch int64  `json:"epoch"`
	Hash  uint64 `json:"hash"`
}

// ReadSession is a point-in-time view over the committed state of both
// stores. It never mutates anything and must be Closed to release its
// store transaction.
type ReadSession struct {
	txn    *state.ReadTxn
	reader *engine.Reader
}

// List returns every file state entry in the store's native iteration
// order (byte-sorted keys, not insertion order).
func (s *ReadSession) List() ([]Entry, error) {
	entries := make([]Entry, 0)
	err := s.txn.ForEach(func(path string, fs state.FileState) error {
		entries = append(entries, Entry{Path: path, Epoch: fs.Epoch, Hash: fs.Hash})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Search runs a ranked top-K full-text query over the content field.
func (s *ReadSession) Search(query string, limit int) ([]engine.Hit, error) {
	return s.reader.Search(query, limit)
}

// Close releases the underlying store transaction.
func (s *ReadSession) Close() error {
	return s.txn.Rollback()
}
