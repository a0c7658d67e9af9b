package session

import (
	"log/slog"

	"github.com/filedex/filedex/internal/engine"
	"github.com/filedex/filedex/internal/state"
)

// WriteSession stages mutations against the state store and the search
// engine as one logical unit of work. It owns exactly one uncommitted
// store transaction and one uncommitted engine writer; staged operations
// are invisible to read sessions until Commit. The session is single-use:
// Commit or Rollback consumes it.
type WriteSession struct {
	txn    *state.WriteTxn
	writer *engine.Writer
	log    *slog.Logger
}

// Add brings the index up to date for path. Unchanged files cost one
// metadata probe; spurious mtime bumps cost one content read and update
// only the stored epoch; real changes replace the document and upsert
// the stored state. A failure aborts only this operation, the session
// stays usable.
func (s *WriteSession) Add(path string) error {
	prior, err := s.txn.Get(path)
	if err != nil {
		return err
	}

	change, err := Detect(path, prior)
	if err != nil {
		return err
	}

	s.log.Debug("session_add",
		slog.String("path", path),
		slog.String("decision", change.Decision.String()))

	switch change.Decision {
	case DecisionSkip:
		return nil
	case DecisionMetadataOnly:
		return s.txn.Put(path, state.FileState{Epoch: change.Epoch, Hash: change.Hash})
	default:
		s.writer.Delete(path)
		if err := s.writer.Add(path, change.Content); err != nil {
			return err
		}
		return s.txn.Put(path, state.FileState{Epoch: change.Epoch, Hash: change.Hash})
	}
}

// Remove stages a delete of path from both stores. Removing a path that
// was never indexed is not an error.
func (s *WriteSession) Remove(path string) error {
	s.log.Debug("session_remove", slog.String("path", path))
	s.writer.Delete(path)
	return s.txn.Delete(path)
}

// Clear stages the removal of every entry visible in this transaction,
// staged mutations included, and a delete-all on the engine writer.
func (s *WriteSession) Clear() error {
	keys, err := s.txn.Keys()
	if err != nil {
		return err
	}

	s.log.Debug("session_clear", slog.Int("entries", len(keys)))

	for _, key := range keys {
		if err := s.txn.Delete(key); err != nil {
			return err
		}
	}
	return s.writer.DeleteAll()
}

// Commit persists the engine writer first, then the store transaction,
// and consumes the session. The two commits are sequential, not atomic:
// if the engine commit succeeds and the store commit fails the stores
// are left divergent, accepted as best-effort. If the engine commit
// fails the store transaction is rolled back.
func (s *WriteSession) Commit() error {
	if err := s.writer.Commit(); err != nil {
		_ = s.txn.Rollback()
		return err
	}
	return s.txn.Commit()
}

// Rollback discards all staged operations and consumes the session.
func (s *WriteSession) Rollback() error {
	s.writer.Rollback()
	return s.txn.Rollback()
}
