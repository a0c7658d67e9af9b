// Package session coordinates the two independently transactional
// back-ends, the full-text index and the state store, into one logical
// unit of work with commit and rollback.
package session

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/filedex/filedex/internal/config"
	"github.com/filedex/filedex/internal/engine"
	dexerrors "github.com/filedex/filedex/internal/errors"
	"github.com/filedex/filedex/internal/state"
)

// LockFilename guards the data directory against a second process.
const LockFilename = "LOCK"

// Manager holds the process-wide store and engine handles. It is
// constructed once at startup and passed explicitly to the shell.
type Manager struct {
	cfg    *config.Config
	store  *state.Store
	engine *engine.Engine
	lock   *flock.Flock
	log    *slog.Logger
}

// Open acquires the data directory lock and opens both back-ends.
// Any failure here is fatal: the caller must terminate before the
// command loop starts.
func Open(cfg *config.Config, log *slog.Logger) (*Manager, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeStoreOpen, err)
	}

	lock := flock.New(filepath.Join(cfg.DataDir, LockFilename))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeLockHeld, err)
	}
	if !acquired {
		return nil, dexerrors.New(dexerrors.ErrCodeLockHeld,
			"data directory is locked by another filedex process: "+cfg.DataDir, nil)
	}

	store, err := state.Open(cfg.DataDir)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	eng, err := engine.Open(cfg.DataDir)
	if err != nil {
		_ = store.Close()
		_ = lock.Unlock()
		return nil, err
	}

	log.Info("session_manager_opened", slog.String("data_dir", cfg.DataDir))

	return &Manager{
		cfg:    cfg,
		store:  store,
		engine: eng,
		lock:   lock,
		log:    log,
	}, nil
}

// SearchLimit returns the configured default top-K cap.
func (m *Manager) SearchLimit() int {
	return m.cfg.SearchLimit
}

// OpenWrite opens a write session: one store write transaction paired
// with one engine write session.
func (m *Manager) OpenWrite() (*WriteSession, error) {
	txn, err := m.store.BeginWrite()
	if err != nil {
		return nil, err
	}
	return &WriteSession{
		txn:    txn,
		writer: m.engine.NewWriter(),
		log:    m.log,
	}, nil
}

// OpenRead opens a read session: one store read transaction paired with
// one engine read session.
func (m *Manager) OpenRead() (*ReadSession, error) {
	reader, err := m.engine.NewReader()
	if err != nil {
		return nil, err
	}
	txn, err := m.store.BeginRead()
	if err != nil {
		return nil, err
	}
	return &ReadSession{txn: txn, reader: reader}, nil
}

// Close releases the engine, the store and the directory lock.
func (m *Manager) Close() error {
	var firstErr error
	if err := m.engine.Close(); err != nil {
		firstErr = err
	}
	if err := m.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = err
	}
	m.log.Info("session_manager_closed")
	return firstErr
}
