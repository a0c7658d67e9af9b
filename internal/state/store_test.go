package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestWriteTxn_PutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)

	txn, err := store.BeginWrite()
	require.NoError(t, err)

	want := FileState{Epoch: 1_700_000_000_123, Hash: 0xdeadbeefcafe}
	require.NoError(t, txn.Put("/a/b.txt", want))

	// Own writes are visible inside the transaction
	got, err := txn.Get("/a/b.txt")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	require.NoError(t, txn.Commit())
}

func TestWriteTxn_StagedWritesInvisibleUntilCommit(t *testing.T) {
	store := newTestStore(t)

	txn, err := store.BeginWrite()
	require.NoError(t, err)
	require.NoError(t, txn.Put("/pending.txt", FileState{Epoch: 1, Hash: 2}))

	// bbolt allows one reader alongside the writer; the snapshot predates
	// the uncommitted writes.
	read, err := store.BeginRead()
	require.NoError(t, err)
	got, err := read.Get("/pending.txt")
	require.NoError(t, err)
	assert.Nil(t, got, "uncommitted write must not be visible")
	require.NoError(t, read.Rollback())

	require.NoError(t, txn.Commit())

	read, err = store.BeginRead()
	require.NoError(t, err)
	got, err = read.Get("/pending.txt")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, FileState{Epoch: 1, Hash: 2}, *got)
	require.NoError(t, read.Rollback())
}

func TestWriteTxn_RollbackDiscardsChanges(t *testing.T) {
	store := newTestStore(t)

	txn, err := store.BeginWrite()
	require.NoError(t, err)
	require.NoError(t, txn.Put("/kept.txt", FileState{Epoch: 10, Hash: 20}))
	require.NoError(t, txn.Commit())

	txn, err = store.BeginWrite()
	require.NoError(t, err)
	require.NoError(t, txn.Delete("/kept.txt"))
	require.NoError(t, txn.Put("/new.txt", FileState{Epoch: 30, Hash: 40}))
	require.NoError(t, txn.Rollback())

	read, err := store.BeginRead()
	require.NoError(t, err)
	defer func() { _ = read.Rollback() }()

	kept, err := read.Get("/kept.txt")
	require.NoError(t, err)
	assert.NotNil(t, kept, "rollback must restore the prior entry")

	gone, err := read.Get("/new.txt")
	require.NoError(t, err)
	assert.Nil(t, gone, "rolled-back insert must be absent")
}

func TestWriteTxn_DeleteAbsentKeyIsNoError(t *testing.T) {
	store := newTestStore(t)

	txn, err := store.BeginWrite()
	require.NoError(t, err)
	assert.NoError(t, txn.Delete("/never-indexed.txt"))
	require.NoError(t, txn.Commit())
}

func TestWriteTxn_KeysObserveOwnMutations(t *testing.T) {
	store := newTestStore(t)

	txn, err := store.BeginWrite()
	require.NoError(t, err)
	require.NoError(t, txn.Put("/committed.txt", FileState{Epoch: 1, Hash: 1}))
	require.NoError(t, txn.Commit())

	txn, err = store.BeginWrite()
	require.NoError(t, err)
	require.NoError(t, txn.Put("/staged.txt", FileState{Epoch: 2, Hash: 2}))
	require.NoError(t, txn.Delete("/committed.txt"))

	keys, err := txn.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"/staged.txt"}, keys)

	require.NoError(t, txn.Rollback())
}

func TestReadTxn_ForEachIteratesAllEntries(t *testing.T) {
	store := newTestStore(t)

	txn, err := store.BeginWrite()
	require.NoError(t, err)
	require.NoError(t, txn.Put("/b.txt", FileState{Epoch: 2, Hash: 20}))
	require.NoError(t, txn.Put("/a.txt", FileState{Epoch: 1, Hash: 10}))
	require.NoError(t, txn.Commit())

	read, err := store.BeginRead()
	require.NoError(t, err)
	defer func() { _ = read.Rollback() }()

	var paths []string
	err = read.ForEach(func(path string, fs FileState) error {
		paths = append(paths, path)
		return nil
	})
	require.NoError(t, err)
	// bbolt iterates in byte-sorted key order, not insertion order
	assert.Equal(t, []string{"/a.txt", "/b.txt"}, paths)
}

func TestOpen_SecondProcessStyleOpenTimesOut(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// The same file is exclusively locked by the first handle.
	_, err = Open(dir)
	assert.Error(t, err)
}

func TestCodec_FixedLayout(t *testing.T) {
	fs := FileState{Epoch: 0x0102030405060708, Hash: 0x1112131415161718}
	data := encodeFileState(fs)

	require.Len(t, data, recordSize)
	// 128-bit epoch slot: high half zero, low half big-endian epoch
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, data[:8])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, data[8:16])
	assert.Equal(t, []byte{0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18}, data[16:24])

	got, err := decodeFileState(data)
	require.NoError(t, err)
	assert.Equal(t, fs, got)
}

func TestCodec_TruncatedRecordFails(t *testing.T) {
	_, err := decodeFileState([]byte{1, 2, 3})
	require.Error(t, err)
}
