package state

import (
	"encoding/binary"
	"fmt"

	dexerrors "github.com/filedex/filedex/internal/errors"
)

// FileState is the per-path change-detection record.
// It exists for a path iff a matching document exists in the search
// index, once the mutating session is committed.
type FileState struct {
	// Epoch is the file's last-modification time in ms since the Unix epoch.
	Epoch int64

	// Hash is the 64-bit content fingerprint.
	Hash uint64
}

// recordSize is the fixed on-disk value layout: a 128-bit epoch slot
// followed by a 64-bit hash, both big-endian. Millisecond timestamps fit
// in the low 64 bits; the high 64 bits stay zero. This is an internal
// encoding contract, not a public wire format.
const recordSize = 24

// encodeFileState serializes a FileState into the fixed record layout.
func encodeFileState(fs FileState) []byte {
	buf := make([]byte, recordSize)
	binary.BigEndian.PutUint64(buf[8:16], uint64(fs.Epoch))
	binary.BigEndian.PutUint64(buf[16:24], fs.Hash)
	return buf
}

// decodeFileState deserializes a fixed-layout record.
func decodeFileState(data []byte) (FileState, error) {
	if len(data) != recordSize {
		return FileState{}, dexerrors.New(dexerrors.ErrCodeStoreCodec,
			fmt.Sprintf("malformed file state record: got %d bytes, want %d", len(data), recordSize), nil)
	}
	return FileState{
		Epoch: int64(binary.BigEndian.Uint64(data[8:16])),
		Hash:  binary.BigEndian.Uint64(data[16:24]),
	}, nil
}
