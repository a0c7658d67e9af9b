// Package fingerprint provides cheap change-detection signals for files:
// the last-modification epoch and a fast 64-bit content hash.
//
// The hash is collision-tolerant by design. It guards against spurious
// mtime changes, not against adversarial content.
package fingerprint

import (
	"os"

	"github.com/cespare/xxhash/v2"

	dexerrors "github.com/filedex/filedex/internal/errors"
)

// Sum64 returns the 64-bit XXH64 fingerprint of the given bytes.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Epoch returns the file's last-modification time in milliseconds since
// the Unix epoch.
func Epoch(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, dexerrors.Wrap(dexerrors.ErrCodeFileAccess, err)
	}
	return info.ModTime().UnixMilli(), nil
}

// ReadFile reads the file's content and returns it together with its hash.
func ReadFile(path string) (string, uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, dexerrors.Wrap(dexerrors.ErrCodeFileRead, err)
	}
	return string(data), Sum64(data), nil
}
