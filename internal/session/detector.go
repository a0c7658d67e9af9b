package session

import (
	"github.com/filedex/filedex/internal/fingerprint"
	"github.com/filedex/filedex/internal/state"
)

// Decision is the outcome of change detection for one path.
type Decision int

const (
	// DecisionSkip: stored epoch equals current epoch, content assumed
	// unchanged; only a metadata probe was performed.
	DecisionSkip Decision = iota

	// DecisionMetadataOnly: epoch differs but the content hash matches,
	// e.g. after a copy or restore bumped the mtime; only the stored
	// epoch needs updating.
	DecisionMetadataOnly

	// DecisionReindex: no stored state, or the hash differs; the
	// document must be replaced and the state upserted.
	DecisionReindex
)

// String returns the decision name for logging.
func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionMetadataOnly:
		return "metadata-only"
	case DecisionReindex:
		return "reindex"
	default:
		return "unknown"
	}
}

// Change carries a detection decision together with the probed file
// state. Content is populated only for DecisionReindex; the other
// outcomes never need it.
type Change struct {
	Decision Decision
	Epoch    int64
	Hash     uint64
	Content  string
}

// Detect decides how to bring the index up to date for path given its
// stored state (nil when the path was never indexed).
//
// The epoch comparison is an O(1) short-circuit for the common unchanged
// case; across N unchanged files this performs N metadata probes and
// zero content reads. The hash comparison guards against spurious mtime
// changes without paying for a reindex.
func Detect(path string, prior *state.FileState) (Change, error) {
	epoch, err := fingerprint.Epoch(path)
	if err != nil {
		return Change{}, err
	}

	if prior != nil && prior.Epoch == epoch {
		return Change{Decision: DecisionSkip, Epoch: epoch, Hash: prior.Hash}, nil
	}

	content, hash, err := fingerprint.ReadFile(path)
	if err != nil {
		return Change{}, err
	}

	if prior != nil && prior.Hash == hash {
		return Change{Decision: DecisionMetadataOnly, Epoch: epoch, Hash: hash}, nil
	}

	return Change{Decision: DecisionReindex, Epoch: epoch, Hash: hash, Content: content}, nil
}
