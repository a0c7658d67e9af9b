package engine

import (
	"github.com/blevesearch/bleve/v2"

	dexerrors "github.com/filedex/filedex/internal/errors"
)

// Writer is a single-use write session over the index. Mutations are
// staged in a batch and become visible only when Commit executes it;
// Rollback discards the staged operations.
type Writer struct {
	index bleve.Index
	batch *bleve.Batch
}

// Add stages an insert (or replacement) of the document for path.
// A staged delete for the same path is superseded.
func (w *Writer) Add(path, content string) error {
	doc := Document{Path: path, Content: content}
	if err := w.batch.Index(path, doc); err != nil {
		return dexerrors.Wrap(dexerrors.ErrCodeIndexWrite, err)
	}
	return nil
}

// Delete stages a delete of the document for path. Staging a delete for
// a path that was never indexed is not an error.
func (w *Writer) Delete(path string) {
	w.batch.Delete(path)
}

// DeleteAll discards previously staged operations and stages a delete
// for every committed document.
func (w *Writer) DeleteAll() error {
	ids, err := allDocIDs(w.index)
	if err != nil {
		return err
	}

	w.batch.Reset()
	for _, id := range ids {
		w.batch.Delete(id)
	}
	return nil
}

// Commit executes the staged batch, making it visible to readers.
func (w *Writer) Commit() error {
	if err := w.index.Batch(w.batch); err != nil {
		return dexerrors.Wrap(dexerrors.ErrCodeIndexCommit, err)
	}
	return nil
}

// Rollback discards all staged operations.
func (w *Writer) Rollback() {
	w.batch.Reset()
}

// allDocIDs enumerates every committed document ID with a match-all query.
func allDocIDs(index bleve.Index) ([]string, error) {
	docCount, err := index.DocCount()
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeIndexRead, err)
	}
	if docCount == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(docCount)
	req.Fields = []string{}

	result, err := index.Search(req)
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeIndexRead, err)
	}

	ids := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}
