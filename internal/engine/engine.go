// Package engine binds the full-text search engine (Bleve) behind the
// narrow write-session/read-session surface the core needs. Documents
// carry two fields: an exact-match stored path (also the document ID and
// deletion key) and the analyzed stored content.
package engine

import (
	"fmt"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	dexerrors "github.com/filedex/filedex/internal/errors"
)

const (
	// IndexDirname is the index directory inside the data directory.
	IndexDirname = "index"

	// Field names of the two-field schema.
	FieldPath    = "path"
	FieldContent = "content"

	// contentAnalyzerName is the analyzer applied to the content field:
	// unicode tokenization plus lowercasing, no stop words, so every
	// token of the stored text stays searchable and highlightable.
	contentAnalyzerName = "content_analyzer"
)

// Document is the indexed representation of one file.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Engine is the process-wide handle to the full-text index.
type Engine struct {
	index bleve.Index
}

// Open opens or creates the index under dir.
func Open(dir string) (*Engine, error) {
	indexPath := filepath.Join(dir, IndexDirname)

	idx, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		var m *mapping.IndexMappingImpl
		m, err = buildMapping()
		if err == nil {
			idx, err = bleve.New(indexPath, m)
		}
	}
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeIndexOpen, err)
	}

	return &Engine{index: idx}, nil
}

// Close closes the index.
func (e *Engine) Close() error {
	return e.index.Close()
}

// DocCount returns the number of committed documents.
func (e *Engine) DocCount() (uint64, error) {
	n, err := e.index.DocCount()
	if err != nil {
		return 0, dexerrors.Wrap(dexerrors.ErrCodeIndexRead, err)
	}
	return n, nil
}

// NewWriter opens a write session. Staged operations stay invisible to
// readers until Commit.
func (e *Engine) NewWriter() *Writer {
	return &Writer{
		index: e.index,
		batch: e.index.NewBatch(),
	}
}

// NewReader opens a read session over the committed state of the index.
func (e *Engine) NewReader() (*Reader, error) {
	analyzer := e.index.Mapping().AnalyzerNamed(contentAnalyzerName)
	if analyzer == nil {
		return nil, dexerrors.New(dexerrors.ErrCodeIndexRead,
			fmt.Sprintf("analyzer %q not registered in index mapping", contentAnalyzerName), nil)
	}
	return &Reader{index: e.index, analyzer: analyzer}, nil
}

// buildMapping constructs the two-field schema.
func buildMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	err := im.AddCustomAnalyzer(contentAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add content analyzer: %w", err)
	}

	pathField := bleve.NewTextFieldMapping()
	pathField.Analyzer = keyword.Name
	pathField.Store = true
	pathField.IncludeInAll = false

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = contentAnalyzerName
	contentField.Store = true
	contentField.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldPath, pathField)
	doc.AddFieldMappingsAt(FieldContent, contentField)

	im.DefaultMapping = doc
	im.DefaultField = FieldContent
	im.DefaultAnalyzer = contentAnalyzerName

	return im, nil
}

// tokenize runs text through the content analyzer.
func tokenize(analyzer analysis.Analyzer, text string) analysis.TokenStream {
	return analyzer.Analyze([]byte(text))
}
