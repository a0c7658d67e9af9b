package engine

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/search/query"

	dexerrors "github.com/filedex/filedex/internal/errors"
)

// Span is a half-open byte-offset range into a document's content.
// It serializes as a two-element array, e.g. [4,9].
type Span struct {
	Start int
	End   int
}

// MarshalJSON encodes the span as [start,end].
func (s Span) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%d]", s.Start, s.End)), nil
}

// Hit is one search result. Fragments maps each matched query term
// (lowercase) to the byte ranges of its occurrences in the content, in
// token-stream order.
type Hit struct {
	Path      string            `json:"path"`
	Score     float64           `json:"score"`
	Fragments map[string][]Span `json:"fragments"`
}

// Reader is a read session over the committed state of the index.
type Reader struct {
	index    bleve.Index
	analyzer analysis.Analyzer
}

// Search parses queryStr against the content field, runs top-K retrieval
// ranked by the engine's relevance score and computes highlight fragments
// by re-tokenizing each hit's stored content.
func (r *Reader) Search(queryStr string, limit int) ([]Hit, error) {
	parsed, err := query.NewQueryStringQuery(queryStr).Parse()
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeQueryParse, err)
	}

	terms := make(map[string]struct{})
	collectTerms(parsed, r.analyzer, terms)

	req := bleve.NewSearchRequest(parsed)
	req.Size = limit
	req.Fields = []string{FieldPath, FieldContent}

	result, err := r.index.Search(req)
	if err != nil {
		return nil, dexerrors.Wrap(dexerrors.ErrCodeIndexRead, err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, match := range result.Hits {
		path, ok := match.Fields[FieldPath].(string)
		if !ok || path == "" {
			// A hit without a retrievable path cannot be reported
			continue
		}

		fragments := make(map[string][]Span)
		if content, ok := match.Fields[FieldContent].(string); ok {
			for _, token := range tokenize(r.analyzer, content) {
				term := string(token.Term)
				if _, wanted := terms[term]; wanted {
					fragments[term] = append(fragments[term], Span{Start: token.Start, End: token.End})
				}
			}
		}

		hits = append(hits, Hit{
			Path:      path,
			Score:     match.Score,
			Fragments: fragments,
		})
	}

	return hits, nil
}
