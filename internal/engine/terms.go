package engine

import (
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/search/query"
)

// collectTerms walks a parsed query tree and gathers its literal leaf
// terms, lowercased, into the given set. Boolean and phrase structure is
// discarded; only the terms themselves remain, for highlighting. Match
// leaves are run through the content analyzer so the collected terms
// line up with indexed tokens.
func collectTerms(q query.Query, analyzer analysis.Analyzer, terms map[string]struct{}) {
	switch qt := q.(type) {
	case *query.BooleanQuery:
		if qt.Must != nil {
			collectTerms(qt.Must, analyzer, terms)
		}
		if qt.Should != nil {
			collectTerms(qt.Should, analyzer, terms)
		}
		if qt.MustNot != nil {
			collectTerms(qt.MustNot, analyzer, terms)
		}
	case *query.ConjunctionQuery:
		for _, sub := range qt.Conjuncts {
			collectTerms(sub, analyzer, terms)
		}
	case *query.DisjunctionQuery:
		for _, sub := range qt.Disjuncts {
			collectTerms(sub, analyzer, terms)
		}
	case *query.TermQuery:
		terms[strings.ToLower(qt.Term)] = struct{}{}
	case *query.PhraseQuery:
		for _, term := range qt.Terms {
			terms[strings.ToLower(term)] = struct{}{}
		}
	case *query.MatchQuery:
		addAnalyzed(qt.Match, analyzer, terms)
	case *query.MatchPhraseQuery:
		addAnalyzed(qt.MatchPhrase, analyzer, terms)
	case *query.PrefixQuery:
		terms[strings.ToLower(qt.Prefix)] = struct{}{}
	case *query.FuzzyQuery:
		terms[strings.ToLower(qt.Term)] = struct{}{}
	}
}

// addAnalyzed tokenizes raw match text and records each token term.
func addAnalyzed(text string, analyzer analysis.Analyzer, terms map[string]struct{}) {
	for _, token := range tokenize(analyzer, text) {
		terms[string(token.Term)] = struct{}{}
	}
}
