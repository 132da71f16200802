package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/toolbridge/connectorkit/internal/tokenizer"
	"github.com/toolbridge/connectorkit/internal/typoutil"
)

// Match values per query token. Exact token hits dominate, substring hits
// cover prefix/partial typing, and near-miss tokens get a smaller
// edit-distance bonus so minor misspellings still clear a low threshold.
const (
	exactMatchValue     = 1.0
	substringMatchValue = 0.75
	oneTypoMatchValue   = 0.5
	twoTypoMatchValue   = 0.3

	// bodyFieldWeight slightly discounts matches outside the identity fields
	// (title/name) so that, at equal coverage, items matched by name rank
	// ahead of items matched somewhere in their bulk text.
	bodyFieldWeight = 0.9

	// minQueryTokenSizeForSubstring keeps one-character query tokens from
	// substring-matching practically everything.
	minQueryTokenSizeForSubstring = 2

	minWordSizeFor1Typo  = 4
	minWordSizeFor2Typos = 7
)

// Search tokenizes the query with the same normalizer used at index-build
// time, scores every record, and returns hits sorted by descending score.
// Ties keep the records' original input order, the sequence never exceeds
// the configured maxResults, and every returned score is >= the threshold.
//
// An empty or whitespace-only query returns an empty slice, never all
// records. No-match is an empty slice, not an error; repeated calls with the
// same query yield identical output.
func (idx *Index) Search(query string) []Hit {
	queryTokens := distinctTokens(tokenizer.Tokenize(query))
	if len(queryTokens) == 0 {
		return []Hit{}
	}

	hits := make([]Hit, 0)
	for _, entry := range idx.entries {
		score := scoreRecord(queryTokens, entry)
		if score < idx.threshold {
			continue
		}
		hits = append(hits, Hit{Item: entry.record, Score: score})
	}

	// Entries were appended in input order, so a stable sort preserves that
	// order for equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > idx.maxResults {
		hits = hits[:idx.maxResults]
	}
	return hits
}

// distinctTokens deduplicates tokens while preserving first-seen order.
func distinctTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	distinct := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		distinct = append(distinct, token)
	}
	return distinct
}

// scoreRecord computes the relevance of one record: the best match value of
// each distinct query token, averaged over the distinct query tokens. The
// result is always within [0, 1].
func scoreRecord(queryTokens []string, entry recordEntry) float64 {
	if len(entry.terms) == 0 {
		return 0
	}

	total := 0.0
	for _, queryToken := range queryTokens {
		total += bestMatchValue(queryToken, entry)
	}
	return total / float64(len(queryTokens))
}

// bestMatchValue finds the strongest way a single query token matches the
// record's token set. Iteration over the term map is unordered, but the
// maximum over it is deterministic.
func bestMatchValue(queryToken string, entry recordEntry) float64 {
	best := 0.0
	if _, ok := entry.terms[queryToken]; ok {
		best = exactMatchValue * entry.weightFor(queryToken)
	}

	maxTypos := 0
	switch queryLen := utf8.RuneCountInString(queryToken); {
	case queryLen >= minWordSizeFor2Typos:
		maxTypos = 2
	case queryLen >= minWordSizeFor1Typo:
		maxTypos = 1
	}

	allowSubstring := len(queryToken) >= minQueryTokenSizeForSubstring

	for term := range entry.terms {
		if term == queryToken {
			continue
		}

		raw := 0.0
		if allowSubstring && strings.Contains(term, queryToken) {
			raw = substringMatchValue
		}
		if raw < oneTypoMatchValue && maxTypos > 0 {
			dist := typoutil.CalculateDamerauLevenshteinDistanceWithLimit(queryToken, term, maxTypos)
			if dist == 1 {
				raw = oneTypoMatchValue
			} else if dist == 2 && maxTypos >= 2 && raw < twoTypoMatchValue {
				raw = twoTypoMatchValue
			}
		}
		if raw == 0 {
			continue
		}

		if weighted := raw * entry.weightFor(term); weighted > best {
			best = weighted
		}
	}

	return best
}

// weightFor returns the scoring weight of a record token based on whether it
// appeared in an identity field.
func (e recordEntry) weightFor(token string) float64 {
	if _, ok := e.identity[token]; ok {
		return 1.0
	}
	return bodyFieldWeight
}
