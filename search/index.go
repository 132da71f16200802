// Package search provides the in-process lexical ranking index used by
// connector tool handlers: build an Index once from a batch of records
// fetched upstream, then run any number of free-text queries against it.
// The Index is immutable after construction and safe for concurrent use.
package search

import (
	"github.com/toolbridge/connectorkit/internal/tokenizer"
	"github.com/toolbridge/connectorkit/model"
)

// identityFields are the conventional "what is this item called" fields.
// Tokens found in them carry full weight during scoring; everything else in
// the record is treated as bulk text with a slightly lower weight.
var identityFields = map[string]struct{}{
	"title": {},
	"name":  {},
}

// recordEntry is the derived, read-only projection of one record. It holds
// lightweight token data plus a reference back to the original record, never
// a mutated copy.
type recordEntry struct {
	record     model.Record
	terms      map[string]int      // token -> term frequency across all fields
	identity   map[string]struct{} // tokens that appeared in an identity field
	tokenCount int
	position   int // original input position, used for deterministic tie-breaks
}

// Index is an immutable collection of tokenized records plus the search
// configuration they were indexed under. Build it with CreateIndex; queries
// never mutate it, so one Index can serve concurrent searches without
// external locking.
type Index struct {
	entries    []recordEntry
	maxResults int
	threshold  float64
}

// Hit pairs a matching record with its relevance score in [0, 1].
// Item is the caller's original record, returned by reference so fields the
// search never touched (ids, categories, ...) stay readable.
type Hit struct {
	Item  model.Record `json:"item"`
	Score float64      `json:"score"`
}

// CreateIndex tokenizes every record and returns an immutable Index over
// them. Records are borrowed, not copied: the index stores derived token
// data plus a reference to each original record.
//
// It fails with a ConfigurationError when maxResults is not positive, the
// threshold is outside [0, 1], or the record count exceeds the construction
// bound. A record whose value cannot be flattened to text (e.g., a cyclic
// structure) is indexed with an empty token set instead of aborting the
// build, so one bad record cannot deny search over the rest.
func CreateIndex(records []model.Record, opts ...Option) (*Index, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(records) > maxIndexableRecords {
		return nil, NewConfigurationError("records",
			"record count exceeds the maximum indexable collection size")
	}

	entries := make([]recordEntry, 0, len(records))
	for position, record := range records {
		entries = append(entries, buildEntry(record, position))
	}

	return &Index{
		entries:    entries,
		maxResults: o.maxResults,
		threshold:  o.threshold,
	}, nil
}

// buildEntry computes the token projection of a single record. Field values
// are flattened recursively to leaf text; field names themselves are not
// indexed.
func buildEntry(record model.Record, position int) recordEntry {
	entry := recordEntry{
		record:   record,
		terms:    make(map[string]int),
		identity: make(map[string]struct{}),
		position: position,
	}

	for fieldName, fieldValue := range record {
		text, ok := tokenizer.Flatten(fieldValue)
		if !ok {
			// Malformed record: drop everything gathered so far and index it
			// with an empty token set. It stays in the index but can only be
			// reached at a zero threshold.
			entry.terms = make(map[string]int)
			entry.identity = make(map[string]struct{})
			entry.tokenCount = 0
			return entry
		}
		if text == "" {
			continue
		}

		tokens := tokenizer.Tokenize(text)
		_, isIdentity := identityFields[fieldName]
		for _, token := range tokens {
			entry.terms[token]++
			entry.tokenCount++
			if isIdentity {
				entry.identity[token] = struct{}{}
			}
		}
	}

	return entry
}

// Len returns the number of records held by the index, including records
// that yielded no tokens.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// MaxResults returns the configured result cap.
func (idx *Index) MaxResults() int {
	return idx.maxResults
}

// Threshold returns the configured minimum relevance score.
func (idx *Index) Threshold() float64 {
	return idx.threshold
}
