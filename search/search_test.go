package search

import (
	"reflect"
	"sync"
	"testing"

	"github.com/toolbridge/connectorkit/model"
)

func vaultRecords() []model.Record {
	return []model.Record{
		{"title": "WiFi Password", "category": "PASSWORD"},
		{"title": "GitHub Login", "category": "LOGIN"},
		{"title": "Home WiFi", "category": "SECURE_NOTE"},
	}
}

func mustCreateIndex(t *testing.T, records []model.Record, opts ...Option) *Index {
	t.Helper()
	idx, err := CreateIndex(records, opts...)
	if err != nil {
		t.Fatalf("CreateIndex() error = %v, want nil", err)
	}
	return idx
}

func TestSearch_VaultScenario(t *testing.T) {
	records := vaultRecords()
	idx := mustCreateIndex(t, records, WithMaxResults(20), WithThreshold(0.1))

	hits := idx.Search("wifi")
	if len(hits) != 2 {
		t.Fatalf("Search(%q) returned %d hits, want 2", "wifi", len(hits))
	}

	// Both hits score identically (exact title token), so input order decides.
	if title, _ := hits[0].Item.GetTitle(); title != "WiFi Password" {
		t.Errorf("hits[0].Item title = %q, want %q", title, "WiFi Password")
	}
	if title, _ := hits[1].Item.GetTitle(); title != "Home WiFi" {
		t.Errorf("hits[1].Item title = %q, want %q", title, "Home WiFi")
	}

	for i, hit := range hits {
		if title, _ := hit.Item.GetTitle(); title == "GitHub Login" {
			t.Errorf("hits[%d] is %q, which must not match %q", i, title, "wifi")
		}
		if hit.Score < 0.1 {
			t.Errorf("hits[%d].Score = %g, want >= threshold 0.1", i, hit.Score)
		}
	}
}

func TestSearch_EmptyAndWhitespaceQueries(t *testing.T) {
	idx := mustCreateIndex(t, vaultRecords())

	for _, query := range []string{"", "   ", "\t\n", "!!! ???"} {
		hits := idx.Search(query)
		if len(hits) != 0 {
			t.Errorf("Search(%q) returned %d hits, want 0 (never all records)", query, len(hits))
		}
	}
}

func TestSearch_NoMatchIsEmptyNotError(t *testing.T) {
	idx := mustCreateIndex(t, vaultRecords())

	hits := idx.Search("zzzqqqxxx")
	if hits == nil {
		t.Fatal("Search() returned nil, want empty non-nil slice")
	}
	if len(hits) != 0 {
		t.Errorf("Search() returned %d hits, want 0", len(hits))
	}
}

func TestSearch_MaxResultsTruncation(t *testing.T) {
	records := make([]model.Record, 30)
	for i := range records {
		records[i] = model.Record{"title": "shared token"}
	}
	idx := mustCreateIndex(t, records, WithMaxResults(7))

	hits := idx.Search("shared")
	if len(hits) != 7 {
		t.Errorf("Search() returned %d hits, want exactly maxResults=7", len(hits))
	}
}

func TestSearch_ScoresNonIncreasingAndTiesStable(t *testing.T) {
	records := []model.Record{
		{"title": "backup codes", "marker": "first"},
		{"notes": "rotate the backup codes yearly", "marker": "second"},
		{"title": "backup codes", "marker": "third"},
		{"title": "unrelated entry", "marker": "fourth"},
	}
	idx := mustCreateIndex(t, records, WithThreshold(0.1))

	hits := idx.Search("backup codes")
	if len(hits) != 3 {
		t.Fatalf("Search() returned %d hits, want 3", len(hits))
	}

	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores increase at position %d: %g > %g", i, hits[i].Score, hits[i-1].Score)
		}
	}

	// Records one and three are identical in searchable content; input order
	// must break the tie.
	first, _ := hits[0].Item.GetString("marker")
	second, _ := hits[1].Item.GetString("marker")
	if first != "first" || second != "third" {
		t.Errorf("tie order = (%q, %q), want (%q, %q)", first, second, "first", "third")
	}

	// The body-only match ranks below the two title matches.
	last, _ := hits[2].Item.GetString("marker")
	if last != "second" {
		t.Errorf("hits[2] marker = %q, want %q", last, "second")
	}
}

func TestSearch_Idempotence(t *testing.T) {
	idx := mustCreateIndex(t, vaultRecords())

	first := idx.Search("wifi password")
	second := idx.Search("wifi password")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Search() calls differ:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestSearch_ThresholdMonotonicity(t *testing.T) {
	records := []model.Record{
		{"title": "WiFi Password"},
		{"notes": "the wifi at the office"},
		{"title": "wifii router admin"}, // one-typo neighbour
		{"title": "GitHub Login"},
	}

	query := "wifi"
	prevCount := -1
	for _, threshold := range []float64{0, 0.1, 0.3, 0.5, 0.8, 1.0} {
		idx := mustCreateIndex(t, records, WithThreshold(threshold))
		count := len(idx.Search(query))
		if prevCount >= 0 && count > prevCount {
			t.Errorf("raising threshold to %g increased result count: %d -> %d", threshold, prevCount, count)
		}
		prevCount = count
	}
}

func TestSearch_VerbatimTokenAlwaysSurfaces(t *testing.T) {
	records := []model.Record{
		{"title": "WiFi Password"},
		{"category": "wifi"},
		{"notes": []interface{}{"guest", "wifi", "voucher"}},
		{"title": "GitHub Login"},
	}
	idx := mustCreateIndex(t, records, WithThreshold(0), WithMaxResults(len(records)))

	hits := idx.Search("wifi")

	containing := map[int]bool{0: true, 1: true, 2: true}
	matched := 0
	for _, hit := range hits {
		for i, rec := range records {
			if containing[i] && reflect.ValueOf(hit.Item).Pointer() == reflect.ValueOf(rec).Pointer() {
				matched++
			}
		}
	}
	if matched != len(containing) {
		t.Errorf("records containing the query token verbatim: %d surfaced, want %d", matched, len(containing))
	}
}

func TestSearch_ZeroThresholdKeepsZeroScores(t *testing.T) {
	// At threshold 0 nothing is strictly below the threshold, so even
	// non-matching records stay in the (score-ordered) result.
	idx := mustCreateIndex(t, vaultRecords(), WithThreshold(0), WithMaxResults(100))

	hits := idx.Search("wifi")
	if len(hits) != 3 {
		t.Errorf("Search() at threshold 0 returned %d hits, want all 3 records", len(hits))
	}
	if hits[len(hits)-1].Score != 0 {
		t.Errorf("lowest hit score = %g, want 0 for the non-matching record", hits[len(hits)-1].Score)
	}
}

func TestSearch_SubstringMatch(t *testing.T) {
	idx := mustCreateIndex(t, vaultRecords())

	hits := idx.Search("pass")
	if len(hits) != 1 {
		t.Fatalf("Search(%q) returned %d hits, want 1", "pass", len(hits))
	}
	if title, _ := hits[0].Item.GetTitle(); title != "WiFi Password" {
		t.Errorf("hits[0] title = %q, want %q", title, "WiFi Password")
	}
	if hits[0].Score >= exactMatchValue {
		t.Errorf("substring hit score = %g, want < %g (exact match value)", hits[0].Score, exactMatchValue)
	}
}

func TestSearch_TypoTolerance(t *testing.T) {
	idx := mustCreateIndex(t, vaultRecords())

	// "pasword" is one edit away from "password" and long enough for the
	// fuzzy bonus; it must still surface the record at the 0.1 threshold.
	hits := idx.Search("pasword")
	if len(hits) != 1 {
		t.Fatalf("Search(%q) returned %d hits, want 1", "pasword", len(hits))
	}
	if title, _ := hits[0].Item.GetTitle(); title != "WiFi Password" {
		t.Errorf("hits[0] title = %q, want %q", title, "WiFi Password")
	}
}

func TestSearch_ShortTokensNeedExactMatch(t *testing.T) {
	records := []model.Record{
		{"title": "Go SDK key"},
		{"title": "Rust SDK key"},
	}
	idx := mustCreateIndex(t, records)

	// "go" is below the fuzzy length gate, so it must not typo-match "rust"
	// or anything else; only the exact token matches.
	hits := idx.Search("go")
	if len(hits) != 1 {
		t.Fatalf("Search(%q) returned %d hits, want 1", "go", len(hits))
	}
	if title, _ := hits[0].Item.GetTitle(); title != "Go SDK key" {
		t.Errorf("hits[0] title = %q, want %q", title, "Go SDK key")
	}
}

func TestSearch_IdentityFieldsOutrankBodyText(t *testing.T) {
	records := []model.Record{
		{"notes": "rotate backup keys", "marker": "body"},
		{"title": "backup", "marker": "identity"},
	}
	idx := mustCreateIndex(t, records, WithThreshold(0.1))

	hits := idx.Search("backup")
	if len(hits) != 2 {
		t.Fatalf("Search() returned %d hits, want 2", len(hits))
	}
	top, _ := hits[0].Item.GetString("marker")
	if top != "identity" {
		t.Errorf("top hit marker = %q, want %q (title match outranks body match)", top, "identity")
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("identity score %g not greater than body score %g", hits[0].Score, hits[1].Score)
	}
}

func TestSearch_PartialCoverageScoresLower(t *testing.T) {
	records := []model.Record{
		{"title": "WiFi Password"},
		{"title": "WiFi"},
	}
	idx := mustCreateIndex(t, records, WithThreshold(0.1))

	hits := idx.Search("wifi password")
	if len(hits) != 2 {
		t.Fatalf("Search() returned %d hits, want 2", len(hits))
	}
	if title, _ := hits[0].Item.GetTitle(); title != "WiFi Password" {
		t.Errorf("top hit = %q, want the record covering both query tokens", title)
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("full coverage score %g not greater than partial coverage score %g", hits[0].Score, hits[1].Score)
	}
}

func TestSearch_ReturnsOriginalRecordReference(t *testing.T) {
	record := model.Record{"title": "WiFi Password", "category": "PASSWORD", "id": "item-42"}
	idx := mustCreateIndex(t, []model.Record{record})

	hits := idx.Search("wifi")
	if len(hits) != 1 {
		t.Fatalf("Search() returned %d hits, want 1", len(hits))
	}

	if reflect.ValueOf(hits[0].Item).Pointer() != reflect.ValueOf(record).Pointer() {
		t.Error("hit.Item is not the caller's original record")
	}
	if id, _ := hits[0].Item.GetString("id"); id != "item-42" {
		t.Errorf("untouched field id = %q, want %q", id, "item-42")
	}
}

func TestSearch_ConcurrentQueriesAreSafe(t *testing.T) {
	idx := mustCreateIndex(t, vaultRecords())
	want := idx.Search("wifi")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := idx.Search("wifi")
			if !reflect.DeepEqual(got, want) {
				t.Errorf("concurrent Search() diverged: got %v, want %v", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestSearch_ScoresStayWithinUnitRange(t *testing.T) {
	idx := mustCreateIndex(t, vaultRecords(), WithThreshold(0))

	for _, query := range []string{"wifi", "wifi password login github", "pasword", "w"} {
		for _, hit := range idx.Search(query) {
			if hit.Score < 0 || hit.Score > 1 {
				t.Errorf("Search(%q) produced out-of-range score %g", query, hit.Score)
			}
		}
	}
}
