package rigel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/kailas-cloud/rigel/index"
)

func TestAllQuery(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	results, err := plays.All().Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 plays, got %d", len(results))
	}
	want := []string{"play1", "play2", "play3", "play4"}
	if got := playIDs(t, results); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAllQuery_FilterAndLimit(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	results, err := plays.All().
		FilterBy(fSceneCount.AtLeast(5), fAuthor.EqualTo("Mc Roar, Malcolm")).
		Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := playIDs(t, results); !slices.Equal(got, []string{"play2", "play4"}) {
		t.Errorf("unexpected plays: %v", got)
	}

	limited, err := plays.All().Limit(1).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 play, got %d", len(limited))
	}
}

func TestAllQuery_OrAndNot(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	results, err := plays.All().
		FilterBy(Or(fSceneCount.EqualTo(2), fSceneCount.EqualTo(6)), Not(fID.EqualTo("play4"))).
		Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := playIDs(t, results); !slices.Equal(got, []string{"play3"}) {
		t.Errorf("unexpected plays: %v", got)
	}
}

func TestIDQuery(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	op, err := plays.ID("play1").Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	play, ok := op.Get()
	if !ok {
		t.Fatal("expected play1 to be present")
	}
	if id, _ := play.ID(); id != "play1" {
		t.Errorf("expected play1, got %s", id)
	}
	if play.SchemaName() != "play" {
		t.Errorf("expected schema play, got %s", play.SchemaName())
	}
}

func TestIDQuery_Missing(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	op, err := plays.ID("somethingMadeUp").Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.IsPresent() {
		t.Error("expected absent result")
	}
}

func TestIDQuery_ExactIdentifier(t *testing.T) {
	c, err := New(WithMemory(
		index.Document{"id": "King Lear", "type": "play"},
		index.Document{"id": "a:b (c) [d]", "type": "play"},
		index.Document{"id": `say "hi"`, "type": "play"},
		index.Document{"id": "007", "type": "play"},
	))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	plays := Repository(c, playSchema)

	tests := []struct {
		id      string
		present bool
	}{
		{"King Lear", true},
		{"lear", false},
		{"King", false},
		{"king lear", false},
		{"a:b (c) [d]", true},
		{"a:b", false},
		{`say "hi"`, true},
		{"007", true},
		{"7", false},
	}
	for _, tt := range tests {
		op, err := plays.ID(tt.id).Get(context.Background())
		if err != nil {
			t.Fatalf("ID(%q): %v", tt.id, err)
		}
		if op.IsPresent() != tt.present {
			t.Errorf("ID(%q) present = %v, want %v", tt.id, op.IsPresent(), tt.present)
			continue
		}
		if play, ok := op.Get(); ok {
			if id, _ := play.ID(); id != tt.id {
				t.Errorf("ID(%q) returned %q", tt.id, id)
			}
		}
	}
}

func TestAllQuery_EqualToMatchesWholeValue(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	partial, err := plays.All().FilterBy(fAuthor.EqualTo("edd")).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(partial) != 0 {
		t.Errorf("a word of the value must not match, got %v", playIDs(t, partial))
	}

	whole, err := plays.All().FilterBy(fAuthor.EqualTo("King, Edd")).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := playIDs(t, whole); !slices.Equal(got, []string{"play1", "play3"}) {
		t.Errorf("unexpected plays: %v", got)
	}
}

func TestIDQuery_OtherSchemaIsAbsent(t *testing.T) {
	books := Repository(newFixtureClient(t), bookSchema)

	op, err := books.ID("play1").Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.IsPresent() {
		t.Error("a play must not materialize as a book without ForceType")
	}
}

func TestIDQuery_ForceType(t *testing.T) {
	books := Repository(newFixtureClient(t), bookSchema)

	op, err := books.ID("play1").ForceType().Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	book, ok := op.Get()
	if !ok {
		t.Fatal("forced lookup should be present")
	}
	if title, err := book.Title(); err != nil || title != "The Play that got away" {
		t.Errorf("unexpected title %q, err %v", title, err)
	}
	if book.SchemaName() != "book" {
		t.Errorf("expected schema book, got %s", book.SchemaName())
	}
}

func TestIDQuery_ForceTypeMissingData(t *testing.T) {
	books := Repository(newFixtureClient(t), bookSchema)

	op, err := books.ID("play1").ForceType().Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// plays have no chapter count
	_, err = op.MustGet().ChapterCount()
	if !errors.Is(err, ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}
}

func TestIDQuery_BlankID(t *testing.T) {
	ri := &recordingIndex{}
	plays := Repository(newRecordingClient(t, ri), playSchema)

	for _, id := range []string{"", "   "} {
		_, err := plays.ID(id).Get(context.Background())
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ID(%q): expected ErrInvalidArgument, got %v", id, err)
		}
	}
	if n := len(ri.requests()); n != 0 {
		t.Errorf("expected no index calls, got %d", n)
	}
}

func TestIDsQuery(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	results, err := plays.IDs("play1", "play4", "somethingMadeUp").Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(results))
	}
	if !results["play1"].IsPresent() || !results["play4"].IsPresent() {
		t.Error("expected play1 and play4 to be present")
	}
	if results["somethingMadeUp"].IsPresent() {
		t.Error("expected somethingMadeUp to be absent")
	}
	if _, ok := results["some thing i didnt ask for"]; ok {
		t.Error("unrequested key must not appear")
	}
}

func TestIDsQuery_Duplicates(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	results, err := plays.IDs("play1", "play1", "play2").Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(results))
	}
}

func TestIDsQuery_ForceType(t *testing.T) {
	books := Repository(newFixtureClient(t), bookSchema)

	results, err := books.IDs("play1", "play2").ForceType().Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"play1", "play2"} {
		if !results[id].IsPresent() {
			t.Errorf("expected %s to be present as a book", id)
		}
	}
}

func TestIDsQuery_Empty(t *testing.T) {
	ri := &recordingIndex{}
	plays := Repository(newRecordingClient(t, ri), playSchema)

	results, err := plays.IDs().Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil map, got %v", results)
	}
	if n := len(ri.requests()); n != 0 {
		t.Errorf("expected no index calls, got %d", n)
	}
}

func TestIDsQuery_BlankID(t *testing.T) {
	ri := &recordingIndex{}
	plays := Repository(newRecordingClient(t, ri), playSchema)

	_, err := plays.IDs("bla", "", "bla").Get(context.Background())
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if n := len(ri.requests()); n != 0 {
		t.Errorf("expected no index calls, got %d", n)
	}
}

func TestGroupQuery_Default(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	groups, err := plays.GroupBy(fSceneCount).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if groups.Len() != 3 {
		t.Fatalf("expected 3 distinct scene counts, got %d", groups.Len())
	}
	if got := groups.Keys(); !slices.Equal(got, []string{"5", "2", "6"}) {
		t.Errorf("unexpected key order: %v", got)
	}
	// two plays have 5 scenes, the default cap is one per group
	if n := len(groups.Get("5")); n != 1 {
		t.Errorf("expected 1 play for key 5, got %d", n)
	}
	if groups.Size() != 3 {
		t.Errorf("expected 3 plays in total, got %d", groups.Size())
	}
}

func TestGroupQuery_LimitResultsPerGroup(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	groups, err := plays.GroupBy(fSceneCount).LimitResultsPerGroup(100).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(groups.Get("5")); n != 2 {
		t.Errorf("expected 2 plays for key 5, got %d", n)
	}

	seen := 0
	for key, members := range groups.All() {
		if len(members) == 0 {
			t.Errorf("group %s is empty", key)
		}
		seen++
	}
	if seen != 3 {
		t.Errorf("expected to iterate 3 groups, got %d", seen)
	}
}

func TestGroupQuery_InvalidCap(t *testing.T) {
	ri := &recordingIndex{}
	plays := Repository(newRecordingClient(t, ri), playSchema)

	_, err := plays.GroupBy(fSceneCount).LimitResultsPerGroup(0).Get(context.Background())
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if n := len(ri.requests()); n != 0 {
		t.Errorf("expected no index calls, got %d", n)
	}
}

func TestJoinQuery(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	// every play that is in a collection
	results, err := plays.JoinFrom(fChildIDs).To(fID).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := playIDs(t, results)
	for _, id := range []string{"play1", "play2", "play4"} {
		if !slices.Contains(got, id) {
			t.Errorf("expected %s in %v", id, got)
		}
	}
	if slices.Contains(got, "play3") {
		t.Errorf("play3 is in no collection: %v", got)
	}
}

func TestJoinQuery_OriginFilter(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	results, err := plays.JoinFrom(fChildIDs).
		FilterBy(fID.EqualTo("collection1")).
		To(fID).
		Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := playIDs(t, results); !slices.Equal(got, []string{"play1", "play2"}) {
		t.Errorf("unexpected plays: %v", got)
	}
}

func TestJoinQuery_TargetFilter(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)

	results, err := plays.JoinFrom(fChildIDs).
		FilterBy(fID.EqualTo("collection1")).
		To(fID).
		FilterBy(fBigNumber.EqualTo(1)).
		Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := playIDs(t, results); !slices.Equal(got, []string{"play2"}) {
		t.Errorf("unexpected plays: %v", got)
	}
}

// bigCollectionDocs interleaves n plays with n collections holding one play
// each.
func bigCollectionDocs(n int) []index.Document {
	docs := make([]index.Document, 0, 2*n)
	for i := range n {
		id := fmt.Sprintf("p%d", i)
		docs = append(docs,
			index.Document{"id": id, "type": "play"},
			index.Document{"id": fmt.Sprintf("c%d", i), "type": "collection", "childIds": []any{id}},
		)
	}
	return docs
}

func TestJoinQuery_LargeKeySet(t *testing.T) {
	const n = 1100
	c, err := New(WithMemory(bigCollectionDocs(n)...), WithMaxRows(5000))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	plays := Repository(c, playSchema)

	results, err := plays.JoinFrom(fChildIDs).To(fID).Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := playIDs(t, results)
	if len(got) != n {
		t.Fatalf("expected %d plays, got %d", n, len(got))
	}
	if got[0] != "p0" || got[n-1] != fmt.Sprintf("p%d", n-1) {
		t.Errorf("unexpected order: first %s, last %s", got[0], got[n-1])
	}
}

func TestJoinQuery_OriginOverRowCapMemory(t *testing.T) {
	c, err := New(WithMemory(bigCollectionDocs(1100)...))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	plays := Repository(c, playSchema)

	results, err := plays.JoinFrom(fChildIDs).To(fID).Get(context.Background())
	if !errors.Is(err, ErrResultTooLarge) {
		t.Fatalf("expected ErrResultTooLarge with the default row cap, got %v", err)
	}
	if results != nil {
		t.Errorf("expected no partial result, got %d plays", len(results))
	}
}

func TestRepository_Schema(t *testing.T) {
	plays := Repository(newFixtureClient(t), playSchema)
	if plays.Schema() != playSchema {
		t.Error("expected bound schema")
	}
}
