package rigel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/rigel/index"
)

var (
	fID           = String("id")
	fType         = String("type")
	fTitle        = Text("title")
	fAuthor       = String("author")
	fPublished    = Time("published")
	fSceneCount   = Int("sceneCount")
	fBigNumber    = Int64("reallyBigNumber")
	fChapterCount = Int("chapterCount")
	fChildIDs     = String("childIds")
)

type Play struct{ Item }

func (p Play) ID() (string, error)      { return Get(p, fID) }
func (p Play) Title() (string, error)   { return Get(p, fTitle) }
func (p Play) SceneCount() (int, error) { return Get(p, fSceneCount) }

type Book struct{ Item }

func (b Book) Title() (string, error)     { return Get(b, fTitle) }
func (b Book) ChapterCount() (int, error) { return Get(b, fChapterCount) }

var (
	playSchema = MustSchema("play", fID, func(it Item) Play { return Play{it} },
		WithDiscriminator(fType),
		WithFields(fTitle, fAuthor, fPublished, fSceneCount, fBigNumber),
	)
	bookSchema = MustSchema("book", fID, func(it Item) Book { return Book{it} },
		WithDiscriminator(fType),
		WithFields(fTitle, fPublished, fChapterCount),
	)
)

func playDoc(id, title, author string, scenes int, big int64) index.Document {
	return index.Document{
		"id":              id,
		"type":            "play",
		"title":           title,
		"author":          author,
		"published":       time.Date(2013, 5, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
		"sceneCount":      scenes,
		"reallyBigNumber": big,
	}
}

func fixtureDocs() []index.Document {
	return []index.Document{
		playDoc("play1", "The Play that got away", "King, Edd", 5, 1234567),
		playDoc("play2", "The Other Play with 5 Scenes!", "Mc Roar, Malcolm", 5, 1),
		playDoc("play3", "Yet Another Play", "King, Edd", 2, 1234567),
		playDoc("play4", "superPlay!", "Mc Roar, Malcolm", 6, 1234567),
		{"id": "book1", "type": "book", "title": "A lonely book", "chapterCount": 5},
		{"id": "collection1", "type": "collection", "childIds": []any{"play1", "play2"}},
		{"id": "collection2", "type": "collection", "childIds": []any{"play4"}},
	}
}

// newFixtureClient returns a client over an in-memory index holding the
// plays/books/collections fixture.
func newFixtureClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(WithMemory(fixtureDocs()...))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// recordingIndex records every request and answers through searchFn.
type recordingIndex struct {
	dialect  index.Dialect
	searchFn func(ctx context.Context, req *index.Request) (*index.Response, error)

	mu   sync.Mutex
	reqs []*index.Request
}

func (r *recordingIndex) Dialect() index.Dialect { return r.dialect }

func (r *recordingIndex) Search(ctx context.Context, req *index.Request) (*index.Response, error) {
	r.mu.Lock()
	r.reqs = append(r.reqs, req)
	r.mu.Unlock()
	if r.searchFn != nil {
		return r.searchFn(ctx, req)
	}
	return &index.Response{}, nil
}

func (r *recordingIndex) requests() []*index.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*index.Request(nil), r.reqs...)
}

func newRecordingClient(t *testing.T, ri *recordingIndex) *Client {
	t.Helper()
	c, err := New(WithIndexClient(ri))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func playIDs(t *testing.T, plays []Play) []string {
	t.Helper()
	ids, err := Collect(plays, fID)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return ids
}
