// Package memory is an in-process index over go-memdb that evaluates Lucene
// filter syntax. It backs tests and local development.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/go-memdb"

	"github.com/kailas-cloud/rigel/index"
	"github.com/kailas-cloud/rigel/internal/lucene"
)

const (
	tableDocuments = "documents"
	indexID        = "id"
	indexSeq       = "seq"
)

// IDField is the attribute that identifies a document.
const IDField = "id"

var (
	_ index.Client = (*Store)(nil)
	_ index.Pinger = (*Store)(nil)
)

// ErrMissingID is returned by Put for documents without an identifier.
var ErrMissingID = errors.New("memory: document has no id")

type record struct {
	ID  string
	Seq int
	Doc index.Document
}

// Store keeps documents in insertion order. Re-putting an identifier replaces
// the document in place.
type Store struct {
	db  *memdb.MemDB
	seq atomic.Int64
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableDocuments: {
				Name: tableDocuments,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					indexSeq: {
						Name:    indexSeq,
						Unique:  true,
						Indexer: &memdb.IntFieldIndex{Field: "Seq"},
					},
				},
			},
		},
	}
}

// New creates an empty store.
func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	return &Store{db: db}, nil
}

// Dialect reports Lucene syntax.
func (s *Store) Dialect() index.Dialect { return index.Lucene }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Put inserts or replaces documents atomically.
func (s *Store) Put(docs ...index.Document) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	for _, doc := range docs {
		v, ok := doc.First(IDField)
		id := index.FormatValue(v)
		if !ok || id == "" {
			return ErrMissingID
		}

		var seq int
		existing, err := txn.First(tableDocuments, indexID, id)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", id, err)
		}
		if existing != nil {
			seq = existing.(*record).Seq
		} else {
			seq = int(s.seq.Add(1))
		}

		if err := txn.Insert(tableDocuments, &record{ID: id, Seq: seq, Doc: doc}); err != nil {
			return fmt.Errorf("insert %s: %w", id, err)
		}
	}

	txn.Commit()
	return nil
}

// Delete removes documents by identifier. Unknown identifiers are ignored.
func (s *Store) Delete(ids ...string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	for _, id := range ids {
		if _, err := txn.DeleteAll(tableDocuments, indexID, id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
	}

	txn.Commit()
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableDocuments, indexSeq)
	if err != nil {
		return 0
	}
	n := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		n++
	}
	return n
}

// Search evaluates the query and every filter against each document in
// insertion order, then groups, caps and projects the matches.
func (s *Store) Search(ctx context.Context, req *index.Request) (*index.Response, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}

	queries := make([]lucene.Query, 0, len(req.Filters)+1)
	q, err := lucene.Parse(req.Query)
	if err != nil {
		return nil, &index.Error{Op: index.OpSearch, Err: fmt.Errorf("query %q: %w", req.Query, err)}
	}
	queries = append(queries, q)
	for _, f := range req.Filters {
		fq, err := lucene.Parse(f)
		if err != nil {
			return nil, &index.Error{Op: index.OpSearch, Err: fmt.Errorf("filter %q: %w", f, err)}
		}
		queries = append(queries, fq)
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableDocuments, indexSeq)
	if err != nil {
		return nil, &index.Error{Op: index.OpSearch, Err: err}
	}

	var matched []index.Document
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, &index.Error{Op: index.OpSearch, Err: err}
		}
		doc := obj.(*record).Doc
		if matchesAll(queries, doc) {
			matched = append(matched, doc)
		}
	}

	resp := &index.Response{Total: len(matched)}
	if req.Grouped() {
		resp.Groups = group(matched, req)
		return resp, nil
	}

	if req.Limit > 0 && len(matched) > req.Limit {
		matched = matched[:req.Limit]
	}
	resp.Documents = project(matched, req.Fields)
	return resp, nil
}

func matchesAll(queries []lucene.Query, doc index.Document) bool {
	for _, q := range queries {
		if !lucene.Match(q, doc) {
			return false
		}
	}
	return true
}

// group buckets by the first value of the group field in first-seen order.
// Documents without the field are not grouped.
func group(docs []index.Document, req *index.Request) []index.Group {
	perGroup := req.EffectiveGroupLimit()
	var groups []index.Group
	pos := make(map[string]int)
	for _, doc := range docs {
		v, ok := doc.First(req.GroupField)
		if !ok {
			continue
		}
		key := index.FormatValue(v)
		i, seen := pos[key]
		if !seen {
			if req.Limit > 0 && len(groups) >= req.Limit {
				continue
			}
			i = len(groups)
			pos[key] = i
			groups = append(groups, index.Group{Value: key})
		}
		if len(groups[i].Documents) < perGroup {
			groups[i].Documents = append(groups[i].Documents, doc.Project(req.Fields))
		}
	}
	return groups
}

func project(docs []index.Document, fields []string) []index.Document {
	if len(fields) == 0 {
		return docs
	}
	out := make([]index.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Project(fields)
	}
	return out
}
