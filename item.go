package rigel

import (
	"fmt"

	"github.com/kailas-cloud/rigel/index"
)

// Item wraps one retrieved document together with the schema that built it.
// Domain types embed Item and expose accessors through Get/GetAll.
type Item struct {
	doc    index.Document
	schema string
}

// NewItem wraps doc as content of the named schema.
func NewItem(doc index.Document, schema string) Item {
	return Item{doc: doc, schema: schema}
}

// Content returns the item itself; it lets any type embedding Item satisfy ContentItem.
func (it Item) Content() Item { return it }

// SchemaName returns the name of the schema used to construct the item.
func (it Item) SchemaName() string { return it.schema }

// Document returns the raw document. Callers must not modify it.
func (it Item) Document() index.Document { return it.doc }

// Source returns the access context Fields read from.
func (it Item) Source() Source { return Source{Document: it.doc} }

// ContentItem is implemented by every type embedding Item.
type ContentItem interface {
	Content() Item
}

// Get reads the first value of f from the item.
func Get[T any](it ContentItem, f *Field[T]) (T, error) {
	return f.Value(it.Content().Source())
}

// GetAll reads every value of f from the item.
func GetAll[T any](it ContentItem, f *Field[T]) ([]T, error) {
	return f.Values(it.Content().Source())
}

// Collect reads f from each item, in order. The first failing read aborts.
func Collect[C ContentItem, T any](items []C, f *Field[T]) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, it := range items {
		v, err := Get(it, f)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
