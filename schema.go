package rigel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/rigel/index"
)

// Constructor builds a domain object from a retrieved item.
type Constructor[C any] func(Item) C

// Schema declares a content type: its fields, identifier field and how raw
// documents become values of C.
//
// When a discriminator is set, each document's discriminator value selects a
// variant constructor, and the schema's implicit scope is restricted to the
// registered variant tags. The schema's own name is always a variant tag
// mapped to the default constructor.
type Schema[C any] struct {
	name          string
	id            *Field[string]
	fields        []FieldRef
	construct     Constructor[C]
	discriminator *Field[string]
	variants      map[string]Constructor[C]
	tags          []string
}

// SchemaOption configures a Schema.
type SchemaOption interface {
	apply(*schemaSpec) error
}

type schemaOptionFunc func(*schemaSpec) error

func (f schemaOptionFunc) apply(s *schemaSpec) error { return f(s) }

// schemaSpec collects options before the typed Schema is built.
type schemaSpec struct {
	fields        []FieldRef
	discriminator *Field[string]
	variants      []variantSpec
}

type variantSpec struct {
	tag  string
	ctor any
}

// WithFields declares the schema's fields. The identifier field is always included.
func WithFields(fields ...FieldRef) SchemaOption {
	return schemaOptionFunc(func(s *schemaSpec) error {
		s.fields = append(s.fields, fields...)
		return nil
	})
}

// WithDiscriminator sets the field whose value selects the variant constructor.
func WithDiscriminator(f *Field[string]) SchemaOption {
	return schemaOptionFunc(func(s *schemaSpec) error {
		if f == nil {
			return errors.New("discriminator field is nil")
		}
		s.discriminator = f
		return nil
	})
}

// WithVariant maps a discriminator tag to a constructor. The constructor's
// result type must be the schema's content type.
func WithVariant[C any](tag string, c Constructor[C]) SchemaOption {
	return schemaOptionFunc(func(s *schemaSpec) error {
		if strings.TrimSpace(tag) == "" {
			return errors.New("variant tag is required")
		}
		if c == nil {
			return fmt.Errorf("variant %q: constructor is nil", tag)
		}
		s.variants = append(s.variants, variantSpec{tag: tag, ctor: c})
		return nil
	})
}

// NewSchema validates and creates a Schema.
func NewSchema[C any](name string, id *Field[string], construct Constructor[C], opts ...SchemaOption) (*Schema[C], error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("schema name is required")
	}
	if id == nil {
		return nil, fmt.Errorf("schema %q: id field is required", name)
	}
	if construct == nil {
		return nil, fmt.Errorf("schema %q: constructor is required", name)
	}

	var spec schemaSpec
	for _, opt := range opts {
		if err := opt.apply(&spec); err != nil {
			return nil, fmt.Errorf("schema %q: %w", name, err)
		}
	}

	s := &Schema[C]{
		name:          name,
		id:            id,
		fields:        append([]FieldRef{id}, spec.fields...),
		construct:     construct,
		discriminator: spec.discriminator,
		variants:      make(map[string]Constructor[C]),
	}
	s.addVariant(name, construct)

	for _, v := range spec.variants {
		c, ok := v.ctor.(Constructor[C])
		if !ok {
			var zero C
			return nil, fmt.Errorf("schema %q: variant %q constructor is %T, want Constructor[%T]", name, v.tag, v.ctor, zero)
		}
		s.addVariant(v.tag, c)
	}

	if len(s.tags) > 1 && s.discriminator == nil {
		return nil, fmt.Errorf("schema %q: variants require a discriminator", name)
	}
	if err := s.validateFields(); err != nil {
		return nil, fmt.Errorf("schema %q: %w", name, err)
	}
	return s, nil
}

// MustSchema calls NewSchema and panics on error.
func MustSchema[C any](name string, id *Field[string], construct Constructor[C], opts ...SchemaOption) *Schema[C] {
	s, err := NewSchema(name, id, construct, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema[C]) addVariant(tag string, c Constructor[C]) {
	if _, ok := s.variants[tag]; !ok {
		s.tags = append(s.tags, tag)
	}
	s.variants[tag] = c
}

func (s *Schema[C]) validateFields() error {
	seen := make(map[string]FieldRef, len(s.fields))
	deduped := s.fields[:0]
	for _, f := range s.fields {
		if f == nil {
			return errors.New("nil field")
		}
		if prev, ok := seen[f.Name()]; ok {
			if prev != f {
				return fmt.Errorf("duplicate field name: %s", f.Name())
			}
			continue
		}
		seen[f.Name()] = f
		deduped = append(deduped, f)
	}
	s.fields = deduped
	return nil
}

// Name returns the schema name.
func (s *Schema[C]) Name() string { return s.name }

// ID returns the identifier field.
func (s *Schema[C]) ID() *Field[string] { return s.id }

// Fields returns the declared fields, identifier first.
func (s *Schema[C]) Fields() []FieldRef {
	return append([]FieldRef(nil), s.fields...)
}

// Field looks up a declared field by attribute name.
func (s *Schema[C]) Field(name string) (FieldRef, bool) {
	for _, f := range s.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Discriminator returns the discriminator field, or nil.
func (s *Schema[C]) Discriminator() *Field[string] { return s.discriminator }

// Variants returns the registered discriminator tags in registration order.
func (s *Schema[C]) Variants() []string {
	return append([]string(nil), s.tags...)
}

// Scope returns the implicit filter applied to listing queries, or nil when
// the schema has no discriminator.
func (s *Schema[C]) Scope() Filter {
	if s.discriminator == nil {
		return nil
	}
	return s.discriminator.In(s.tags...)
}

// Materialize converts a raw document into C.
//
// Forced materialization always uses the default constructor. Otherwise the
// discriminator selects the variant: a missing or blank tag falls back to the
// default constructor, and a tag with no registered variant reports false
// because the document is not content of this schema.
func (s *Schema[C]) Materialize(doc index.Document, forced bool) (C, bool) {
	item := NewItem(doc, s.name)
	if forced || s.discriminator == nil {
		return s.construct(item), true
	}

	tag, err := s.discriminator.Value(item.Source())
	if err != nil || strings.TrimSpace(tag) == "" {
		return s.construct(item), true
	}
	c, ok := s.variants[tag]
	if !ok {
		var zero C
		return zero, false
	}
	return c(item), true
}
