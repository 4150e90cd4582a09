package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/rigel/index"
)

// Op names for index management commands.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
)

// ErrIndexExists is returned by CreateIndex when the index is already defined.
var ErrIndexExists = errors.New("redis: index already exists")

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldTag is an exact-match tag field.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric
	// IndexFieldText is a full-text field.
	IndexFieldText
)

// IndexField maps one JSON attribute to a searchable field.
type IndexField struct {
	Name string
	// Multi indexes every element of a JSON array attribute.
	Multi bool
	Type  IndexFieldType
}

// IndexDefinition describes an FT index over JSON documents.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// CreateIndex creates an FT index ON JSON from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return ErrIndexExists
		}
		return &index.Error{Op: OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an FT index by name. Documents are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return index.ErrIndexNotFound
		}
		return &index.Error{Op: OpDropIndex, Err: err}
	}
	return nil
}

func buildCreateArgs(def *IndexDefinition) ([]string, error) {
	if def.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(def.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{def.Name, "ON", "JSON"}
	if len(def.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(def.Prefixes)))
		args = append(args, def.Prefixes...)
	}

	args = append(args, "SCHEMA")
	for i := range def.Fields {
		fieldArgs, err := buildFieldArgs(&def.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}
	return args, nil
}

func buildFieldArgs(f *IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	path := "$." + f.Name
	if f.Multi {
		path += "[*]"
	}
	args := []string{path, "AS", f.Name}

	// ismissing() only works on fields declared INDEXMISSING
	switch f.Type {
	case IndexFieldTag:
		args = append(args, "TAG", "INDEXMISSING")
	case IndexFieldNumeric:
		args = append(args, "NUMERIC")
	case IndexFieldText:
		args = append(args, "TEXT", "INDEXMISSING")
	default:
		return nil, errors.New("unknown field type")
	}
	return args, nil
}
