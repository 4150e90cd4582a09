// Package catalog turns configured schema declarations into rigel schemas over
// the generic rigel.Item content type.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/rigel"
	"github.com/kailas-cloud/rigel/internal/config"
)

var (
	// ErrSchemaNotFound is returned for a schema name the catalog does not declare.
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrUnknownField is returned for an attribute no schema declares.
	ErrUnknownField = errors.New("unknown field")
)

// Catalog holds the configured schemas. Fields are shared across schemas by
// attribute name, so one attribute has one type everywhere.
type Catalog struct {
	schemas map[string]*rigel.Schema[rigel.Item]
	names   []string
	fields  map[string]rigel.FieldRef
}

// New builds a Catalog from schema declarations.
func New(cfgs []config.SchemaConfig) (*Catalog, error) {
	c := &Catalog{
		schemas: make(map[string]*rigel.Schema[rigel.Item], len(cfgs)),
		fields:  make(map[string]rigel.FieldRef),
	}
	for _, sc := range cfgs {
		s, err := c.build(sc)
		if err != nil {
			return nil, err
		}
		if _, dup := c.schemas[sc.Name]; dup {
			return nil, fmt.Errorf("schema %q declared twice", sc.Name)
		}
		c.schemas[sc.Name] = s
		c.names = append(c.names, sc.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

func (c *Catalog) build(sc config.SchemaConfig) (*rigel.Schema[rigel.Item], error) {
	idName := sc.ID
	if idName == "" {
		idName = "id"
	}
	id, err := c.stringField(idName)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", sc.Name, err)
	}

	opts := make([]rigel.SchemaOption, 0, len(sc.Variants)+2)
	fields := make([]rigel.FieldRef, 0, len(sc.Fields))
	for _, fc := range sc.Fields {
		f, err := c.field(fc)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", sc.Name, err)
		}
		fields = append(fields, f)
	}
	opts = append(opts, rigel.WithFields(fields...))

	if sc.Discriminator != "" {
		d, err := c.stringField(sc.Discriminator)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", sc.Name, err)
		}
		opts = append(opts, rigel.WithDiscriminator(d))
	}
	for _, tag := range sc.Variants {
		opts = append(opts, rigel.WithVariant[rigel.Item](tag, identity))
	}

	s, err := rigel.NewSchema(sc.Name, id, identity, opts...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}

func identity(it rigel.Item) rigel.Item { return it }

// field returns the shared field for fc, creating it on first use.
func (c *Catalog) field(fc config.FieldConfig) (rigel.FieldRef, error) {
	typ := fc.Type
	if typ == "" {
		typ = "string"
	}
	if f, ok := c.fields[fc.Name]; ok {
		if typeName(f) != typ {
			return nil, fmt.Errorf("field %q declared as %s and %s", fc.Name, typeName(f), typ)
		}
		return f, nil
	}

	var f rigel.FieldRef
	switch typ {
	case "string":
		f = rigel.String(fc.Name)
	case "text":
		f = rigel.Text(fc.Name)
	case "int":
		f = rigel.Int(fc.Name)
	case "int64":
		f = rigel.Int64(fc.Name)
	case "float":
		f = rigel.Float(fc.Name)
	case "bool":
		f = rigel.Bool(fc.Name)
	case "time":
		f = rigel.Time(fc.Name)
	default:
		return nil, fmt.Errorf("field %q: unsupported type %q", fc.Name, typ)
	}
	c.fields[fc.Name] = f
	return f, nil
}

// stringField returns the shared string field used for identifiers and discriminators.
func (c *Catalog) stringField(name string) (*rigel.Field[string], error) {
	f, err := c.field(config.FieldConfig{Name: name, Type: "string"})
	if err != nil {
		return nil, err
	}
	sf, ok := f.(*rigel.Field[string])
	if !ok {
		return nil, fmt.Errorf("field %q must be a string field", name)
	}
	return sf, nil
}

// typeName maps a field back to its configured type name.
func typeName(f rigel.FieldRef) string {
	switch f.Type() {
	case rigel.TypeString:
		if f.Kind() == rigel.KindText {
			return "text"
		}
		return "string"
	case rigel.TypeInt:
		return "int"
	case rigel.TypeInt64:
		return "int64"
	case rigel.TypeFloat:
		return "float"
	case rigel.TypeBool:
		return "bool"
	case rigel.TypeTime:
		return "time"
	default:
		return "unknown"
	}
}

// Schema returns the named schema.
func (c *Catalog) Schema(name string) (*rigel.Schema[rigel.Item], error) {
	s, ok := c.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
	return s, nil
}

// Names returns the schema names in sorted order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Field returns the field declared under name by any schema.
func (c *Catalog) Field(name string) (rigel.FieldRef, error) {
	f, ok := c.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return f, nil
}

// FieldType returns the configured type name of a field.
func FieldType(f rigel.FieldRef) string { return typeName(f) }
