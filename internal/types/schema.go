package types

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/flowir/internal/fatal"
)

// TypeSchema is the external interchange description of a Type.
// Exactly one of Primitive or Entity must be set.
type TypeSchema struct {
	Primitive  *PrimitiveSchema  `json:"primitive,omitempty" yaml:"primitive,omitempty"`
	Entity     *EntitySchema     `json:"entity,omitempty" yaml:"entity,omitempty"`
	Optional   bool              `json:"optional,omitempty" yaml:"optional,omitempty"`
	Refinement *RefinementSchema `json:"refinement,omitempty" yaml:"refinement,omitempty"`
}

// PrimitiveSchema names a primitive type.
type PrimitiveSchema struct {
	Name string `json:"name" yaml:"name"`
}

// EntitySchema wraps the schema of an entity type.
type EntitySchema struct {
	Schema *SchemaSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// SchemaSchema is the interchange form of a Schema.
type SchemaSchema struct {
	Names  []string              `json:"names,omitempty" yaml:"names,omitempty"`
	Fields map[string]TypeSchema `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// RefinementSchema is a type refinement expression. Refinements are
// recognised only so that they can be rejected.
type RefinementSchema struct {
	Expression string `json:"expression" yaml:"expression"`
}

// Decode converts an interchange schema into a Type.
//
// Decode fails fatally (fatal.Fail) on an unset discriminant, on more than
// one discriminant, on the optional marker, on a refinement, and on an
// entity without a schema.
func Decode(ts TypeSchema) Type {
	fatal.Check(!ts.Optional, fatal.ErrTypeOptional, "optional types are currently unimplemented")
	fatal.Check(ts.Refinement == nil, fatal.ErrTypeRefinement, "type refinements are currently unimplemented")

	switch {
	case ts.Primitive == nil && ts.Entity == nil:
		fatal.Fail(fatal.ErrTypeUnset, "type schema has no type set")
	case ts.Primitive != nil && ts.Entity != nil:
		fatal.Fail(fatal.ErrTypeAmbiguous, "type schema sets both primitive and entity")
	case ts.Primitive != nil:
		return Primitive{Name: ts.Primitive.Name}
	}

	fatal.Check(ts.Entity.Schema != nil, fatal.ErrEntitySchema, "schema is required for entity types")
	return Entity{Schema: decodeSchema(*ts.Entity.Schema)}
}

func decodeSchema(ss SchemaSchema) Schema {
	s := Schema{
		Names:  append([]string(nil), ss.Names...),
		Fields: make(map[string]Type, len(ss.Fields)),
	}
	for name, field := range ss.Fields {
		s.Fields[name] = Decode(field)
	}
	return s
}

// Encode converts a Type into its interchange schema.
// Encode(Decode(ts)) reproduces ts for every supported schema.
func Encode(t Type) TypeSchema {
	if t == nil {
		fatal.Fail(fatal.ErrTypeKind, "cannot encode nil type")
	}
	switch tt := t.(type) {
	case Primitive:
		return TypeSchema{Primitive: &PrimitiveSchema{Name: tt.Name}}
	case Entity:
		schema := encodeSchema(tt.Schema)
		return TypeSchema{Entity: &EntitySchema{Schema: &schema}}
	default:
		fatal.Fail(fatal.ErrTypeKind, "found unknown type kind %v", t.Kind())
	}
	return TypeSchema{}
}

func encodeSchema(s Schema) SchemaSchema {
	ss := SchemaSchema{Names: append([]string(nil), s.Names...)}
	if len(s.Fields) > 0 {
		ss.Fields = make(map[string]TypeSchema, len(s.Fields))
		for name, field := range s.Fields {
			ss.Fields[name] = Encode(field)
		}
	}
	return ss
}

// ParseSchemaYAML reads an interchange schema from YAML.
// It does not Decode the result; malformed YAML is an ordinary error.
func ParseSchemaYAML(data []byte) (TypeSchema, error) {
	var ts TypeSchema
	if err := yaml.Unmarshal(data, &ts); err != nil {
		return TypeSchema{}, fmt.Errorf("parse type schema: %w", err)
	}
	return ts, nil
}

// MarshalSchemaYAML writes an interchange schema as YAML.
func MarshalSchemaYAML(ts TypeSchema) ([]byte, error) {
	data, err := yaml.Marshal(ts)
	if err != nil {
		return nil, fmt.Errorf("marshal type schema: %w", err)
	}
	return data, nil
}
