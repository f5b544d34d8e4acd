// Package types provides the type collaborator consumed by the IR core.
//
// A Type is one of a closed set of kinds (Primitive, Entity). Types are
// converted to and from the TypeSchema interchange description with Decode
// and Encode. Optional types and type refinements are not supported; schemas
// that carry them abort construction (see package fatal).
package types

import (
	"fmt"
	"slices"
	"strings"
)

// Kind discriminates the concrete Type implementations.
type Kind int

const (
	KindPrimitive Kind = iota + 1
	KindEntity
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEntity:
		return "entity"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is a sealed interface. Only Primitive and Entity implement it.
type Type interface {
	Kind() Kind
	String() string
	isType() // Sealed
}

// Primitive is a scalar type such as Text, Number or Boolean.
type Primitive struct {
	Name string
}

func (Primitive) isType() {}

// Kind implements Type.
func (Primitive) Kind() Kind { return KindPrimitive }

// String implements Type.
func (p Primitive) String() string {
	if p.Name == "" {
		return "primitive"
	}
	return p.Name
}

// Entity is a record type described by a Schema.
type Entity struct {
	Schema Schema
}

func (Entity) isType() {}

// Kind implements Type.
func (Entity) Kind() Kind { return KindEntity }

// String implements Type.
func (e Entity) String() string {
	return e.Schema.String()
}

// Schema describes the names and fields of an entity.
type Schema struct {
	Names  []string
	Fields map[string]Type
}

// FieldNames returns the field names in sorted order.
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// String renders the schema as "Name {field: Type, ...}".
func (s Schema) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(s.Names, " "))
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteByte('{')
	for i, name := range s.FieldNames() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", name, s.Fields[name])
	}
	sb.WriteByte('}')
	return sb.String()
}

// Equal reports whether two types are structurally identical.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case Primitive:
		return at.Name == b.(Primitive).Name
	case Entity:
		bt := b.(Entity)
		if !slices.Equal(at.Schema.Names, bt.Schema.Names) || len(at.Schema.Fields) != len(bt.Schema.Fields) {
			return false
		}
		for name, ft := range at.Schema.Fields {
			other, ok := bt.Schema.Fields[name]
			if !ok || !Equal(ft, other) {
				return false
			}
		}
		return true
	}
	return false
}
