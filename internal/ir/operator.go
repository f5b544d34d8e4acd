package ir

import (
	"maps"
	"slices"

	"github.com/roach88/flowir/internal/fatal"
	"github.com/roach88/flowir/internal/types"
)

// DataDecl declares one input or output slot of an operator.
type DataDecl struct {
	Name string
	Type types.Type
}

// Operator is the signature of a computation. Simple operators (`+`,
// `sql.select`) have no implementation; composite operators (particles,
// functions) carry an Implementation built from other operations.
//
// Operators are immutable once built and are owned by their Context.
type Operator struct {
	id      OperatorID
	owner   *Context
	name    string
	inputs  map[string]types.Type
	outputs map[string]types.Type
	impl    *Implementation // nil for primitive operators
}

// ID returns the operator's identifier within its Context.
func (o *Operator) ID() OperatorID { return o.id }

// Name returns the operator name, e.g. "sql.select".
func (o *Operator) Name() string { return o.name }

// Inputs returns a copy of the declared inputs.
func (o *Operator) Inputs() map[string]types.Type { return maps.Clone(o.inputs) }

// Outputs returns a copy of the declared outputs.
func (o *Operator) Outputs() map[string]types.Type { return maps.Clone(o.outputs) }

// Input returns the type of the named input.
func (o *Operator) Input(name string) (types.Type, bool) {
	t, ok := o.inputs[name]
	return t, ok
}

// Output returns the type of the named output.
func (o *Operator) Output(name string) (types.Type, bool) {
	t, ok := o.outputs[name]
	return t, ok
}

// InputNames returns the declared input names in sorted order.
func (o *Operator) InputNames() []string { return slices.Sorted(maps.Keys(o.inputs)) }

// OutputNames returns the declared output names in sorted order.
func (o *Operator) OutputNames() []string { return slices.Sorted(maps.Keys(o.outputs)) }

// InputDecls returns the inputs as DataDecls sorted by name.
func (o *Operator) InputDecls() []DataDecl { return decls(o.inputs) }

// OutputDecls returns the outputs as DataDecls sorted by name.
func (o *Operator) OutputDecls() []DataDecl { return decls(o.outputs) }

// Implementation returns the operator body, or nil for a primitive operator.
func (o *Operator) Implementation() *Implementation { return o.impl }

// IsPrimitive reports whether the operator has no implementation.
func (o *Operator) IsPrimitive() bool { return o.impl == nil }

func (o *Operator) signature() Signature {
	return Signature{
		ID:      o.id,
		Name:    o.name,
		Inputs:  maps.Clone(o.inputs),
		Outputs: maps.Clone(o.outputs),
	}
}

func decls(m map[string]types.Type) []DataDecl {
	out := make([]DataDecl, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		out = append(out, DataDecl{Name: name, Type: m[name]})
	}
	return out
}

// Implementation is the sub-graph defining a composite operator.
type Implementation struct {
	parent     OperatorID
	operations []OperationID
	// Maps outputs of the parent operator to the values that supply them.
	// More than one value models alternative (non-deterministic) derivations.
	results map[string][]Value
}

// Parent returns the operator this implementation belongs to.
func (im *Implementation) Parent() OperatorID { return im.parent }

// Operations returns the owned operations in insertion order.
func (im *Implementation) Operations() []OperationID { return slices.Clone(im.operations) }

// Results returns a copy of the output-to-values mapping.
func (im *Implementation) Results() map[string][]Value {
	out := make(map[string][]Value, len(im.results))
	for name, vals := range im.results {
		out[name] = slices.Clone(vals)
	}
	return out
}

// Result returns the alternative values supplying the named output, in the
// order they were added.
func (im *Implementation) Result(output string) []Value {
	return slices.Clone(im.results[output])
}

// Signature is the sealed signature of an operator under construction.
// It is handed to implementation callbacks so the body can refer to its own
// operator before that operator is finished.
type Signature struct {
	ID      OperatorID
	Name    string
	Inputs  map[string]types.Type
	Outputs map[string]types.Type
}

// Argument returns the value referring to the named input of this operator.
// Fails fast if the input is not declared.
func (s Signature) Argument(name string) OperatorArgument {
	_, ok := s.Inputs[name]
	fatal.Check(ok, fatal.ErrUnknownInput, "operator %q has no input %q", s.Name, name)
	return OperatorArgument{Operator: s.ID, Name: name}
}

// Result returns the value referring to the named output of this operator.
// Fails fast if the output is not declared.
func (s Signature) Result(name string) OperatorResult {
	_, ok := s.Outputs[name]
	fatal.Check(ok, fatal.ErrUnknownOutput, "operator %q has no output %q", s.Name, name)
	return OperatorResult{Operator: s.ID, Name: name}
}
