package ir

import (
	"maps"
	"slices"
)

// Operation is a bound call to an Operator. It is immutable after
// construction.
type Operation struct {
	id       OperationID
	owner    *Context
	operator OperatorID
	scope    OperatorID // enclosing implementation; NoOperatorID at top level
	inputs   map[string]Value
}

// ID returns the operation's identifier within its Context.
func (o *Operation) ID() OperationID { return o.id }

// Operator returns the ID of the bound operator.
func (o *Operation) Operator() OperatorID { return o.operator }

// Op resolves the bound operator through the owning Context.
func (o *Operation) Op() *Operator { return o.owner.Operator(o.operator) }

// Scope returns the operator whose implementation owns this operation, or
// NoOperatorID for a top-level instance.
func (o *Operation) Scope() OperatorID { return o.scope }

// Inputs returns a copy of the bound inputs.
func (o *Operation) Inputs() map[string]Value { return maps.Clone(o.inputs) }

// Input returns the value bound to the named input.
func (o *Operation) Input(name string) (Value, bool) {
	v, ok := o.inputs[name]
	return v, ok
}

// InputNames returns the bound input names in sorted order.
func (o *Operation) InputNames() []string { return slices.Sorted(maps.Keys(o.inputs)) }

// Argument returns the value referring to the named input of this operation.
func (o *Operation) Argument(name string) OperationArgument {
	return OperationArgument{Operation: o.id, Name: name}
}

// Result returns the value referring to the named output of this operation.
func (o *Operation) Result(name string) OperationResult {
	return OperationResult{Operation: o.id, Name: name}
}
