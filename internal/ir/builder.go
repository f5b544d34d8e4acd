package ir

import (
	"github.com/roach88/flowir/internal/fatal"
	"github.com/roach88/flowir/internal/types"
)

// OperatorBuilder stages the construction of one Operator.
//
// Construction is two-phase. The builder reserves the operator's ID up
// front, so an implementation callback can refer to the operator it is
// defining through the Signature it receives. The finished operator is
// sealed by Build and handed to Context.RegisterOperator.
//
//	p1 := ctx.RegisterOperator(ctx.NewOperatorBuilder("arcs.particle.P1").
//		AddInput("bar", barType).
//		AddOutput("foo", fooType).
//		AddImplementation(func(b *ir.OperatorBuilder, self ir.Signature) {
//			claim := b.AddOperation(tagClaim, map[string]ir.Value{...})
//			b.AddResult("foo", ir.OperationResult{Operation: claim, Name: "output"})
//		}).
//		Build())
//
// A builder is single-use: every method fails fast after Build.
type OperatorBuilder struct {
	ctx *Context
	op  *Operator
}

// NewOperatorBuilder starts an operator with no inputs, no outputs and no
// implementation.
func (c *Context) NewOperatorBuilder(name string) *OperatorBuilder {
	return &OperatorBuilder{
		ctx: c,
		op: &Operator{
			id:      c.reserveOperator(),
			owner:   c,
			name:    name,
			inputs:  make(map[string]types.Type),
			outputs: make(map[string]types.Type),
		},
	}
}

// ID returns the ID reserved for the operator under construction.
func (b *OperatorBuilder) ID() OperatorID { return b.operator().id }

func (b *OperatorBuilder) operator() *Operator {
	fatal.Check(b.op != nil, fatal.ErrBuilderConsumed, "operator builder used after Build")
	return b.op
}

// impl materializes the implementation record on first use.
func (b *OperatorBuilder) impl() *Implementation {
	op := b.operator()
	if op.impl == nil {
		op.impl = &Implementation{
			parent:  op.id,
			results: make(map[string][]Value),
		}
	}
	return op.impl
}

// AddInput declares an input. Fails fast if the name is already an input.
func (b *OperatorBuilder) AddInput(name string, typ types.Type) *OperatorBuilder {
	op := b.operator()
	_, dup := op.inputs[name]
	fatal.Check(!dup, fatal.ErrDuplicateInput, "operator %q already declares input %q", op.name, name)
	op.inputs[name] = typ
	return b
}

// AddOutput declares an output. Fails fast if the name is already an output.
func (b *OperatorBuilder) AddOutput(name string, typ types.Type) *OperatorBuilder {
	op := b.operator()
	_, dup := op.outputs[name]
	fatal.Check(!dup, fatal.ErrDuplicateOutput, "operator %q already declares output %q", op.name, name)
	op.outputs[name] = typ
	return b
}

// AddImplementation runs fn synchronously with this builder and the
// signature declared so far. Inputs and outputs added after this call are
// not visible to fn. The operator becomes composite only once fn adds an
// operation or a result; an empty fn leaves it primitive.
func (b *OperatorBuilder) AddImplementation(fn func(b *OperatorBuilder, self Signature)) *OperatorBuilder {
	op := b.operator()
	fn(b, op.signature())
	return b
}

// AddOperation appends an operation calling op to the implementation and
// returns its ID. The implementation owns the operation.
func (b *OperatorBuilder) AddOperation(op OperatorID, inputs map[string]Value) OperationID {
	impl := b.impl()
	operation := b.ctx.newOperation(b.op.id, op, inputs)
	impl.operations = append(impl.operations, operation.id)
	return operation.id
}

// AddResult records v as one derivation of the named output. Repeated
// calls for the same output accumulate alternatives in call order.
func (b *OperatorBuilder) AddResult(output string, v Value) *OperatorBuilder {
	op := b.operator()
	_, ok := op.outputs[output]
	fatal.Check(ok, fatal.ErrUnknownOutput, "operator %q has no output %q", op.name, output)
	b.ctx.checkValue(v)

	impl := b.impl()
	impl.results[output] = append(impl.results[output], v)
	return b
}

// Build seals and returns the operator. The builder cannot be used again.
func (b *OperatorBuilder) Build() *Operator {
	op := b.operator()
	b.op = nil
	return op
}
