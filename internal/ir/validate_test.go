package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateReferenceGraphIsClean(t *testing.T) {
	g := buildReferenceGraph(t)
	assert.Empty(t, Validate(g.ctx))
}

func TestValidateUnsuppliedOutput(t *testing.T) {
	ctx := newTestContext()
	ctx.RegisterOperator(ctx.NewOperatorBuilder("p").
		AddInput("in", fooType).
		AddOutput("foo", fooType).
		AddOutput("echo", fooType).
		AddImplementation(func(b *OperatorBuilder, self Signature) {
			b.AddResult("echo", self.Argument("in"))
		}).
		Build())

	errs := Validate(ctx)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsuppliedOutput, errs[0].Code)
	assert.Equal(t, "operators[p].results.foo", errs[0].Field)
}

func TestValidateOperatorRefs(t *testing.T) {
	ctx := newTestContext()
	id := ctSetup(ctx)

	p := ctx.RegisterOperator(ctx.NewOperatorBuilder("p").
		AddInput("in", textType).
		AddOutput("out", textType).
		AddImplementation(func(b *OperatorBuilder, self Signature) {
			// Undeclared slot on the operator's own signature.
			b.AddResult("out", OperatorArgument{Operator: self.ID, Name: "nope"})
		}).
		Build())

	// Operator argument used at top level.
	ctx.NewOperation(id, map[string]Value{"input": OperatorArgument{Operator: p, Name: "in"}})

	errs := Validate(ctx)
	assert.Equal(t, []string{ErrUndeclaredOperatorSlot, ErrOperatorRefScope}, codes(errs))
	assert.Equal(t, "operators[p].results.out[0]", errs[0].Field)
	assert.Equal(t, "operations[%1].inputs.input", errs[1].Field)
}

func TestValidateOperationRefs(t *testing.T) {
	ctx := newTestContext()
	id := ctSetup(ctx)

	var inner OperationID
	ctx.RegisterOperator(ctx.NewOperatorBuilder("p").
		AddOutput("out", textType).
		AddImplementation(func(b *OperatorBuilder, _ Signature) {
			inner = b.AddOperation(id, map[string]Value{"input": Any{}})
			b.AddResult("out", OperationResult{Operation: inner, Name: "missing"})
			b.AddResult("out", OperationArgument{Operation: inner, Name: "missing"})
		}).
		Build())

	// A top-level operation reaching into the implementation.
	ctx.NewOperation(id, map[string]Value{"input": OperationResult{Operation: inner, Name: "output"}})

	errs := Validate(ctx)
	assert.Equal(t, []string{ErrUndeclaredResult, ErrUndeclaredArgument, ErrOperationRefScope}, codes(errs))
	assert.Contains(t, errs[2].Error(), "[E305] operations[%2].inputs.input")
}

func TestValidateFollowsFieldParents(t *testing.T) {
	ctx := newTestContext()
	id := ctSetup(ctx)
	p := ctx.NewOperatorBuilder("p").AddInput("bar", barType).Build()
	pid := ctx.RegisterOperator(p)

	leak := ctx.NewField(OperatorArgument{Operator: pid, Name: "bar"}, "x")
	ctx.NewOperation(id, map[string]Value{"input": leak})

	errs := Validate(ctx)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrOperatorRefScope, errs[0].Code)
}
