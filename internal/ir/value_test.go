package ir

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// kindVisitor reports the kind each variant was dispatched as.
type kindVisitor struct{}

func (kindVisitor) VisitOperationArgument(OperationArgument) ValueKind { return KindOperationArgument }
func (kindVisitor) VisitOperationResult(OperationResult) ValueKind     { return KindOperationResult }
func (kindVisitor) VisitOperatorArgument(OperatorArgument) ValueKind   { return KindOperatorArgument }
func (kindVisitor) VisitOperatorResult(OperatorResult) ValueKind       { return KindOperatorResult }
func (kindVisitor) VisitField(Field) ValueKind                         { return KindField }
func (kindVisitor) VisitStore(Store) ValueKind                         { return KindStore }
func (kindVisitor) VisitConstant(Constant) ValueKind                   { return KindConstant }
func (kindVisitor) VisitPredicate(Predicate) ValueKind                 { return KindPredicate }
func (kindVisitor) VisitAny(Any) ValueKind                             { return KindAny }

func allVariants() []Value {
	return []Value{
		OperationArgument{Operation: 1, Name: "in"},
		OperationResult{Operation: 1, Name: "out"},
		OperatorArgument{Operator: 1, Name: "in"},
		OperatorResult{Operator: 1, Name: "out"},
		Field{Parent: 1, Name: "x"},
		Store{Storage: uuid.Nil},
		Constant{Literal: StringLit("c")},
		Predicate{},
		Any{},
	}
}

func TestVisitDispatchesEveryVariant(t *testing.T) {
	variants := allVariants()
	assert.Len(t, variants, 9)

	seen := make(map[ValueKind]bool)
	for _, v := range variants {
		got := Visit[ValueKind](v, kindVisitor{})
		assert.Equal(t, v.Kind(), got, "%T", v)
		seen[got] = true
	}
	assert.Len(t, seen, 9)
}

func TestVisitNilPanics(t *testing.T) {
	assert.Panics(t, func() { Visit[ValueKind](nil, kindVisitor{}) })
}

func TestValueKindString(t *testing.T) {
	assert.Equal(t, "operation_argument", KindOperationArgument.String())
	assert.Equal(t, "field", KindField.String())
	assert.Equal(t, "any", KindAny.String())
	assert.Equal(t, "value_kind(0)", ValueKind(0).String())
	assert.Equal(t, "value_kind(42)", ValueKind(42).String())
}

func TestIDs(t *testing.T) {
	assert.False(t, NoOperatorID.IsValid())
	assert.False(t, NoOperationID.IsValid())
	assert.False(t, NoValueID.IsValid())
	assert.True(t, OperatorID(1).IsValid())

	assert.Equal(t, "op#3", OperatorID(3).String())
	assert.Equal(t, "%3", OperationID(3).String())
	assert.Equal(t, "v#3", ValueID(3).String())
}
