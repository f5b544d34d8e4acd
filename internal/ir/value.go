package ir

import (
	"fmt"

	"github.com/roach88/flowir/internal/storage"
)

// ValueKind identifies the variant of a Value.
type ValueKind int

const (
	KindOperationArgument ValueKind = iota + 1
	KindOperationResult
	KindOperatorArgument
	KindOperatorResult
	KindField
	KindStore
	KindConstant
	KindPredicate
	KindAny
)

var valueKindNames = [...]string{
	KindOperationArgument: "operation_argument",
	KindOperationResult:   "operation_result",
	KindOperatorArgument:  "operator_argument",
	KindOperatorResult:    "operator_result",
	KindField:             "field",
	KindStore:             "store",
	KindConstant:          "constant",
	KindPredicate:         "predicate",
	KindAny:               "any",
}

// String returns the snake_case variant name.
func (k ValueKind) String() string {
	if k > 0 && int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("value_kind(%d)", int(k))
}

// Value is one node of the symbolic expression graph. It is a sealed
// interface over exactly nine variants. Consumers dispatch on it with Visit,
// which forces them to handle every variant.
//
// Values never hold pointers into the graph. References to operators,
// operations, parent values and storages are IDs resolved through the
// owning Context.
type Value interface {
	Kind() ValueKind
	value() // Sealed
}

// OperationArgument refers to a named input slot of a specific operation.
type OperationArgument struct {
	Operation OperationID
	Name      string
}

// OperationResult refers to a named output of a specific operation.
type OperationResult struct {
	Operation OperationID
	Name      string
}

// OperatorArgument refers to an operator's own declared input. It is only
// meaningful inside that operator's implementation.
type OperatorArgument struct {
	Operator OperatorID
	Name     string
}

// OperatorResult refers to an operator's own declared output.
type OperatorResult struct {
	Operator OperatorID
	Name     string
}

// Field projects a named sub-field out of an interned parent value.
// The parent always has a smaller ValueID than any Field built from it,
// so parent chains terminate.
type Field struct {
	Parent ValueID
	Name   string
}

// Store binds a value to an external storage handle.
type Store struct {
	Storage storage.ID
}

// Constant is literal data.
type Constant struct {
	Literal Literal
}

// Predicate stands for an information-flow label. Its contents are not
// modeled here.
type Predicate struct{}

// Any means the value may originate from any unmodeled source.
type Any struct{}

func (OperationArgument) value() {}
func (OperationResult) value()   {}
func (OperatorArgument) value()  {}
func (OperatorResult) value()    {}
func (Field) value()             {}
func (Store) value()             {}
func (Constant) value()          {}
func (Predicate) value()         {}
func (Any) value()               {}

func (OperationArgument) Kind() ValueKind { return KindOperationArgument }
func (OperationResult) Kind() ValueKind   { return KindOperationResult }
func (OperatorArgument) Kind() ValueKind  { return KindOperatorArgument }
func (OperatorResult) Kind() ValueKind    { return KindOperatorResult }
func (Field) Kind() ValueKind             { return KindField }
func (Store) Kind() ValueKind             { return KindStore }
func (Constant) Kind() ValueKind          { return KindConstant }
func (Predicate) Kind() ValueKind         { return KindPredicate }
func (Any) Kind() ValueKind               { return KindAny }
