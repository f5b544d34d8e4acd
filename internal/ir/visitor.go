package ir

import "fmt"

// Visitor handles every Value variant. Adding a variant adds a method here,
// so every implementation must be revisited before the module compiles.
type Visitor[T any] interface {
	VisitOperationArgument(OperationArgument) T
	VisitOperationResult(OperationResult) T
	VisitOperatorArgument(OperatorArgument) T
	VisitOperatorResult(OperatorResult) T
	VisitField(Field) T
	VisitStore(Store) T
	VisitConstant(Constant) T
	VisitPredicate(Predicate) T
	VisitAny(Any) T
}

// Visit dispatches v to the matching visitor method.
func Visit[T any](v Value, vis Visitor[T]) T {
	switch val := v.(type) {
	case OperationArgument:
		return vis.VisitOperationArgument(val)
	case OperationResult:
		return vis.VisitOperationResult(val)
	case OperatorArgument:
		return vis.VisitOperatorArgument(val)
	case OperatorResult:
		return vis.VisitOperatorResult(val)
	case Field:
		return vis.VisitField(val)
	case Store:
		return vis.VisitStore(val)
	case Constant:
		return vis.VisitConstant(val)
	case Predicate:
		return vis.VisitPredicate(val)
	case Any:
		return vis.VisitAny(val)
	}
	// Value is sealed; only a nil Value reaches here.
	panic(fmt.Sprintf("ir: Visit called with %T", v))
}
