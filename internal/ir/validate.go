package ir

import "fmt"

// Graph validation error codes (E300-E399).
const (
	ErrUndeclaredOperatorSlot = "E301" // operator argument/result names an undeclared slot
	ErrOperatorRefScope       = "E302" // operator argument/result used outside its own implementation
	ErrUndeclaredResult       = "E303" // operation result names an output the operator lacks
	ErrUndeclaredArgument     = "E304" // operation argument names an input the operator lacks
	ErrOperationRefScope      = "E305" // operation reference escapes its implementation
	ErrUnsuppliedOutput       = "E306" // composite operator output has no result
)

// ValidationError is a graph-wide consistency finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks invariants that span the whole graph and cannot be
// enforced when a single node is built. It returns all findings (not
// fail-fast) in a deterministic order.
//
// Checks:
//   - operator arguments/results name declared slots and appear only inside
//     their own operator's implementation
//   - operation arguments/results name slots declared by the called operator
//   - operation references stay within the implementation that owns them
//   - every output of a composite operator has at least one result
func Validate(c *Context) []ValidationError {
	var errs []ValidationError

	for _, id := range c.registered {
		op := c.operators[id-1]
		impl := op.impl
		if impl == nil {
			continue
		}
		prefix := fmt.Sprintf("operators[%s]", op.name)

		for _, opID := range impl.operations {
			operation := c.operations[opID-1]
			for _, name := range operation.InputNames() {
				field := fmt.Sprintf("%s.operations[%v].inputs.%s", prefix, opID, name)
				errs = append(errs, c.checkRefs(operation.inputs[name], id, field)...)
			}
		}

		for _, output := range op.OutputNames() {
			vals := impl.results[output]
			if len(vals) == 0 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.results.%s", prefix, output),
					Message: fmt.Sprintf("output %q of composite operator %q has no result", output, op.name),
					Code:    ErrUnsuppliedOutput,
				})
			}
			for i, v := range vals {
				field := fmt.Sprintf("%s.results.%s[%d]", prefix, output, i)
				errs = append(errs, c.checkRefs(v, id, field)...)
			}
		}
	}

	for _, operation := range c.operations {
		if operation.scope.IsValid() {
			continue
		}
		for _, name := range operation.InputNames() {
			field := fmt.Sprintf("operations[%v].inputs.%s", operation.id, name)
			errs = append(errs, c.checkRefs(operation.inputs[name], NoOperatorID, field)...)
		}
	}

	return errs
}

func (c *Context) checkRefs(v Value, scope OperatorID, field string) []ValidationError {
	return Visit[[]ValidationError](v, scopeChecker{c: c, scope: scope, field: field})
}

// scopeChecker validates one value expression found at field inside the
// implementation of scope (NoOperatorID at top level).
type scopeChecker struct {
	c     *Context
	scope OperatorID
	field string
}

func (s scopeChecker) fail(code, format string, args ...any) []ValidationError {
	return []ValidationError{{Field: s.field, Message: fmt.Sprintf(format, args...), Code: code}}
}

func (s scopeChecker) operation(id OperationID, slot, name string, declared func(*Operator, string) bool, code string) []ValidationError {
	operation := s.c.operations[id-1]
	var errs []ValidationError
	if operation.scope != s.scope {
		errs = append(errs, s.fail(ErrOperationRefScope, "operation %v belongs to a different implementation", id)...)
	}
	op := s.c.operators[operation.operator-1]
	if !declared(op, name) {
		errs = append(errs, s.fail(code, "operator %q has no %s %q", op.name, slot, name)...)
	}
	return errs
}

func (s scopeChecker) operator(id OperatorID, slot, name string, declared func(*Operator, string) bool) []ValidationError {
	op := s.c.operators[id-1]
	if op == nil {
		return s.fail(ErrUndeclaredOperatorSlot, "operator %v was never registered", id)
	}
	var errs []ValidationError
	if id != s.scope {
		errs = append(errs, s.fail(ErrOperatorRefScope, "%s of operator %q used outside its implementation", slot, op.name)...)
	}
	if !declared(op, name) {
		errs = append(errs, s.fail(ErrUndeclaredOperatorSlot, "operator %q has no %s %q", op.name, slot, name)...)
	}
	return errs
}

func hasInput(op *Operator, name string) bool {
	_, ok := op.inputs[name]
	return ok
}

func hasOutput(op *Operator, name string) bool {
	_, ok := op.outputs[name]
	return ok
}

func (s scopeChecker) VisitOperationArgument(v OperationArgument) []ValidationError {
	return s.operation(v.Operation, "input", v.Name, hasInput, ErrUndeclaredArgument)
}

func (s scopeChecker) VisitOperationResult(v OperationResult) []ValidationError {
	return s.operation(v.Operation, "output", v.Name, hasOutput, ErrUndeclaredResult)
}

func (s scopeChecker) VisitOperatorArgument(v OperatorArgument) []ValidationError {
	return s.operator(v.Operator, "input", v.Name, hasInput)
}

func (s scopeChecker) VisitOperatorResult(v OperatorResult) []ValidationError {
	return s.operator(v.Operator, "output", v.Name, hasOutput)
}

func (s scopeChecker) VisitField(v Field) []ValidationError {
	return s.c.checkRefs(s.c.values[v.Parent-1], s.scope, s.field)
}

func (scopeChecker) VisitStore(Store) []ValidationError         { return nil }
func (scopeChecker) VisitConstant(Constant) []ValidationError   { return nil }
func (scopeChecker) VisitPredicate(Predicate) []ValidationError { return nil }
func (scopeChecker) VisitAny(Any) []ValidationError             { return nil }
