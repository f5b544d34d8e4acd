package ir

import "fmt"

// Format renders a value expression for humans:
//
//	%3.out.value               result "value" of operation 3
//	%3.in.input                input "input" of operation 3
//	arcs.particle.P1.in.bar    input "bar" of the operator itself
//	arcs.particle.P1.in.bar.x  field "x" of the above
//	store(h1), any, predicate, "literal"
func Format(c *Context, v Value) string {
	return Visit[string](v, formatter{c})
}

type formatter struct{ c *Context }

func (f formatter) VisitOperationArgument(v OperationArgument) string {
	return fmt.Sprintf("%v.in.%s", v.Operation, v.Name)
}

func (f formatter) VisitOperationResult(v OperationResult) string {
	return fmt.Sprintf("%v.out.%s", v.Operation, v.Name)
}

func (f formatter) VisitOperatorArgument(v OperatorArgument) string {
	return fmt.Sprintf("%s.in.%s", f.operatorName(v.Operator), v.Name)
}

func (f formatter) VisitOperatorResult(v OperatorResult) string {
	return fmt.Sprintf("%s.out.%s", f.operatorName(v.Operator), v.Name)
}

func (f formatter) VisitField(v Field) string {
	return Format(f.c, f.c.Value(v.Parent)) + "." + v.Name
}

func (f formatter) VisitStore(v Store) string {
	if s, ok := f.c.storages[v.Storage]; ok {
		return fmt.Sprintf("store(%s)", s.Name())
	}
	return fmt.Sprintf("store(%s)", v.Storage)
}

func (f formatter) VisitConstant(v Constant) string {
	data, err := MarshalCanonical(literalToGo(v.Literal))
	if err != nil {
		return fmt.Sprintf("constant(%v)", v.Literal)
	}
	return string(data)
}

func (formatter) VisitPredicate(Predicate) string { return "predicate" }
func (formatter) VisitAny(Any) string             { return "any" }

// operatorName tolerates operators whose builder is still open.
func (f formatter) operatorName(id OperatorID) string {
	if f.c.operatorAllocated(id) && f.c.operators[id-1] != nil {
		return f.c.operators[id-1].name
	}
	return id.String()
}
