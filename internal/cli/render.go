package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/flowir/internal/ir"
	"github.com/roach88/flowir/internal/types"
)

// renderGraph writes a human-readable listing of every storage, operator
// and recipe in c.
func renderGraph(w io.Writer, c *ir.Context) {
	for _, id := range c.Storages() {
		s := c.Storage(id)
		fmt.Fprintf(w, "storage %s: %s\n", s.Name(), s.Type())
	}

	for _, id := range c.Operators() {
		op := c.Operator(id)
		fmt.Fprintf(w, "operator %s(%s) -> (%s)\n", op.Name(), declList(op.InputDecls()), declList(op.OutputDecls()))
		impl := op.Implementation()
		if impl == nil {
			continue
		}
		for _, opID := range impl.Operations() {
			renderOperation(w, c, opID)
		}
		for _, name := range op.OutputNames() {
			var alts []string
			for _, v := range impl.Result(name) {
				alts = append(alts, ir.Format(c, v))
			}
			fmt.Fprintf(w, "  result %s <- %s\n", name, strings.Join(alts, " | "))
		}
	}

	for _, r := range c.Recipes() {
		fmt.Fprintf(w, "recipe %s\n", r.Name())
		for _, opID := range r.Operations() {
			renderOperation(w, c, opID)
		}
	}
}

func renderOperation(w io.Writer, c *ir.Context, id ir.OperationID) {
	operation := c.Operation(id)
	var args []string
	for _, name := range operation.InputNames() {
		v, _ := operation.Input(name)
		args = append(args, name+": "+ir.Format(c, v))
	}
	fmt.Fprintf(w, "  %v = %s(%s)\n", id, operation.Op().Name(), strings.Join(args, ", "))
}

func declList(decls []ir.DataDecl) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.Name + ": " + typeName(d.Type)
	}
	return strings.Join(parts, ", ")
}

// typeName prefers the entity's own name over its full schema rendering.
func typeName(t types.Type) string {
	if e, ok := t.(types.Entity); ok && len(e.Schema.Names) > 0 {
		return strings.Join(e.Schema.Names, " ")
	}
	return t.String()
}
