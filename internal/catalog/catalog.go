// Package catalog loads operator catalogs written in CUE into an IR graph.
//
// A catalog has three top-level sections:
//
//	storage: [name]: <type schema>
//	operator: [name]: {
//		inputs:  [input]: <type schema>
//		outputs: [output]: <type schema>
//		implementation?: {
//			operations: [label]: {operator: <name>, inputs: [input]: <expr>}
//			results: [output]: [...<expr>]
//		}
//	}
//	recipe: [name]: operations: [label]: {operator: <name>, inputs: [input]: <expr>}
//
// Operators may be declared in any order; they are built after the
// operators their implementations call. Within an implementation or recipe,
// operations are built in declaration order and may only refer to labels
// declared before them.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/google/uuid"

	"github.com/roach88/flowir/internal/fatal"
	"github.com/roach88/flowir/internal/ir"
	"github.com/roach88/flowir/internal/storage"
	"github.com/roach88/flowir/internal/types"
)

// Result is a compiled catalog.
type Result struct {
	Context   *ir.Context
	Operators map[string]ir.OperatorID
	Storages  map[string]storage.ID
	Recipes   map[string]*ir.Recipe
	FileCount int // number of CUE files, set by Load
}

// CompileError is a catalog error with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error // underlying construction error, if any
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

// operationDecl is one labelled operation inside an implementation or recipe.
type operationDecl struct {
	label    string
	operator string
	inputs   map[string]cue.Value
	value    cue.Value
}

// operatorDecl is a parsed but not yet built operator.
type operatorDecl struct {
	name       string
	value      cue.Value
	inputs     map[string]types.TypeSchema
	outputs    map[string]types.TypeSchema
	impl       bool
	operations []operationDecl
	results    map[string][]cue.Value
}

// compiler carries the state of one Compile call. field and pos track the
// construct being built so construction failures can be located.
type compiler struct {
	res   *Result
	field string
	pos   token.Pos
}

// Compile builds an IR context from a catalog value.
//
// Storage IDs default to a deterministic generator so that compiling the
// same catalog twice yields the same snapshot; pass ir.WithStorageIDs to
// override. Construction contract violations are returned as *CompileError
// carrying the fatal code in the message.
func Compile(v cue.Value, opts ...ir.Option) (*Result, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	defaults := []ir.Option{ir.WithStorageIDs(storage.NewSequentialGenerator(uuid.Nil))}
	c := &compiler{res: &Result{
		Context:   ir.NewContext(append(defaults, opts...)...),
		Operators: make(map[string]ir.OperatorID),
		Storages:  make(map[string]storage.ID),
		Recipes:   make(map[string]*ir.Recipe),
	}}

	var compileErr error
	caught := fatal.Catch(func() {
		compileErr = c.compile(v)
	})
	if caught != nil {
		code, _ := fatal.CodeOf(caught)
		c.res.Context.Logger().Error("ir construction failed",
			"code", string(code),
			"field", c.field,
			"error", caught.Error())
		return nil, &CompileError{Field: c.field, Message: caught.Error(), Pos: c.pos, Err: caught}
	}
	if compileErr != nil {
		return nil, compileErr
	}
	return c.res, nil
}

func (c *compiler) at(field string, v cue.Value) {
	c.field = field
	c.pos = v.Pos()
}

func (c *compiler) compile(v cue.Value) error {
	if err := c.compileStorages(v.LookupPath(cue.ParsePath("storage"))); err != nil {
		return err
	}
	if err := c.compileOperators(v.LookupPath(cue.ParsePath("operator"))); err != nil {
		return err
	}
	return c.compileRecipes(v.LookupPath(cue.ParsePath("recipe")))
}

func (c *compiler) compileStorages(v cue.Value) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		c.at("storage."+name, iter.Value())

		var ts types.TypeSchema
		if err := iter.Value().Decode(&ts); err != nil {
			return &CompileError{Field: c.field, Message: err.Error(), Pos: c.pos}
		}
		c.res.Storages[name] = c.res.Context.RegisterStorage(name, types.Decode(ts))
	}
	return nil
}

func (c *compiler) compileOperators(v cue.Value) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	var names []string
	decls := make(map[string]*operatorDecl)
	for iter.Next() {
		decl, err := parseOperator(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return err
		}
		names = append(names, decl.name)
		decls[decl.name] = decl
	}

	graph := make(dependencyGraph, len(names))
	for _, name := range names {
		for _, op := range decls[name].operations {
			if _, ok := decls[op.operator]; !ok {
				return &CompileError{
					Field:   fmt.Sprintf("operator.%s.implementation.operations.%s.operator", name, op.label),
					Message: fmt.Sprintf("unknown operator %q", op.operator),
					Pos:     op.value.Pos(),
				}
			}
			graph[name] = append(graph[name], op.operator)
		}
	}

	order, err := buildOrder(names, graph)
	if err != nil {
		return &CompileError{Field: "operator", Message: err.Error(), Pos: v.Pos()}
	}

	for _, name := range order {
		if err := c.buildOperator(decls[name]); err != nil {
			return err
		}
	}
	return nil
}

func parseOperator(name string, v cue.Value) (*operatorDecl, error) {
	decl := &operatorDecl{name: name, value: v}

	var err error
	if decl.inputs, err = decodeTypeMap(v, "inputs"); err != nil {
		return nil, err
	}
	if decl.outputs, err = decodeTypeMap(v, "outputs"); err != nil {
		return nil, err
	}

	implVal := v.LookupPath(cue.ParsePath("implementation"))
	if !implVal.Exists() {
		return decl, nil
	}
	decl.impl = true

	prefix := "operator." + name + ".implementation"
	if decl.operations, err = parseOperations(implVal.LookupPath(cue.ParsePath("operations")), prefix); err != nil {
		return nil, err
	}

	resultsVal := implVal.LookupPath(cue.ParsePath("results"))
	if !resultsVal.Exists() {
		return decl, nil
	}
	results, err := resultsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	decl.results = make(map[string][]cue.Value)
	for results.Next() {
		output := results.Selector().Unquoted()
		list, err := results.Value().List()
		if err != nil {
			return nil, &CompileError{
				Field:   prefix + ".results." + output,
				Message: "results must be a list of expressions",
				Pos:     results.Value().Pos(),
			}
		}
		for list.Next() {
			decl.results[output] = append(decl.results[output], list.Value())
		}
	}
	return decl, nil
}

func decodeTypeMap(v cue.Value, section string) (map[string]types.TypeSchema, error) {
	out := make(map[string]types.TypeSchema)
	sv := v.LookupPath(cue.ParsePath(section))
	if !sv.Exists() {
		return out, nil
	}
	if err := sv.Decode(&out); err != nil {
		return nil, &CompileError{Field: section, Message: err.Error(), Pos: sv.Pos()}
	}
	return out, nil
}

func parseOperations(v cue.Value, prefix string) ([]operationDecl, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var ops []operationDecl
	for iter.Next() {
		label := iter.Selector().Unquoted()
		opVal := iter.Value()
		field := prefix + ".operations." + label

		nameVal := opVal.LookupPath(cue.ParsePath("operator"))
		if !nameVal.Exists() {
			return nil, &CompileError{Field: field + ".operator", Message: "operator is required", Pos: opVal.Pos()}
		}
		operator, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		decl := operationDecl{label: label, operator: operator, inputs: make(map[string]cue.Value), value: opVal}
		inputsVal := opVal.LookupPath(cue.ParsePath("inputs"))
		if inputsVal.Exists() {
			inputs, err := inputsVal.Fields()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for inputs.Next() {
				decl.inputs[inputs.Selector().Unquoted()] = inputs.Value()
			}
		}
		ops = append(ops, decl)
	}
	return ops, nil
}

func (c *compiler) buildOperator(decl *operatorDecl) error {
	ctx := c.res.Context
	c.at("operator."+decl.name, decl.value)

	b := ctx.NewOperatorBuilder(decl.name)
	for _, name := range slices.Sorted(maps.Keys(decl.inputs)) {
		c.at("operator."+decl.name+".inputs."+name, decl.value)
		b.AddInput(name, types.Decode(decl.inputs[name]))
	}
	for _, name := range slices.Sorted(maps.Keys(decl.outputs)) {
		c.at("operator."+decl.name+".outputs."+name, decl.value)
		b.AddOutput(name, types.Decode(decl.outputs[name]))
	}

	var implErr error
	if decl.impl {
		b.AddImplementation(func(b *ir.OperatorBuilder, self ir.Signature) {
			scope := &exprScope{ctx: ctx, self: &self, labels: make(map[string]ir.OperationID), storages: c.res.Storages}
			prefix := "operator." + decl.name + ".implementation"

			for _, op := range decl.operations {
				inputs, err := c.compileInputs(scope, op, prefix)
				if err != nil {
					implErr = err
					return
				}
				c.at(prefix+".operations."+op.label, op.value)
				scope.labels[op.label] = b.AddOperation(c.res.Operators[op.operator], inputs)
			}

			for _, output := range slices.Sorted(maps.Keys(decl.results)) {
				for i, ev := range decl.results[output] {
					field := fmt.Sprintf("%s.results.%s[%d]", prefix, output, i)
					v, err := decodeExpr(scope, ev, field)
					if err != nil {
						implErr = err
						return
					}
					c.at(field, ev)
					b.AddResult(output, v)
				}
			}
		})
	}
	if implErr != nil {
		return implErr
	}

	c.res.Operators[decl.name] = ctx.RegisterOperator(b.Build())
	return nil
}

func (c *compiler) compileInputs(scope *exprScope, op operationDecl, prefix string) (map[string]ir.Value, error) {
	inputs := make(map[string]ir.Value, len(op.inputs))
	for _, name := range slices.Sorted(maps.Keys(op.inputs)) {
		field := fmt.Sprintf("%s.operations.%s.inputs.%s", prefix, op.label, name)
		v, err := decodeExpr(scope, op.inputs[name], field)
		if err != nil {
			return nil, err
		}
		inputs[name] = v
	}
	return inputs, nil
}

// decodeExpr keeps integers exact by decoding numbers as json.Number.
func decodeExpr(scope *exprScope, v cue.Value, field string) (ir.Value, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return scope.compileExpr(raw, field, v.Pos())
}

func (c *compiler) compileRecipes(v cue.Value) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		prefix := "recipe." + name
		ops, err := parseOperations(iter.Value().LookupPath(cue.ParsePath("operations")), prefix)
		if err != nil {
			return err
		}

		recipe := c.res.Context.NewRecipe(name)
		scope := &exprScope{ctx: c.res.Context, labels: make(map[string]ir.OperationID), storages: c.res.Storages}
		for _, op := range ops {
			id, ok := c.res.Operators[op.operator]
			if !ok {
				return &CompileError{
					Field:   prefix + ".operations." + op.label + ".operator",
					Message: fmt.Sprintf("unknown operator %q", op.operator),
					Pos:     op.value.Pos(),
				}
			}
			inputs, err := c.compileInputs(scope, op, prefix)
			if err != nil {
				return err
			}
			c.at(prefix+".operations."+op.label, op.value)
			scope.labels[op.label] = recipe.AddOperation(id, inputs)
		}
		c.res.Recipes[name] = recipe
	}
	return nil
}

// IsCompileError reports whether err is (or wraps) a *CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}
