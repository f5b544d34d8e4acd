package catalog

import (
	"bytes"
	"log/slog"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowir/internal/fatal"
	"github.com/roach88/flowir/internal/ir"
	"github.com/roach88/flowir/internal/types"
)

func compileString(t *testing.T, src string) (*Result, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("test.cue"))
	return Compile(v)
}

func requireCompileError(t *testing.T, err error) *CompileError {
	t.Helper()
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok, "expected *CompileError, got %T: %v", err, err)
	return ce
}

func TestLoadReferenceCatalog(t *testing.T) {
	res, err := Load("testdata/arcs")
	require.NoError(t, err)
	ctx := res.Context

	assert.Equal(t, 2, res.FileCount)
	assert.Len(t, res.Operators, 5)
	assert.Len(t, res.Storages, 2)
	require.Contains(t, res.Recipes, "R")

	p1 := ctx.Operator(res.Operators["arcs.particle.P1"])
	require.False(t, p1.IsPrimitive())
	assert.Equal(t, "Bar {x: Text, y: Text}", p1.Inputs()["bar"].String())

	ops := p1.Implementation().Operations()
	require.Len(t, ops, 2)
	claim := ctx.Operation(ops[0])
	assert.Equal(t, "arcs.tag_claim", claim.Op().Name())

	input, _ := claim.Input("input")
	assert.Equal(t, "arcs.particle.P1.in.bar.x", ir.Format(ctx, input))
	pred, _ := claim.Input("predicate")
	assert.Equal(t, ir.Predicate{}, pred)

	foo := ctx.Operation(ops[1])
	a, _ := foo.Input("a")
	assert.Equal(t, ir.OperationResult{Operation: claim.ID(), Name: "output"}, a)
	assert.Equal(t, []ir.Value{ir.OperationResult{Operation: foo.ID(), Name: "value"}}, p1.Implementation().Result("foo"))

	recipe := res.Recipes["R"].Operations()
	require.Len(t, recipe, 2)
	write := ctx.Operation(recipe[1])
	assert.Equal(t, "core.write", write.Op().Name())
	tgt, _ := write.Input("tgt")
	assert.Equal(t, "store(h2)", ir.Format(ctx, tgt))
	src, _ := write.Input("src")
	assert.Equal(t, ir.OperationResult{Operation: recipe[0], Name: "foo"}, src)

	assert.Empty(t, ir.Validate(ctx))
}

func TestLoadIsDeterministic(t *testing.T) {
	a, err := Load("testdata/arcs")
	require.NoError(t, err)
	b, err := Load("testdata/arcs")
	require.NoError(t, err)

	assert.Equal(t, ir.MustSnapshotHash(a.Context), ir.MustSnapshotHash(b.Context))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		code string
	}{
		{"missing", "testdata/does-not-exist", ErrCodeNotFound},
		{"file", "testdata/arcs/catalog.cue", ErrCodeNotFound},
		{"empty", t.TempDir(), ErrCodeNoFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.dir)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code)
		})
	}
}

func TestCompileOrdersOperatorsByDependency(t *testing.T) {
	res, err := compileString(t, `
#T: primitive: name: "Int"
operator: {
	outer: {
		outputs: out: #T
		implementation: {
			operations: call: {operator: "inner", inputs: {}}
			results: out: [{result: "call.out"}]
		}
	}
	inner: outputs: out: #T
}
`)
	require.NoError(t, err)

	assert.Less(t, uint32(res.Operators["inner"]), uint32(res.Operators["outer"]))
	assert.Equal(t, []ir.OperatorID{res.Operators["inner"], res.Operators["outer"]}, res.Context.Operators())
}

func TestCompileDependencyCycle(t *testing.T) {
	_, err := Load("testdata/cycle")
	ce := requireCompileError(t, err)

	assert.Equal(t, "operator", ce.Field)
	assert.Contains(t, ce.Message, "dependency cycle")
	assert.Contains(t, ce.Message, "a -> b -> a")
}

func TestCompileUnknownOperator(t *testing.T) {
	_, err := compileString(t, `
operator: p: implementation: operations: x: {operator: "nope"}
`)
	ce := requireCompileError(t, err)
	assert.Equal(t, "operator.p.implementation.operations.x.operator", ce.Field)
	assert.Contains(t, ce.Message, `unknown operator "nope"`)
	assert.True(t, ce.Pos.IsValid())
}

func TestCompileSurfacesConstructionErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
		code  string
	}{
		{
			name:  "optional type",
			src:   `storage: h: {primitive: name: "Text", optional: true}`,
			field: "storage.h",
			code:  "E221",
		},
		{
			name:  "refinement",
			src:   `operator: p: inputs: x: {primitive: name: "Int", refinement: expression: "x > 0"}`,
			field: "operator.p.inputs.x",
			code:  "E222",
		},
		{
			name:  "unset type",
			src:   `operator: p: outputs: y: {}`,
			field: "operator.p.outputs.y",
			code:  "E220",
		},
		{
			name: "arity mismatch",
			src: `
operator: {
	id: {inputs: a: primitive: name: "T", outputs: b: primitive: name: "T"}
	r: implementation: operations: call: {operator: "id", inputs: {}}
}`,
			field: "operator.r.implementation.operations.call",
			code:  "E203",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src)
			ce := requireCompileError(t, err)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Message, "["+tt.code+"]")

			code, ok := fatal.CodeOf(err)
			require.True(t, ok, "compile error should unwrap to *fatal.Error")
			assert.Equal(t, fatal.Code(tt.code), code)
		})
	}
}

func TestCompileLogsConstructionErrorsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	v := cuecontext.New().CompileString(`operator: p: outputs: y: {}`, cue.Filename("test.cue"))
	_, err := Compile(v, ir.WithLogger(logger))
	requireCompileError(t, err)

	assert.Contains(t, buf.String(), `"msg":"ir construction failed"`)
	assert.Contains(t, buf.String(), `"code":"E220"`)
	assert.Contains(t, buf.String(), `"field":"operator.p.outputs.y"`)
}

func TestCompileCUEError(t *testing.T) {
	_, err := compileString(t, `storage: h: {`)
	ce := requireCompileError(t, err)
	assert.Equal(t, "cue", ce.Field)
	assert.True(t, ce.Pos.IsValid())
}

func TestCompileRecipeConstants(t *testing.T) {
	res, err := compileString(t, `
#T: primitive: name: "Text"
operator: sink: inputs: {v: #T, w: #T}
recipe: main: operations: s: {
	operator: "sink"
	inputs: {
		v: constant: {tags: ["userSelection"], n: 3}
		w: any: {}
	}
}
`)
	require.NoError(t, err)

	ops := res.Recipes["main"].Operations()
	require.Len(t, ops, 1)
	op := res.Context.Operation(ops[0])

	v, _ := op.Input("v")
	assert.Equal(t, ir.Constant{Literal: ir.RecordLit{
		"tags": ir.ListLit{ir.StringLit("userSelection")},
		"n":    ir.IntLit(3),
	}}, v)
	w, _ := op.Input("w")
	assert.Equal(t, ir.Any{}, w)

	sink := res.Context.Operator(res.Operators["sink"])
	assert.True(t, types.Equal(types.Primitive{Name: "Text"}, sink.Inputs()["v"]))
}
