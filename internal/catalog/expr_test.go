package catalog

import (
	"testing"

	"cuelang.org/go/cue/token"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowir/internal/ir"
	"github.com/roach88/flowir/internal/storage"
	"github.com/roach88/flowir/internal/types"
)

func newScope(t *testing.T) (*exprScope, ir.OperationID) {
	t.Helper()
	ctx := ir.NewContext(ir.WithStorageIDs(storage.NewSequentialGenerator(uuid.Nil)))
	text := types.Primitive{Name: "Text"}

	id := ctx.RegisterOperator(ctx.NewOperatorBuilder("id").
		AddInput("input", text).
		AddOutput("output", text).
		Build())
	op := ctx.NewOperation(id, map[string]ir.Value{"input": ir.Any{}})

	b := ctx.NewOperatorBuilder("self").AddInput("bar", text).AddOutput("foo", text)
	var self ir.Signature
	b.AddImplementation(func(_ *ir.OperatorBuilder, s ir.Signature) { self = s })

	return &exprScope{
		ctx:      ctx,
		self:     &self,
		labels:   map[string]ir.OperationID{"call": op},
		storages: map[string]storage.ID{"h1": ctx.RegisterStorage("h1", text)},
	}, op
}

func TestCompileExpr(t *testing.T) {
	s, op := newScope(t)

	tests := []struct {
		name string
		raw  map[string]any
		want ir.Value
	}{
		{"argument", map[string]any{"argument": "bar"}, ir.OperatorArgument{Operator: s.self.ID, Name: "bar"}},
		{"output", map[string]any{"output": "foo"}, ir.OperatorResult{Operator: s.self.ID, Name: "foo"}},
		{"input", map[string]any{"input": "call.input"}, ir.OperationArgument{Operation: op, Name: "input"}},
		{"result", map[string]any{"result": "call.output"}, ir.OperationResult{Operation: op, Name: "output"}},
		{"store", map[string]any{"store": "h1"}, ir.Store{Storage: s.storages["h1"]}},
		{"constant", map[string]any{"constant": int64(7)}, ir.Constant{Literal: ir.IntLit(7)}},
		{"null constant", map[string]any{"constant": nil}, ir.Constant{Literal: ir.NullLit{}}},
		{"predicate", map[string]any{"predicate": map[string]any{}}, ir.Predicate{}},
		{"any", map[string]any{"any": map[string]any{}}, ir.Any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.compileExpr(tt.raw, "x", token.NoPos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileExprNestedField(t *testing.T) {
	s, _ := newScope(t)

	got, err := s.compileExpr(map[string]any{
		"field": map[string]any{
			"of":   map[string]any{"field": map[string]any{"of": map[string]any{"argument": "bar"}, "name": "x"}},
			"name": "y",
		},
	}, "x", token.NoPos)
	require.NoError(t, err)

	root, path := s.ctx.FieldPath(got)
	assert.Equal(t, ir.OperatorArgument{Operator: s.self.ID, Name: "bar"}, root)
	assert.Equal(t, []string{"x", "y"}, path)
}

func TestCompileExprErrors(t *testing.T) {
	s, _ := newScope(t)

	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"not a struct", "bar", "exactly one of"},
		{"two keys", map[string]any{"any": map[string]any{}, "predicate": map[string]any{}}, "exactly one of"},
		{"unknown key", map[string]any{"bogus": 1}, "bogus"},
		{"undeclared argument", map[string]any{"argument": "nope"}, `has no input "nope"`},
		{"undeclared output", map[string]any{"output": "nope"}, `has no output "nope"`},
		{"bad reference", map[string]any{"result": "call"}, "label.name"},
		{"forward reference", map[string]any{"result": "later.out"}, `"later" is not defined before use`},
		{"unknown storage", map[string]any{"store": "h9"}, `unknown storage "h9"`},
		{"float constant", map[string]any{"constant": 1.5}, "float"},
		{"field without name", map[string]any{"field": map[string]any{"of": map[string]any{"any": map[string]any{}}}}, "field name is required"},
		{"field without parent", map[string]any{"field": map[string]any{"name": "x"}}, "exactly one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.compileExpr(tt.raw, "x", token.NoPos)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileExprOutsideImplementation(t *testing.T) {
	s, _ := newScope(t)
	s.self = nil

	_, err := s.compileExpr(map[string]any{"argument": "bar"}, "recipe.r", token.NoPos)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only valid inside an operator implementation")
}
