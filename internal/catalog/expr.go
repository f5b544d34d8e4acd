package catalog

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"cuelang.org/go/cue/token"
	"github.com/mitchellh/mapstructure"

	"github.com/roach88/flowir/internal/ir"
	"github.com/roach88/flowir/internal/storage"
)

// exprSpec is the decoded form of a value expression. Exactly one key is
// set; the decoder rejects keys it does not know.
type exprSpec struct {
	Argument  string         `mapstructure:"argument"`
	Output    string         `mapstructure:"output"`
	Input     string         `mapstructure:"input"`
	Result    string         `mapstructure:"result"`
	Field     fieldSpec      `mapstructure:"field"`
	Store     string         `mapstructure:"store"`
	Constant  any            `mapstructure:"constant"`
	Predicate map[string]any `mapstructure:"predicate"`
	Any       map[string]any `mapstructure:"any"`
}

type fieldSpec struct {
	Of   map[string]any `mapstructure:"of"`
	Name string         `mapstructure:"name"`
}

// exprScope resolves the names an expression may mention.
type exprScope struct {
	ctx      *ir.Context
	self     *ir.Signature // nil in recipes
	labels   map[string]ir.OperationID
	storages map[string]storage.ID
}

// compileExpr turns a decoded expression into an ir.Value. field and pos
// locate the expression for error messages.
func (s *exprScope) compileExpr(raw any, field string, pos token.Pos) (ir.Value, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expression must be a struct with exactly one of %s", strings.Join(exprKinds, ", ")),
			Pos:     pos,
		}
	}
	kind := slices.Collect(maps.Keys(m))[0]

	var spec exprSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &spec,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: pos}
	}

	fail := func(format string, args ...any) (ir.Value, error) {
		return nil, &CompileError{Field: field + "." + kind, Message: fmt.Sprintf(format, args...), Pos: pos}
	}

	switch kind {
	case "argument", "output":
		if s.self == nil {
			return fail("%s is only valid inside an operator implementation", kind)
		}
		if kind == "argument" {
			if _, ok := s.self.Inputs[spec.Argument]; !ok {
				return fail("operator %q has no input %q", s.self.Name, spec.Argument)
			}
			return s.self.Argument(spec.Argument), nil
		}
		if _, ok := s.self.Outputs[spec.Output]; !ok {
			return fail("operator %q has no output %q", s.self.Name, spec.Output)
		}
		return s.self.Result(spec.Output), nil

	case "input", "result":
		ref := spec.Input
		if kind == "result" {
			ref = spec.Result
		}
		label, name, ok := strings.Cut(ref, ".")
		if !ok || label == "" || name == "" {
			return fail("reference %q must have the form label.name", ref)
		}
		id, ok := s.labels[label]
		if !ok {
			return fail("operation %q is not defined before use", label)
		}
		if kind == "input" {
			return ir.OperationArgument{Operation: id, Name: name}, nil
		}
		return ir.OperationResult{Operation: id, Name: name}, nil

	case "field":
		if spec.Field.Name == "" {
			return fail("field name is required")
		}
		parent, err := s.compileExpr(spec.Field.Of, field+".field.of", pos)
		if err != nil {
			return nil, err
		}
		return s.ctx.NewField(parent, spec.Field.Name), nil

	case "store":
		id, ok := s.storages[spec.Store]
		if !ok {
			return fail("unknown storage %q", spec.Store)
		}
		return ir.Store{Storage: id}, nil

	case "constant":
		lit, err := ir.LiteralFromGo(spec.Constant)
		if err != nil {
			return fail("%v", err)
		}
		return ir.Constant{Literal: lit}, nil

	case "predicate":
		return ir.Predicate{}, nil

	case "any":
		return ir.Any{}, nil
	}

	return fail("unknown expression kind %q", kind)
}

var exprKinds = []string{"argument", "output", "input", "result", "field", "store", "constant", "predicate", "any"}
