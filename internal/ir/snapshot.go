package ir

import "github.com/roach88/flowir/internal/types"

// Snapshot renders the whole context as plain Go values suitable for
// MarshalCanonical. Operators appear in registration order, operations and
// values in arena order, and maps carry sorted keys once marshaled.
//
// IDs are emitted as int64; storages are referenced by their UUID string.
func Snapshot(c *Context) map[string]any {
	operators := make([]any, 0, len(c.registered))
	for _, id := range c.registered {
		operators = append(operators, operatorSnapshot(c.operators[id-1]))
	}

	operations := make([]any, 0, len(c.operations))
	for _, op := range c.operations {
		operations = append(operations, map[string]any{
			"id":       int64(op.id),
			"operator": int64(op.operator),
			"scope":    int64(op.scope),
			"inputs":   valueMapSnapshot(op.inputs),
		})
	}

	values := make([]any, 0, len(c.values))
	for i, v := range c.values {
		values = append(values, map[string]any{
			"id":    int64(i + 1),
			"value": valueSnapshot(v),
		})
	}

	storages := make([]any, 0, len(c.storageOrder))
	for _, id := range c.storageOrder {
		s := c.storages[id]
		storages = append(storages, map[string]any{
			"id":   s.ID().String(),
			"name": s.Name(),
			"type": typeSnapshot(s.Type()),
		})
	}

	recipes := make([]any, 0, len(c.recipes))
	for _, r := range c.recipes {
		recipes = append(recipes, map[string]any{
			"name":       r.name,
			"operations": idList(r.operations),
		})
	}

	return map[string]any{
		"version":    IRVersion,
		"operators":  operators,
		"operations": operations,
		"values":     values,
		"storages":   storages,
		"recipes":    recipes,
	}
}

func operatorSnapshot(op *Operator) map[string]any {
	out := map[string]any{
		"id":             int64(op.id),
		"name":           op.name,
		"inputs":         typeMapSnapshot(op.inputs),
		"outputs":        typeMapSnapshot(op.outputs),
		"implementation": nil,
	}
	if op.impl != nil {
		results := make(map[string]any, len(op.impl.results))
		for name, vals := range op.impl.results {
			alts := make([]any, len(vals))
			for i, v := range vals {
				alts[i] = valueSnapshot(v)
			}
			results[name] = alts
		}
		out["implementation"] = map[string]any{
			"operations": idList(op.impl.operations),
			"results":    results,
		}
	}
	return out
}

func idList[ID ~uint32](ids []ID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func typeMapSnapshot(m map[string]types.Type) map[string]any {
	out := make(map[string]any, len(m))
	for name, t := range m {
		out[name] = typeSnapshot(t)
	}
	return out
}

func valueMapSnapshot(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for name, v := range m {
		out[name] = valueSnapshot(v)
	}
	return out
}

// typeSnapshot goes through the interchange schema so snapshots and
// catalogs describe types the same way.
func typeSnapshot(t types.Type) any {
	if t == nil {
		return nil
	}
	return schemaSnapshot(types.Encode(t))
}

func schemaSnapshot(ts types.TypeSchema) map[string]any {
	switch {
	case ts.Primitive != nil:
		return map[string]any{"primitive": map[string]any{"name": ts.Primitive.Name}}
	case ts.Entity != nil && ts.Entity.Schema != nil:
		fields := make(map[string]any, len(ts.Entity.Schema.Fields))
		for name, f := range ts.Entity.Schema.Fields {
			fields[name] = schemaSnapshot(f)
		}
		names := make([]any, len(ts.Entity.Schema.Names))
		for i, n := range ts.Entity.Schema.Names {
			names[i] = n
		}
		return map[string]any{"entity": map[string]any{"schema": map[string]any{
			"names":  names,
			"fields": fields,
		}}}
	}
	return map[string]any{}
}

func valueSnapshot(v Value) map[string]any {
	return Visit[map[string]any](v, snapshotter{})
}

// snapshotter renders each value variant as {"kind": ..., fields...}.
type snapshotter struct{}

func (snapshotter) VisitOperationArgument(v OperationArgument) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "operation": int64(v.Operation), "name": v.Name}
}

func (snapshotter) VisitOperationResult(v OperationResult) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "operation": int64(v.Operation), "name": v.Name}
}

func (snapshotter) VisitOperatorArgument(v OperatorArgument) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "operator": int64(v.Operator), "name": v.Name}
}

func (snapshotter) VisitOperatorResult(v OperatorResult) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "operator": int64(v.Operator), "name": v.Name}
}

func (snapshotter) VisitField(v Field) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "parent": int64(v.Parent), "name": v.Name}
}

func (snapshotter) VisitStore(v Store) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "storage": v.Storage.String()}
}

func (snapshotter) VisitConstant(v Constant) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "literal": literalToGo(v.Literal)}
}

func (snapshotter) VisitPredicate(v Predicate) map[string]any {
	return map[string]any{"kind": v.Kind().String()}
}

func (snapshotter) VisitAny(v Any) map[string]any {
	return map[string]any{"kind": v.Kind().String()}
}
