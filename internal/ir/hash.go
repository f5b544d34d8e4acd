package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainOperator = "flowir/operator/v1"
	DomainSnapshot = "flowir/snapshot/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a structural hash of one registered operator: its
// name, declared types and implementation. The hashed form carries no
// context-relative IDs. Operations inside the implementation are referred to
// by their position in it, the operator's own arguments and results by slot
// name, other operators by name, storages by name, and Field values by their
// full root-and-path chain. The same operator therefore fingerprints the same
// wherever it sits in a context.
func Fingerprint(c *Context, id OperatorID) (string, error) {
	canonical, err := MarshalCanonical(fingerprintForm(c, c.Operator(id)))
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal %v: %w", id, err)
	}
	return hashWithDomain(DomainOperator, canonical), nil
}

func fingerprintForm(c *Context, op *Operator) map[string]any {
	out := map[string]any{
		"name":           op.name,
		"inputs":         typeMapSnapshot(op.inputs),
		"outputs":        typeMapSnapshot(op.outputs),
		"implementation": nil,
	}
	if op.impl == nil {
		return out
	}

	fp := structural{c: c, self: op.id, index: make(map[OperationID]int, len(op.impl.operations))}
	for i, oid := range op.impl.operations {
		fp.index[oid] = i
	}

	operations := make([]any, len(op.impl.operations))
	for i, oid := range op.impl.operations {
		operation := c.Operation(oid)
		inputs := make(map[string]any, len(operation.inputs))
		for name, v := range operation.inputs {
			inputs[name] = fp.value(v)
		}
		operations[i] = map[string]any{
			"operator": c.Operator(operation.operator).name,
			"inputs":   inputs,
		}
	}

	results := make(map[string]any, len(op.impl.results))
	for name, vals := range op.impl.results {
		alts := make([]any, len(vals))
		for i, v := range vals {
			alts[i] = fp.value(v)
		}
		results[name] = alts
	}

	out["implementation"] = map[string]any{
		"operations": operations,
		"results":    results,
	}
	return out
}

// structural renders values without context-relative IDs.
type structural struct {
	c     *Context
	self  OperatorID
	index map[OperationID]int // position within self's implementation
}

func (s structural) value(v Value) map[string]any {
	return Visit[map[string]any](v, s)
}

func (s structural) operation(id OperationID) any {
	if i, ok := s.index[id]; ok {
		return int64(i)
	}
	// Validate reports references that escape the implementation (E305).
	return id.String()
}

func (s structural) operator(id OperatorID) any {
	if id == s.self {
		return "self"
	}
	return s.c.Operator(id).name
}

func (s structural) VisitOperationArgument(v OperationArgument) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "operation": s.operation(v.Operation), "name": v.Name}
}

func (s structural) VisitOperationResult(v OperationResult) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "operation": s.operation(v.Operation), "name": v.Name}
}

func (s structural) VisitOperatorArgument(v OperatorArgument) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "operator": s.operator(v.Operator), "name": v.Name}
}

func (s structural) VisitOperatorResult(v OperatorResult) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "operator": s.operator(v.Operator), "name": v.Name}
}

func (s structural) VisitField(v Field) map[string]any {
	root, path := s.c.FieldPath(v)
	names := make([]any, len(path))
	for i, name := range path {
		names[i] = name
	}
	return map[string]any{"kind": v.Kind().String(), "root": s.value(root), "path": names}
}

func (s structural) VisitStore(v Store) map[string]any {
	st := s.c.Storage(v.Storage)
	return map[string]any{"kind": v.Kind().String(), "storage": st.Name(), "type": typeSnapshot(st.Type())}
}

func (structural) VisitConstant(v Constant) map[string]any {
	return map[string]any{"kind": v.Kind().String(), "literal": literalToGo(v.Literal)}
}

func (structural) VisitPredicate(v Predicate) map[string]any {
	return map[string]any{"kind": v.Kind().String()}
}

func (structural) VisitAny(v Any) map[string]any {
	return map[string]any{"kind": v.Kind().String()}
}

// SnapshotHash computes the content address of a whole context. Two
// contexts built by the same sequence of calls with the same storage ID
// generator hash identically.
func SnapshotHash(c *Context) (string, error) {
	canonical, err := MarshalCanonical(Snapshot(c))
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(c *Context, id OperatorID) string {
	fp, err := Fingerprint(c, id)
	if err != nil {
		panic(err)
	}
	return fp
}

// MustSnapshotHash is like SnapshotHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSnapshotHash(c *Context) string {
	h, err := SnapshotHash(c)
	if err != nil {
		panic(err)
	}
	return h
}
