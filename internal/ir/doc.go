// Package ir is the graph model of the flow analysis IR.
//
// The model has three node kinds:
//   - Operator: a named computation signature with typed inputs and outputs,
//     optionally backed by an Implementation sub-graph
//   - Operation: a call of an Operator with a Value bound to every input
//   - Value: a symbolic expression (nine closed variants) connecting them
//
// Information-flow assertions such as tag claims and derivations are
// ordinary operations over Predicate values, so analysis passes treat
// computation and policy uniformly.
//
// A Context is the arena for one graph. Nodes refer to each other by typed
// IDs resolved through the Context, never by pointer. Operators are built
// with an OperatorBuilder and then registered.
//
// Key design constraints:
//   - construction contract violations abort immediately (package fatal)
//   - Field parents are interned first, so parent chains are acyclic
//   - no float literals; snapshots are canonical JSON (RFC 8785 ordering)
package ir
