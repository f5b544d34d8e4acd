package ir

import (
	"log/slog"
	"slices"

	"github.com/roach88/flowir/internal/fatal"
	"github.com/roach88/flowir/internal/storage"
	"github.com/roach88/flowir/internal/types"
)

// Context is the session arena for one IR graph. It owns every registered
// operator, every operation, every interned value and every storage handle,
// and hands out stable IDs for them. Nothing is ever removed; the arena is
// released with the Context.
//
// Thread-safety: Context is not safe for concurrent use. Construction is
// single-writer; callers must serialize access.
type Context struct {
	logger     *slog.Logger
	storageIDs storage.IDGenerator

	// Slot i holds OperatorID(i+1). A nil slot is reserved by a builder
	// that has not been registered yet.
	operators  []*Operator
	registered []OperatorID
	byName     map[string][]OperatorID

	operations []*Operation
	values     []Value

	storages     map[storage.ID]*storage.Storage
	storageOrder []storage.ID

	recipes []*Recipe
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for construction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// WithStorageIDs sets the generator for storage IDs.
//
// Default: storage.UUIDv7Generator.
// Use storage.NewSequentialGenerator for reproducible snapshots.
func WithStorageIDs(gen storage.IDGenerator) Option {
	return func(c *Context) {
		c.storageIDs = gen
	}
}

// NewContext creates an empty Context.
func NewContext(opts ...Option) *Context {
	c := &Context{
		logger:     slog.Default(),
		storageIDs: storage.UUIDv7Generator{},
		byName:     make(map[string][]OperatorID),
		storages:   make(map[storage.ID]*storage.Storage),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logger returns the logger set with WithLogger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// reserveOperator allocates an OperatorID for a builder.
func (c *Context) reserveOperator() OperatorID {
	c.operators = append(c.operators, nil)
	return OperatorID(len(c.operators))
}

func (c *Context) operatorAllocated(id OperatorID) bool {
	return id.IsValid() && int(id) <= len(c.operators)
}

// RegisterOperator takes ownership of a built operator and returns its
// stable ID. Operators with the same name are not deduplicated: each call
// registers a distinct entry.
func (c *Context) RegisterOperator(op *Operator) OperatorID {
	fatal.Check(op != nil, fatal.ErrBadRegistration, "cannot register nil operator")
	fatal.Check(op.owner == c, fatal.ErrBadRegistration, "operator %q was built for a different context", op.name)
	fatal.Check(c.operators[op.id-1] == nil, fatal.ErrBadRegistration, "operator %q (%v) is already registered", op.name, op.id)

	c.operators[op.id-1] = op
	c.registered = append(c.registered, op.id)
	c.byName[op.name] = append(c.byName[op.name], op.id)

	c.logger.Debug("registered operator",
		"operator", op.name,
		"id", uint32(op.id),
		"inputs", len(op.inputs),
		"outputs", len(op.outputs),
		"primitive", op.IsPrimitive(),
	)
	return op.id
}

// Operator returns the registered operator with the given ID.
// Fails fast if the ID is unknown or only reserved.
func (c *Context) Operator(id OperatorID) *Operator {
	fatal.Check(c.operatorAllocated(id), fatal.ErrUnknownOperator, "unknown operator %v", id)
	op := c.operators[id-1]
	fatal.Check(op != nil, fatal.ErrUnknownOperator, "operator %v is not registered yet", id)
	return op
}

// Operators returns the registered operator IDs in registration order.
func (c *Context) Operators() []OperatorID { return slices.Clone(c.registered) }

// OperatorsNamed returns every registered operator with the given name,
// in registration order.
func (c *Context) OperatorsNamed(name string) []OperatorID { return slices.Clone(c.byName[name]) }

// NewOperation creates a top-level operation (an instance) calling op with
// the given inputs. The bound input names must be exactly the operator's
// declared inputs.
func (c *Context) NewOperation(op OperatorID, inputs map[string]Value) OperationID {
	return c.newOperation(NoOperatorID, op, inputs).id
}

func (c *Context) newOperation(scope, opID OperatorID, inputs map[string]Value) *Operation {
	op := c.Operator(opID)
	fatal.Check(len(inputs) == len(op.inputs), fatal.ErrInputCount,
		"operation of %q binds %d input(s), operator declares %d", op.name, len(inputs), len(op.inputs))

	bound := make(map[string]Value, len(inputs))
	for name, v := range inputs {
		_, ok := op.inputs[name]
		fatal.Check(ok, fatal.ErrInputName, "operation of %q binds undeclared input %q", op.name, name)
		c.checkValue(v)
		bound[name] = v
	}

	operation := &Operation{
		id:       OperationID(len(c.operations) + 1),
		owner:    c,
		operator: opID,
		scope:    scope,
		inputs:   bound,
	}
	c.operations = append(c.operations, operation)

	c.logger.Debug("created operation",
		"operation", uint32(operation.id),
		"operator", op.name,
		"scope", uint32(scope),
	)
	return operation
}

// Operation returns the operation with the given ID.
func (c *Context) Operation(id OperationID) *Operation {
	fatal.Check(id.IsValid() && int(id) <= len(c.operations), fatal.ErrUnknownOperation, "unknown operation %v", id)
	return c.operations[id-1]
}

// OperatorOf returns the operator bound by the given operation.
func (c *Context) OperatorOf(id OperationID) *Operator {
	return c.Operation(id).Op()
}

// NumOperations returns the number of operations in the arena.
func (c *Context) NumOperations() int { return len(c.operations) }

// Intern stores v in the value arena and returns its ID. Interning the
// same value twice yields two IDs.
func (c *Context) Intern(v Value) ValueID {
	fatal.Check(v != nil, fatal.ErrUnknownValue, "cannot intern a nil value")
	c.checkValue(v)
	c.values = append(c.values, v)
	return ValueID(len(c.values))
}

// Value returns the interned value with the given ID.
func (c *Context) Value(id ValueID) Value {
	fatal.Check(id.IsValid() && int(id) <= len(c.values), fatal.ErrUnknownValue, "unknown value %v", id)
	return c.values[id-1]
}

// NewField interns parent and returns the projection of name out of it.
func (c *Context) NewField(parent Value, name string) Field {
	return Field{Parent: c.Intern(parent), Name: name}
}

// FieldOf returns the projection of name out of an already interned value.
func (c *Context) FieldOf(parent ValueID, name string) Field {
	c.Value(parent)
	return Field{Parent: parent, Name: name}
}

// FieldPath unwinds a chain of Field projections. It returns the first
// non-Field ancestor and the field names from outermost to innermost, so
// Field{Field{root, "a"}, "b"} yields (root, ["a", "b"]). Non-field values
// yield (v, nil).
func (c *Context) FieldPath(v Value) (Value, []string) {
	var path []string
	for {
		f, ok := v.(Field)
		if !ok {
			break
		}
		path = append(path, f.Name)
		v = c.Value(f.Parent)
	}
	slices.Reverse(path)
	return v, path
}

// RegisterStorage creates a storage handle owned by this context.
func (c *Context) RegisterStorage(name string, typ types.Type) storage.ID {
	id := c.storageIDs.Generate()
	_, dup := c.storages[id]
	fatal.Check(!dup, fatal.ErrUnknownStorage, "storage ID %s issued twice", id)

	c.storages[id] = storage.New(id, name, typ)
	c.storageOrder = append(c.storageOrder, id)
	c.logger.Debug("registered storage", "storage", name, "id", id.String())
	return id
}

// Storage returns the storage with the given ID.
func (c *Context) Storage(id storage.ID) *storage.Storage {
	s, ok := c.storages[id]
	fatal.Check(ok, fatal.ErrUnknownStorage, "unknown storage %s", id)
	return s
}

// Storages returns storage IDs in registration order.
func (c *Context) Storages() []storage.ID { return slices.Clone(c.storageOrder) }

// checkValue verifies that every ID referenced by v resolves in this context.
func (c *Context) checkValue(v Value) {
	fatal.Check(v != nil, fatal.ErrUnknownValue, "nil value in graph")
	Visit[struct{}](v, refChecker{c})
}

// refChecker fails fast on references that do not resolve.
type refChecker struct{ c *Context }

func (r refChecker) VisitOperationArgument(v OperationArgument) struct{} {
	r.c.Operation(v.Operation)
	return struct{}{}
}

func (r refChecker) VisitOperationResult(v OperationResult) struct{} {
	r.c.Operation(v.Operation)
	return struct{}{}
}

// Operator references may point at an operator whose builder is still open.
func (r refChecker) VisitOperatorArgument(v OperatorArgument) struct{} {
	fatal.Check(r.c.operatorAllocated(v.Operator), fatal.ErrUnknownOperator, "unknown operator %v", v.Operator)
	return struct{}{}
}

func (r refChecker) VisitOperatorResult(v OperatorResult) struct{} {
	fatal.Check(r.c.operatorAllocated(v.Operator), fatal.ErrUnknownOperator, "unknown operator %v", v.Operator)
	return struct{}{}
}

func (r refChecker) VisitField(v Field) struct{} {
	r.c.Value(v.Parent)
	return struct{}{}
}

func (r refChecker) VisitStore(v Store) struct{} {
	r.c.Storage(v.Storage)
	return struct{}{}
}

func (refChecker) VisitConstant(Constant) struct{}   { return struct{}{} }
func (refChecker) VisitPredicate(Predicate) struct{} { return struct{}{} }
func (refChecker) VisitAny(Any) struct{}             { return struct{}{} }
