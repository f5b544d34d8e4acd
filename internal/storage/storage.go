// Package storage provides the storage collaborator consumed by the IR core.
//
// A Storage is an opaque, identity-bearing handle to external persistent
// data. The IR refers to storages only by ID (through the Store value
// variant) and never inspects their contents.
package storage

import (
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/flowir/internal/types"
)

// ID identifies a Storage. IDs are comparable and stable for the lifetime
// of the storage.
type ID = uuid.UUID

// NoID is the zero ID. No storage ever carries it.
var NoID ID = uuid.Nil

// Storage is a handle to external persistent data.
type Storage struct {
	id   ID
	name string
	typ  types.Type
}

// New creates a storage handle with the given identity.
func New(id ID, name string, typ types.Type) *Storage {
	return &Storage{id: id, name: name, typ: typ}
}

// ID returns the storage identity.
func (s *Storage) ID() ID { return s.id }

// Name returns the human-readable storage name.
func (s *Storage) Name() string { return s.name }

// Type returns the type of the stored data.
func (s *Storage) Type() types.Type { return s.typ }

// IDGenerator issues storage identities.
// Implemented by UUIDv7Generator (production) and SequentialGenerator (tests).
type IDGenerator interface {
	Generate() ID
}

// UUIDv7Generator generates time-sortable UUIDv7 storage IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() ID {
	return uuid.Must(uuid.NewV7())
}

// SequentialGenerator derives IDs deterministically from a namespace and a
// counter, so that snapshots and golden files are reproducible.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialGenerator struct {
	mu        sync.Mutex
	namespace uuid.UUID
	next      int
}

// NewSequentialGenerator creates a generator rooted at namespace.
// If namespace is uuid.Nil, uuid.NameSpaceOID is used.
func NewSequentialGenerator(namespace uuid.UUID) *SequentialGenerator {
	if namespace == uuid.Nil {
		namespace = uuid.NameSpaceOID
	}
	return &SequentialGenerator{namespace: namespace}
}

// Generate returns the next deterministic ID.
func (g *SequentialGenerator) Generate() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return uuid.NewSHA1(g.namespace, []byte{byte(g.next >> 24), byte(g.next >> 16), byte(g.next >> 8), byte(g.next)})
}
