package ir

import "fmt"

// OperatorID identifies an Operator within a Context.
type OperatorID uint32

// OperationID identifies an Operation within a Context.
type OperationID uint32

// ValueID identifies an interned Value within a Context.
type ValueID uint32

// Invalid ID constants (zero is sentinel).
const (
	NoOperatorID  OperatorID  = 0
	NoOperationID OperationID = 0
	NoValueID     ValueID     = 0
)

// IsValid returns true if the ID is valid (non-zero).
func (id OperatorID) IsValid() bool  { return id != NoOperatorID }
func (id OperationID) IsValid() bool { return id != NoOperationID }
func (id ValueID) IsValid() bool     { return id != NoValueID }

func (id OperatorID) String() string  { return fmt.Sprintf("op#%d", uint32(id)) }
func (id OperationID) String() string { return fmt.Sprintf("%%%d", uint32(id)) }
func (id ValueID) String() string     { return fmt.Sprintf("v#%d", uint32(id)) }
