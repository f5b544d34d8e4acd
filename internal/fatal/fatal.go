// Package fatal implements the uniform IR construction error.
//
// Construction-time contract violations (duplicate input names, arity
// mismatches, unknown outputs, unsupported type schemas) are programming
// errors, not user input errors. They abort the current construction
// immediately by panicking with an *Error. Code that sits at a module
// boundary (the catalog loader, the CLI) converts them back into ordinary
// errors with Catch.
package fatal

import (
	"errors"
	"fmt"
)

// Code identifies the violated construction contract.
type Code string

// Construction error codes (E200-E299).
const (
	// Operator signature errors (E201-E212)
	ErrDuplicateInput   Code = "E201" // input name already declared on the operator
	ErrDuplicateOutput  Code = "E202" // output name already declared on the operator
	ErrInputCount       Code = "E203" // operation binds a different number of inputs
	ErrInputName        Code = "E204" // operation binds an input the operator does not declare
	ErrUnknownOutput    Code = "E205" // result names an undeclared output
	ErrUnknownOperator  Code = "E206" // operator ID not registered in the context
	ErrUnknownOperation Code = "E207" // operation ID not present in the context
	ErrUnknownValue     Code = "E208" // value ID not interned in the context
	ErrUnknownStorage   Code = "E209" // storage ID not registered in the context
	ErrBuilderConsumed  Code = "E210" // builder used after Build
	ErrBadRegistration  Code = "E211" // operator registered twice or with a foreign context
	ErrUnknownInput     Code = "E212" // argument names an undeclared input

	// Type schema errors (E220-E229)
	ErrTypeUnset      Code = "E220" // no type discriminant set
	ErrTypeOptional   Code = "E221" // optional types are unsupported
	ErrTypeRefinement Code = "E222" // type refinements are unsupported
	ErrEntitySchema   Code = "E223" // entity type without a schema
	ErrTypeKind       Code = "E224" // unknown type kind
	ErrTypeAmbiguous  Code = "E225" // more than one type discriminant set
)

// Error is a construction contract violation.
type Error struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Fail aborts construction by panicking with an *Error. It never returns.
// Fail does not log; the boundary that recovers the error with Catch
// reports it through its own logger.
func Fail(code Code, format string, args ...any) {
	panic(&Error{Code: code, Message: fmt.Sprintf(format, args...)})
}

// Check calls Fail when cond is false.
func Check(cond bool, code Code, format string, args ...any) {
	if !cond {
		Fail(code, format, args...)
	}
}

// Catch runs fn and converts a construction panic into an error.
// Panics that are not *Error are propagated unchanged.
func Catch(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if fe, ok := r.(*Error); ok {
			err = fe
			return
		}
		panic(r)
	}()
	fn()
	return nil
}

// CodeOf returns the construction error code carried by err, if any.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) (Code, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code, true
	}
	return "", false
}
