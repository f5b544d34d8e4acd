package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Literal is the payload of a Constant value. It is a sealed interface:
// only NullLit, StringLit, IntLit, BoolLit, ListLit and RecordLit implement it.
// There is no float literal; floats break deterministic fingerprints.
type Literal interface {
	literal() // Sealed
}

// NullLit is an explicit null literal.
type NullLit struct{}

func (NullLit) literal() {}

// StringLit is a string literal.
type StringLit string

func (StringLit) literal() {}

// IntLit is an integer literal. Always int64.
type IntLit int64

func (IntLit) literal() {}

// BoolLit is a boolean literal.
type BoolLit bool

func (BoolLit) literal() {}

// ListLit is an ordered list of literals.
type ListLit []Literal

func (ListLit) literal() {}

// RecordLit maps field names to literals.
// Use SortedKeys() for deterministic iteration.
type RecordLit map[string]Literal

func (RecordLit) literal() {}

// SortedKeys returns keys in UTF-16 code unit order (RFC 8785).
// Go's string comparison uses UTF-8 bytes, which orders some keys differently.
func (r RecordLit) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

func compareKeysUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// LiteralFromGo converts a decoded Go value (as produced by encoding/json,
// yaml or cue Decode into `any`) into a Literal.
// Floats are rejected; json.Number is accepted when it holds an integer.
func LiteralFromGo(v any) (Literal, error) {
	switch val := v.(type) {
	case nil:
		return NullLit{}, nil
	case Literal:
		return val, nil
	case string:
		return StringLit(val), nil
	case bool:
		return BoolLit(val), nil
	case int:
		return IntLit(val), nil
	case int64:
		return IntLit(val), nil
	case json.Number:
		n, err := val.Int64()
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("integer literal out of int64 range: %s", val)
		}
		if err != nil {
			return nil, fmt.Errorf("floats are not allowed in literals: %s", val)
		}
		return IntLit(n), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are not allowed in literals: %v", val)
	case []any:
		list := make(ListLit, len(val))
		for i, elem := range val {
			lit, err := LiteralFromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = lit
		}
		return list, nil
	case map[string]any:
		rec := make(RecordLit, len(val))
		for k, elem := range val {
			lit, err := LiteralFromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("record[%q]: %w", k, err)
			}
			rec[k] = lit
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}

// ParseLiteral decodes JSON into a Literal. Numbers must be integers.
func ParseLiteral(data []byte) (Literal, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse literal: %w", err)
	}
	return LiteralFromGo(raw)
}

// literalToGo converts a Literal into plain Go values for snapshotting.
func literalToGo(l Literal) any {
	switch val := l.(type) {
	case NullLit:
		return nil
	case StringLit:
		return string(val)
	case IntLit:
		return int64(val)
	case BoolLit:
		return bool(val)
	case ListLit:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = literalToGo(elem)
		}
		return out
	case RecordLit:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = literalToGo(elem)
		}
		return out
	default:
		return nil
	}
}
