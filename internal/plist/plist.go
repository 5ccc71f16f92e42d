// Package plist decodes the XML and binary property lists embedded in a
// Photos catalog, including the NSKeyedArchiver graph format used by the
// adjustments store (§4.C). Byte-level plist parsing (trailer, offset
// table, object table, XML) is delegated to howett.net/plist; this package
// owns the tagged-variant output type and the keyed-archiver graph
// resolution that library doesn't implement.
package plist

import (
	"fmt"
	"time"

	applist "howett.net/plist"
)

// Kind discriminates the tagged plist value variant.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindTime
	KindList
	KindDict
)

// Value is the tagged-variant tree every plist (XML or binary) decodes
// into. Exactly one of the typed accessors is meaningful per Kind.
type Value struct {
	Kind Kind

	boolVal   bool
	intVal    int64
	floatVal  float64
	stringVal string
	bytesVal  []byte
	timeVal   time.Time
	listVal   []Value
	dictVal   map[string]Value
}

func Null() Value                  { return Value{Kind: KindNull} }
func Bool(b bool) Value            { return Value{Kind: KindBool, boolVal: b} }
func Int(i int64) Value            { return Value{Kind: KindInt, intVal: i} }
func Float(f float64) Value        { return Value{Kind: KindFloat, floatVal: f} }
func String(s string) Value        { return Value{Kind: KindString, stringVal: s} }
func Bytes(b []byte) Value         { return Value{Kind: KindBytes, bytesVal: b} }
func Time(t time.Time) Value       { return Value{Kind: KindTime, timeVal: t} }
func List(vs []Value) Value        { return Value{Kind: KindList, listVal: vs} }
func Dict(m map[string]Value) Value { return Value{Kind: KindDict, dictVal: m} }

// ErrWrongKind is returned by the typed accessors when a caller's structural
// expectation doesn't match what the plist actually contained — the "typed
// access layer that returns an error kind when a structural expectation is
// unmet" called for by design notes §9.
type ErrWrongKind struct {
	Want, Got Kind
}

func (e *ErrWrongKind) Error() string {
	return fmt.Sprintf("plist: expected kind %d, got %d", e.Want, e.Got)
}

func (v Value) AsBool() (bool, error) {
	if v.Kind != KindBool {
		return false, &ErrWrongKind{KindBool, v.Kind}
	}
	return v.boolVal, nil
}

func (v Value) AsInt() (int64, error) {
	if v.Kind != KindInt {
		return 0, &ErrWrongKind{KindInt, v.Kind}
	}
	return v.intVal, nil
}

func (v Value) AsFloat() (float64, error) {
	switch v.Kind {
	case KindFloat:
		return v.floatVal, nil
	case KindInt:
		return float64(v.intVal), nil
	default:
		return 0, &ErrWrongKind{KindFloat, v.Kind}
	}
}

func (v Value) AsString() (string, error) {
	if v.Kind != KindString {
		return "", &ErrWrongKind{KindString, v.Kind}
	}
	return v.stringVal, nil
}

func (v Value) AsBytes() ([]byte, error) {
	if v.Kind != KindBytes {
		return nil, &ErrWrongKind{KindBytes, v.Kind}
	}
	return v.bytesVal, nil
}

func (v Value) AsTime() (time.Time, error) {
	if v.Kind != KindTime {
		return time.Time{}, &ErrWrongKind{KindTime, v.Kind}
	}
	return v.timeVal, nil
}

func (v Value) AsList() ([]Value, error) {
	if v.Kind != KindList {
		return nil, &ErrWrongKind{KindList, v.Kind}
	}
	return v.listVal, nil
}

func (v Value) AsDict() (map[string]Value, error) {
	if v.Kind != KindDict {
		return nil, &ErrWrongKind{KindDict, v.Kind}
	}
	return v.dictVal, nil
}

// Get is a convenience accessor for dict values: it returns the zero Value
// (KindNull) rather than an error when the key is absent, matching the
// "everything is a dict" duck-typed feel of the source format while still
// keeping a typed boundary at the edges (design notes §9).
func (v Value) Get(key string) Value {
	if v.Kind != KindDict {
		return Null()
	}
	child, ok := v.dictVal[key]
	if !ok {
		return Null()
	}
	return child
}

// Index returns the i'th list element, or Null if out of range or v isn't a
// list.
func (v Value) Index(i int) Value {
	if v.Kind != KindList || i < 0 || i >= len(v.listVal) {
		return Null()
	}
	return v.listVal[i]
}

// AppleEpoch is the reference date for plist CFDate values: midnight
// 2001-01-01 UTC (§4.C.2).
var AppleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// Decode parses raw plist bytes (XML or binary, v00/v0f) into a Value tree
// via howett.net/plist, then converts the library's native Go types into
// our tagged variant.
func Decode(data []byte) (Value, error) {
	var raw interface{}
	if _, err := applist.Unmarshal(data, &raw); err != nil {
		return Null(), fmt.Errorf("plist: decoding: %w", err)
	}
	return fromNative(raw), nil
}

func fromNative(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint64:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []byte:
		return Bytes(t)
	case time.Time:
		return Time(t)
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = fromNative(e)
		}
		return List(out)
	case map[string]interface{}:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			out[k] = fromNative(e)
		}
		return Dict(out)
	default:
		// Unknown native shape (howett.net/plist uses a small closed set of
		// Go types, so this should not occur); preserve a best-effort string
		// form rather than failing the whole decode.
		return String(fmt.Sprintf("%v", t))
	}
}
