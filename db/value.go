package db

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a scalar bound to a statement placeholder: null, string, integer,
// float or boolean. The zero Value is null.
//
// Value implements driver.Valuer, so it can be passed straight to Exec,
// Query and QueryRow.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(n int64) Value { return Value{kind: KindInt, i: n} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Equal(o Value) bool { return v == o }

// ValueOf converts a Go scalar into a Value. nil and nil pointers become
// null; any non-scalar is an error.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case *string:
		if t == nil {
			return Null(), nil
		}
		return String(*t), nil
	case *bool:
		if t == nil {
			return Null(), nil
		}
		return Bool(*t), nil
	case *int:
		if t == nil {
			return Null(), nil
		}
		return Int(int64(*t)), nil
	case *int64:
		if t == nil {
			return Null(), nil
		}
		return Int(*t), nil
	case *float64:
		if t == nil {
			return Null(), nil
		}
		return Float(*t), nil
	}
	return Value{}, fmt.Errorf("jobly/db: unsupported value type %T", x)
}

// Interface returns the held scalar as nil, string, int64, float64 or bool.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	}
	return nil
}

// Value implements driver.Valuer.
func (v Value) Value() (driver.Value, error) { return v.Interface(), nil }

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.s)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return "null"
}

var _ driver.Valuer = Value{}
