package runtime

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"tide/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindBoolean
	KindString
	KindList
	KindObject
	KindFunction
	KindNativeFunction
	KindReactive
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindReactive:
		return "reactive"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBoolean }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Containers
//-----------------------------------------------------------------------------

// ListValue is shared by reference; every holder sees mutations.
type ListValue struct {
	Elements []Value
}

func (v *ListValue) Kind() Kind { return KindList }

func NewList(elements ...Value) *ListValue {
	if elements == nil {
		elements = []Value{}
	}
	return &ListValue{Elements: elements}
}

// ObjectValue is a mutable string-keyed record that remembers insertion order.
// Native marks objects built from host modules.
type ObjectValue struct {
	fields map[string]Value
	keys   []string
	Native bool
}

func (v *ObjectValue) Kind() Kind { return KindObject }

func NewObject() *ObjectValue {
	return &ObjectValue{fields: make(map[string]Value)}
}

func (v *ObjectValue) Get(key string) (Value, bool) {
	val, ok := v.fields[key]
	return val, ok
}

func (v *ObjectValue) Has(key string) bool {
	_, ok := v.fields[key]
	return ok
}

// Set inserts or overwrites key. New keys are appended to the iteration order.
func (v *ObjectValue) Set(key string, val Value) {
	if _, ok := v.fields[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = val
}

// Keys returns the keys in insertion order.
func (v *ObjectValue) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

func (v *ObjectValue) Len() int { return len(v.keys) }

//-----------------------------------------------------------------------------
// Functions & closures
//-----------------------------------------------------------------------------

// FunctionValue is a user function closed over the environment it was declared
// in.
type FunctionValue struct {
	Name    string
	Params  []string
	Body    []ast.Statement
	Closure *Environment
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) Arity() int { return len(v.Params) }

// CallFunc invokes any callable Tide value from host code.
type CallFunc func(callee Value, args []Value) (Value, error)

// NativeCallContext is handed to every native call. Line and Column point at the
// call site. RawArgs holds the arguments before reactive bindings were unwrapped.
type NativeCallContext struct {
	Env     *Environment
	Line    int
	Column  int
	Stdout  io.Writer
	Stdin   *bufio.Reader
	Logger  *slog.Logger
	Call    CallFunc
	RawArgs []Value
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

type NativeFunctionValue struct {
	Name string
	Impl NativeFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

//-----------------------------------------------------------------------------
// Reactive bindings
//-----------------------------------------------------------------------------

// ReactiveEvaluator evaluates a reactive expression. The interpreter supplies
// it so this package stays free of evaluator code.
type ReactiveEvaluator func(expr ast.Expression, env *Environment) (Value, error)

// ReactiveValue re-evaluates Expr in Env whenever it is looked up.
type ReactiveValue struct {
	Name    string
	Expr    ast.Expression
	Current Value
	Env     *Environment
	Eval    ReactiveEvaluator
}

func (v *ReactiveValue) Kind() Kind { return KindReactive }

// Refresh recomputes Current from the captured expression.
func (v *ReactiveValue) Refresh() (*ReactiveValue, error) {
	if v.Eval == nil {
		return v, nil
	}
	val, err := v.Eval(v.Expr, v.Env)
	if err != nil {
		return nil, err
	}
	v.Current = Unwrap(val)
	return v, nil
}

// Unwrap returns the current value of a reactive, or v itself.
func Unwrap(v Value) Value {
	for {
		r, ok := v.(*ReactiveValue)
		if !ok {
			return v
		}
		if r.Current == nil {
			return NullValue{}
		}
		v = r.Current
	}
}

// Shared singletons.
var (
	Null  Value = NullValue{}
	True  Value = BoolValue{Val: true}
	False Value = BoolValue{Val: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}
