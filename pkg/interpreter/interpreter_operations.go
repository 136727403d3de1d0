package interpreter

import (
	"math"
	"strings"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// applyBinary combines two plain values. Arithmetic on unsupported type pairs
// yields null; only division by zero and bad comparisons fail.
func applyBinary(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+", "-", "*", "/", "%", "^", "//":
		return evaluateArithmetic(op, left, right)
	case "==":
		return runtime.Bool(runtime.Equal(left, right)), nil
	case "!=":
		return runtime.Bool(!runtime.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		return evaluateComparison(op, left, right)
	case "??":
		if left.Kind() == runtime.KindNull {
			return right, nil
		}
		return left, nil
	default:
		return nil, diag.Errorf(diag.InterpreterError, "unsupported operator %s", op)
	}
}

func evaluateArithmetic(op string, left, right runtime.Value) (runtime.Value, error) {
	ln, lnum := left.(runtime.NumberValue)
	rn, rnum := right.(runtime.NumberValue)
	if lnum && rnum {
		return numericArithmetic(op, ln.Val, rn.Val)
	}

	switch l := left.(type) {
	case runtime.StringValue:
		if r, ok := right.(runtime.StringValue); ok && op == "+" {
			return runtime.StringValue{Val: l.Val + r.Val}, nil
		}
		if rnum && op == "*" {
			return repeatString(l.Val, rn.Val)
		}
	case runtime.NumberValue:
		if r, ok := right.(runtime.StringValue); ok && op == "*" {
			return repeatString(r.Val, l.Val)
		}
	case *runtime.ListValue:
		if r, ok := right.(*runtime.ListValue); ok && op == "+" {
			joined := make([]runtime.Value, 0, len(l.Elements)+len(r.Elements))
			joined = append(joined, l.Elements...)
			joined = append(joined, r.Elements...)
			return runtime.NewList(joined...), nil
		}
	}
	return runtime.Null, nil
}

func numericArithmetic(op string, a, b float64) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.NumberValue{Val: a + b}, nil
	case "-":
		return runtime.NumberValue{Val: a - b}, nil
	case "*":
		return runtime.NumberValue{Val: a * b}, nil
	case "^":
		return runtime.NumberValue{Val: math.Pow(a, b)}, nil
	}
	if b == 0 {
		return nil, diag.Errorf(diag.MathError, "division by zero")
	}
	switch op {
	case "/":
		return runtime.NumberValue{Val: a / b}, nil
	case "//":
		return runtime.NumberValue{Val: math.Trunc(a / b)}, nil
	default:
		return runtime.NumberValue{Val: math.Mod(a, b)}, nil
	}
}

// maxRepeatLength caps the size of a string built by repetition.
const maxRepeatLength = 1 << 28

func repeatString(s string, count float64) (runtime.Value, error) {
	if count <= 0 || math.IsNaN(count) || s == "" {
		return runtime.StringValue{Val: ""}, nil
	}
	if count > maxRepeatLength || int(count)*len(s) > maxRepeatLength {
		return nil, diag.Errorf(diag.RangeError, "string repetition of length %d by %s exceeds %d bytes",
			len(s), runtime.FormatNumber(count), maxRepeatLength)
	}
	return runtime.StringValue{Val: strings.Repeat(s, int(count))}, nil
}

// evaluateComparison orders two numbers or two strings.
func evaluateComparison(op string, left, right runtime.Value) (runtime.Value, error) {
	var cmp int
	switch l := left.(type) {
	case runtime.NumberValue:
		r, ok := right.(runtime.NumberValue)
		if !ok {
			return nil, comparisonError(op, left, right)
		}
		switch {
		case l.Val < r.Val:
			cmp = -1
		case l.Val > r.Val:
			cmp = 1
		case l.Val == r.Val:
			cmp = 0
		default:
			return runtime.False, nil
		}
	case runtime.StringValue:
		r, ok := right.(runtime.StringValue)
		if !ok {
			return nil, comparisonError(op, left, right)
		}
		cmp = strings.Compare(l.Val, r.Val)
	default:
		return nil, comparisonError(op, left, right)
	}
	return runtime.Bool(comparisonOp(op, cmp)), nil
}

func comparisonError(op string, left, right runtime.Value) error {
	return diag.Errorf(diag.InterpreterError, "cannot compare %s %s %s", runtime.TypeName(left), op, runtime.TypeName(right))
}

func comparisonOp(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

// contains implements `in` for lists (element equality), strings (substring)
// and objects (key presence).
func contains(collection, element runtime.Value) (bool, error) {
	switch c := collection.(type) {
	case *runtime.ListValue:
		for _, el := range c.Elements {
			if runtime.Equal(el, element) {
				return true, nil
			}
		}
		return false, nil
	case runtime.StringValue:
		s, ok := element.(runtime.StringValue)
		if !ok {
			return false, diag.Errorf(diag.InterpreterError, "'in' on a string needs a string operand, got %s", runtime.TypeName(element))
		}
		return strings.Contains(c.Val, s.Val), nil
	case *runtime.ObjectValue:
		key, ok := element.(runtime.StringValue)
		if !ok {
			return false, nil
		}
		return c.Has(key.Val), nil
	default:
		return false, diag.Errorf(diag.InterpreterError, "'in' expects a list, string or object, got %s", runtime.TypeName(collection))
	}
}

// isTruthy decides conditions: null, false, 0, NaN, "" and [] are false.
func isTruthy(val runtime.Value) bool {
	switch v := runtime.Unwrap(val).(type) {
	case runtime.NullValue:
		return false
	case runtime.BoolValue:
		return v.Val
	case runtime.NumberValue:
		return v.Val != 0 && !math.IsNaN(v.Val)
	case runtime.StringValue:
		return v.Val != ""
	case *runtime.ListValue:
		return len(v.Elements) > 0
	default:
		return true
	}
}
