// Package stdlib holds the default Tide libraries and the argument helpers the
// interpreter's builtins share with them.
package stdlib

import (
	"math"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// ExpectArgs checks that fn received between min and max arguments. A negative
// max means no upper bound.
func ExpectArgs(fn string, args []runtime.Value, min, max int) error {
	n := len(args)
	if n < min || (max >= 0 && n > max) {
		switch {
		case min == max:
			return diag.Errorf(diag.TypeError, "%s expects %d argument(s), got %d", fn, min, n)
		case max < 0:
			return diag.Errorf(diag.TypeError, "%s expects at least %d argument(s), got %d", fn, min, n)
		default:
			return diag.Errorf(diag.TypeError, "%s expects %d to %d arguments, got %d", fn, min, max, n)
		}
	}
	return nil
}

// Arg returns args[idx], or null when the argument was omitted.
func Arg(args []runtime.Value, idx int) runtime.Value {
	if idx < len(args) && args[idx] != nil {
		return args[idx]
	}
	return runtime.Null
}

func NumberArg(fn string, args []runtime.Value, idx int) (float64, error) {
	num, ok := Arg(args, idx).(runtime.NumberValue)
	if !ok {
		return 0, argError(fn, idx, "number", Arg(args, idx))
	}
	return num.Val, nil
}

// IntArg accepts integral numbers only.
func IntArg(fn string, args []runtime.Value, idx int) (int, error) {
	f, err := NumberArg(fn, args, idx)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, diag.Errorf(diag.RangeError, "%s: argument %d must be an integer, got %s", fn, idx+1, runtime.FormatNumber(f))
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, diag.Errorf(diag.RangeError, "%s: argument %d is out of integer range, got %s", fn, idx+1, runtime.FormatNumber(f))
	}
	return int(f), nil
}

// IndexArg reads an integral position. Positions past either end of the int
// range saturate, since callers clamp them to a length anyway.
func IndexArg(fn string, args []runtime.Value, idx int) (int, error) {
	f, err := NumberArg(fn, args, idx)
	if err != nil {
		return 0, err
	}
	switch {
	case math.IsNaN(f) || (f != math.Trunc(f) && !math.IsInf(f, 0)):
		return 0, diag.Errorf(diag.RangeError, "%s: argument %d must be an integer, got %s", fn, idx+1, runtime.FormatNumber(f))
	case f >= math.MaxInt64:
		return math.MaxInt, nil
	case f < math.MinInt64:
		return math.MinInt, nil
	}
	return int(f), nil
}

func StringArg(fn string, args []runtime.Value, idx int) (string, error) {
	s, ok := Arg(args, idx).(runtime.StringValue)
	if !ok {
		return "", argError(fn, idx, "string", Arg(args, idx))
	}
	return s.Val, nil
}

func ListArg(fn string, args []runtime.Value, idx int) (*runtime.ListValue, error) {
	list, ok := Arg(args, idx).(*runtime.ListValue)
	if !ok {
		return nil, argError(fn, idx, "list", Arg(args, idx))
	}
	return list, nil
}

// CallableArg accepts user and native functions.
func CallableArg(fn string, args []runtime.Value, idx int) (runtime.Value, error) {
	val := Arg(args, idx)
	switch val.Kind() {
	case runtime.KindFunction, runtime.KindNativeFunction:
		return val, nil
	default:
		return nil, argError(fn, idx, "function", val)
	}
}

func argError(fn string, idx int, want string, got runtime.Value) error {
	return diag.Errorf(diag.TypeError, "%s: argument %d must be a %s, got %s", fn, idx+1, want, runtime.TypeName(got))
}
