package stdlib

import (
	"math"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

func unary(name string, f func(float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if err := ExpectArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		x, err := NumberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return number(f(x)), nil
	}
}

// extremum folds one or more numbers with pick.
func extremum(name string, pick func(a, b float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 1 {
			if list, ok := args[0].(*runtime.ListValue); ok {
				args = list.Elements
			}
		}
		if err := ExpectArgs(name, args, 1, -1); err != nil {
			return nil, err
		}
		best, err := NumberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		for idx := 1; idx < len(args); idx++ {
			x, err := NumberArg(name, args, idx)
			if err != nil {
				return nil, err
			}
			best = pick(best, x)
		}
		return number(best), nil
	}
}

// Math is the `math` library.
func Math() runtime.NativeModule {
	return runtime.NativeModule{
		"math": {
			Functions: map[string]runtime.NativeFunc{
				"sqrt": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("sqrt", args, 1, 1); err != nil {
						return nil, err
					}
					x, err := NumberArg("sqrt", args, 0)
					if err != nil {
						return nil, err
					}
					if x < 0 {
						return nil, diag.Errorf(diag.MathError, "square root of negative number %s", runtime.FormatNumber(x))
					}
					return number(math.Sqrt(x)), nil
				},
				"log": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("log", args, 1, 1); err != nil {
						return nil, err
					}
					x, err := NumberArg("log", args, 0)
					if err != nil {
						return nil, err
					}
					if x <= 0 {
						return nil, diag.Errorf(diag.MathError, "logarithm of non-positive number %s", runtime.FormatNumber(x))
					}
					return number(math.Log(x)), nil
				},
				"pow": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("pow", args, 2, 2); err != nil {
						return nil, err
					}
					base, err := NumberArg("pow", args, 0)
					if err != nil {
						return nil, err
					}
					exp, err := NumberArg("pow", args, 1)
					if err != nil {
						return nil, err
					}
					return number(math.Pow(base, exp)), nil
				},
				"abs":   unary("abs", math.Abs),
				"floor": unary("floor", math.Floor),
				"ceil":  unary("ceil", math.Ceil),
				"round": unary("round", math.Round),
				"sin":   unary("sin", math.Sin),
				"cos":   unary("cos", math.Cos),
				"tan":   unary("tan", math.Tan),
				"min":   extremum("min", math.Min),
				"max":   extremum("max", math.Max),
			},
			Constants: map[string]runtime.Value{
				"pi": number(math.Pi),
				"e":  number(math.E),
			},
		},
	}
}
