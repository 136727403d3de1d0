package interpreter

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
	"tide/interpreter-go/pkg/stdlib"
)

// installBuiltins binds the functions every program sees without an import.
func (i *Interpreter) installBuiltins(env *runtime.Environment) {
	builtins := map[string]runtime.NativeFunc{
		"print":      builtinPrint,
		"input":      builtinInput,
		"str":        builtinStr,
		"int":        builtinInt,
		"float":      builtinFloat,
		"type":       builtinType,
		"len":        builtinLen,
		"time":       i.builtinTime,
		"unreactive": builtinUnreactive,
	}
	for name, impl := range builtins {
		// Names are unique and the scope is fresh, so Declare cannot fail.
		_, _ = env.Declare(name, runtime.NativeFunctionValue{Name: name, Impl: impl}, true)
	}
}

func builtinPrint(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	parts := make([]string, len(args))
	for idx, arg := range args {
		parts[idx] = runtime.Stringify(arg)
	}
	if _, err := io.WriteString(ctx.Stdout, strings.Join(parts, " ")+"\n"); err != nil {
		return nil, err
	}
	return runtime.Null, nil
}

// builtinInput writes an optional prompt and reads one line. End of input
// yields null.
func builtinInput(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := stdlib.ExpectArgs("input", args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 1 {
		if _, err := io.WriteString(ctx.Stdout, runtime.Stringify(args[0])); err != nil {
			return nil, err
		}
	}
	line, err := ctx.Stdin.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return runtime.Null, nil
		}
		return nil, err
	}
	return runtime.StringValue{Val: strings.TrimRight(line, "\r\n")}, nil
}

func builtinStr(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := stdlib.ExpectArgs("str", args, 1, 1); err != nil {
		return nil, err
	}
	return runtime.StringValue{Val: runtime.Stringify(args[0])}, nil
}

func builtinInt(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	num, err := builtinFloat(ctx, args)
	if err != nil {
		return nil, err
	}
	return runtime.NumberValue{Val: math.Trunc(num.(runtime.NumberValue).Val)}, nil
}

func builtinFloat(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := stdlib.ExpectArgs("float", args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case runtime.NumberValue:
		return v, nil
	case runtime.BoolValue:
		if v.Val {
			return runtime.NumberValue{Val: 1}, nil
		}
		return runtime.NumberValue{Val: 0}, nil
	case runtime.StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Val), 64)
		if err != nil {
			return nil, diag.Errorf(diag.SyntaxError, "cannot convert %q to a number", v.Val)
		}
		return runtime.NumberValue{Val: f}, nil
	default:
		return nil, diag.Errorf(diag.TypeError, "cannot convert %s to a number", runtime.TypeName(args[0]))
	}
}

func builtinType(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := stdlib.ExpectArgs("type", args, 1, 1); err != nil {
		return nil, err
	}
	return runtime.StringValue{Val: runtime.TypeName(args[0])}, nil
}

func builtinLen(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := stdlib.ExpectArgs("len", args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *runtime.ListValue:
		return runtime.NumberValue{Val: float64(len(v.Elements))}, nil
	case runtime.StringValue:
		return runtime.NumberValue{Val: float64(len([]rune(v.Val)))}, nil
	case *runtime.ObjectValue:
		return runtime.NumberValue{Val: float64(v.Len())}, nil
	default:
		return nil, diag.Errorf(diag.TypeError, "len expects a list, string or object, got %s", runtime.TypeName(args[0]))
	}
}

// builtinTime reports milliseconds elapsed since the interpreter was created.
func (i *Interpreter) builtinTime(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := stdlib.ExpectArgs("time", args, 0, 0); err != nil {
		return nil, err
	}
	return runtime.NumberValue{Val: float64(time.Since(i.started).Milliseconds())}, nil
}

// builtinUnreactive freezes a reactive binding at its current value. From then
// on the name holds a plain, assignable value.
func builtinUnreactive(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := stdlib.ExpectArgs("unreactive", args, 1, 1); err != nil {
		return nil, err
	}
	reactive, ok := ctx.RawArgs[0].(*runtime.ReactiveValue)
	if !ok {
		return nil, diag.Errorf(diag.TypeError, "unreactive expects a reactive variable, got %s", runtime.TypeName(args[0]))
	}
	current := runtime.Unwrap(reactive)
	if _, err := reactive.Env.Assign(reactive.Name, current, true); err != nil {
		return nil, err
	}
	return current, nil
}
