package interpreter

import (
	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// callSite describes where a call was made from; natives receive it through
// their call context.
type callSite struct {
	env  *runtime.Environment
	line int
	col  int
}

func (i *Interpreter) evaluateCallExpression(call *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateValue(call.Callee, env)
	if err != nil {
		return nil, err
	}
	raw := make([]runtime.Value, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		val, err := i.evaluateExpression(arg, env)
		if err != nil {
			return nil, err
		}
		raw = append(raw, val)
	}
	pos := call.Pos()
	return i.invoke(callee, raw, callSite{env: env, line: pos.Line, col: pos.Column})
}

// callValue lets native code call back into Tide functions.
func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	return i.invoke(runtime.Unwrap(callee), args, callSite{env: i.global})
}

func (i *Interpreter) invoke(callee runtime.Value, raw []runtime.Value, site callSite) (runtime.Value, error) {
	args := make([]runtime.Value, len(raw))
	for idx, val := range raw {
		args[idx] = runtime.Unwrap(val)
	}
	switch fn := callee.(type) {
	case runtime.NativeFunctionValue:
		ctx := &runtime.NativeCallContext{
			Env:     site.env,
			Line:    site.line,
			Column:  site.col,
			Stdout:  i.stdout,
			Stdin:   i.stdin,
			Logger:  i.logger,
			Call:    i.callValue,
			RawArgs: raw,
		}
		result, err := fn.Impl(ctx, args)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return runtime.Null, nil
		}
		return result, nil
	case *runtime.FunctionValue:
		return i.callFunction(fn, args)
	default:
		return nil, diag.Errorf(diag.InterpreterError, "%s is not callable", runtime.TypeName(callee))
	}
}

// callFunction runs fn in a child of its closure. Parameters without an
// argument are bound to null; the value of the last statement is returned.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	if err := i.enter(); err != nil {
		return nil, err
	}
	defer i.leave()

	local := fn.Closure.Extend()
	for idx, param := range fn.Params {
		var arg runtime.Value = runtime.Null
		if idx < len(args) {
			arg = args[idx]
		}
		if _, err := local.Declare(param, arg, false); err != nil {
			return nil, err
		}
	}
	result, fl, err := i.evaluateStatements(fn.Body, local)
	if err != nil {
		return nil, err
	}
	if err := strayFlow(fl); err != nil {
		return nil, err
	}
	return runtime.Unwrap(result), nil
}

func (i *Interpreter) enter() error {
	if i.maxDepth > 0 && i.depth >= i.maxDepth {
		return diag.Errorf(diag.InterpreterError, "maximum call depth of %d exceeded", i.maxDepth)
	}
	i.depth++
	return nil
}

func (i *Interpreter) leave() {
	i.depth--
}
