package interpreter

import (
	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// evaluateStatements runs stmts in order and yields the value of the last one
// executed. A break or continue stops the list and is handed to the caller.
func (i *Interpreter) evaluateStatements(stmts []ast.Statement, env *runtime.Environment) (runtime.Value, flow, error) {
	var last runtime.Value = runtime.Null
	for _, stmt := range stmts {
		val, fl, err := i.evaluateStatement(stmt, env)
		if err != nil {
			return nil, flowNormal, err
		}
		last = val
		if fl != flowNormal {
			return last, fl, nil
		}
	}
	return last, flowNormal, nil
}

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (result runtime.Value, fl flow, err error) {
	defer func() {
		err = locate(err, node)
	}()
	switch n := node.(type) {
	case *ast.VariableDeclaration:
		result, err = i.evaluateVariableDeclaration(n, env)
		return result, flowNormal, err
	case *ast.FunctionDeclaration:
		result, err = i.evaluateFunctionDeclaration(n, env)
		return result, flowNormal, err
	case *ast.ClassDeclaration:
		return runtime.Null, flowNormal, nil
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env)
	case *ast.ForStatement:
		return i.evaluateForStatement(n, env)
	case *ast.ForEachStatement:
		return i.evaluateForEachStatement(n, env)
	case *ast.WhileStatement:
		return i.evaluateWhileStatement(n, env)
	case *ast.ImportStatement:
		return runtime.Null, flowNormal, nil
	case *ast.ExportDeclaration:
		result, err = i.evaluateExportDeclaration(n, env)
		return result, flowNormal, err
	case *ast.ControlFlowStatement:
		switch n.Kind {
		case ast.ControlBreak:
			return runtime.Null, flowBreak, nil
		case ast.ControlContinue:
			return runtime.Null, flowContinue, nil
		default:
			return runtime.Null, flowNormal, nil
		}
	case *ast.ChooseStatement:
		result, _, fl, err = i.evaluateChoose(&n.ChooseClause, env)
		return result, fl, err
	case *ast.NullStatement:
		return runtime.Null, flowNormal, nil
	case ast.Expression:
		result, err = i.evaluateValue(n, env)
		return result, flowNormal, err
	default:
		return nil, flowNormal, diag.Errorf(diag.InterpreterError, "unsupported statement type %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateVariableDeclaration(decl *ast.VariableDeclaration, env *runtime.Environment) (runtime.Value, error) {
	name := decl.Name.Name
	if decl.Kind == ast.DeclareReactive {
		reactive := &runtime.ReactiveValue{
			Name: name,
			Expr: decl.Value,
			Env:  env,
			Eval: i.evaluateReactive,
		}
		if _, err := reactive.Refresh(); err != nil {
			return nil, err
		}
		if _, err := env.DeclareReactive(name, reactive); err != nil {
			return nil, err
		}
		return reactive.Current, nil
	}

	var val runtime.Value = runtime.Null
	if decl.Value != nil {
		var err error
		if val, err = i.evaluateValue(decl.Value, env); err != nil {
			return nil, err
		}
	}
	return env.Declare(name, val, decl.Kind == ast.DeclareConst)
}

func (i *Interpreter) makeFunction(decl *ast.FunctionDeclaration, env *runtime.Environment) *runtime.FunctionValue {
	fn := &runtime.FunctionValue{
		Body:    decl.Body,
		Closure: env,
	}
	if decl.ID != nil {
		fn.Name = decl.ID.Name
	}
	fn.Params = make([]string, len(decl.Params))
	for idx, param := range decl.Params {
		fn.Params[idx] = param.Name
	}
	return fn
}

func (i *Interpreter) evaluateFunctionDeclaration(decl *ast.FunctionDeclaration, env *runtime.Environment) (runtime.Value, error) {
	fn := i.makeFunction(decl, env)
	if decl.ID == nil {
		return fn, nil
	}
	return env.Declare(fn.Name, fn, false)
}

func (i *Interpreter) evaluateExportDeclaration(decl *ast.ExportDeclaration, env *runtime.Environment) (runtime.Value, error) {
	val, fl, err := i.evaluateStatement(decl.Declaration, env)
	if err != nil {
		return nil, err
	}
	if err := strayFlow(fl); err != nil {
		return nil, err
	}
	switch d := decl.Declaration.(type) {
	case *ast.VariableDeclaration:
		env.MarkExported(d.Name.Name)
	case *ast.FunctionDeclaration:
		env.MarkExported(d.ID.Name)
	}
	return val, nil
}

func (i *Interpreter) evaluateIfStatement(stmt *ast.IfStatement, env *runtime.Environment) (runtime.Value, flow, error) {
	test, err := i.evaluateValue(stmt.Test, env)
	if err != nil {
		return nil, flowNormal, err
	}
	if isTruthy(test) {
		return i.evaluateStatements(stmt.Consequent, env.Extend())
	}
	if stmt.Alternate != nil {
		return i.evaluateStatements(stmt.Alternate, env.Extend())
	}
	return runtime.Null, flowNormal, nil
}

// loopScope is where loop headers live: the enclosing scope, or a fresh child
// when loop bodies are fenced.
func (i *Interpreter) loopScope(env *runtime.Environment) *runtime.Environment {
	if i.fenceLoops {
		return env.Extend()
	}
	return env
}

// bindLoopVariable binds a loop variable. A `let` header owned by loop may run
// again in the same scope and rebinds its own variable; a name bound there by
// anything else is a redeclaration. Without `let` an existing variable is
// assigned.
func bindLoopVariable(env *runtime.Environment, loop ast.Node, name string, val runtime.Value, declare bool) error {
	if declare {
		_, err := env.DeclareOwned(name, val, loop)
		return err
	}
	if _, err := env.Resolve(name); err != nil {
		_, err := env.Declare(name, val, false)
		return err
	}
	_, err := env.Assign(name, val, false)
	return err
}

func (i *Interpreter) evaluateForStatement(loop *ast.ForStatement, env *runtime.Environment) (runtime.Value, flow, error) {
	scope := i.loopScope(env)
	switch init := loop.Init.(type) {
	case nil:
	case *ast.VariableDeclaration:
		if init.Kind == ast.DeclareLet {
			val, err := i.evaluateOptional(init.Value, scope)
			if err != nil {
				return nil, flowNormal, locate(err, init)
			}
			if err := bindLoopVariable(scope, loop, init.Name.Name, val, true); err != nil {
				return nil, flowNormal, locate(err, init)
			}
			break
		}
		if _, _, err := i.evaluateStatement(init, scope); err != nil {
			return nil, flowNormal, err
		}
	default:
		if _, _, err := i.evaluateStatement(init, scope); err != nil {
			return nil, flowNormal, err
		}
	}

	for {
		if loop.Test != nil {
			test, err := i.evaluateValue(loop.Test, scope)
			if err != nil {
				return nil, flowNormal, err
			}
			if !isTruthy(test) {
				break
			}
		}
		_, fl, err := i.evaluateStatements(loop.Body, i.loopScope(scope))
		if err != nil {
			return nil, flowNormal, err
		}
		if fl == flowBreak {
			break
		}
		if loop.Update != nil {
			if _, err := i.evaluateValue(loop.Update, scope); err != nil {
				return nil, flowNormal, err
			}
		}
	}
	return runtime.Null, flowNormal, nil
}

func (i *Interpreter) evaluateOptional(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	if expr == nil {
		return runtime.Null, nil
	}
	return i.evaluateValue(expr, env)
}

// iterationItems lists what foreach visits: list elements, the characters of a
// string, or the keys of an object.
func iterationItems(val runtime.Value) ([]runtime.Value, error) {
	switch v := val.(type) {
	case *runtime.ListValue:
		return v.Elements, nil
	case runtime.StringValue:
		chars := []rune(v.Val)
		out := make([]runtime.Value, len(chars))
		for idx, ch := range chars {
			out[idx] = runtime.StringValue{Val: string(ch)}
		}
		return out, nil
	case *runtime.ObjectValue:
		keys := v.Keys()
		out := make([]runtime.Value, len(keys))
		for idx, key := range keys {
			out[idx] = runtime.StringValue{Val: key}
		}
		return out, nil
	default:
		return nil, diag.Errorf(diag.InterpreterError, "cannot iterate over %s", runtime.TypeName(val))
	}
}

func (i *Interpreter) evaluateForEachStatement(loop *ast.ForEachStatement, env *runtime.Environment) (runtime.Value, flow, error) {
	scope := i.loopScope(env)
	if loop.Element.Declare {
		if err := bindLoopVariable(scope, loop, loop.Element.Name.Name, runtime.Null, true); err != nil {
			return nil, flowNormal, err
		}
	}
	if loop.Index != nil && loop.Index.Declare {
		if err := bindLoopVariable(scope, loop, loop.Index.Name.Name, runtime.Null, true); err != nil {
			return nil, flowNormal, err
		}
	}

	for idx := 0; ; idx++ {
		iterable, err := i.evaluateValue(loop.Iterable, scope)
		if err != nil {
			return nil, flowNormal, err
		}
		items, err := iterationItems(iterable)
		if err != nil {
			return nil, flowNormal, locate(err, loop.Iterable)
		}
		if idx >= len(items) {
			break
		}
		if err := bindLoopVariable(scope, loop, loop.Element.Name.Name, items[idx], false); err != nil {
			return nil, flowNormal, err
		}
		if loop.Index != nil {
			if err := bindLoopVariable(scope, loop, loop.Index.Name.Name, runtime.NumberValue{Val: float64(idx)}, false); err != nil {
				return nil, flowNormal, err
			}
		}
		_, fl, err := i.evaluateStatements(loop.Body, i.loopScope(scope))
		if err != nil {
			return nil, flowNormal, err
		}
		if fl == flowBreak {
			break
		}
	}
	return runtime.Null, flowNormal, nil
}

func (i *Interpreter) evaluateWhileStatement(loop *ast.WhileStatement, env *runtime.Environment) (runtime.Value, flow, error) {
	iterations := 0
	for {
		test, err := i.evaluateValue(loop.Test, env)
		if err != nil {
			return nil, flowNormal, err
		}
		if !isTruthy(test) {
			break
		}
		iterations++
		if i.maxWhile > 0 && iterations > i.maxWhile {
			return nil, flowNormal, diag.Errorf(diag.InterpreterError, "potential infinite loop: while exceeded %d iterations", i.maxWhile)
		}
		_, fl, err := i.evaluateStatements(loop.Body, i.loopScope(env))
		if err != nil {
			return nil, flowNormal, err
		}
		if fl == flowBreak {
			break
		}
	}
	return runtime.Null, flowNormal, nil
}
