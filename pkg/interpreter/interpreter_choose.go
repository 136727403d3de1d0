package interpreter

import (
	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// evaluateChoose runs a choose or chooseall clause. The subject is evaluated
// once; a case matches when any of its tests equals the subject. choose runs
// the first matching body, chooseall every matching body in order, and the
// default body runs only when nothing matched. It returns the value of the
// last body run together with the value of every body run.
func (i *Interpreter) evaluateChoose(clause *ast.ChooseClause, env *runtime.Environment) (runtime.Value, []runtime.Value, flow, error) {
	subject, err := i.evaluateValue(clause.Subject, env)
	if err != nil {
		return nil, nil, flowNormal, err
	}
	scope := env
	if clause.Alias != nil {
		scope = env.Extend()
		if _, err := scope.Declare(clause.Alias.Name, subject, false); err != nil {
			return nil, nil, flowNormal, locate(err, clause.Alias)
		}
	}

	var (
		last    runtime.Value = runtime.Null
		results []runtime.Value
		matched bool
	)
	run := func(c *ast.ChooseCase) (flow, error) {
		val, fl, err := i.evaluateStatements(c.Body, scope.Extend())
		if err != nil {
			return flowNormal, err
		}
		last = val
		results = append(results, val)
		return fl, nil
	}

	for _, c := range clause.Cases {
		ok, err := i.caseMatches(c, subject, scope)
		if err != nil {
			return nil, nil, flowNormal, err
		}
		if !ok {
			continue
		}
		matched = true
		fl, err := run(c)
		if err != nil || fl != flowNormal {
			return last, results, fl, err
		}
		if !clause.All {
			break
		}
	}
	if !matched && clause.Default != nil {
		fl, err := run(clause.Default)
		if err != nil {
			return nil, nil, flowNormal, err
		}
		return last, results, fl, nil
	}
	return last, results, flowNormal, nil
}

func (i *Interpreter) caseMatches(c *ast.ChooseCase, subject runtime.Value, env *runtime.Environment) (bool, error) {
	for _, test := range c.Tests {
		val, err := i.evaluateValue(test, env)
		if err != nil {
			return false, err
		}
		if runtime.Equal(val, subject) {
			return true, nil
		}
	}
	return false, nil
}

// evaluateChooseExpression yields the chosen body's value for choose and the
// list of every executed body's value for chooseall.
func (i *Interpreter) evaluateChooseExpression(expr *ast.ChooseExpression, env *runtime.Environment) (runtime.Value, error) {
	last, results, fl, err := i.evaluateChoose(&expr.ChooseClause, env)
	if err != nil {
		return nil, err
	}
	if fl != flowNormal {
		return nil, diag.Errorf(diag.InterpreterError, "'%s' cannot leave a choose expression", fl)
	}
	if expr.All {
		return runtime.NewList(results...), nil
	}
	return runtime.Unwrap(last), nil
}
