package interpreter

import (
	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// evaluateValue evaluates node and unwraps a reactive result to its current
// value.
func (i *Interpreter) evaluateValue(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpression(node, env)
	if err != nil {
		return nil, err
	}
	return runtime.Unwrap(val), nil
}

// evaluateExpression may return a *runtime.ReactiveValue when node names a
// reactive binding; callers that need the plain value use evaluateValue.
func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (result runtime.Value, err error) {
	defer func() {
		err = locate(err, node)
	}()
	switch n := node.(type) {
	case *ast.NumericLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.Bool(n.Value), nil
	case *ast.Identifier:
		return env.Lookup(n.Name)
	case *ast.ListLiteral:
		return i.evaluateListLiteral(n, env)
	case *ast.ObjectLiteral:
		return i.evaluateObjectLiteral(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.LogicalExpression:
		return i.evaluateLogicalExpression(n, env)
	case *ast.MembershipExpression:
		return i.evaluateMembershipExpression(n, env)
	case *ast.TernaryExpression:
		return i.evaluateTernaryExpression(n, env)
	case *ast.MemberExpression:
		return i.evaluateMemberExpression(n, env)
	case *ast.CallExpression:
		return i.evaluateCallExpression(n, env)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n, env)
	case *ast.CompoundAssignmentExpression:
		return i.evaluateCompoundAssignment(n, env)
	case *ast.ChooseExpression:
		return i.evaluateChooseExpression(n, env)
	case *ast.FunctionDeclaration:
		return i.makeFunction(n, env), nil
	default:
		return nil, diag.Errorf(diag.InterpreterError, "unsupported expression type %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateListLiteral(lit *ast.ListLiteral, env *runtime.Environment) (runtime.Value, error) {
	elements := make([]runtime.Value, 0, len(lit.Elements))
	for _, el := range lit.Elements {
		val, err := i.evaluateValue(el, env)
		if err != nil {
			return nil, err
		}
		elements = append(elements, val)
	}
	return runtime.NewList(elements...), nil
}

// evaluateObjectLiteral builds an object. A punned property reads the variable
// of the same name from the scope the literal is evaluated in.
func (i *Interpreter) evaluateObjectLiteral(lit *ast.ObjectLiteral, env *runtime.Environment) (runtime.Value, error) {
	obj := runtime.NewObject()
	for _, prop := range lit.Properties {
		var (
			val runtime.Value
			err error
		)
		if prop.Value == nil {
			val, err = env.Lookup(prop.Key)
			val = runtime.Unwrap(val)
		} else {
			val, err = i.evaluateValue(prop.Value, env)
		}
		if err != nil {
			return nil, locate(err, prop)
		}
		obj.Set(prop.Key, val)
	}
	return obj, nil
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateValue(expr.Left, env)
	if err != nil {
		return nil, err
	}
	if expr.Operator == "??" {
		if left.Kind() != runtime.KindNull {
			return left, nil
		}
		return i.evaluateValue(expr.Right, env)
	}
	right, err := i.evaluateValue(expr.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(expr.Operator, left, right)
}

// evaluateLogicalExpression evaluates both operands, left first, before combining them;
// every operand must be a boolean.
func (i *Interpreter) evaluateLogicalExpression(expr *ast.LogicalExpression, env *runtime.Environment) (runtime.Value, error) {
	var left runtime.Value
	if expr.Left != nil {
		var err error
		if left, err = i.evaluateValue(expr.Left, env); err != nil {
			return nil, err
		}
	}
	right, err := i.evaluateValue(expr.Right, env)
	if err != nil {
		return nil, err
	}
	if expr.Left == nil {
		b, ok := right.(runtime.BoolValue)
		if !ok {
			return nil, diag.Errorf(diag.InterpreterError, "operand of '!' must be a boolean, got %s", runtime.TypeName(right))
		}
		return runtime.Bool(!b.Val), nil
	}
	lb, lok := left.(runtime.BoolValue)
	rb, rok := right.(runtime.BoolValue)
	if !lok || !rok {
		return nil, diag.Errorf(diag.InterpreterError, "operands of '%s' must be booleans, got %s and %s",
			expr.Operator, runtime.TypeName(left), runtime.TypeName(right))
	}
	if expr.Operator == "&&" {
		return runtime.Bool(lb.Val && rb.Val), nil
	}
	return runtime.Bool(lb.Val || rb.Val), nil
}

func (i *Interpreter) evaluateMembershipExpression(expr *ast.MembershipExpression, env *runtime.Environment) (runtime.Value, error) {
	element, err := i.evaluateValue(expr.Element, env)
	if err != nil {
		return nil, err
	}
	collection, err := i.evaluateValue(expr.Collection, env)
	if err != nil {
		return nil, err
	}
	found, err := contains(collection, element)
	if err != nil {
		return nil, err
	}
	return runtime.Bool(found != expr.Negated), nil
}

func (i *Interpreter) evaluateTernaryExpression(expr *ast.TernaryExpression, env *runtime.Environment) (runtime.Value, error) {
	test, err := i.evaluateValue(expr.Test, env)
	if err != nil {
		return nil, err
	}
	if isTruthy(test) {
		return i.evaluateValue(expr.Consequent, env)
	}
	return i.evaluateValue(expr.Alternate, env)
}

// evaluateReactive is the hook reactive bindings use to recompute themselves.
// It counts toward the call depth so a self-referential reactive fails cleanly.
func (i *Interpreter) evaluateReactive(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	if err := i.enter(); err != nil {
		return nil, err
	}
	defer i.leave()
	return i.evaluateValue(expr, env)
}
