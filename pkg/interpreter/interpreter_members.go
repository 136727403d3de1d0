package interpreter

import (
	"math"

	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// memberKey resolves the property part of a member expression: the literal
// name for `obj.name`, the evaluated index for `obj[expr]`.
func (i *Interpreter) memberKey(expr *ast.MemberExpression, env *runtime.Environment) (runtime.Value, error) {
	if !expr.Computed {
		ident, ok := expr.Property.(*ast.Identifier)
		if !ok {
			return nil, diag.Errorf(diag.InterpreterError, "invalid member name")
		}
		return runtime.StringValue{Val: ident.Name}, nil
	}
	return i.evaluateValue(expr.Property, env)
}

func (i *Interpreter) evaluateMemberExpression(expr *ast.MemberExpression, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateValue(expr.Object, env)
	if err != nil {
		return nil, err
	}
	key, err := i.memberKey(expr, env)
	if err != nil {
		return nil, err
	}
	return readMember(object, key)
}

func readMember(object, key runtime.Value) (runtime.Value, error) {
	switch obj := object.(type) {
	case *runtime.ObjectValue:
		name, err := objectKey(key)
		if err != nil {
			return nil, err
		}
		if val, ok := obj.Get(name); ok {
			return val, nil
		}
		return runtime.Null, nil
	case *runtime.ListValue:
		if isLengthKey(key) {
			return runtime.NumberValue{Val: float64(len(obj.Elements))}, nil
		}
		idx, err := listIndex(key, len(obj.Elements))
		if err != nil {
			return nil, err
		}
		return obj.Elements[idx], nil
	case runtime.StringValue:
		chars := []rune(obj.Val)
		if isLengthKey(key) {
			return runtime.NumberValue{Val: float64(len(chars))}, nil
		}
		idx, err := listIndex(key, len(chars))
		if err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: string(chars[idx])}, nil
	default:
		return nil, diag.Errorf(diag.InterpreterError, "cannot access member %s of %s", runtime.Stringify(key), runtime.TypeName(object))
	}
}

func isLengthKey(key runtime.Value) bool {
	s, ok := key.(runtime.StringValue)
	return ok && s.Val == "length"
}

func objectKey(key runtime.Value) (string, error) {
	switch k := key.(type) {
	case runtime.StringValue:
		return k.Val, nil
	case runtime.NumberValue:
		return runtime.FormatNumber(k.Val), nil
	default:
		return "", diag.Errorf(diag.InterpreterError, "object keys must be strings, got %s", runtime.TypeName(key))
	}
}

// listIndex validates key as an integral index below length.
func listIndex(key runtime.Value, length int) (int, error) {
	num, ok := key.(runtime.NumberValue)
	if !ok || num.Val != math.Trunc(num.Val) {
		return 0, diag.Errorf(diag.InterpreterError, "list index must be an integer, got %s", runtime.Stringify(key))
	}
	if num.Val < 0 || num.Val >= float64(length) {
		return 0, diag.Errorf(diag.InterpreterError, "list index %s out of range (length %d)", runtime.FormatNumber(num.Val), length)
	}
	return int(num.Val), nil
}

func (i *Interpreter) evaluateAssignment(expr *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateValue(expr.Value, env)
	if err != nil {
		return nil, err
	}
	return i.assignTo(expr.Target, val, env)
}

// assignTo writes val into target. A member target mutates its container in
// place and then writes the root variable back, so constant and reactive roots
// are rejected before anything changes.
func (i *Interpreter) assignTo(target ast.Expression, val runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	switch t := target.(type) {
	case *ast.Identifier:
		return env.Assign(t.Name, val, false)
	case *ast.MemberExpression:
		root := memberRoot(t)
		if root != nil {
			if err := env.CheckAssignable(root.Name); err != nil {
				return nil, locate(err, root)
			}
		}
		container, err := i.evaluateValue(t.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := i.memberKey(t, env)
		if err != nil {
			return nil, err
		}
		if err := writeMember(container, key, val); err != nil {
			return nil, locate(err, t)
		}
		if root != nil {
			current, err := env.Lookup(root.Name)
			if err != nil {
				return nil, err
			}
			if _, err := env.Assign(root.Name, current, false); err != nil {
				return nil, err
			}
		}
		return val, nil
	default:
		return nil, diag.Errorf(diag.InterpreterError, "invalid assignment target %s", target.NodeType())
	}
}

// memberRoot returns the variable at the base of a member chain such as
// `a.b[0].c`, or nil when the chain starts from a call or literal.
func memberRoot(expr *ast.MemberExpression) *ast.Identifier {
	var node ast.Expression = expr
	for {
		switch n := node.(type) {
		case *ast.MemberExpression:
			node = n.Object
		case *ast.Identifier:
			return n
		default:
			return nil
		}
	}
}

func writeMember(container, key, val runtime.Value) error {
	switch c := container.(type) {
	case *runtime.ObjectValue:
		name, err := objectKey(key)
		if err != nil {
			return err
		}
		c.Set(name, val)
		return nil
	case *runtime.ListValue:
		num, ok := key.(runtime.NumberValue)
		if ok && num.Val == float64(len(c.Elements)) {
			c.Elements = append(c.Elements, val)
			return nil
		}
		idx, err := listIndex(key, len(c.Elements))
		if err != nil {
			return err
		}
		c.Elements[idx] = val
		return nil
	default:
		return diag.Errorf(diag.InterpreterError, "cannot assign member %s of %s", runtime.Stringify(key), runtime.TypeName(container))
	}
}

func (i *Interpreter) evaluateCompoundAssignment(expr *ast.CompoundAssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	var current runtime.Value
	switch t := expr.Target.(type) {
	case *ast.Identifier:
		val, err := env.Lookup(t.Name)
		if err != nil {
			return nil, err
		}
		current = runtime.Unwrap(val)
	case *ast.MemberExpression:
		val, err := i.evaluateMemberExpression(t, env)
		if err != nil {
			return nil, err
		}
		if val.Kind() != runtime.KindNull && !i.memberCompound {
			return val, nil
		}
		current = val
	default:
		return nil, diag.Errorf(diag.InterpreterError, "invalid assignment target %s", expr.Target.NodeType())
	}

	if expr.Operator == "??" && current.Kind() != runtime.KindNull {
		return current, nil
	}
	rhs, err := i.evaluateValue(expr.Value, env)
	if err != nil {
		return nil, err
	}
	next, err := applyBinary(expr.Operator, current, rhs)
	if err != nil {
		return nil, err
	}
	return i.assignTo(expr.Target, next, env)
}
