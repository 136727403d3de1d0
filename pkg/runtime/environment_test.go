package runtime

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/diag"
)

func TestGlobalEnvironmentSeedsLiterals(t *testing.T) {
	env := NewGlobalEnvironment()
	for name, want := range map[string]Value{"true": True, "false": False, "null": Null} {
		got, err := env.Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s = %#v, want %#v", name, got, want)
		}
		if !env.IsConstant(name) {
			t.Fatalf("expected %s to be constant", name)
		}
	}
}

func TestDeclareRejectsRedeclarationButAllowsShadowing(t *testing.T) {
	global := NewGlobalEnvironment()
	if _, err := global.Declare("x", NumberValue{Val: 1}, false); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if _, err := global.Declare("x", NumberValue{Val: 2}, false); !diag.IsKind(err, diag.InterpreterError) {
		t.Fatalf("expected InterpreterError on redeclaration, got %v", err)
	}

	child := global.Extend()
	if _, err := child.Declare("x", NumberValue{Val: 3}, false); err != nil {
		t.Fatalf("shadowing declare: %v", err)
	}
	outer, _ := global.Lookup("x")
	inner, _ := child.Lookup("x")
	if outer.(NumberValue).Val != 1 || inner.(NumberValue).Val != 3 {
		t.Fatalf("shadowing leaked: outer=%v inner=%v", outer, inner)
	}
}

func TestDeclareOwnedRebindsOnlyForItsOwner(t *testing.T) {
	env := NewGlobalEnvironment()
	loop, other := &struct{ id int }{1}, &struct{ id int }{2}
	if _, err := env.DeclareOwned("i", NumberValue{Val: 0}, loop); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if _, err := env.DeclareOwned("i", NumberValue{Val: 5}, loop); err != nil {
		t.Fatalf("owner rebind: %v", err)
	}
	if got, _ := env.Lookup("i"); got.(NumberValue).Val != 5 {
		t.Fatalf("expected rebound value 5, got %v", got)
	}
	if _, err := env.DeclareOwned("i", NumberValue{Val: 6}, other); !diag.IsKind(err, diag.InterpreterError) {
		t.Fatalf("expected InterpreterError for a different owner, got %v", err)
	}

	if _, err := env.Declare("n", NumberValue{Val: 99}, false); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if _, err := env.DeclareOwned("n", NumberValue{Val: 0}, loop); !diag.IsKind(err, diag.InterpreterError) {
		t.Fatalf("expected InterpreterError over a plain binding, got %v", err)
	}
	if got, _ := env.Lookup("n"); got.(NumberValue).Val != 99 {
		t.Fatalf("plain binding was overwritten: %v", got)
	}
}

func TestAssignWritesDefiningScope(t *testing.T) {
	global := NewGlobalEnvironment()
	global.Declare("count", NumberValue{Val: 0}, false)
	child := global.Extend().Extend()
	if _, err := child.Assign("count", NumberValue{Val: 5}, false); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if child.Has("count") {
		t.Fatalf("assignment must not create a binding in the child scope")
	}
	got, _ := global.Lookup("count")
	if got.(NumberValue).Val != 5 {
		t.Fatalf("count = %v, want 5", got)
	}
}

func TestAssignGuards(t *testing.T) {
	env := NewGlobalEnvironment()
	env.Declare("limit", NumberValue{Val: 1}, true)
	if _, err := env.Assign("limit", NumberValue{Val: 2}, false); !diag.IsKind(err, diag.InterpreterError) {
		t.Fatalf("expected constant reassignment to fail, got %v", err)
	}
	if _, err := env.Assign("missing", Null, false); err == nil {
		t.Fatalf("expected assignment to undeclared name to fail")
	}

	if _, err := env.Assign("limit", NumberValue{Val: 2}, true); err != nil {
		t.Fatalf("forced assign: %v", err)
	}
	if env.IsConstant("limit") {
		t.Fatalf("forced assignment should clear the constant flag")
	}
	if _, err := env.Assign("limit", NumberValue{Val: 3}, false); err != nil {
		t.Fatalf("plain assign after force: %v", err)
	}
}

func TestReactiveLookupRefreshes(t *testing.T) {
	env := NewGlobalEnvironment()
	env.Declare("a", NumberValue{Val: 1}, false)
	reads := 0
	reactive := &ReactiveValue{
		Name: "double",
		Expr: ast.NewIdentifier("a"),
		Env:  env,
		Eval: func(expr ast.Expression, scope *Environment) (Value, error) {
			reads++
			v, err := scope.Lookup(expr.(*ast.Identifier).Name)
			if err != nil {
				return nil, err
			}
			return NumberValue{Val: v.(NumberValue).Val * 2}, nil
		},
	}
	if _, err := env.DeclareReactive("double", reactive); err != nil {
		t.Fatalf("declare reactive: %v", err)
	}

	env.Assign("a", NumberValue{Val: 21}, false)
	got, err := env.Lookup("double")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if Unwrap(got).(NumberValue).Val != 42 {
		t.Fatalf("double = %v, want 42", Unwrap(got))
	}
	if reads != 1 {
		t.Fatalf("expected one evaluation, got %d", reads)
	}

	if _, err := env.Assign("double", NumberValue{Val: 0}, false); !diag.IsKind(err, diag.InterpreterError) {
		t.Fatalf("expected reactive reassignment to fail, got %v", err)
	}
	if _, err := env.Assign("double", NumberValue{Val: 42}, true); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	env.Assign("a", NumberValue{Val: 1}, false)
	got, _ = env.Lookup("double")
	if got.(NumberValue).Val != 42 {
		t.Fatalf("frozen value changed to %v", got)
	}
}

func TestExportAndImportBookkeeping(t *testing.T) {
	root := NewGlobalEnvironment()
	child := root.Extend()
	child.MarkImported("b")
	root.MarkImported("a")
	if !child.HasImported("a") || !root.HasImported("b") {
		t.Fatalf("imported set must live on the root scope")
	}
	if diff := cmp.Diff([]string{"a", "b"}, child.ImportedPaths()); diff != "" {
		t.Fatalf("imported paths (-want +got):\n%s", diff)
	}

	root.MarkExported("zeta")
	root.MarkExported("alpha")
	root.MarkExported("zeta")
	if diff := cmp.Diff([]string{"zeta", "alpha"}, root.Exported()); diff != "" {
		t.Fatalf("exported names (-want +got):\n%s", diff)
	}
}

func TestResolveMissing(t *testing.T) {
	env := NewGlobalEnvironment().Extend()
	if _, err := env.Resolve("ghost"); !diag.IsKind(err, diag.InterpreterError) {
		t.Fatalf("expected InterpreterError, got %v", err)
	}
	if env.Root().Parent() != nil {
		t.Fatalf("root must have no parent")
	}
}
