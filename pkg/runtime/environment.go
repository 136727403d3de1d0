package runtime

import (
	"sort"

	"tide/interpreter-go/pkg/diag"
)

// Environment provides lexical scoping for Tide runtime values. Constant and
// exported flags live beside the bindings; the imported-path set is only kept
// on the root scope.
type Environment struct {
	values   map[string]Value
	consts   map[string]struct{}
	exported []string
	imported map[string]struct{}
	owners   map[string]any
	parent   *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	env := &Environment{
		values: make(map[string]Value),
		consts: make(map[string]struct{}),
		parent: parent,
	}
	if parent == nil {
		env.imported = make(map[string]struct{})
	}
	return env
}

// NewGlobalEnvironment creates a root scope seeded with the literal constants.
func NewGlobalEnvironment() *Environment {
	env := NewEnvironment(nil)
	env.values["true"] = True
	env.values["false"] = False
	env.values["null"] = Null
	env.consts["true"] = struct{}{}
	env.consts["false"] = struct{}{}
	env.consts["null"] = struct{}{}
	return env
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Extend creates a child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// Root walks to the global scope.
func (e *Environment) Root() *Environment {
	env := e
	for env.parent != nil {
		env = env.parent
	}
	return env
}

// Declare binds name in this scope. Redeclaring a name already bound here is an
// error; shadowing a parent binding is not.
func (e *Environment) Declare(name string, value Value, constant bool) (Value, error) {
	if _, ok := e.values[name]; ok {
		return nil, diag.Errorf(diag.InterpreterError, "cannot declare '%s': already defined in this scope", name)
	}
	e.values[name] = value
	if constant {
		e.consts[name] = struct{}{}
	}
	return value, nil
}

// DeclareOwned binds name like Declare and records owner as its binder. When
// the same owner binds the name again in this scope the value is replaced;
// any other existing binding is still a redeclaration.
func (e *Environment) DeclareOwned(name string, value Value, owner any) (Value, error) {
	if _, ok := e.values[name]; ok && owner != nil && e.owners[name] == owner {
		e.values[name] = value
		return value, nil
	}
	if _, err := e.Declare(name, value, false); err != nil {
		return nil, err
	}
	if e.owners == nil {
		e.owners = make(map[string]any)
	}
	e.owners[name] = owner
	return value, nil
}

// DeclareReactive binds a reactive expression under name.
func (e *Environment) DeclareReactive(name string, reactive *ReactiveValue) (Value, error) {
	return e.Declare(name, reactive, false)
}

// Assign rebinds name in the scope that defines it. Constant and reactive
// bindings are rejected unless force is set, in which case the binding becomes
// a plain variable holding value.
func (e *Environment) Assign(name string, value Value, force bool) (Value, error) {
	scope, err := e.Resolve(name)
	if err != nil {
		return nil, err
	}
	if !force {
		if err := scope.checkWritable(name); err != nil {
			return nil, err
		}
	}
	delete(scope.consts, name)
	scope.values[name] = value
	return value, nil
}

// CheckAssignable reports the error Assign would return for name without
// writing anything.
func (e *Environment) CheckAssignable(name string) error {
	scope, err := e.Resolve(name)
	if err != nil {
		return err
	}
	return scope.checkWritable(name)
}

func (e *Environment) checkWritable(name string) error {
	if _, ok := e.consts[name]; ok {
		return diag.Errorf(diag.InterpreterError, "cannot reassign constant '%s'", name)
	}
	if _, ok := e.values[name].(*ReactiveValue); ok {
		return diag.Errorf(diag.InterpreterError, "cannot reassign reactive '%s'", name)
	}
	return nil
}

// Lookup returns the value bound to name. Reactive bindings are refreshed
// before they are returned.
func (e *Environment) Lookup(name string) (Value, error) {
	scope, err := e.Resolve(name)
	if err != nil {
		return nil, err
	}
	val := scope.values[name]
	if reactive, ok := val.(*ReactiveValue); ok {
		refreshed, err := reactive.Refresh()
		if err != nil {
			return nil, err
		}
		return refreshed, nil
	}
	return val, nil
}

// Resolve finds the nearest scope that defines name.
func (e *Environment) Resolve(name string) (*Environment, error) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			return env, nil
		}
	}
	return nil, diag.Errorf(diag.InterpreterError, "variable '%s' does not exist", name)
}

// Has reports whether name is bound in this scope only.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// IsConstant reports whether the defining scope of name marks it constant.
func (e *Environment) IsConstant(name string) bool {
	scope, err := e.Resolve(name)
	if err != nil {
		return false
	}
	_, ok := scope.consts[name]
	return ok
}

// MarkExported records name as visible to importers of this module.
func (e *Environment) MarkExported(name string) {
	for _, existing := range e.exported {
		if existing == name {
			return
		}
	}
	e.exported = append(e.exported, name)
}

// Exported lists exported names in declaration order.
func (e *Environment) Exported() []string {
	out := make([]string, len(e.exported))
	copy(out, e.exported)
	return out
}

// MarkImported records a module path on the root scope.
func (e *Environment) MarkImported(path string) {
	e.Root().imported[path] = struct{}{}
}

// HasImported reports whether path was already imported into this program.
func (e *Environment) HasImported(path string) bool {
	_, ok := e.Root().imported[path]
	return ok
}

// ImportedPaths returns the imported-path set in sorted order.
func (e *Environment) ImportedPaths() []string {
	root := e.Root()
	out := make([]string, 0, len(root.imported))
	for path := range root.imported {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Keys returns the bindings of this scope in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
