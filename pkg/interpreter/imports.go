package interpreter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// SourceExtension is appended to import paths that have no extension.
const SourceExtension = ".tide"

// boundObject is one name a library contributes to the importing scope.
type boundObject struct {
	name   string
	object runtime.Value
}

// ResolveImport compiles the library at path and binds each object it exports
// as a constant in env. The parser has already rejected duplicate and circular
// imports and recorded path as imported.
func (i *Interpreter) ResolveImport(path string, env *runtime.Environment) error {
	objects, err := i.compileLibrary(path, env)
	if err != nil {
		return err
	}
	for _, bound := range objects {
		if env.Has(bound.name) {
			return diag.Errorf(diag.ImportError, "importing %q: '%s' is already defined", path, bound.name)
		}
		if _, err := env.Declare(bound.name, bound.object, true); err != nil {
			return err
		}
	}
	return nil
}

// compileLibrary tries the default libraries, then registered native modules,
// then source files.
func (i *Interpreter) compileLibrary(path string, env *runtime.Environment) ([]boundObject, error) {
	if factory, ok := i.defaults[path]; ok {
		i.logger.Debug("import resolved", "path", path, "source", "default")
		return flattenNativeModule(path, factory())
	}
	if module, ok := i.nativeModules[path]; ok {
		i.logger.Debug("import resolved", "path", path, "source", "native")
		return flattenNativeModule(path, module)
	}
	if file, ok := i.findSourceModule(path); ok {
		i.logger.Debug("import resolved", "path", path, "source", "file", "file", file)
		return i.compileSourceModule(file, env)
	}
	i.logger.Debug("import unresolved", "path", path, "base_dir", i.baseDir, "search_paths", i.searchPaths)
	return nil, diag.Errorf(diag.ImportError, "library %q not found", path)
}

// flattenNativeModule turns every exported object into one native Object, in
// name order so bindings are deterministic.
func flattenNativeModule(path string, module runtime.NativeModule) ([]boundObject, error) {
	names := make([]string, 0, len(module))
	for name := range module {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]boundObject, 0, len(names))
	for _, name := range names {
		if name == "" {
			return nil, shapeError(path, "an exported object has no name")
		}
		spec := module[name]
		obj := runtime.NewObject()
		obj.Native = true

		fnNames := sortedKeys(spec.Functions)
		for _, fnName := range fnNames {
			impl := spec.Functions[fnName]
			if fnName == "" || impl == nil {
				return nil, shapeError(path, "object %q has an invalid function %q", name, fnName)
			}
			obj.Set(fnName, runtime.NativeFunctionValue{Name: name + "." + fnName, Impl: impl})
		}
		for _, constName := range sortedKeys(spec.Constants) {
			val := spec.Constants[constName]
			if constName == "" || val == nil {
				return nil, shapeError(path, "object %q has an invalid constant %q", name, constName)
			}
			obj.Set(constName, val)
		}
		out = append(out, boundObject{name: name, object: obj})
	}
	return out, nil
}

func shapeError(path, format string, args ...any) error {
	return diag.Errorf(diag.ImportError, "invalid library export shape in %q: %s", path, fmt.Sprintf(format, args...))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// findSourceModule looks for path next to the importing file, then under each
// search path.
func (i *Interpreter) findSourceModule(path string) (string, bool) {
	name := path
	if filepath.Ext(name) == "" {
		name += SourceExtension
	}
	var candidates []string
	if filepath.IsAbs(name) {
		candidates = []string{name}
	} else {
		candidates = append(candidates, filepath.Join(i.baseDir, name))
		for _, dir := range i.searchPaths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

// compileSourceModule parses and runs file in a fresh global scope that
// inherits the importer's imported-path set. Its exports become one Object
// named after the file.
func (i *Interpreter) compileSourceModule(file string, env *runtime.Environment) ([]boundObject, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return nil, diag.Errorf(diag.ImportError, "cannot read %s: %s", file, err)
	}
	child := i.spawn(filepath.Dir(file))
	for _, imported := range env.ImportedPaths() {
		child.global.MarkImported(imported)
	}
	if _, err := child.Run(string(source), file); err != nil {
		return nil, err
	}

	exports := runtime.NewObject()
	for _, name := range child.global.Exported() {
		val, err := child.global.Lookup(name)
		if err != nil {
			return nil, diag.WithFile(err, file)
		}
		exports.Set(name, runtime.Unwrap(val))
	}
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return []boundObject{{name: base, object: exports}}, nil
}
