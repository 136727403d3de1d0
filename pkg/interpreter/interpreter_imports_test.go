package interpreter

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

func TestSourceModuleExports(t *testing.T) {
	dir := writeModules(t, map[string]string{
		"util.tide": `
export fn double(x) => x * 2
export const name = "util"
let hidden = 1
`,
		"main.tide": `
import "util"
[util.double(21), util.name, util.hidden]
`,
	})
	val, err := New().RunFile(filepath.Join(dir, "main.tide"))
	if err != nil {
		t.Fatalf("run failed: %s", diag.Describe(err))
	}
	if got := runtime.Stringify(val); got != `[42, "util", null]` {
		t.Fatalf("unexpected result %s", got)
	}
}

func TestImportedObjectsAreConstant(t *testing.T) {
	_, _, err := evalSource(t, "import \"math\"\nmath = 1")
	checkFailure(t, err, diag.InterpreterError, "cannot reassign constant 'math'")
}

func TestCircularImportFailsBeforeEvaluation(t *testing.T) {
	dir := writeModules(t, map[string]string{
		"a.tide":    "import \"b\"\nprint(\"a body\")\nexport let x = 1\n",
		"b.tide":    "import \"a\"\nprint(\"b body\")\nexport let y = 2\n",
		"main.tide": "import \"a\"\nprint(\"main body\")\n",
	})
	var out bytes.Buffer
	_, err := New(WithStdout(&out)).RunFile(filepath.Join(dir, "main.tide"))
	de := checkFailure(t, err, diag.ImportError, `circular or duplicate import of "a"`)
	if filepath.Base(de.Location.File) != "b.tide" || de.Location.Line != 1 {
		t.Fatalf("expected failure at b.tide:1, got %s", de.Location)
	}
	if out.Len() != 0 {
		t.Fatalf("module bodies ran before the import failed: %q", out.String())
	}
}

func TestDuplicateImport(t *testing.T) {
	_, _, err := evalSource(t, "import \"math\"\nimport \"math\"")
	de := checkFailure(t, err, diag.ImportError, `circular or duplicate import of "math"`)
	if de.Location.Line != 2 {
		t.Fatalf("expected line 2, got %d", de.Location.Line)
	}
}

func TestSameModuleFromTwoImportersIsEvaluatedTwice(t *testing.T) {
	dir := writeModules(t, map[string]string{
		"shared.tide": "print(\"shared\")\nexport let v = 1\n",
		"left.tide":   "import \"shared\"\nexport let l = shared.v\n",
		"right.tide":  "import \"shared\"\nexport let r = shared.v + 1\n",
		"main.tide":   "import \"left\"\nimport \"right\"\nleft.l + right.r\n",
	})
	var out bytes.Buffer
	val, err := New(WithStdout(&out)).RunFile(filepath.Join(dir, "main.tide"))
	if err != nil {
		t.Fatalf("run failed: %s", diag.Describe(err))
	}
	if runtime.Stringify(val) != "3" || out.String() != "shared\nshared\n" {
		t.Fatalf("unexpected result %s with output %q", runtime.Stringify(val), out.String())
	}
}

func TestMissingLibrary(t *testing.T) {
	_, _, err := evalSource(t, "import \"nowhere\"")
	checkFailure(t, err, diag.ImportError, `library "nowhere" not found`)
}

func TestImportAfterStatementsIsParserError(t *testing.T) {
	_, _, err := evalSource(t, "let x = 1\nimport \"math\"")
	checkFailure(t, err, diag.ParserError, "import statements must come before any other statement")
}

func TestSearchPaths(t *testing.T) {
	lib := writeModules(t, map[string]string{"lib/geometry.tide": "export fn square(x) => x * x\n"})
	_, _, err := evalSource(t, "import \"geometry\"\ngeometry.square(3)")
	checkFailure(t, err, diag.ImportError, "not found")

	val := mustEval(t, "import \"geometry\"\ngeometry.square(3)", WithSearchPaths(filepath.Join(lib, "lib")))
	if runtime.Stringify(val) != "9" {
		t.Fatalf("unexpected result %s", runtime.Stringify(val))
	}
}

func TestErrorsInsideModulesCarryModuleFile(t *testing.T) {
	dir := writeModules(t, map[string]string{
		"bad.tide":  "export let x = 1 / 0\n",
		"main.tide": "import \"bad\"\nbad.x\n",
	})
	_, err := New().RunFile(filepath.Join(dir, "main.tide"))
	de := checkFailure(t, err, diag.MathError, "division by zero")
	if filepath.Base(de.Location.File) != "bad.tide" || de.Location.Line != 1 {
		t.Fatalf("expected bad.tide:1, got %s", de.Location)
	}
}

func TestExportedReactiveIsSnapshot(t *testing.T) {
	dir := writeModules(t, map[string]string{
		"state.tide": "let base = 2\nexport reactive doubled = base * 2\nbase = 5\n",
		"main.tide":  "import \"state\"\nstate.doubled\n",
	})
	val, err := New().RunFile(filepath.Join(dir, "main.tide"))
	if err != nil {
		t.Fatalf("run failed: %s", diag.Describe(err))
	}
	if runtime.Stringify(val) != "10" {
		t.Fatalf("expected the value at import time, got %s", runtime.Stringify(val))
	}
}

func TestDefaultLibraries(t *testing.T) {
	expectShown(t, "import \"math\"\nmath.sqrt(16) + math.floor(math.pi)", "7")
	expectShown(t, "import \"list\"\nlist.map([1, 2, 3], fn (x) => x * 10)", "[10, 20, 30]")
	expectShown(t, "import \"list\"\nlist.reduce(list.range(5), fn (acc, x) => acc + x, 0)", "10")
	expectShown(t, "import \"string\"\nstring.upper(\"tide\")", "TIDE")
	expectShown(t, "import \"json\"\njson.parse(\"{\\\"a\\\": [1, 2]}\").a[1]", "2")
	expectShown(t, "import \"yaml\"\nyaml.stringify({ a: 1 })", "a: 1\n")

	de := expectFailure(t, "import \"math\"\n\nmath.sqrt(-4)", diag.MathError, "square root of negative number")
	if de.Location.Line != 3 {
		t.Fatalf("expected native failure at line 3, got %d", de.Location.Line)
	}
}

func TestRandomIsSeeded(t *testing.T) {
	source := "import \"random\"\n[random.int(1, 1000), random.int(1, 1000), random.float()]"
	first := runtime.Stringify(mustEval(t, source, WithRandomSeed(7)))
	second := runtime.Stringify(mustEval(t, source, WithRandomSeed(7)))
	if first != second {
		t.Fatalf("same seed produced %s and %s", first, second)
	}
}

func TestRegisteredNativeModule(t *testing.T) {
	interp := New()
	interp.RegisterNativeModule("geo", runtime.NativeModule{
		"geo": {
			Functions: map[string]runtime.NativeFunc{
				"area": func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					w := args[0].(runtime.NumberValue).Val
					h := args[1].(runtime.NumberValue).Val
					return runtime.NumberValue{Val: w * h}, nil
				},
			},
			Constants: map[string]runtime.Value{"unit": runtime.StringValue{Val: "m2"}},
		},
		"meta": {Constants: map[string]runtime.Value{"version": runtime.NumberValue{Val: 1}}},
	})
	val, err := interp.Run("import \"geo\"\n[geo.area(2, 3), geo.unit, meta.version, type(geo.area)]", "")
	if err != nil {
		t.Fatalf("run failed: %s", diag.Describe(err))
	}
	if got := runtime.Stringify(val); got != `[6, "m2", 1, "function"]` {
		t.Fatalf("unexpected result %s", got)
	}
}

func TestNativeModuleShapeIsValidated(t *testing.T) {
	cases := map[string]runtime.NativeModule{
		"empty object name": {"": {}},
		"nil function":      {"bad": {Functions: map[string]runtime.NativeFunc{"f": nil}}},
		"nil constant":      {"bad": {Constants: map[string]runtime.Value{"c": nil}}},
	}
	for name, module := range cases {
		t.Run(name, func(t *testing.T) {
			interp := New()
			interp.RegisterNativeModule("broken", module)
			_, err := interp.Run("import \"broken\"", "")
			checkFailure(t, err, diag.ImportError, "invalid library export shape")
		})
	}
}

func TestNativeFunctionsCanCallBack(t *testing.T) {
	interp := New()
	interp.RegisterNativeModule("hooks", runtime.NativeModule{
		"hooks": {Functions: map[string]runtime.NativeFunc{
			"twice": func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
				first, err := ctx.Call(args[0], []runtime.Value{runtime.NumberValue{Val: 1}})
				if err != nil {
					return nil, err
				}
				return ctx.Call(args[0], []runtime.Value{first})
			},
			"where": func(ctx *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
				return runtime.NumberValue{Val: float64(ctx.Line*100 + ctx.Column)}, nil
			},
		}},
	})
	val, err := interp.Run("import \"hooks\"\n[hooks.twice(fn (n) => n + 10), hooks.where()]", "")
	if err != nil {
		t.Fatalf("run failed: %s", diag.Describe(err))
	}
	if got := runtime.Stringify(val); got != "[21, 244]" {
		t.Fatalf("unexpected result %s", got)
	}
}

func TestImportResolutionIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if _, err := New(WithLogger(logger)).Run("import \"math\"", ""); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(logs.String(), "import resolved") || !strings.Contains(logs.String(), "path=math") {
		t.Fatalf("expected a debug record for the import, got %q", logs.String())
	}
}
