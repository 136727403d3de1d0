package stdlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
	"tide/interpreter-go/pkg/stdlib"
)

// nativeCaller only knows how to invoke native functions, which is enough for
// the callback-taking list helpers.
func nativeCaller(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	fn := callee.(runtime.NativeFunctionValue)
	return fn.Impl(&runtime.NativeCallContext{}, args)
}

func call(t *testing.T, module runtime.NativeModule, object, name string, args ...runtime.Value) (runtime.Value, error) {
	t.Helper()
	obj, ok := module[object]
	require.True(t, ok, "object %s missing", object)
	fn, ok := obj.Functions[name]
	require.True(t, ok, "function %s.%s missing", object, name)
	return fn(&runtime.NativeCallContext{Call: nativeCaller}, args)
}

func num(f float64) runtime.Value { return runtime.NumberValue{Val: f} }
func text(s string) runtime.Value { return runtime.StringValue{Val: s} }
func list(vs ...runtime.Value) *runtime.ListValue { return runtime.NewList(vs...) }

func TestDefaultsCoverEveryLibrary(t *testing.T) {
	defaults := stdlib.Defaults(1)
	for _, name := range []string{"math", "random", "json", "yaml", "string", "list"} {
		factory, ok := defaults[name]
		require.True(t, ok, name)
		module := factory()
		assert.Contains(t, module, name, "library %s exports an object named after itself", name)
	}
}

func TestMathSqrt(t *testing.T) {
	got, err := call(t, stdlib.Math(), "math", "sqrt", num(16))
	require.NoError(t, err)
	assert.Equal(t, num(4), got)

	_, err = call(t, stdlib.Math(), "math", "sqrt", num(-1))
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.MathError))
}

func TestMathArgumentValidation(t *testing.T) {
	_, err := call(t, stdlib.Math(), "math", "abs", text("x"))
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.TypeError))
	assert.Contains(t, err.Error(), "abs: argument 1 must be a number, got string")

	_, err = call(t, stdlib.Math(), "math", "pow", num(2))
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.TypeError))
}

func TestMathMinMax(t *testing.T) {
	got, err := call(t, stdlib.Math(), "math", "max", num(3), num(9), num(4))
	require.NoError(t, err)
	assert.Equal(t, num(9), got)

	got, err = call(t, stdlib.Math(), "math", "min", list(num(3), num(-2)))
	require.NoError(t, err)
	assert.Equal(t, num(-2), got)
}

func TestRandomIsDeterministicForASeed(t *testing.T) {
	draw := func() []runtime.Value {
		module := stdlib.Defaults(42)["random"]()
		var out []runtime.Value
		for range 5 {
			v, err := call(t, module, "random", "int", num(1), num(100))
			require.NoError(t, err)
			out = append(out, v)
		}
		return out
	}
	first := draw()
	assert.Equal(t, first, draw())
	for _, v := range first {
		n := v.(runtime.NumberValue).Val
		assert.GreaterOrEqual(t, n, 1.0)
		assert.LessOrEqual(t, n, 100.0)
	}
}

func TestRandomIntCoversWideRanges(t *testing.T) {
	module := stdlib.Defaults(7)["random"]()
	for _, bounds := range [][2]float64{
		{-9000000000000000000, 9000000000000000000},
		{-9223372036854775808, 9000000000000000000},
		{5, 5},
	} {
		v, err := call(t, module, "random", "int", num(bounds[0]), num(bounds[1]))
		require.NoError(t, err)
		n := v.(runtime.NumberValue).Val
		assert.GreaterOrEqual(t, n, bounds[0])
		assert.LessOrEqual(t, n, bounds[1])
	}

	_, err := call(t, module, "random", "int", num(0), num(1e19))
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.RangeError))
	assert.Contains(t, err.Error(), "int: argument 2 is out of integer range")

	_, err = call(t, module, "random", "int", num(3), num(1))
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.RangeError))
}

func TestRandomChoiceOfEmptyList(t *testing.T) {
	module := stdlib.Defaults(1)["random"]()
	_, err := call(t, module, "random", "choice", list())
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.RangeError))
}

func TestJSONRoundTripKeepsKeyOrder(t *testing.T) {
	val, err := stdlib.ParseJSON(`{"zeta": 1, "alpha": [true, null, "x"], "mid": {"k": 2.5}}`)
	require.NoError(t, err)

	obj, ok := val.(*runtime.ObjectValue)
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

	out, err := stdlib.StringifyJSON(val, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":[true,null,"x"],"mid":{"k":2.5}}`, out)
}

func TestJSONErrors(t *testing.T) {
	_, err := stdlib.ParseJSON(`{"a": }`)
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.SyntaxError))

	_, err = stdlib.ParseJSON(`1 2`)
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.SyntaxError))

	_, err = stdlib.StringifyJSON(runtime.NativeFunctionValue{Name: "f"}, 0)
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.TypeError))
}

func TestJSONStringifyIndent(t *testing.T) {
	obj := runtime.NewObject()
	obj.Set("a", num(1))
	out, err := stdlib.StringifyJSON(obj, 2)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", out)
}

func TestYAMLParse(t *testing.T) {
	val, err := stdlib.ParseYAML("name: demo\nsizes:\n  - 1\n  - 2.5\nenabled: true\nnothing: ~\n")
	require.NoError(t, err)
	obj := val.(*runtime.ObjectValue)
	assert.Equal(t, []string{"name", "sizes", "enabled", "nothing"}, obj.Keys())

	sizes, _ := obj.Get("sizes")
	assert.Equal(t, "[1, 2.5]", runtime.Stringify(sizes))
	enabled, _ := obj.Get("enabled")
	assert.Equal(t, runtime.True, enabled)
	nothing, _ := obj.Get("nothing")
	assert.Equal(t, runtime.Null, nothing)
}

func TestYAMLStringify(t *testing.T) {
	obj := runtime.NewObject()
	obj.Set("b", text("x"))
	obj.Set("a", list(num(1), runtime.True))
	out, err := stdlib.StringifyYAML(obj)
	require.NoError(t, err)
	assert.Equal(t, "b: x\na:\n    - 1\n    - true\n", out)
}

func TestStringLibrary(t *testing.T) {
	module := stdlib.Strings()
	cases := []struct {
		fn   string
		args []runtime.Value
		want runtime.Value
	}{
		{"upper", []runtime.Value{text("tide")}, text("TIDE")},
		{"title", []runtime.Value{text("hello world")}, text("Hello World")},
		{"trim", []runtime.Value{text("  x ")}, text("x")},
		{"contains", []runtime.Value{text("harbour"), text("bou")}, runtime.True},
		{"startsWith", []runtime.Value{text("harbour"), text("x")}, runtime.False},
		{"replace", []runtime.Value{text("a-b-c"), text("-"), text("+")}, text("a+b+c")},
		{"slice", []runtime.Value{text("abcdef"), num(1), num(-1)}, text("bcde")},
		{"slice", []runtime.Value{text("abc"), num(1e20)}, text("")},
		{"slice", []runtime.Value{text("abc"), num(-1e20), num(2)}, text("ab")},
		{"format", []runtime.Value{num(1234567.5)}, text("1,234,567.5")},
	}
	for _, tc := range cases {
		t.Run(tc.fn, func(t *testing.T) {
			got, err := call(t, module, "string", tc.fn, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	parts, err := call(t, module, "string", "split", text("a,b,c"), text(","))
	require.NoError(t, err)
	assert.Equal(t, `["a", "b", "c"]`, runtime.Stringify(parts))

	joined, err := call(t, module, "string", "join", parts, text("/"))
	require.NoError(t, err)
	assert.Equal(t, text("a/b/c"), joined)
}

func TestListLibrary(t *testing.T) {
	module := stdlib.Lists()
	double := runtime.NativeFunctionValue{Name: "double", Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return num(args[0].(runtime.NumberValue).Val * 2), nil
	}}

	xs := list(num(3), num(1), num(2))
	mapped, err := call(t, module, "list", "map", xs, double)
	require.NoError(t, err)
	assert.Equal(t, "[6, 2, 4]", runtime.Stringify(mapped))

	sorted, err := call(t, module, "list", "sort", xs)
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3]", runtime.Stringify(sorted))
	assert.Equal(t, "[3, 1, 2]", runtime.Stringify(xs), "sort returns a copy")

	_, err = call(t, module, "list", "push", xs, num(9))
	require.NoError(t, err)
	assert.Len(t, xs.Elements, 4)

	last, err := call(t, module, "list", "pop", xs)
	require.NoError(t, err)
	assert.Equal(t, num(9), last)

	rng, err := call(t, module, "list", "range", num(0), num(10), num(3))
	require.NoError(t, err)
	assert.Equal(t, "[0, 3, 6, 9]", runtime.Stringify(rng))

	idx, err := call(t, module, "list", "indexOf", xs, num(2))
	require.NoError(t, err)
	assert.Equal(t, num(2), idx)

	_, err = call(t, module, "list", "sort", list(num(1), text("a")))
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.TypeError))

	_, err = call(t, module, "list", "range", num(0), num(1), num(0))
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.RangeError))
}
