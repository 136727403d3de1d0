package interpreter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

func TestArithmeticPrecedence(t *testing.T) {
	got := mustEval(t, "2 + 3 * 4")
	if diff := cmp.Diff(runtime.Value(runtime.NumberValue{Val: 14}), got); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestArithmeticOperators(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"7 // 2", "3"},
		{"-7 // 2", "-3"},
		{"7 % 3", "1"},
		{"2 ^ 3 ^ 2", "512"},
		{"2 ^ -1", "0.5"},
		{"10 - 2 - 3", "5"},
		{"(1 + 2) * 3", "9"},
		{`"ab" * 3`, "ababab"},
		{`3 * "ab"`, "ababab"},
		{`"ab" * 0`, ""},
		{`"tide" + "pool"`, "tidepool"},
		{"[1, 2] + [3]", "[1, 2, 3]"},
		{`"a" - 1`, "null"},
		{"true + 1", "null"},
	}
	for _, tc := range cases {
		t.Run(tc.source, func(t *testing.T) {
			expectShown(t, tc.source, tc.want)
		})
	}
}

func TestStringRepetitionIsBounded(t *testing.T) {
	expectFailure(t, `"a" * 10000000000000000000`, diag.RangeError, "string repetition")
	expectFailure(t, `1000000000 * "ab"`, diag.RangeError, "string repetition")
	expectShown(t, `"" * 10000000000000000000`, "")
	expectShown(t, `"ab" * 2.7`, "abab")
}

func TestDivisionByZeroIsMathError(t *testing.T) {
	for _, source := range []string{"5 / 0", "5 // 0", "5 % 0"} {
		expectFailure(t, source, diag.MathError, "division by zero")
	}
}

func TestComparisonAndEquality(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"[1, 2] == [1, 2]", "true"},
		{"[1, 2] != [2, 1]", "true"},
		{"{ a: 1 } == { a: 1 }", "true"},
		{`1 == "1"`, "false"},
		{"null == null", "true"},
		{`"apple" < "banana"`, "true"},
		{"3 >= 3", "true"},
	}
	for _, tc := range cases {
		expectShown(t, tc.source, tc.want)
	}
	expectFailure(t, `1 < "a"`, diag.InterpreterError, "cannot compare number < string")
}

func TestLogicalOperatorsAreStrict(t *testing.T) {
	expectShown(t, "true && !false", "true")
	expectShown(t, "not (1 == 2) || false", "true")
	expectFailure(t, "!1", diag.InterpreterError, "operand of '!' must be a boolean")
	expectFailure(t, "true && 1", diag.InterpreterError, "operands of '&&' must be booleans")
}

func TestLogicalOperatorsEvaluateBothSides(t *testing.T) {
	_, out, err := evalSource(t, `
fn noisy() {
  print("evaluated")
  true
}
false && noisy()
`)
	if err != nil {
		t.Fatalf("evaluation failed: %s", diag.Describe(err))
	}
	if out != "evaluated\n" {
		t.Fatalf("expected right operand to run, output %q", out)
	}
}

func TestLogicalOperandsRunLeftToRight(t *testing.T) {
	for _, op := range []string{"&&", "||"} {
		_, out, err := evalSource(t, `
fn left() {
  print("left")
  true
}
fn right() {
  print("right")
  true
}
left() `+op+` right()
`)
		if err != nil {
			t.Fatalf("%s: evaluation failed: %s", op, diag.Describe(err))
		}
		if out != "left\nright\n" {
			t.Fatalf("%s: operands ran out of order, output %q", op, out)
		}
	}
}

func TestNullishAndTernary(t *testing.T) {
	expectShown(t, "null ?? 5", "5")
	expectShown(t, "0 ?? 5", "0")
	expectShown(t, `0 ? "yes" : "no"`, "no")
	expectShown(t, `[1] ? "yes" : "no"`, "yes")
	_, out, err := evalSource(t, `true ? 1 : print("skipped")`)
	if err != nil || out != "" {
		t.Fatalf("ternary evaluated the untaken branch: out=%q err=%v", out, err)
	}
}

func TestMembership(t *testing.T) {
	expectShown(t, "2 in [1, 2, 3]", "true")
	expectShown(t, "4 not in [1, 2, 3]", "true")
	expectShown(t, `"ide" in "tide"`, "true")
	expectShown(t, `"a" in { a: 1 }`, "true")
	expectFailure(t, "1 in 2", diag.InterpreterError, "'in' expects a list, string or object")
}

func TestForLetCounterVisibleAfterLoop(t *testing.T) {
	expectShown(t, `
let total = 0
for (let i = 0; i < 4; i += 1) {
  total += i
}
[i, total]
`, "[4, 6]")
}

func TestLoopHeaderCannotRedeclareExistingName(t *testing.T) {
	expectFailure(t, "let i = 99\nfor (let i = 0; i < 3; i += 1) { }\ni", diag.InterpreterError,
		"cannot declare 'i': already defined in this scope")
	expectFailure(t, "let x = 1\nforeach (let x in [1, 2]) { }", diag.InterpreterError,
		"cannot declare 'x': already defined in this scope")

	// The same header running again from an enclosing loop rebinds its own counter.
	expectShown(t, `
let hits = 0
for (let round = 0; round < 3; round += 1) {
  for (let j = 0; j < 2; j += 1) {
    hits += 1
  }
}
[hits, j]
`, "[6, 2]")

	// Fenced headers get a fresh scope, so an outer name is shadowed.
	expectShown(t, "let i = 99\nfor (let i = 0; i < 3; i += 1) { }\ni", "99", WithFencedLoopBodies(true))
}

func TestFencedLoopBodies(t *testing.T) {
	source := `
let total = 0
foreach (x in [1, 2, 3]) {
  let y = x * 2
  total += y
}
total
`
	expectFailure(t, source, diag.InterpreterError, "cannot declare 'y': already defined in this scope")
	expectShown(t, source, "12", WithFencedLoopBodies(true))

	expectFailure(t, "for (let i = 0; i < 2; i += 1) { }\ni", diag.InterpreterError,
		"variable 'i' does not exist", WithFencedLoopBodies(true))
}

func TestForEachForms(t *testing.T) {
	expectShown(t, `
let seen = ""
foreach ([ch, idx] in "abc") {
  seen += ch + str(idx)
}
seen
`, "a0b1c2")

	expectShown(t, `
let keys = []
let k = ""
foreach (k in { b: 1, a: 2 }) {
  keys = keys + [k]
}
[keys, k]
`, `[["b", "a"], "a"]`)
}

func TestForEachReevaluatesIterable(t *testing.T) {
	expectShown(t, `
let xs = [1]
let count = 0
foreach (x in xs) {
  count += 1
  if (count < 3) {
    xs[len(xs)] = x + 1
  }
}
[count, xs]
`, "[3, [1, 2, 3]]")
}

func TestBreakAndContinue(t *testing.T) {
	expectShown(t, `
let hits = []
for (let i = 0; i < 10; i += 1) {
  if (i == 2) { continue }
  if (i == 5) { break }
  hits = hits + [i]
}
hits
`, "[0, 1, 3, 4]")
	expectFailure(t, "break", diag.InterpreterError, "'break' used outside of a loop")
}

func TestWhileIterationCeiling(t *testing.T) {
	expectShown(t, "let n = 0\nwhile (n < 5) { n += 1 }\nn", "5", WithMaxWhileIterations(5))
	expectFailure(t, "let n = 0\nwhile (true) { n += 1 }", diag.InterpreterError,
		"potential infinite loop: while exceeded 5 iterations", WithMaxWhileIterations(5))
	expectShown(t, "let n = 0\nwhile (n < 20000) { n += 1 }\nn", "20000", WithMaxWhileIterations(0))
}

func TestConstAndRedeclaration(t *testing.T) {
	expectFailure(t, "const x = 1\nx = 2", diag.InterpreterError, "cannot reassign constant 'x'")
	expectFailure(t, "let x = 1\nlet x = 2", diag.InterpreterError, "cannot declare 'x': already defined in this scope")
	expectFailure(t, "const xs = [1]\nxs[0] = 2", diag.InterpreterError, "cannot reassign constant 'xs'")
	expectFailure(t, "print = 1", diag.InterpreterError, "cannot reassign constant 'print'")
}

func TestShadowingInFunctionBody(t *testing.T) {
	expectShown(t, `
let x = 1
fn f() {
  let x = 5
  x
}
[f(), x]
`, "[5, 1]")
}

func TestImplicitReturn(t *testing.T) {
	expectShown(t, "fn add(a, b) => a + b\nadd(2, 3)", "5")
	expectShown(t, "fn pick(a, b) {\n  if (a) { b } else { 0 }\n}\npick(true, 7)", "7")
	expectShown(t, "fn missing(a, b) => b\nmissing(1)", "null")
}

func TestClosuresCaptureDeclarationScope(t *testing.T) {
	expectShown(t, `
fn counter() {
  let n = 0
  fn () { n += 1 }
}
let c = counter()
c()
c()
`, "2")
	expectShown(t, "let sq = fn (x) => x * x\nsq(4)", "16")
}

func TestCallingNonCallable(t *testing.T) {
	expectFailure(t, "let x = 1\nx()", diag.InterpreterError, "number is not callable")
}

func TestCallDepthCeiling(t *testing.T) {
	expectFailure(t, "fn f(n) => f(n + 1)\nf(0)", diag.InterpreterError,
		"maximum call depth of 50 exceeded", WithMaxCallDepth(50))
	expectShown(t, "fn down(n) => n == 0 ? 0 : down(n - 1)\ndown(40)", "0", WithMaxCallDepth(50))
}

func TestObjectsAndMembers(t *testing.T) {
	expectShown(t, "let a = 1\nlet o = { a, b: 2 }\no.a + o.b", "3")
	expectShown(t, "let o = { a: 1 }\no.missing", "null")
	expectShown(t, `let o = { "two words": 1 }`+"\no[\"two words\"]", "1")
	expectShown(t, "let o = {}\no.x = 1\no[\"y\"] = 2\no", "{ x: 1, y: 2 }")
	expectShown(t, "let o = { inner: { v: 1 } }\no.inner.v = 5\no", "{ inner: { v: 5 } }")
	expectFailure(t, "let n = 1\nn.x", diag.InterpreterError, "cannot access member")
}

func TestObjectPunningUsesDefiningScope(t *testing.T) {
	expectShown(t, `
let v = "outer"
fn make() {
  let v = "inner"
  { v }
}
make().v
`, "inner")
}

func TestListIndexing(t *testing.T) {
	expectShown(t, "let xs = [1, 2]\nxs[2] = 3\nxs[0] = 9\nxs", "[9, 2, 3]")
	expectShown(t, "[4, 5, 6].length + \"abc\".length", "6")
	expectShown(t, `"tide"[1]`, "i")
	expectFailure(t, "let xs = [1]\nxs[3]", diag.InterpreterError, "list index 3 out of range")
	expectFailure(t, "let xs = [1]\nxs[5] = 1", diag.InterpreterError, "out of range")
	expectFailure(t, "let xs = [1]\nxs[0.5]", diag.InterpreterError, "list index must be an integer")
}

func TestAssignmentTargets(t *testing.T) {
	expectFailure(t, "1 = 2", diag.InterpreterError, "invalid assignment target")
	expectFailure(t, "y = 2", diag.InterpreterError, "variable 'y' does not exist")
}

func TestCompoundAssignment(t *testing.T) {
	expectShown(t, "let x = 10\nx -= 3\nx *= 2\nx //= 3\nx", "4")
	expectShown(t, "let s = \"a\"\ns += \"b\"\ns", "ab")
	expectShown(t, "let v = null\nv ??= 4\nv ??= 9\nv", "4")
}

func TestMemberCompoundAssignmentIsNoOpByDefault(t *testing.T) {
	source := "let o = { a: 1 }\no.a += 5\no.b ??= 3\no"
	expectShown(t, source, "{ a: 1, b: 3 }")
	expectShown(t, source, "{ a: 6, b: 3 }", WithMemberCompoundAssignment(true))
	expectShown(t, "let o = { a: 1 }\no.a += 5", "1")
}

func TestChooseSelectsFirstMatch(t *testing.T) {
	source := `
let x = 2
choose x {
  case 1, 2: "low"
  case 3: "high"
  default: "other"
}
`
	expectShown(t, source, "low")
	expectShown(t, strings.Replace(source, "let x = 2", "let x = 7", 1), "other")
	expectShown(t, `let r = choose 3 { case 3: "three" }`+"\nr", "three")
	expectShown(t, `let r = choose 9 { case 3: "three" }`+"\nr", "null")
}

func TestChooseAllRunsEveryMatch(t *testing.T) {
	expectShown(t, `
let log = ""
chooseall 2 {
  case 1, 2: log += "a"
  case 2, 3: log += "b"
  case 4: log += "c"
  default: log += "d"
}
log
`, "ab")
	expectShown(t, `chooseall 5 { case 1: "a" default: "none" }`, "none")
	expectShown(t, `let all = chooseall 2 { case 2: "x" case 1, 2: "y" }`+"\nall", `["x", "y"]`)
}

func TestChooseAliasIsScopedToTheConstruct(t *testing.T) {
	expectShown(t, "choose 1 + 1 as n { case 2: n * 10 }", "20")
	expectFailure(t, "choose 1 as n { case 1: n }\nn", diag.InterpreterError, "variable 'n' does not exist")
}

func TestChooseEvaluatesSubjectOnce(t *testing.T) {
	_, out, err := evalSource(t, `
fn subject() {
  print("subject")
  3
}
chooseall subject() { case 1: 1 case 2: 2 case 3: 3 }
`)
	if err != nil {
		t.Fatalf("evaluation failed: %s", diag.Describe(err))
	}
	if out != "subject\n" {
		t.Fatalf("subject evaluated %d times", strings.Count(out, "subject"))
	}
}

func TestBreakInsideChooseLeavesLoop(t *testing.T) {
	expectShown(t, `
let hits = 0
foreach (x in [1, 2, 3, 4]) {
  choose x {
    case 3: break
    default: hits += 1
  }
}
hits
`, "2")
	expectFailure(t, "foreach (x in [1]) {\n  let r = choose x { case 1: break }\n}",
		diag.InterpreterError, "'break' cannot leave a choose expression")
}

func TestReactiveTracksDependencies(t *testing.T) {
	expectShown(t, `
let a = 1
let b = 2
reactive c = a + b
let before = c
a = 10
[before, c]
`, "[3, 12]")
	expectFailure(t, "let a = 1\nreactive c = a\nc = 2", diag.InterpreterError, "cannot reassign reactive 'c'")
}

func TestUnreactiveFreezesBinding(t *testing.T) {
	expectShown(t, `
let a = 1
reactive b = a * 2
unreactive(b)
a = 5
let frozen = b
b = 7
[frozen, b]
`, "[2, 7]")
	expectFailure(t, "let a = 1\nunreactive(a)", diag.TypeError, "unreactive expects a reactive variable")
}

func TestClassDeclarationsAreInert(t *testing.T) {
	expectShown(t, `
class Point {
  public { let x = 1 }
  private { let y = 2 }
}
"done"
`, "done")
	expectFailure(t, "class P { let x = 1 }\nx", diag.InterpreterError, "variable 'x' does not exist")
}

func TestBuiltins(t *testing.T) {
	_, out, err := evalSource(t, `print("n =", 1.5, [1, "two"], { k: null })`)
	if err != nil {
		t.Fatalf("print failed: %s", diag.Describe(err))
	}
	if out != "n = 1.5 [1, \"two\"] { k: null }\n" {
		t.Fatalf("unexpected output %q", out)
	}

	expectShown(t, `int("42.9") + float("0.5")`, "42.5")
	expectShown(t, `str(12) + "!"`, "12!")
	expectShown(t, `[type([]), type(print), type(fn () => 1), type(null)]`,
		`["list", "function", "function", "null"]`)
	expectShown(t, `len("héllo") + len([1, 2]) + len({ a: 1 })`, "8")
	expectShown(t, `type(time())`, "number")
	expectFailure(t, `int("abc")`, diag.SyntaxError, `cannot convert "abc" to a number`)
	expectFailure(t, `len(1)`, diag.TypeError, "len expects a list, string or object")
	expectFailure(t, `str()`, diag.TypeError, "str expects 1 argument(s), got 0")
}

func TestInputReadsLines(t *testing.T) {
	val, out, err := evalSource(t, `input("name? ")`, WithStdin(strings.NewReader("tide\nrest\n")))
	if err != nil {
		t.Fatalf("input failed: %s", diag.Describe(err))
	}
	if out != "name? " || runtime.Stringify(val) != "tide" {
		t.Fatalf("unexpected input result %q / output %q", runtime.Stringify(val), out)
	}
	expectShown(t, "input()", "null", WithStdin(strings.NewReader("")))
}

func TestErrorsCarryInnermostPosition(t *testing.T) {
	de := expectFailure(t, "let a = 1\nlet b = a + c", diag.InterpreterError, "variable 'c' does not exist")
	if de.Location.Line != 2 || de.Location.Column != 13 {
		t.Fatalf("expected 2:13, got %d:%d", de.Location.Line, de.Location.Column)
	}
	want := "InterpreterError: variable 'c' does not exist at <input>:2:13"
	if got := diag.Describe(de); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestOutputBeforeFailureIsKept(t *testing.T) {
	_, out, err := evalSource(t, "print(\"first\")\n1 / 0")
	checkFailure(t, err, diag.MathError, "division by zero")
	if out != "first\n" {
		t.Fatalf("expected earlier output to remain, got %q", out)
	}
}

func TestInterpretersShareNoState(t *testing.T) {
	first := New()
	second := New()
	if _, err := first.Run("let shared = 1", ""); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := second.Run("shared", ""); err == nil {
		t.Fatalf("binding leaked between interpreters")
	}
}
