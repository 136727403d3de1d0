package stdlib

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	xnumber "golang.org/x/text/number"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

func stringTransform(name string, f func(string) string) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if err := ExpectArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		s, err := StringArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return str(f(s)), nil
	}
}

func stringPredicate(name string, f func(s, sub string) bool) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if err := ExpectArgs(name, args, 2, 2); err != nil {
			return nil, err
		}
		s, err := StringArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		sub, err := StringArg(name, args, 1)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(f(s, sub)), nil
	}
}

// Strings is the `string` library.
func Strings() runtime.NativeModule {
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)
	return runtime.NativeModule{
		"string": {
			Functions: map[string]runtime.NativeFunc{
				"upper":      stringTransform("upper", upper.String),
				"lower":      stringTransform("lower", lower.String),
				"title":      stringTransform("title", title.String),
				"trim":       stringTransform("trim", strings.TrimSpace),
				"contains":   stringPredicate("contains", strings.Contains),
				"startsWith": stringPredicate("startsWith", strings.HasPrefix),
				"endsWith":   stringPredicate("endsWith", strings.HasSuffix),
				"split":      stringSplit,
				"join":       stringJoin,
				"replace":    stringReplace,
				"slice":      stringSlice,
				"format":     stringFormatNumber,
			},
		},
	}
}

func stringSplit(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("split", args, 1, 2); err != nil {
		return nil, err
	}
	s, err := StringArg("split", args, 0)
	if err != nil {
		return nil, err
	}
	var parts []string
	if len(args) == 1 {
		parts = strings.Fields(s)
	} else {
		sep, err := StringArg("split", args, 1)
		if err != nil {
			return nil, err
		}
		parts = strings.Split(s, sep)
	}
	out := make([]runtime.Value, len(parts))
	for idx, part := range parts {
		out[idx] = str(part)
	}
	return runtime.NewList(out...), nil
}

func stringJoin(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("join", args, 1, 2); err != nil {
		return nil, err
	}
	list, err := ListArg("join", args, 0)
	if err != nil {
		return nil, err
	}
	sep := ""
	if len(args) == 2 {
		if sep, err = StringArg("join", args, 1); err != nil {
			return nil, err
		}
	}
	parts := make([]string, len(list.Elements))
	for idx, el := range list.Elements {
		parts[idx] = runtime.Stringify(el)
	}
	return str(strings.Join(parts, sep)), nil
}

func stringReplace(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("replace", args, 3, 3); err != nil {
		return nil, err
	}
	s, err := StringArg("replace", args, 0)
	if err != nil {
		return nil, err
	}
	old, err := StringArg("replace", args, 1)
	if err != nil {
		return nil, err
	}
	repl, err := StringArg("replace", args, 2)
	if err != nil {
		return nil, err
	}
	return str(strings.ReplaceAll(s, old, repl)), nil
}

// stringSlice returns the characters in [start, end). Negative positions count
// from the end.
func stringSlice(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("slice", args, 2, 3); err != nil {
		return nil, err
	}
	s, err := StringArg("slice", args, 0)
	if err != nil {
		return nil, err
	}
	chars := []rune(s)
	start, err := IndexArg("slice", args, 1)
	if err != nil {
		return nil, err
	}
	end := len(chars)
	if len(args) == 3 {
		if end, err = IndexArg("slice", args, 2); err != nil {
			return nil, err
		}
	}
	start, end = clampIndex(start, len(chars)), clampIndex(end, len(chars))
	if start >= end {
		return str(""), nil
	}
	return str(string(chars[start:end])), nil
}

func clampIndex(idx, length int) int {
	if idx < 0 {
		idx += length
	}
	return max(0, min(idx, length))
}

// stringFormatNumber renders a number with the grouping and decimal marks of a
// locale ("en" when omitted).
func stringFormatNumber(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("format", args, 1, 2); err != nil {
		return nil, err
	}
	value, err := NumberArg("format", args, 0)
	if err != nil {
		return nil, err
	}
	locale := "en"
	if len(args) == 2 {
		if locale, err = StringArg("format", args, 1); err != nil {
			return nil, err
		}
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, diag.Errorf(diag.RangeError, "format: unknown locale %q", locale)
	}
	p := message.NewPrinter(tag)
	return str(p.Sprintf("%v", xnumber.Decimal(value))), nil
}
