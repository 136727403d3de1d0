package stdlib

import (
	"math"
	"sort"
	"strings"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// Lists is the `list` library. Functions taking a callback call it with the
// element and its index.
func Lists() runtime.NativeModule {
	return runtime.NativeModule{
		"list": {
			Functions: map[string]runtime.NativeFunc{
				"push":    listPush,
				"pop":     listPop,
				"map":     listMap,
				"filter":  listFilter,
				"reduce":  listReduce,
				"range":   listRange,
				"reverse": listReverse,
				"sort":    listSort,
				"indexOf": listIndexOf,
			},
		},
	}
}

// listPush appends in place and returns the list.
func listPush(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("push", args, 2, -1); err != nil {
		return nil, err
	}
	list, err := ListArg("push", args, 0)
	if err != nil {
		return nil, err
	}
	list.Elements = append(list.Elements, args[1:]...)
	return list, nil
}

func listPop(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("pop", args, 1, 1); err != nil {
		return nil, err
	}
	list, err := ListArg("pop", args, 0)
	if err != nil {
		return nil, err
	}
	n := len(list.Elements)
	if n == 0 {
		return runtime.Null, nil
	}
	last := list.Elements[n-1]
	list.Elements = list.Elements[:n-1]
	return last, nil
}

func listAndCallback(name string, args []runtime.Value, maxArgs int) (*runtime.ListValue, runtime.Value, error) {
	if err := ExpectArgs(name, args, 2, maxArgs); err != nil {
		return nil, nil, err
	}
	list, err := ListArg(name, args, 0)
	if err != nil {
		return nil, nil, err
	}
	fn, err := CallableArg(name, args, 1)
	if err != nil {
		return nil, nil, err
	}
	return list, fn, nil
}

func listMap(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	list, fn, err := listAndCallback("map", args, 2)
	if err != nil {
		return nil, err
	}
	out := make([]runtime.Value, 0, len(list.Elements))
	for idx, el := range list.Elements {
		val, err := ctx.Call(fn, []runtime.Value{el, number(float64(idx))})
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return runtime.NewList(out...), nil
}

func listFilter(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	list, fn, err := listAndCallback("filter", args, 2)
	if err != nil {
		return nil, err
	}
	out := make([]runtime.Value, 0, len(list.Elements))
	for idx, el := range list.Elements {
		keep, err := ctx.Call(fn, []runtime.Value{el, number(float64(idx))})
		if err != nil {
			return nil, err
		}
		if b, ok := keep.(runtime.BoolValue); ok && b.Val {
			out = append(out, el)
		}
	}
	return runtime.NewList(out...), nil
}

// listReduce folds from the left. Without an initial value the first element
// seeds the accumulator.
func listReduce(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	list, fn, err := listAndCallback("reduce", args, 3)
	if err != nil {
		return nil, err
	}
	elements := list.Elements
	var acc runtime.Value
	if len(args) == 3 {
		acc = args[2]
	} else {
		if len(elements) == 0 {
			return nil, diag.Errorf(diag.TypeError, "reduce of empty list with no initial value")
		}
		acc, elements = elements[0], elements[1:]
	}
	for _, el := range elements {
		if acc, err = ctx.Call(fn, []runtime.Value{acc, el}); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// listRange mirrors range(end), range(start, end) and range(start, end, step).
func listRange(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("range", args, 1, 3); err != nil {
		return nil, err
	}
	bounds := make([]float64, len(args))
	for idx := range args {
		f, err := NumberArg("range", args, idx)
		if err != nil {
			return nil, err
		}
		bounds[idx] = f
	}
	start, end, step := 0.0, bounds[0], 1.0
	if len(bounds) >= 2 {
		start, end = bounds[0], bounds[1]
	}
	if len(bounds) == 3 {
		step = bounds[2]
	}
	if step == 0 || math.IsNaN(step) {
		return nil, diag.Errorf(diag.RangeError, "range step must not be zero")
	}
	out := []runtime.Value{}
	for x := start; (step > 0 && x < end) || (step < 0 && x > end); x += step {
		out = append(out, number(x))
	}
	return runtime.NewList(out...), nil
}

func listReverse(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("reverse", args, 1, 1); err != nil {
		return nil, err
	}
	list, err := ListArg("reverse", args, 0)
	if err != nil {
		return nil, err
	}
	n := len(list.Elements)
	out := make([]runtime.Value, n)
	for idx, el := range list.Elements {
		out[n-1-idx] = el
	}
	return runtime.NewList(out...), nil
}

// listSort returns a sorted copy. Without a comparator the list must hold only
// numbers or only strings.
func listSort(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("sort", args, 1, 2); err != nil {
		return nil, err
	}
	list, err := ListArg("sort", args, 0)
	if err != nil {
		return nil, err
	}
	out := append([]runtime.Value(nil), list.Elements...)

	var cmpErr error
	less := func(a, b runtime.Value) bool {
		c, err := naturalCompare(a, b)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return c < 0
	}
	if len(args) == 2 {
		fn, err := CallableArg("sort", args, 1)
		if err != nil {
			return nil, err
		}
		less = func(a, b runtime.Value) bool {
			res, err := ctx.Call(fn, []runtime.Value{a, b})
			if err != nil {
				if cmpErr == nil {
					cmpErr = err
				}
				return false
			}
			num, ok := res.(runtime.NumberValue)
			if !ok && cmpErr == nil {
				cmpErr = diag.Errorf(diag.TypeError, "sort comparator must return a number, got %s", runtime.TypeName(res))
			}
			return num.Val < 0
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return less(out[a], out[b]) })
	if cmpErr != nil {
		return nil, cmpErr
	}
	return runtime.NewList(out...), nil
}

func naturalCompare(a, b runtime.Value) (int, error) {
	switch av := a.(type) {
	case runtime.NumberValue:
		if bv, ok := b.(runtime.NumberValue); ok {
			switch {
			case av.Val < bv.Val:
				return -1, nil
			case av.Val > bv.Val:
				return 1, nil
			default:
				return 0, nil
			}
		}
	case runtime.StringValue:
		if bv, ok := b.(runtime.StringValue); ok {
			return strings.Compare(av.Val, bv.Val), nil
		}
	}
	return 0, diag.Errorf(diag.TypeError, "sort cannot compare %s with %s", runtime.TypeName(a), runtime.TypeName(b))
}

func listIndexOf(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if err := ExpectArgs("indexOf", args, 2, 2); err != nil {
		return nil, err
	}
	list, err := ListArg("indexOf", args, 0)
	if err != nil {
		return nil, err
	}
	for idx, el := range list.Elements {
		if runtime.Equal(el, args[1]) {
			return number(float64(idx)), nil
		}
	}
	return number(-1), nil
}
