package stdlib

import (
	"math"
	"math/rand/v2"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// Random is the `random` library drawing from rng. seed reseeds src, which
// backs rng.
func Random(src *rand.PCG, rng *rand.Rand) runtime.NativeModule {
	return runtime.NativeModule{
		"random": {
			Functions: map[string]runtime.NativeFunc{
				"float": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("float", args, 0, 0); err != nil {
						return nil, err
					}
					return number(rng.Float64()), nil
				},
				// int returns an integer in [min, max].
				"int": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("int", args, 2, 2); err != nil {
						return nil, err
					}
					lo, err := IntArg("int", args, 0)
					if err != nil {
						return nil, err
					}
					hi, err := IntArg("int", args, 1)
					if err != nil {
						return nil, err
					}
					if hi < lo {
						return nil, diag.Errorf(diag.RangeError, "int: max %d is below min %d", hi, lo)
					}
					span := uint64(hi) - uint64(lo)
					if span == math.MaxUint64 {
						return number(float64(int(rng.Uint64()))), nil
					}
					return number(float64(int(uint64(lo) + rng.Uint64N(span+1)))), nil
				},
				"choice": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("choice", args, 1, 1); err != nil {
						return nil, err
					}
					list, err := ListArg("choice", args, 0)
					if err != nil {
						return nil, err
					}
					if len(list.Elements) == 0 {
						return nil, diag.Errorf(diag.RangeError, "choice: list is empty")
					}
					return list.Elements[rng.IntN(len(list.Elements))], nil
				},
				"shuffle": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("shuffle", args, 1, 1); err != nil {
						return nil, err
					}
					list, err := ListArg("shuffle", args, 0)
					if err != nil {
						return nil, err
					}
					out := append([]runtime.Value(nil), list.Elements...)
					rng.Shuffle(len(out), func(a, b int) { out[a], out[b] = out[b], out[a] })
					return runtime.NewList(out...), nil
				},
				"seed": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("seed", args, 1, 1); err != nil {
						return nil, err
					}
					seed, err := IntArg("seed", args, 0)
					if err != nil {
						return nil, err
					}
					src.Seed(uint64(seed), uint64(seed)>>1|1)
					return runtime.Null, nil
				},
			},
		},
	}
}
