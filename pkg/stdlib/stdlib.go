package stdlib

import (
	"math/rand/v2"

	"tide/interpreter-go/pkg/runtime"
)

// Defaults returns the libraries importable by bare name. Each entry builds a
// fresh module on import; the random library of one table shares a single
// source seeded with seed.
func Defaults(seed int64) map[string]func() runtime.NativeModule {
	src := rand.NewPCG(uint64(seed), uint64(seed)>>1|1)
	rng := rand.New(src)
	return map[string]func() runtime.NativeModule{
		"math":   Math,
		"random": func() runtime.NativeModule { return Random(src, rng) },
		"json":   JSON,
		"yaml":   YAML,
		"string": Strings,
		"list":   Lists,
	}
}

func number(f float64) runtime.Value {
	return runtime.NumberValue{Val: f}
}

func str(s string) runtime.Value {
	return runtime.StringValue{Val: s}
}
