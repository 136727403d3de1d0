package interpreter

import (
	"bufio"
	"io"
	"log/slog"
)

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithStdin sets where `input` reads from.
func WithStdin(r io.Reader) Option {
	return func(i *Interpreter) {
		i.stdin = bufio.NewReader(r)
	}
}

// WithStdout sets where `print` writes to.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) {
		i.stdout = w
	}
}

// WithLogger sets the logger used for import resolution and other internals.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithSearchPaths adds directories consulted for source modules after the
// importing file's own directory.
func WithSearchPaths(paths ...string) Option {
	return func(i *Interpreter) {
		i.searchPaths = append(i.searchPaths, paths...)
	}
}

// WithMaxWhileIterations sets the while-loop ceiling. Zero or less disables it.
func WithMaxWhileIterations(n int) Option {
	return func(i *Interpreter) {
		i.maxWhile = n
	}
}

// WithMaxCallDepth sets the nesting limit for calls and reactive evaluation.
// Zero or less disables it.
func WithMaxCallDepth(n int) Option {
	return func(i *Interpreter) {
		i.maxDepth = n
	}
}

// WithMemberCompoundAssignment makes `obj.key op= v` apply the operator even
// when obj.key already holds a value. By default such an assignment leaves the
// member unchanged and yields its current value.
func WithMemberCompoundAssignment(enabled bool) Option {
	return func(i *Interpreter) {
		i.memberCompound = enabled
	}
}

// WithFencedLoopBodies gives for/foreach/while bodies their own scope per
// iteration instead of sharing the enclosing one.
func WithFencedLoopBodies(enabled bool) Option {
	return func(i *Interpreter) {
		i.fenceLoops = enabled
	}
}

// WithRandomSeed seeds the `random` library deterministically.
func WithRandomSeed(seed int64) Option {
	return func(i *Interpreter) {
		i.randomSeed = seed
	}
}
