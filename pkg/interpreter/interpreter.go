package interpreter

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/parser"
	"tide/interpreter-go/pkg/runtime"
	"tide/interpreter-go/pkg/stdlib"
)

const (
	// DefaultMaxWhileIterations bounds a single while loop.
	DefaultMaxWhileIterations = 10_000
	// DefaultMaxCallDepth bounds nested calls and reactive re-evaluation.
	DefaultMaxCallDepth = 2_000
)

// Interpreter drives evaluation of Tide programs. Instances share no state
// with each other; one instance must not be used from several goroutines.
type Interpreter struct {
	global *runtime.Environment

	stdin  *bufio.Reader
	stdout io.Writer
	logger *slog.Logger

	searchPaths    []string
	baseDir        string
	maxWhile       int
	maxDepth       int
	memberCompound bool
	fenceLoops     bool
	randomSeed     int64

	defaults      map[string]func() runtime.NativeModule
	nativeModules map[string]runtime.NativeModule

	started time.Time
	depth   int
}

// New returns an interpreter with a fresh global environment holding the
// builtins.
func New(options ...Option) *Interpreter {
	i := &Interpreter{
		stdin:         bufio.NewReader(os.Stdin),
		stdout:        os.Stdout,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxWhile:      DefaultMaxWhileIterations,
		maxDepth:      DefaultMaxCallDepth,
		randomSeed:    time.Now().UnixNano(),
		nativeModules: make(map[string]runtime.NativeModule),
		started:       time.Now(),
	}
	for _, opt := range options {
		opt(i)
	}
	i.defaults = stdlib.Defaults(i.randomSeed)
	i.global = i.newGlobalEnvironment()
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

func (i *Interpreter) newGlobalEnvironment() *runtime.Environment {
	env := runtime.NewGlobalEnvironment()
	i.installBuiltins(env)
	return env
}

// RegisterNativeModule makes a host-implemented library importable under path.
// Its shape is validated when it is imported.
func (i *Interpreter) RegisterNativeModule(path string, module runtime.NativeModule) {
	i.nativeModules[path] = module
}

// Parse produces the AST for source, resolving its imports into the global
// environment. file is used for diagnostics and relative imports.
func (i *Interpreter) Parse(source, file string) (*ast.Program, error) {
	if file != "" {
		i.baseDir = filepath.Dir(file)
	}
	program, err := parser.New(i).ProduceAST(source, i.global)
	if err != nil {
		return nil, diag.WithFile(err, file)
	}
	return program, nil
}

// Run parses and evaluates source in the global environment and returns the
// value of the last statement.
func (i *Interpreter) Run(source, file string) (runtime.Value, error) {
	program, err := i.Parse(source, file)
	if err != nil {
		return nil, err
	}
	val, err := i.EvaluateProgram(program)
	if err != nil {
		return nil, diag.WithFile(err, file)
	}
	return val, nil
}

// RunFile reads and runs the program at path.
func (i *Interpreter) RunFile(path string) (runtime.Value, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return i.Run(string(source), path)
}

// EvaluateProgram executes a parsed program in the global environment.
func (i *Interpreter) EvaluateProgram(program *ast.Program) (runtime.Value, error) {
	val, flow, err := i.evaluateStatements(program.Body, i.global)
	if err != nil {
		return nil, err
	}
	if err := strayFlow(flow); err != nil {
		return nil, err
	}
	return val, nil
}

// spawn creates an interpreter for a source module: same configuration and
// libraries, fresh global scope.
func (i *Interpreter) spawn(baseDir string) *Interpreter {
	child := *i
	child.baseDir = baseDir
	child.global = child.newGlobalEnvironment()
	return &child
}
