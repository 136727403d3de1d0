package interpreter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// evalSource runs source in a fresh interpreter whose stdout is captured.
func evalSource(t *testing.T, source string, opts ...Option) (runtime.Value, string, error) {
	t.Helper()
	var out bytes.Buffer
	interp := New(append([]Option{WithStdout(&out), WithRandomSeed(1)}, opts...)...)
	val, err := interp.Run(source, "")
	return val, out.String(), err
}

func mustEval(t *testing.T, source string, opts ...Option) runtime.Value {
	t.Helper()
	val, _, err := evalSource(t, source, opts...)
	if err != nil {
		t.Fatalf("evaluation failed: %s", diag.Describe(err))
	}
	return val
}

// expectShown checks the printed form of the program's last value.
func expectShown(t *testing.T, source, want string, opts ...Option) {
	t.Helper()
	got := runtime.Stringify(mustEval(t, source, opts...))
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func expectFailure(t *testing.T, source string, kind diag.Kind, fragment string, opts ...Option) *diag.Error {
	t.Helper()
	_, _, err := evalSource(t, source, opts...)
	return checkFailure(t, err, kind, fragment)
}

func checkFailure(t *testing.T, err error, kind diag.Kind, fragment string) *diag.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s containing %q, got success", kind, fragment)
	}
	de, ok := err.(*diag.Error)
	if !ok {
		t.Fatalf("expected *diag.Error, got %T: %v", err, err)
	}
	if de.Kind != kind {
		t.Fatalf("expected %s, got %s", kind, diag.Describe(err))
	}
	if !strings.Contains(de.Message, fragment) {
		t.Fatalf("expected message containing %q, got %q", fragment, de.Message)
	}
	return de
}

// writeModules lays out files (name -> source) in a temp directory and returns
// the directory.
func writeModules(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, source := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
