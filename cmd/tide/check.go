package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	goruntime "runtime"

	"golang.org/x/sync/errgroup"

	"tide/interpreter-go/pkg/interpreter"
)

// runCheck parses every file on its own interpreter, resolving imports but
// never running the file's body. Failures are reported in argument order.
func runCheck(files []string, logger *slog.Logger) int {
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "tide check requires at least one source file")
		return 1
	}

	failures := make([]error, len(files))
	var g errgroup.Group
	g.SetLimit(goruntime.GOMAXPROCS(0))
	for idx, file := range files {
		g.Go(func() error {
			failures[idx] = checkFile(file, logger)
			return nil
		})
	}
	_ = g.Wait()

	code := 0
	for idx, file := range files {
		if err := failures[idx]; err != nil {
			reportError(err)
			code = 1
			continue
		}
		fmt.Fprintf(os.Stdout, "ok %s\n", file)
	}
	return code
}

func checkFile(file string, logger *slog.Logger) error {
	source, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	proj, err := loadProject(file)
	if err != nil {
		return err
	}
	opts, err := proj.options(logger.With("file", file))
	if err != nil {
		return err
	}
	interp := interpreter.New(append(opts, interpreter.WithStdout(io.Discard))...)
	_, err = interp.Parse(string(source), file)
	return err
}
