package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/driver"
	"tide/interpreter-go/pkg/interpreter"
)

const cliToolVersion = "tide 0.1.0-dev"

const envLogLevel = "TIDE_LOG_LEVEL"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	args, level, err := extractLogLevel(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:], logger)
	case "check":
		return runCheck(args[1:], logger)
	case "repl":
		return runRepl(args[1:], logger)
	case "deps":
		return runDeps(args[1:], logger)
	default:
		return runEntry(args, logger)
	}
}

// extractLogLevel strips --log-level flags from args. The flag wins over
// TIDE_LOG_LEVEL; warn is the default.
func extractLogLevel(args []string) ([]string, slog.Level, error) {
	level := slog.LevelWarn
	raw := strings.TrimSpace(os.Getenv(envLogLevel))
	rest := make([]string, 0, len(args))
	for idx := 0; idx < len(args); idx++ {
		arg := args[idx]
		switch {
		case arg == "--log-level":
			if idx+1 >= len(args) {
				return nil, level, errors.New("--log-level requires a value")
			}
			idx++
			raw = args[idx]
		case strings.HasPrefix(arg, "--log-level="):
			raw = strings.TrimPrefix(arg, "--log-level=")
		default:
			rest = append(rest, arg)
		}
	}
	if raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, level, fmt.Errorf("invalid log level %q", raw)
		}
	}
	return rest, level, nil
}

// project is the manifest and lockfile governing a run. Both are nil for a
// bare file outside any package.
type project struct {
	manifest *driver.Manifest
	lock     *driver.Lockfile
}

func runEntry(args []string, logger *slog.Logger) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	var entry, start string
	if len(args) == 1 {
		entry = args[0]
		start = filepath.Dir(entry)
	} else {
		start = "."
	}

	proj, err := loadProject(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if entry == "" {
		if proj.manifest == nil {
			fmt.Fprintf(os.Stderr, "tide run requires a source file (%s not found)\n", driver.ManifestFile)
			return 1
		}
		if entry, err = proj.manifest.MainPath(); err != nil {
			fmt.Fprintf(os.Stderr, "manifest error: %v\n", err)
			return 1
		}
	}

	opts, err := proj.options(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare execution environment: %v\n", err)
		return 1
	}
	interp := interpreter.New(append(opts, interpreter.WithStdout(os.Stdout), interpreter.WithStdin(os.Stdin))...)
	if _, err := interp.RunFile(entry); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

// reportError prints located failures in their one-line form and anything
// else (unreadable files, manifest problems) as is.
func reportError(err error) {
	var located *diag.Error
	var pathErr *os.PathError
	switch {
	case errors.As(err, &located):
		fmt.Fprintln(os.Stderr, diag.Describe(err))
	case errors.As(err, &pathErr):
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", pathErr.Path, pathErr.Err)
	default:
		fmt.Fprintln(os.Stderr, err)
	}
}

// loadProject finds the manifest governing start, if any, together with its
// lockfile. A manifest declaring dependencies must have been installed.
func loadProject(start string) (project, error) {
	manifestPath, err := driver.FindManifest(start)
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return project{}, nil
		}
		return project{}, fmt.Errorf("failed to locate manifest: %w", err)
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		return project{}, fmt.Errorf("failed to load manifest: %w", err)
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return project{}, err
	}
	return project{manifest: manifest, lock: lock}, nil
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	lockPath := driver.LockPath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("%s missing for %q; run `tide deps install`", driver.LockFile, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

// options translates the project's settings into interpreter options.
func (p project) options(logger *slog.Logger) ([]interpreter.Option, error) {
	opts := []interpreter.Option{interpreter.WithLogger(logger)}
	var home string
	if p.lock != nil && len(p.lock.Packages) > 0 {
		var err error
		if home, err = driver.Home(); err != nil {
			return nil, err
		}
	}
	if paths := driver.SearchPaths(p.manifest, p.lock, home); len(paths) > 0 {
		logger.Debug("module search paths", "paths", paths)
		opts = append(opts, interpreter.WithSearchPaths(paths...))
	}
	if p.manifest == nil {
		return opts, nil
	}
	settings := p.manifest.Interpreter
	if settings.WhileLimit != nil {
		opts = append(opts, interpreter.WithMaxWhileIterations(*settings.WhileLimit))
	}
	if settings.MaxCallDepth != nil {
		opts = append(opts, interpreter.WithMaxCallDepth(*settings.MaxCallDepth))
	}
	opts = append(opts,
		interpreter.WithFencedLoopBodies(settings.FenceLoopBodies),
		interpreter.WithMemberCompoundAssignment(settings.MemberCompoundAssignment),
	)
	return opts, nil
}

func printUsage() {
	w := io.Writer(os.Stderr)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tide <file.tide>")
	fmt.Fprintln(w, "  tide run [file.tide]")
	fmt.Fprintln(w, "  tide check <file.tide>...")
	fmt.Fprintln(w, "  tide repl")
	fmt.Fprintln(w, "  tide deps install")
	fmt.Fprintln(w, "  tide --version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintf(w, "  --log-level <debug|info|warn|error>  (default warn, or $%s)\n", envLogLevel)
}
