package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/interpreter"
	"tide/interpreter-go/pkg/lexer"
	"tide/interpreter-go/pkg/runtime"
)

const (
	promptMain  = "tide> "
	promptCont  = "...   "
	historyFile = ".tide_history"
)

// prompter is the slice of liner.State the loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func runRepl(args []string, logger *slog.Logger) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "tide repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	proj, err := loadProject(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	opts, err := proj.options(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare execution environment: %v\n", err)
		return 1
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var histPath string
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(os.Stdout, "%s (:quit to exit)\n", cliToolVersion)
	interp := interpreter.New(append(opts, interpreter.WithStdout(os.Stdout))...)
	replLoop(ln, interp, os.Stdout)
	return 0
}

// replLoop evaluates each entry against the same global environment, echoing
// non-null results. Failures are reported and the session continues.
func replLoop(p prompter, interp *interpreter.Interpreter, out io.Writer) {
	for {
		code, ok := readEntry(p)
		if !ok {
			fmt.Fprintln(out)
			return
		}
		trimmed := strings.TrimSpace(code)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit" || trimmed == ":q":
			return
		case strings.HasPrefix(trimmed, ":"):
			fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			continue
		}
		p.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		program, err := interp.Parse(code, "")
		if err != nil {
			reportError(err)
			continue
		}
		val, err := interp.EvaluateProgram(program)
		if err != nil {
			reportError(err)
			continue
		}
		if echoes(program) && val != nil && val.Kind() != runtime.KindNull {
			fmt.Fprintln(out, runtime.Stringify(val))
		}
	}
}

// echoes reports whether the entry ends in something worth printing; a
// trailing declaration stays quiet.
func echoes(program *ast.Program) bool {
	if len(program.Body) == 0 {
		return false
	}
	switch program.Body[len(program.Body)-1].(type) {
	case *ast.VariableDeclaration, *ast.FunctionDeclaration, *ast.ClassDeclaration,
		*ast.ImportStatement, *ast.ExportDeclaration:
		return false
	}
	return true
}

// readEntry keeps prompting while the input has unclosed brackets or an
// unterminated string.
func readEntry(p prompter) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

func incomplete(src string) bool {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return strings.Contains(err.Error(), "unterminated")
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.LParen, lexer.LBrace, lexer.LBracket:
			depth++
		case lexer.RParen, lexer.RBrace, lexer.RBracket:
			depth--
		}
	}
	return depth > 0
}
