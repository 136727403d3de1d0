// Package diag defines the located error values shared by the Tide lexer,
// parser, import resolver and evaluator, and the single-line rendering the CLI
// prints for them.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names the category of a failure as surfaced to the user.
type Kind string

const (
	LexerError       Kind = "LexerError"
	ParserError      Kind = "ParserError"
	ImportError      Kind = "ImportError"
	InterpreterError Kind = "InterpreterError"
	MathError        Kind = "MathError"
	SyntaxError      Kind = "SyntaxError"
	TypeError        Kind = "TypeError"
	RangeError       Kind = "RangeError"
)

// Location is a 1-based source position. A zero Line means unknown.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<input>"
	}
	if l.Line <= 0 {
		return file
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// Error is a fatal Tide failure with the position active when it was raised.
type Error struct {
	Kind     Kind
	Message  string
	Location Location
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an error at line/column with a formatted message.
func New(kind Kind, line, column int, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: Location{Line: line, Column: column},
	}
}

// Errorf builds an error without a position; the evaluator attaches one later.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a located error of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// At fills in a missing position on a located error. Errors that already carry
// a line keep it, so the innermost failure point wins.
func At(err error, line, column int) error {
	var de *Error
	if !errors.As(err, &de) {
		return err
	}
	if de.Location.Line == 0 && line > 0 {
		de.Location.Line = line
		de.Location.Column = column
	}
	return err
}

// WithFile stamps the source file on a located error that does not have one yet.
func WithFile(err error, file string) error {
	var de *Error
	if !errors.As(err, &de) {
		return err
	}
	if de.Location.File == "" {
		de.Location.File = file
	}
	return err
}

// Describe renders err as `<kind>: <message> at <file>:<line>:<column>`.
// Errors that are not located are reported as InterpreterError.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if !errors.As(err, &de) {
		return fmt.Sprintf("%s: %s", InterpreterError, strings.TrimSpace(err.Error()))
	}
	return fmt.Sprintf("%s: %s at %s", de.Kind, de.Message, de.Location)
}
