package interpreter

import (
	"errors"

	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/diag"
)

// flow reports how a statement finished. break and continue travel up to the
// nearest loop as a flow value rather than as an error.
type flow int

const (
	flowNormal flow = iota
	flowBreak
	flowContinue
)

func (f flow) String() string {
	switch f {
	case flowBreak:
		return "break"
	case flowContinue:
		return "continue"
	default:
		return "normal"
	}
}

// strayFlow turns a break/continue that escaped every loop into an error.
func strayFlow(f flow) error {
	if f == flowNormal {
		return nil
	}
	return diag.Errorf(diag.InterpreterError, "'%s' used outside of a loop", f)
}

// locate attaches node's position to err. Errors that are not located yet are
// promoted to InterpreterError.
func locate(err error, node ast.Node) error {
	if err == nil {
		return nil
	}
	pos := node.Pos()
	var de *diag.Error
	if !errors.As(err, &de) {
		return diag.New(diag.InterpreterError, pos.Line, pos.Column, "%s", err.Error())
	}
	return diag.At(err, pos.Line, pos.Column)
}
