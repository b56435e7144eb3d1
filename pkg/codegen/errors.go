package codegen

import (
	"errors"
	"fmt"

	"github.com/xplshn/gpl0/pkg/ast"
)

var (
	// ErrMalformed reports a tree the generator cannot translate: an unknown
	// or misplaced node kind, a missing child, or a construct the selected
	// dialect disables.
	ErrMalformed = errors.New("malformed input")
	// ErrExhausted reports a program too large for the object format.
	ErrExhausted = errors.New("resources exhausted")
	// ErrReused is returned when a Context is asked to generate twice.
	ErrReused = errors.New("codegen: context already used")
)

// Error is a generation failure at a node.
type Error struct {
	Pos  ast.Pos
	Node ast.NodeType
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %v: %s", e.Pos, e.Err, e.Msg)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// bail aborts generation. The panic is recovered by GenerateProgram.
func bail(kind error, n *ast.Node, format string, args ...interface{}) {
	e := &Error{Err: kind, Msg: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Pos, e.Node = n.Pos, n.Type
	}
	panic(e)
}

func malformed(n *ast.Node, format string, args ...interface{}) {
	bail(ErrMalformed, n, format, args...)
}

func exhausted(n *ast.Node, format string, args ...interface{}) {
	bail(ErrExhausted, n, format, args...)
}

// nodeData returns n's payload as a T.
func nodeData[T any](n *ast.Node) T {
	d, ok := n.Data.(T)
	if !ok {
		var want T
		malformed(n, "%s node carries %T, want %T", n.Type, n.Data, want)
	}
	return d
}
