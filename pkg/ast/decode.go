package ast

import (
	"encoding/json"
	"fmt"
	"io"
)

// rawNode is the JSON interchange form written by the front end. Each object
// carries a "kind" and the fields that kind uses.
type rawNode struct {
	Kind string `json:"kind"`
	Pos  Pos    `json:"pos"`

	Body   *rawNode   `json:"body,omitempty"`
	Decls  []*rawNode `json:"decls,omitempty"`
	Stmts  []*rawNode `json:"stmts,omitempty"`
	Name   string     `json:"name,omitempty"`
	Init   *rawNode   `json:"init,omitempty"`
	Target *rawNode   `json:"target,omitempty"`
	Expr   *rawNode   `json:"expr,omitempty"`
	Cond   *rawNode   `json:"cond,omitempty"`
	Then   *rawNode   `json:"then,omitempty"`
	Else   *rawNode   `json:"else,omitempty"`
	Entry  int        `json:"entry,omitempty"`
	Value  int64      `json:"value,omitempty"`
	Addr   *LexAddr   `json:"addr,omitempty"`
	Op     string     `json:"op,omitempty"`
	Left   *rawNode   `json:"left,omitempty"`
	Right  *rawNode   `json:"right,omitempty"`
}

var kindByName = func() map[string]NodeType {
	m := make(map[string]NodeType, nodeTypeCount)
	for t := Program; t < nodeTypeCount; t++ {
		m[nodeTypeNames[t]] = t
	}
	return m
}()

// Decode reads one JSON-encoded program tree.
func Decode(r io.Reader) (*Node, error) {
	var raw rawNode
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("ast: decoding tree: %w", err)
	}
	root, err := raw.node()
	if err != nil {
		return nil, err
	}
	if root.Type != Program {
		return nil, fmt.Errorf("ast: %s: root is %q, want %q", root.Pos, root.Type, Program)
	}
	return root, nil
}

func (r *rawNode) node() (*Node, error) {
	if r == nil {
		return nil, nil
	}
	t, ok := kindByName[r.Kind]
	if !ok {
		return nil, fmt.Errorf("ast: %s: unknown node kind %q", r.Pos, r.Kind)
	}

	var err error
	child := func(c *rawNode) *Node {
		if err != nil {
			return nil
		}
		var n *Node
		n, err = c.node()
		return n
	}
	list := func(cs []*rawNode) []*Node {
		out := make([]*Node, 0, len(cs))
		for _, c := range cs {
			out = append(out, child(c))
		}
		return out
	}

	var n *Node
	switch t {
	case Program:
		n = NewProgram(r.Pos, child(r.Body))
	case Block:
		n = NewBlock(r.Pos, list(r.Decls), list(r.Stmts))
	case VarDecl:
		n = NewVarDecl(r.Pos, r.Name, child(r.Init))
	case Assign:
		n = NewAssign(r.Pos, child(r.Target), child(r.Expr))
	case If:
		n = NewIf(r.Pos, child(r.Cond), child(r.Then), child(r.Else))
	case While:
		n = NewWhile(r.Pos, child(r.Cond), child(r.Body))
	case Read:
		n = NewRead(r.Pos, child(r.Target))
	case Write:
		n = NewWrite(r.Pos, child(r.Expr))
	case Call:
		n = NewCall(r.Pos, r.Name, r.Entry)
	case Literal:
		n = NewLiteral(r.Pos, r.Value)
	case Ident:
		if r.Addr == nil {
			return nil, fmt.Errorf("ast: %s: identifier %q has no lexical address", r.Pos, r.Name)
		}
		n = NewIdent(r.Pos, r.Name, r.Addr.Levels, r.Addr.Offset)
	case BinaryOp:
		n = NewBinaryOp(r.Pos, Operator(r.Op), child(r.Left), child(r.Right))
	case UnaryOp:
		n = NewUnaryOp(r.Pos, Operator(r.Op), child(r.Expr))
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}
