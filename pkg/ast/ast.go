// Package ast defines the decorated syntax tree consumed by the code generator.
//
// Trees are produced by the front end after semantic analysis: every identifier
// already carries its lexical address and every call its entry address, so no
// name resolution happens past this point.
package ast

import "fmt"

// NodeType defines the kind of a node in the AST
type NodeType int

// Node types enum
const (
	Invalid NodeType = iota

	Program
	Block
	VarDecl

	// Statements
	Assign
	If
	While
	Read
	Write
	Call

	// Expressions
	Literal
	Ident
	BinaryOp
	UnaryOp

	nodeTypeCount
)

var nodeTypeNames = [nodeTypeCount]string{
	Invalid:  "invalid",
	Program:  "program",
	Block:    "block",
	VarDecl:  "var",
	Assign:   "assign",
	If:       "if",
	While:    "while",
	Read:     "read",
	Write:    "write",
	Call:     "call",
	Literal:  "literal",
	Ident:    "ident",
	BinaryOp: "binary",
	UnaryOp:  "unary",
}

func (t NodeType) String() string {
	if t >= 0 && t < nodeTypeCount {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("node(%d)", int(t))
}

// IsStmt reports whether nodes of this type may appear in statement position.
// A Block in statement position is a nested begin/end scope.
func (t NodeType) IsStmt() bool {
	switch t {
	case Block, Assign, If, While, Read, Write, Call:
		return true
	}
	return false
}

func (t NodeType) IsExpr() bool {
	switch t {
	case Literal, Ident, BinaryOp, UnaryOp:
		return true
	}
	return false
}

// Pos is a source position. The zero Pos means "unknown".
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"col"`
}

func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node represents a node in the Abstract Syntax Tree
type Node struct {
	Type NodeType
	Pos  Pos
	Data interface{}
}

// LexAddr locates a variable relative to the frame of the code referring to it:
// Levels static links outward, then Offset within that frame.
type LexAddr struct {
	Levels int `json:"levels"`
	Offset int `json:"offset"`
}

func (a LexAddr) String() string { return fmt.Sprintf("(%d, %d)", a.Levels, a.Offset) }

// Operator is the spelling of an arithmetic, relational or logical operator.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpMod Operator = "%"
	OpEq  Operator = "="
	OpNe  Operator = "<>"
	OpLt  Operator = "<"
	OpLe  Operator = "<="
	OpGt  Operator = ">"
	OpGe  Operator = ">="
	OpNot Operator = "not"
	OpNeg Operator = "-"
	OpPos Operator = "+"
)

// --- Node Data Structs ---
type ProgramNode struct{ Body *Node }
type BlockNode struct{ Decls, Stmts []*Node }
type VarDeclNode struct {
	Name string
	Init *Node // optional Literal
}
type AssignNode struct{ Target, Expr *Node }
type IfNode struct{ Cond, Then, Else *Node }
type WhileNode struct{ Cond, Body *Node }
type ReadNode struct{ Target *Node }
type WriteNode struct{ Expr *Node }
type CallNode struct {
	Name  string
	Entry int
}
type LiteralNode struct{ Value int64 }
type IdentNode struct {
	Name string
	Addr LexAddr
}
type BinaryOpNode struct {
	Op          Operator
	Left, Right *Node
}
type UnaryOpNode struct {
	Op   Operator
	Expr *Node
}

// --- Node Constructors ---

func newNode(pos Pos, nodeType NodeType, data interface{}) *Node {
	return &Node{Type: nodeType, Pos: pos, Data: data}
}

func NewProgram(pos Pos, body *Node) *Node {
	return newNode(pos, Program, ProgramNode{Body: body})
}
func NewBlock(pos Pos, decls, stmts []*Node) *Node {
	return newNode(pos, Block, BlockNode{Decls: decls, Stmts: stmts})
}
func NewVarDecl(pos Pos, name string, init *Node) *Node {
	return newNode(pos, VarDecl, VarDeclNode{Name: name, Init: init})
}
func NewAssign(pos Pos, target, expr *Node) *Node {
	return newNode(pos, Assign, AssignNode{Target: target, Expr: expr})
}
func NewIf(pos Pos, cond, then, els *Node) *Node {
	return newNode(pos, If, IfNode{Cond: cond, Then: then, Else: els})
}
func NewWhile(pos Pos, cond, body *Node) *Node {
	return newNode(pos, While, WhileNode{Cond: cond, Body: body})
}
func NewRead(pos Pos, target *Node) *Node {
	return newNode(pos, Read, ReadNode{Target: target})
}
func NewWrite(pos Pos, expr *Node) *Node {
	return newNode(pos, Write, WriteNode{Expr: expr})
}
func NewCall(pos Pos, name string, entry int) *Node {
	return newNode(pos, Call, CallNode{Name: name, Entry: entry})
}
func NewLiteral(pos Pos, value int64) *Node {
	return newNode(pos, Literal, LiteralNode{Value: value})
}
func NewIdent(pos Pos, name string, levels, offset int) *Node {
	return newNode(pos, Ident, IdentNode{Name: name, Addr: LexAddr{Levels: levels, Offset: offset}})
}
func NewBinaryOp(pos Pos, op Operator, left, right *Node) *Node {
	return newNode(pos, BinaryOp, BinaryOpNode{Op: op, Left: left, Right: right})
}
func NewUnaryOp(pos Pos, op Operator, expr *Node) *Node {
	return newNode(pos, UnaryOp, UnaryOpNode{Op: op, Expr: expr})
}

// LocalOffset is the frame offset the front end assigns to the i-th local
// (0-based, declaration order) of a block. Locals grow downward from the
// frame pointer.
func LocalOffset(i int) int { return -i }
