package codegen

import (
	"math"

	"github.com/xplshn/gpl0/pkg/ast"
	"github.com/xplshn/gpl0/pkg/code"
	"github.com/xplshn/gpl0/pkg/config"
	"github.com/xplshn/gpl0/pkg/isa"
)

// codegenIf emits
//
//	cond; BRF len(then')+1; then'; else
//
// where then' is the then branch, followed by JMP len(else) when there is an
// else branch. A false condition lands on the first instruction after then'.
func (ctx *Context) codegenIf(node *ast.Node) code.Seq {
	d := nodeData[ast.IfNode](node)
	cond := ctx.codegenExpr(d.Cond)
	if v, ok := ctx.evalConstExpr(d.Cond); ok {
		ctx.warn(config.WarnConstantCond, d.Cond, "condition is always %s", truth(v))
	}

	then := ctx.codegenStmt(d.Then)
	var els code.Seq
	if d.Else != nil {
		if !ctx.cfg.IsFeatureEnabled(config.FeatElse) {
			malformed(d.Else, "'else' is not allowed in %s", ctx.cfg.StdName)
		}
		els = ctx.codegenStmt(d.Else)
		then = code.AddToEnd(then, isa.Jump(els.Size()))
	}

	s := code.AddToEnd(cond, isa.BranchFalse(then.Size()+1))
	return code.ConcatAll(s, then, els)
}

// codegenWhile emits
//
//	cond; BRF len(body)+2; body; JMP -(len(cond)+1+len(body)+1)
//
// The back-edge lands on the first instruction of cond; the exit branch skips
// the body and the back-edge.
func (ctx *Context) codegenWhile(node *ast.Node) code.Seq {
	d := nodeData[ast.WhileNode](node)
	cond := ctx.codegenExpr(d.Cond)
	if v, ok := ctx.evalConstExpr(d.Cond); ok {
		if v != 0 {
			ctx.warn(config.WarnInfiniteLoop, d.Cond, "loop condition is always true")
		} else {
			ctx.warn(config.WarnConstantCond, d.Cond, "loop condition is always false")
		}
	}

	body := ctx.codegenStmt(d.Body)
	if isEmptyBlock(d.Body) {
		ctx.warn(config.WarnEmptyBody, d.Body, "loop body is empty")
	}

	back := isa.Jump(-(cond.Size() + 1 + body.Size() + 1))
	body = code.AddToEnd(body, back)
	s := code.AddToEnd(cond, isa.BranchFalse(body.Size()+1))
	return code.Concat(s, body)
}

func isEmptyBlock(n *ast.Node) bool {
	if n.Type != ast.Block {
		return false
	}
	d := nodeData[ast.BlockNode](n)
	return len(d.Decls) == 0 && len(d.Stmts) == 0
}

func truth(v int64) string {
	if v != 0 {
		return "true"
	}
	return "false"
}

func (ctx *Context) codegenExpr(node *ast.Node) code.Seq {
	if node == nil {
		malformed(nil, "missing expression")
	}
	switch node.Type {
	case ast.Literal:
		return ctx.codegenLiteral(node)
	case ast.Ident:
		return ctx.codegenIdent(node)
	case ast.BinaryOp:
		return ctx.codegenBinaryOp(node)
	case ast.UnaryOp:
		return ctx.codegenUnaryOp(node)
	default:
		malformed(node, "%s is not an expression", node.Type)
		return code.Empty()
	}
}

// literal interns v in the literal pool and returns its offset.
func (ctx *Context) literal(n *ast.Node, v int64) int {
	if v < math.MinInt32 || v > math.MaxInt32 {
		malformed(n, "literal %d does not fit in a word", v)
	}
	off := ctx.lits.Lookup(isa.Word(v))
	if off > isa.MaxImm {
		exhausted(n, "literal pool is full (%d entries)", isa.MaxImm+1)
	}
	return off
}

func (ctx *Context) codegenLiteral(node *ast.Node) code.Seq {
	return code.Singleton(isa.Lit(ctx.literal(node, nodeData[ast.LiteralNode](node).Value)))
}

func (ctx *Context) codegenIdent(node *ast.Node) code.Seq {
	acc := ctx.resolve(node, nodeData[ast.IdentNode](node).Addr)
	return code.AddToEnd(acc.prefix, acc.load)
}

var binaryOps = map[ast.Operator]func() isa.Instruction{
	ast.OpAdd: isa.Add,
	ast.OpSub: isa.Sub,
	ast.OpMul: isa.Mul,
	ast.OpDiv: isa.Div,
	ast.OpMod: isa.Mod,
	ast.OpEq:  isa.Eq,
	ast.OpNe:  isa.Ne,
	ast.OpLt:  isa.Lt,
	ast.OpLe:  isa.Le,
	ast.OpGt:  isa.Gt,
	ast.OpGe:  isa.Ge,
}

// codegenBinaryOp evaluates the left operand, then the right one, then
// applies the operator.
func (ctx *Context) codegenBinaryOp(node *ast.Node) code.Seq {
	d := nodeData[ast.BinaryOpNode](node)
	instr, ok := binaryOps[d.Op]
	if !ok {
		malformed(node, "unknown binary operator '%s'", d.Op)
	}
	if (d.Op == ast.OpGt || d.Op == ast.OpGe) && !ctx.cfg.IsFeatureEnabled(config.FeatRelExt) {
		malformed(node, "operator '%s' is not allowed in %s", d.Op, ctx.cfg.StdName)
	}
	left := ctx.codegenExpr(d.Left)
	right := ctx.codegenExpr(d.Right)
	return code.AddToEnd(code.Concat(left, right), instr())
}

// codegenUnaryOp handles negation, unary plus and 'not'. There is no NOT
// instruction; 'not e' is computed as |1 - e| on 0/1 values.
func (ctx *Context) codegenUnaryOp(node *ast.Node) code.Seq {
	d := nodeData[ast.UnaryOpNode](node)
	switch d.Op {
	case ast.OpNeg:
		return code.AddToEnd(ctx.codegenExpr(d.Expr), isa.Neg())
	case ast.OpPos:
		return ctx.codegenExpr(d.Expr)
	case ast.OpNot:
		if !ctx.cfg.IsFeatureEnabled(config.FeatNot) {
			malformed(node, "'not' is not allowed in %s", ctx.cfg.StdName)
		}
		one := code.Singleton(isa.Lit(ctx.literal(node, 1)))
		s := code.Concat(one, ctx.codegenExpr(d.Expr))
		return code.AddToEnd(code.AddToEnd(s, isa.Sub()), isa.Abs())
	default:
		malformed(node, "unknown unary operator '%s'", d.Op)
		return code.Empty()
	}
}

// evalConstExpr folds expressions built only from literals. It is used for
// diagnostics; generated code is never folded.
func (ctx *Context) evalConstExpr(node *ast.Node) (int64, bool) {
	if node == nil {
		return 0, false
	}
	switch node.Type {
	case ast.Literal:
		return nodeData[ast.LiteralNode](node).Value, true
	case ast.UnaryOp:
		d := nodeData[ast.UnaryOpNode](node)
		v, ok := ctx.evalConstExpr(d.Expr)
		if !ok {
			return 0, false
		}
		switch d.Op {
		case ast.OpNeg:
			return -v, true
		case ast.OpPos:
			return v, true
		case ast.OpNot:
			if v > 1 {
				return v - 1, true
			}
			return 1 - v, true
		}
	case ast.BinaryOp:
		d := nodeData[ast.BinaryOpNode](node)
		l, lok := ctx.evalConstExpr(d.Left)
		r, rok := ctx.evalConstExpr(d.Right)
		if !lok || !rok {
			return 0, false
		}
		switch d.Op {
		case ast.OpAdd:
			return l + r, true
		case ast.OpSub:
			return l - r, true
		case ast.OpMul:
			return l * r, true
		case ast.OpDiv, ast.OpMod:
			if r == 0 {
				return 0, false
			}
			if d.Op == ast.OpDiv {
				return l / r, true
			}
			return l % r, true
		case ast.OpEq:
			return boolInt(l == r), true
		case ast.OpNe:
			return boolInt(l != r), true
		case ast.OpLt:
			return boolInt(l < r), true
		case ast.OpLe:
			return boolInt(l <= r), true
		case ast.OpGt:
			return boolInt(l > r), true
		case ast.OpGe:
			return boolInt(l >= r), true
		}
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
