// Package codegen translates a decorated PL/0 syntax tree into code for the
// gpl0 stack machine and packages it, together with the literal pool, as a
// BOF object image.
//
// Every construct is compiled bottom-up into a code.Seq. Jump distances are
// taken from the sizes of already generated sub-sequences, so the text is
// final as soon as it is built and never patched.
package codegen

import (
	"github.com/charmbracelet/log"

	"github.com/xplshn/gpl0/pkg/ast"
	"github.com/xplshn/gpl0/pkg/bof"
	"github.com/xplshn/gpl0/pkg/code"
	"github.com/xplshn/gpl0/pkg/config"
	"github.com/xplshn/gpl0/pkg/isa"
	"github.com/xplshn/gpl0/pkg/literal"
	"github.com/xplshn/gpl0/pkg/util"
)

// Context holds the state of one generation run. It owns the literal table
// and may generate a single program.
type Context struct {
	cfg      *config.Config
	lits     *literal.Table
	fp       isa.Register
	used     bool
	warnings int
}

func NewContext(cfg *config.Config) *Context {
	return &Context{
		cfg:  cfg,
		lits: literal.New(),
		fp:   isa.FP,
	}
}

// Literals returns the literal table filled by GenerateProgram.
func (ctx *Context) Literals() *literal.Table { return ctx.lits }

// Warnings returns the number of warnings reported so far.
func (ctx *Context) Warnings() int { return ctx.warnings }

// Object is a generated program ready to be emitted.
type Object struct {
	Header bof.Header
	Text   code.Seq
}

// GenerateProgram compiles prog. On failure the returned error wraps
// ErrMalformed or ErrExhausted and is a *Error carrying the offending
// node's position.
func (ctx *Context) GenerateProgram(prog *ast.Node) (obj *Object, err error) {
	if ctx.used {
		return nil, ErrReused
	}
	ctx.used = true
	if err := ctx.lits.Initialize(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			obj, err = nil, e
		}
	}()

	text := ctx.codegenProgram(prog)
	if text.Size() > isa.MaxImm+1 {
		exhausted(prog, "program needs %d instructions, at most %d fit", text.Size(), isa.MaxImm+1)
	}

	log.Debug("generated program", "text", text.Size(), "literals", ctx.lits.Size(), "warnings", ctx.warnings)
	return &Object{
		Header: bof.NewHeader(text.Size(), ctx.lits.Size()),
		Text:   text,
	}, nil
}

// codegenProgram lays out the outermost scope like any other: a static link
// slot and the frame pointer set up, then the top-level declarations and
// statements, then a halt. The outermost frame is never torn down.
func (ctx *Context) codegenProgram(prog *ast.Node) code.Seq {
	if prog == nil || prog.Type != ast.Program {
		malformed(prog, "expected a program")
	}
	body := nodeData[ast.ProgramNode](prog).Body
	if body == nil || body.Type != ast.Block {
		malformed(prog, "program body must be a block")
	}
	s, _ := ctx.codegenScope(body)
	return code.AddToEnd(s, isa.Halt())
}

// codegenScope generates a scope's frame entry, declaration slots and
// statements, and returns them with the number of slots allocated.
func (ctx *Context) codegenScope(block *ast.Node) (code.Seq, int) {
	d := nodeData[ast.BlockNode](block)
	if !isa.FitsImm(len(d.Decls)) {
		exhausted(block, "%d locals in one block", len(d.Decls))
	}
	s := ctx.enterFrame()
	for _, decl := range d.Decls {
		s = code.Concat(s, ctx.allocSlot(decl))
	}
	for _, stmt := range d.Stmts {
		s = code.Concat(s, ctx.codegenStmt(stmt))
	}
	return s, len(d.Decls)
}

func (ctx *Context) codegenBlock(block *ast.Node) code.Seq {
	s, locals := ctx.codegenScope(block)
	return code.Concat(s, ctx.leaveFrame(locals))
}

func (ctx *Context) codegenStmt(node *ast.Node) code.Seq {
	if node == nil {
		malformed(nil, "missing statement")
	}
	switch node.Type {
	case ast.Block:
		return ctx.codegenBlock(node)
	case ast.Assign:
		return ctx.codegenAssign(node)
	case ast.If:
		return ctx.codegenIf(node)
	case ast.While:
		return ctx.codegenWhile(node)
	case ast.Read:
		return ctx.codegenRead(node)
	case ast.Write:
		return code.AddToEnd(ctx.codegenExpr(nodeData[ast.WriteNode](node).Expr), isa.Write())
	case ast.Call:
		return ctx.codegenCall(node)
	default:
		malformed(node, "%s is not a statement", node.Type)
		return code.Empty()
	}
}

// target checks that n names a variable and returns its lexical address.
func target(parent, n *ast.Node) ast.LexAddr {
	if n == nil || n.Type != ast.Ident {
		malformed(parent, "%s target must be a variable", parent.Type)
	}
	return nodeData[ast.IdentNode](n).Addr
}

func (ctx *Context) codegenAssign(node *ast.Node) code.Seq {
	d := nodeData[ast.AssignNode](node)
	addr := target(node, d.Target)
	acc := ctx.resolve(d.Target, addr)
	rhs := ctx.codegenExpr(d.Expr)
	if d.Expr.Type == ast.Ident && nodeData[ast.IdentNode](d.Expr).Addr == addr {
		ctx.warn(config.WarnExtra, node, "variable '%s' is assigned to itself", nodeData[ast.IdentNode](d.Target).Name)
	}
	return code.AddToEnd(code.Concat(acc.prefix, rhs), acc.store)
}

func (ctx *Context) codegenRead(node *ast.Node) code.Seq {
	d := nodeData[ast.ReadNode](node)
	acc := ctx.resolve(d.Target, target(node, d.Target))
	return code.AddToEnd(code.AddToEnd(acc.prefix, isa.Read()), acc.store)
}

func (ctx *Context) codegenCall(node *ast.Node) code.Seq {
	d := nodeData[ast.CallNode](node)
	if d.Entry < 0 || d.Entry > isa.MaxImm {
		malformed(node, "procedure '%s' has entry address %d", d.Name, d.Entry)
	}
	return code.Singleton(isa.Call(d.Entry))
}

func (ctx *Context) warn(wt config.Warning, n *ast.Node, format string, args ...interface{}) {
	if util.Warn(ctx.cfg, wt, n.Pos, format, args...) {
		ctx.warnings++
	}
}
