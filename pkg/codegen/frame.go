package codegen

import (
	"github.com/xplshn/gpl0/pkg/ast"
	"github.com/xplshn/gpl0/pkg/code"
	"github.com/xplshn/gpl0/pkg/config"
	"github.com/xplshn/gpl0/pkg/isa"
)

// Frame layout. The stack grows downward and SP addresses the top element.
// Entering a scope pushes the enclosing FP, which becomes the new frame's
// static link, and points FP just below it:
//
//	FP+1  static link
//	FP-0  local 0
//	FP-1  local 1
//	...
//
// so local i sits at ast.LocalOffset(i).
const StaticLinkOffset = 1

// access is the code needed to reach one variable: a prefix leaving the
// frame address on the operand stack (empty for the current frame) and the
// load and store instructions that complete the access.
type access struct {
	prefix      code.Seq
	load, store isa.Instruction
}

// resolve turns a lexical address into an access relative to ctx.fp.
// Identifier loads, assignment targets and read targets all go through here.
func (ctx *Context) resolve(n *ast.Node, addr ast.LexAddr) access {
	if addr.Levels < 0 {
		malformed(n, "negative scope depth %d", addr.Levels)
	}
	if !isa.FitsImm(addr.Offset) {
		exhausted(n, "frame offset %d does not fit an instruction", addr.Offset)
	}
	if addr.Levels == 0 {
		return access{
			load:  isa.Load(ctx.fp, addr.Offset),
			store: isa.Store(ctx.fp, addr.Offset),
		}
	}
	prefix := code.Singleton(isa.Link(ctx.fp))
	for i := 1; i < addr.Levels; i++ {
		prefix = code.AddToEnd(prefix, isa.Walk())
	}
	return access{
		prefix: prefix,
		load:   isa.LoadIndirect(addr.Offset),
		store:  isa.StoreIndirect(addr.Offset),
	}
}

func (ctx *Context) enterFrame() code.Seq {
	return code.Of(isa.Push(ctx.fp), isa.AddI(ctx.fp, isa.SP, -1))
}

// allocSlot reserves the stack slot of one declaration, initialized from the
// literal pool when the declaration has an initializer.
func (ctx *Context) allocSlot(decl *ast.Node) code.Seq {
	if decl == nil || decl.Type != ast.VarDecl {
		malformed(decl, "expected a variable declaration")
	}
	d := nodeData[ast.VarDeclNode](decl)
	if d.Init == nil {
		return code.Singleton(isa.AddI(isa.SP, isa.SP, -1))
	}
	if !ctx.cfg.IsFeatureEnabled(config.FeatInitDecl) {
		malformed(decl, "initialized declaration of '%s' is not allowed in %s", d.Name, ctx.cfg.StdName)
	}
	if d.Init.Type != ast.Literal {
		malformed(d.Init, "initializer of '%s' must be a literal, got %s", d.Name, d.Init.Type)
	}
	return ctx.codegenLiteral(d.Init)
}

func (ctx *Context) leaveFrame(locals int) code.Seq {
	var s code.Seq
	if locals > 0 {
		s = code.Singleton(isa.AddI(isa.SP, isa.SP, locals))
	}
	return code.AddToEnd(s, isa.Pop(ctx.fp))
}
