package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/xplshn/gpl0/pkg/ast"
	"github.com/xplshn/gpl0/pkg/bof"
	"github.com/xplshn/gpl0/pkg/code"
	"github.com/xplshn/gpl0/pkg/config"
	"github.com/xplshn/gpl0/pkg/isa"
)

// Tree builders. Positions are left unset unless a test needs them.

func lit(v int64) *ast.Node { return ast.NewLiteral(ast.Pos{}, v) }

func ident(name string, levels, offset int) *ast.Node {
	return ast.NewIdent(ast.Pos{}, name, levels, offset)
}

func bin(op ast.Operator, l, r *ast.Node) *ast.Node { return ast.NewBinaryOp(ast.Pos{}, op, l, r) }
func un(op ast.Operator, e *ast.Node) *ast.Node     { return ast.NewUnaryOp(ast.Pos{}, op, e) }
func assign(t, e *ast.Node) *ast.Node               { return ast.NewAssign(ast.Pos{}, t, e) }
func write(e *ast.Node) *ast.Node                   { return ast.NewWrite(ast.Pos{}, e) }
func read(t *ast.Node) *ast.Node                    { return ast.NewRead(ast.Pos{}, t) }
func ifThen(c, t, e *ast.Node) *ast.Node            { return ast.NewIf(ast.Pos{}, c, t, e) }
func while(c, b *ast.Node) *ast.Node                { return ast.NewWhile(ast.Pos{}, c, b) }
func decl(name string) *ast.Node                    { return ast.NewVarDecl(ast.Pos{}, name, nil) }
func constDecl(name string, v int64) *ast.Node      { return ast.NewVarDecl(ast.Pos{}, name, lit(v)) }

func block(decls []*ast.Node, stmts ...*ast.Node) *ast.Node {
	return ast.NewBlock(ast.Pos{}, decls, stmts)
}

func program(body *ast.Node) *ast.Node { return ast.NewProgram(ast.Pos{}, body) }

func decls(names ...string) []*ast.Node {
	out := make([]*ast.Node, len(names))
	for i, n := range names {
		out[i] = decl(n)
	}
	return out
}

// e2eProgram is: var x; x := 3; if x < 5 then write x else write 0
func e2eProgram() *ast.Node {
	x := func() *ast.Node { return ident("x", 0, 0) }
	return program(block(decls("x"),
		assign(x(), lit(3)),
		ifThen(bin(ast.OpLt, x(), lit(5)), write(x()), write(lit(0))),
	))
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	if err := cfg.ApplyStd("pl0x"); err != nil {
		panic(err)
	}
	return cfg
}

// gen runs f against a fresh Context and converts a bailout into an error.
func gen(cfg *config.Config, f func(ctx *Context) code.Seq) (s code.Seq, ctx *Context, err error) {
	ctx = NewContext(cfg)
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	return f(ctx), ctx, nil
}

func mustGen(t *testing.T, f func(ctx *Context) code.Seq) code.Seq {
	t.Helper()
	s, _, err := gen(testConfig(), f)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	return s
}

// machine executes generated code. It exists to check that jump distances,
// frame layout and stack discipline fit together.
type machine struct {
	text []isa.Instruction
	mem  []isa.Word
	reg  [isa.NumRegisters]isa.Word
	in   []isa.Word
	out  []isa.Word
}

var errHalted = errors.New("halted")

// boot compiles prog to an object image, reads it back and loads it.
func boot(t *testing.T, cfg *config.Config, prog *ast.Node) *machine {
	t.Helper()
	var buf bytes.Buffer
	if _, err := Compile(prog, cfg, &buf); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	f, err := bof.Read(&buf)
	if err != nil {
		t.Fatalf("bof.Read: %v", err)
	}
	m := &machine{text: f.Text, mem: make([]isa.Word, f.Header.StackBottom+1)}
	copy(m.mem[f.Header.DataStart:], f.Data)
	m.reg[isa.GP] = f.Header.DataStart
	m.reg[isa.SP] = f.Header.StackBottom
	return m
}

func (m *machine) push(v isa.Word) {
	m.reg[isa.SP]--
	m.mem[m.reg[isa.SP]] = v
}

func (m *machine) pop() isa.Word {
	v := m.mem[m.reg[isa.SP]]
	m.reg[isa.SP]++
	return v
}

// run executes from pc until HLT or until limit instructions have run.
func (m *machine) run(pc, limit int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pc %d: %v", pc, r)
		}
	}()
	for steps := 0; steps < limit; steps++ {
		if pc < 0 || pc >= len(m.text) {
			return fmt.Errorf("pc %d outside text", pc)
		}
		next, err := m.step(pc)
		if errors.Is(err, errHalted) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("pc %d: %w", pc, err)
		}
		pc = next
	}
	return fmt.Errorf("no HLT after %d steps", limit)
}

func bool2word(b bool) isa.Word {
	if b {
		return 1
	}
	return 0
}

func (m *machine) step(pc int) (int, error) {
	in := m.text[pc]
	switch in.Op {
	case isa.OpNop:
	case isa.OpHlt:
		return pc, errHalted
	case isa.OpLit:
		m.push(m.mem[m.reg[isa.GP]+in.Imm])
	case isa.OpLod:
		m.push(m.mem[m.reg[in.Rt]+in.Imm])
	case isa.OpSto:
		m.mem[m.reg[in.Rt]+in.Imm] = m.pop()
	case isa.OpLdi:
		m.push(m.mem[m.pop()+in.Imm])
	case isa.OpSti:
		v := m.pop()
		m.mem[m.pop()+in.Imm] = v
	case isa.OpLnk:
		m.push(m.mem[m.reg[in.Rt]+StaticLinkOffset])
	case isa.OpWlk:
		m.push(m.mem[m.pop()+StaticLinkOffset])
	case isa.OpPsh:
		m.push(m.reg[in.Rt])
	case isa.OpPop:
		m.reg[in.Rt] = m.pop()
	case isa.OpAddi:
		m.reg[in.Rt] = m.reg[in.Rs] + in.Imm
	case isa.OpNeg:
		m.push(-m.pop())
	case isa.OpAbs:
		v := m.pop()
		if v < 0 {
			v = -v
		}
		m.push(v)
	case isa.OpAdd, isa.OpSub, isa.OpMul, isa.OpDiv, isa.OpMod,
		isa.OpEq, isa.OpNe, isa.OpLt, isa.OpLe, isa.OpGt, isa.OpGe:
		r, l := m.pop(), m.pop()
		var v isa.Word
		switch in.Op {
		case isa.OpAdd:
			v = l + r
		case isa.OpSub:
			v = l - r
		case isa.OpMul:
			v = l * r
		case isa.OpDiv, isa.OpMod:
			if r == 0 {
				return 0, errors.New("division by zero")
			}
			if in.Op == isa.OpDiv {
				v = l / r
			} else {
				v = l % r
			}
		case isa.OpEq:
			v = bool2word(l == r)
		case isa.OpNe:
			v = bool2word(l != r)
		case isa.OpLt:
			v = bool2word(l < r)
		case isa.OpLe:
			v = bool2word(l <= r)
		case isa.OpGt:
			v = bool2word(l > r)
		case isa.OpGe:
			v = bool2word(l >= r)
		}
		m.push(v)
	case isa.OpBrf:
		if m.pop() == 0 {
			return pc + int(in.Imm), nil
		}
	case isa.OpJmp:
		return pc + 1 + int(in.Imm), nil
	case isa.OpRed:
		if len(m.in) == 0 {
			return 0, errors.New("input exhausted")
		}
		m.push(m.in[0])
		m.in = m.in[1:]
	case isa.OpWrt:
		m.out = append(m.out, m.pop())
	default:
		return 0, fmt.Errorf("cannot execute %s", in)
	}
	return pc + 1, nil
}
