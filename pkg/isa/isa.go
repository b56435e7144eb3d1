// Package isa describes the instruction set of the stack machine targeted by gpl0:
// opcodes, registers, the symbolic constructors used by the code generator and
// the packing of instructions into 32-bit words.
package isa

import (
	"fmt"
	"strings"
)

// Word is a machine word. Literals and data-segment values are words.
type Word = int32

const BytesPerWord = 4

type Register uint8

const (
	GP Register = 0
	SP Register = 1
	FP Register = 2
	R3 Register = 3
	R4 Register = 4
	R5 Register = 5
	R6 Register = 6
	RA Register = 7

	NumRegisters = 8
)

var regNames = [NumRegisters]string{"$gp", "$sp", "$fp", "$r3", "$r4", "$r5", "$r6", "$ra"}

func (r Register) String() string {
	if int(r) < NumRegisters {
		return regNames[r]
	}
	return fmt.Sprintf("$?%d", r)
}

// ParseRegister maps a symbolic register name back to its number.
func ParseRegister(name string) (Register, bool) {
	for i, n := range regNames {
		if n == name {
			return Register(i), true
		}
	}
	return 0, false
}

type Op uint8

const (
	OpNop Op = iota
	OpHlt
	OpLit  // push literal pool word at GP+imm
	OpLod  // push word at rt+imm
	OpSto  // pop into rt+imm
	OpLdi  // pop frame address a, push word at a+imm
	OpSti  // pop value v, pop frame address a, store v at a+imm
	OpLnk  // push static link of the frame addressed by rt
	OpWlk  // replace top (a frame address) with that frame's static link
	OpPsh  // push rt
	OpPop  // pop into rt
	OpAddi // rt = rs + imm
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpAbs
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpBrf // pop; if zero, PC = address of this instruction + imm
	OpJmp // PC = address of the next instruction + imm
	OpCal // RA = PC; PC = imm
	OpRed // push an integer read from input
	OpWrt // pop and print as integer
	opCount
)

type format int

const (
	fmtNone      format = iota
	fmtImm              // OP imm
	fmtReg              // OP rt
	fmtRegImm           // OP rt, imm
	fmtRegRegImm        // OP rt, rs, imm
)

type opInfo struct {
	name string
	form format
}

var ops = [opCount]opInfo{
	OpNop:  {"NOP", fmtNone},
	OpHlt:  {"HLT", fmtNone},
	OpLit:  {"LIT", fmtImm},
	OpLod:  {"LOD", fmtRegImm},
	OpSto:  {"STO", fmtRegImm},
	OpLdi:  {"LDI", fmtImm},
	OpSti:  {"STI", fmtImm},
	OpLnk:  {"LNK", fmtReg},
	OpWlk:  {"WLK", fmtNone},
	OpPsh:  {"PSH", fmtReg},
	OpPop:  {"POP", fmtReg},
	OpAddi: {"ADDI", fmtRegRegImm},
	OpAdd:  {"ADD", fmtNone},
	OpSub:  {"SUB", fmtNone},
	OpMul:  {"MUL", fmtNone},
	OpDiv:  {"DIV", fmtNone},
	OpMod:  {"MOD", fmtNone},
	OpNeg:  {"NEG", fmtNone},
	OpAbs:  {"ABS", fmtNone},
	OpEq:   {"EQ", fmtNone},
	OpNe:   {"NE", fmtNone},
	OpLt:   {"LT", fmtNone},
	OpLe:   {"LE", fmtNone},
	OpGt:   {"GT", fmtNone},
	OpGe:   {"GE", fmtNone},
	OpBrf:  {"BRF", fmtImm},
	OpJmp:  {"JMP", fmtImm},
	OpCal:  {"CAL", fmtImm},
	OpRed:  {"RED", fmtNone},
	OpWrt:  {"WRT", fmtNone},
}

func (op Op) Valid() bool { return op < opCount }

func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("OP(%d)", uint8(op))
	}
	return ops[op].name
}

// Instruction is one machine instruction. Which operands are meaningful depends
// on the opcode; unused operands are zero.
type Instruction struct {
	Op  Op
	Rt  Register
	Rs  Register
	Imm int32
}

func (i Instruction) String() string {
	if !i.Op.Valid() {
		return i.Op.String()
	}
	var sb strings.Builder
	sb.WriteString(ops[i.Op].name)
	switch ops[i.Op].form {
	case fmtImm:
		fmt.Fprintf(&sb, " %d", i.Imm)
	case fmtReg:
		fmt.Fprintf(&sb, " %s", i.Rt)
	case fmtRegImm:
		fmt.Fprintf(&sb, " %s, %d", i.Rt, i.Imm)
	case fmtRegRegImm:
		fmt.Fprintf(&sb, " %s, %s, %d", i.Rt, i.Rs, i.Imm)
	}
	return sb.String()
}

// --- Constructors ---

func Nop() Instruction  { return Instruction{Op: OpNop} }
func Halt() Instruction { return Instruction{Op: OpHlt} }

// Lit loads the literal-pool word at offset.
func Lit(offset int) Instruction { return Instruction{Op: OpLit, Imm: int32(offset)} }

func Load(base Register, offset int) Instruction {
	return Instruction{Op: OpLod, Rt: base, Imm: int32(offset)}
}
func Store(base Register, offset int) Instruction {
	return Instruction{Op: OpSto, Rt: base, Imm: int32(offset)}
}
func LoadIndirect(offset int) Instruction  { return Instruction{Op: OpLdi, Imm: int32(offset)} }
func StoreIndirect(offset int) Instruction { return Instruction{Op: OpSti, Imm: int32(offset)} }

func Link(base Register) Instruction { return Instruction{Op: OpLnk, Rt: base} }
func Walk() Instruction              { return Instruction{Op: OpWlk} }

func Push(r Register) Instruction { return Instruction{Op: OpPsh, Rt: r} }
func Pop(r Register) Instruction  { return Instruction{Op: OpPop, Rt: r} }

func AddI(rt, rs Register, imm int) Instruction {
	return Instruction{Op: OpAddi, Rt: rt, Rs: rs, Imm: int32(imm)}
}

func Add() Instruction { return Instruction{Op: OpAdd} }
func Sub() Instruction { return Instruction{Op: OpSub} }
func Mul() Instruction { return Instruction{Op: OpMul} }
func Div() Instruction { return Instruction{Op: OpDiv} }
func Mod() Instruction { return Instruction{Op: OpMod} }
func Neg() Instruction { return Instruction{Op: OpNeg} }
func Abs() Instruction { return Instruction{Op: OpAbs} }
func Eq() Instruction  { return Instruction{Op: OpEq} }
func Ne() Instruction  { return Instruction{Op: OpNe} }
func Lt() Instruction  { return Instruction{Op: OpLt} }
func Le() Instruction  { return Instruction{Op: OpLe} }
func Gt() Instruction  { return Instruction{Op: OpGt} }
func Ge() Instruction  { return Instruction{Op: OpGe} }

// BranchFalse pops the condition and, when it is zero, continues at the
// address of the branch itself plus distance.
func BranchFalse(distance int) Instruction { return Instruction{Op: OpBrf, Imm: int32(distance)} }

// Jump continues at the address following the jump plus distance.
func Jump(distance int) Instruction { return Instruction{Op: OpJmp, Imm: int32(distance)} }

func Call(entry int) Instruction { return Instruction{Op: OpCal, Imm: int32(entry)} }
func Read() Instruction          { return Instruction{Op: OpRed} }
func Write() Instruction         { return Instruction{Op: OpWrt} }
