package isa

import "fmt"

// Word layout, most significant bit first:
//
//	[op:6][rt:3][rs:3][imm:20]
//
// imm is two's complement.
const (
	immBits = 20
	regBits = 3
	opBits  = 6

	immMask = 1<<immBits - 1
	regMask = 1<<regBits - 1
	opMask  = 1<<opBits - 1

	rsShift = immBits
	rtShift = immBits + regBits
	opShift = immBits + 2*regBits

	MaxImm = 1<<(immBits-1) - 1
	MinImm = -(1 << (immBits - 1))
)

// FitsImm reports whether v can be carried in an immediate field.
func FitsImm(v int) bool { return v >= MinImm && v <= MaxImm }

// Encode packs an instruction into a single machine word.
func Encode(i Instruction) (uint32, error) {
	if !i.Op.Valid() {
		return 0, fmt.Errorf("isa: unknown opcode %d", uint8(i.Op))
	}
	if i.Rt >= NumRegisters || i.Rs >= NumRegisters {
		return 0, fmt.Errorf("isa: %s: register out of range", i.Op)
	}
	if !FitsImm(int(i.Imm)) {
		return 0, fmt.Errorf("isa: %s: immediate %d out of range [%d, %d]", i.Op, i.Imm, MinImm, MaxImm)
	}
	w := uint32(i.Op)&opMask<<opShift |
		uint32(i.Rt)&regMask<<rtShift |
		uint32(i.Rs)&regMask<<rsShift |
		uint32(i.Imm)&immMask
	return w, nil
}

// Decode unpacks a machine word produced by Encode.
func Decode(w uint32) (Instruction, error) {
	op := Op(w >> opShift & opMask)
	if !op.Valid() {
		return Instruction{}, fmt.Errorf("isa: word %#08x: unknown opcode %d", w, uint8(op))
	}
	imm := int32(w & immMask)
	if imm&(1<<(immBits-1)) != 0 {
		imm -= 1 << immBits
	}
	return Instruction{
		Op:  op,
		Rt:  Register(w >> rtShift & regMask),
		Rs:  Register(w >> rsShift & regMask),
		Imm: imm,
	}, nil
}
