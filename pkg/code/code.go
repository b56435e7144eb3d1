// Package code provides Seq, the instruction sequence the code generator builds
// recursively.
//
// A Seq is an immutable value: Concat and AddToEnd return new sequences and
// never modify their operands, so a sequence's size may be measured and the
// sequence spliced elsewhere afterwards without either use seeing the other.
// Sequences are ropes, which keeps concatenation constant-time.
package code

import (
	"iter"
	"strings"

	"github.com/xplshn/gpl0/pkg/isa"
)

// Seq is an ordered sequence of instructions. The zero value is empty.
type Seq struct{ n *node }

type node struct {
	leaf        bool
	instr       isa.Instruction
	left, right *node
	size        int
}

func Empty() Seq { return Seq{} }

func Singleton(instr isa.Instruction) Seq {
	return Seq{&node{leaf: true, instr: instr, size: 1}}
}

// Of builds a sequence from instructions in order.
func Of(instrs ...isa.Instruction) Seq {
	s := Empty()
	for _, in := range instrs {
		s = AddToEnd(s, in)
	}
	return s
}

func Concat(a, b Seq) Seq {
	switch {
	case a.n == nil:
		return b
	case b.n == nil:
		return a
	}
	return Seq{&node{left: a.n, right: b.n, size: a.n.size + b.n.size}}
}

// AddToEnd is Concat(s, Singleton(instr)).
func AddToEnd(s Seq, instr isa.Instruction) Seq { return Concat(s, Singleton(instr)) }

// ConcatAll concatenates seqs left to right.
func ConcatAll(seqs ...Seq) Seq {
	var s Seq
	for _, t := range seqs {
		s = Concat(s, t)
	}
	return s
}

func (s Seq) Size() int {
	if s.n == nil {
		return 0
	}
	return s.n.size
}

func (s Seq) IsEmpty() bool { return s.n == nil }

// All yields the instructions in order.
func (s Seq) All() iter.Seq[isa.Instruction] {
	return func(yield func(isa.Instruction) bool) {
		if s.n == nil {
			return
		}
		stack := []*node{s.n}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if n.leaf {
				if !yield(n.instr) {
					return
				}
				continue
			}
			stack = append(stack, n.right, n.left)
		}
	}
}

// Instructions flattens the sequence into a fresh slice.
func (s Seq) Instructions() []isa.Instruction {
	out := make([]isa.Instruction, 0, s.Size())
	for in := range s.All() {
		out = append(out, in)
	}
	return out
}

// First returns the first instruction; ok is false when s is empty.
func (s Seq) First() (instr isa.Instruction, ok bool) {
	n := s.n
	if n == nil {
		return isa.Instruction{}, false
	}
	for !n.leaf {
		n = n.left
	}
	return n.instr, true
}

// Rest returns s without its first instruction. Rest of an empty sequence is empty.
func (s Seq) Rest() Seq {
	if s.n == nil {
		return s
	}
	return Seq{rest(s.n)}
}

func rest(n *node) *node {
	if n.leaf {
		return nil
	}
	l := rest(n.left)
	if l == nil {
		return n.right
	}
	return &node{left: l, right: n.right, size: n.size - 1}
}

func (s Seq) String() string {
	var sb strings.Builder
	for in := range s.All() {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
