package code

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/gpl0/pkg/isa"
)

func TestEmptyAndSingleton(t *testing.T) {
	e := Empty()
	if e.Size() != 0 || !e.IsEmpty() {
		t.Errorf("Empty() = size %d, empty %v; want 0, true", e.Size(), e.IsEmpty())
	}
	if _, ok := e.First(); ok {
		t.Errorf("First() on empty sequence reported an instruction")
	}
	s := Singleton(isa.Halt())
	if s.Size() != 1 || s.IsEmpty() {
		t.Errorf("Singleton() = size %d, empty %v; want 1, false", s.Size(), s.IsEmpty())
	}
}

func TestConcatSizeAndOrder(t *testing.T) {
	a := Of(isa.Lit(0), isa.Lit(1), isa.Add())
	b := Of(isa.Write(), isa.Halt())

	for _, tc := range []struct {
		name string
		l, r Seq
	}{
		{"both", a, b},
		{"left empty", Empty(), b},
		{"right empty", a, Empty()},
		{"self", a, a},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Concat(tc.l, tc.r)
			if got.Size() != tc.l.Size()+tc.r.Size() {
				t.Errorf("size = %d; want %d", got.Size(), tc.l.Size()+tc.r.Size())
			}
			want := append(tc.l.Instructions(), tc.r.Instructions()...)
			if diff := cmp.Diff(want, got.Instructions()); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOperandsAreNotMutated(t *testing.T) {
	body := Of(isa.Load(isa.FP, 0), isa.Write())
	before := body.Instructions()

	withBranch := Concat(Singleton(isa.BranchFalse(body.Size()+1)), body)
	extended := AddToEnd(body, isa.Jump(3))
	_ = ConcatAll(withBranch, extended, body)

	if body.Size() != 2 {
		t.Fatalf("body size changed to %d", body.Size())
	}
	if diff := cmp.Diff(before, body.Instructions()); diff != "" {
		t.Errorf("body changed (-before +after):\n%s", diff)
	}
	if extended.Size() != 3 {
		t.Errorf("extended size = %d; want 3", extended.Size())
	}
}

func TestFirstRest(t *testing.T) {
	s := Concat(Of(isa.Lit(0), isa.Lit(1)), Of(isa.Add(), isa.Write()))
	var got []isa.Instruction
	for !s.IsEmpty() {
		in, ok := s.First()
		if !ok {
			t.Fatal("First() failed on non-empty sequence")
		}
		got = append(got, in)
		next := s.Rest()
		if next.Size() != s.Size()-1 {
			t.Fatalf("Rest() size = %d; want %d", next.Size(), s.Size()-1)
		}
		s = next
	}
	want := []isa.Instruction{isa.Lit(0), isa.Lit(1), isa.Add(), isa.Write()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("First/Rest walk mismatch (-want +got):\n%s", diff)
	}
}

func TestAllStopsEarly(t *testing.T) {
	s := Of(isa.Lit(0), isa.Lit(1), isa.Lit(2))
	n := 0
	for range s.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d instructions; want 2", n)
	}
}

func TestDeepSequence(t *testing.T) {
	s := Empty()
	for i := 0; i < 100000; i++ {
		s = AddToEnd(s, isa.Lit(i%7))
	}
	if s.Size() != 100000 {
		t.Fatalf("size = %d; want 100000", s.Size())
	}
	i := 0
	for in := range s.All() {
		if in.Imm != int32(i%7) {
			t.Fatalf("instruction %d = %s; want LIT %d", i, in, i%7)
		}
		i++
	}
}

func TestString(t *testing.T) {
	got := Of(isa.Lit(2), isa.Write()).String()
	if got != "LIT 2\nWRT\n" {
		t.Errorf("String() = %q", got)
	}
}
