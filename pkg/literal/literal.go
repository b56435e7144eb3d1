// Package literal implements the literal table: a pool of constant words in which
// every distinct value is stored once, at an offset fixed when the value is first
// seen.
package literal

import (
	"errors"
	"fmt"
	"io"

	"github.com/xplshn/gpl0/pkg/isa"
)

var (
	// ErrIterating is returned when the table is reset or a second iteration is
	// started while an iteration is in progress.
	ErrIterating = errors.New("literal table: iteration in progress")
	// ErrExhausted is returned by Iterator.Next past the last entry.
	ErrExhausted = errors.New("literal table: no more literals")
)

// Table maps words to offsets. Offsets are assigned 0, 1, 2, ... in order of
// first appearance and are never reassigned. A Table is not safe for
// concurrent use; at most one Iterator may be live at a time.
type Table struct {
	values []isa.Word
	index  map[isa.Word]int
	iter   *Iterator
}

func New() *Table {
	t := &Table{}
	t.reset()
	return t
}

func (t *Table) reset() {
	t.values = nil
	t.index = make(map[isa.Word]int)
	t.iter = nil
}

// Initialize empties the table so it can serve a new generation run.
func (t *Table) Initialize() error {
	if t.iter != nil {
		return ErrIterating
	}
	t.reset()
	return nil
}

// Lookup returns the offset of v, adding v at the next free offset if it has
// not been seen before. The pool must not grow while it is being iterated, so
// Lookup panics if an iteration is active.
func (t *Table) Lookup(v isa.Word) int {
	if off, ok := t.index[v]; ok {
		return off
	}
	if t.iter != nil {
		panic(fmt.Errorf("lookup of new literal %d: %w", v, ErrIterating))
	}
	off := len(t.values)
	t.values = append(t.values, v)
	t.index[v] = off
	return off
}

func (t *Table) Size() int   { return len(t.values) }
func (t *Table) Empty() bool { return len(t.values) == 0 }

// Iterating reports whether an Iterator is live.
func (t *Table) Iterating() bool { return t.iter != nil }

// Iterator walks a table's values in offset order.
type Iterator struct {
	t   *Table
	pos int
}

// StartIteration begins a walk over the table. It fails with ErrIterating if a
// previous iterator has not been ended.
func (t *Table) StartIteration() (*Iterator, error) {
	if t.iter != nil {
		return nil, ErrIterating
	}
	t.iter = &Iterator{t: t}
	return t.iter, nil
}

func (it *Iterator) HasNext() bool {
	return it.t != nil && it.pos < len(it.t.values)
}

func (it *Iterator) Next() (isa.Word, error) {
	if !it.HasNext() {
		return 0, ErrExhausted
	}
	v := it.t.values[it.pos]
	it.pos++
	return v, nil
}

// End releases the table for further use. Calling End more than once is harmless.
func (it *Iterator) End() {
	if it.t != nil && it.t.iter == it {
		it.t.iter = nil
	}
	it.t = nil
}

// Fprint writes the table as an offset/value listing.
func (t *Table) Fprint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Offset | Value\n-------+-------\n"); err != nil {
		return err
	}
	for off, v := range t.values {
		if _, err := fmt.Fprintf(w, "%6d | %d\n", off, v); err != nil {
			return err
		}
	}
	return nil
}
