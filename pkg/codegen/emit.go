package codegen

import (
	"fmt"

	"github.com/xplshn/gpl0/pkg/bof"
	"github.com/xplshn/gpl0/pkg/isa"
)

// ObjectWriter receives an object image piece by piece. *bof.Writer is the
// production implementation.
type ObjectWriter interface {
	WriteHeader(bof.Header) error
	WriteWord(isa.Word) error
	Close() error
}

// Emit writes obj through w: the header, the text words in program order,
// the literal pool in offset order, then Close. obj must come from this
// Context's GenerateProgram. w is closed even when writing fails.
func (ctx *Context) Emit(w ObjectWriter, obj *Object) (err error) {
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("codegen: closing object: %w", cerr)
		}
	}()

	if obj == nil {
		return fmt.Errorf("codegen: nothing to emit")
	}
	if int(obj.Header.TextLength) != obj.Text.Size() || obj.Header.DataWords() != ctx.lits.Size() {
		return fmt.Errorf("codegen: header describes %d+%d words, object has %d+%d",
			obj.Header.TextLength, obj.Header.DataWords(), obj.Text.Size(), ctx.lits.Size())
	}

	if err := w.WriteHeader(obj.Header); err != nil {
		return fmt.Errorf("codegen: writing header: %w", err)
	}
	addr := 0
	for in := range obj.Text.All() {
		word, err := isa.Encode(in)
		if err != nil {
			return fmt.Errorf("codegen: text word %d: %w", addr, err)
		}
		if err := w.WriteWord(isa.Word(word)); err != nil {
			return fmt.Errorf("codegen: writing text word %d: %w", addr, err)
		}
		addr++
	}

	it, err := ctx.lits.StartIteration()
	if err != nil {
		return err
	}
	defer it.End()
	for it.HasNext() {
		v, err := it.Next()
		if err != nil {
			return err
		}
		if err := w.WriteWord(v); err != nil {
			return fmt.Errorf("codegen: writing literal %d: %w", v, err)
		}
	}
	return nil
}
