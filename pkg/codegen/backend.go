package codegen

import (
	"bytes"
	"fmt"

	"github.com/xplshn/gpl0/pkg/ast"
	"github.com/xplshn/gpl0/pkg/bof"
	"github.com/xplshn/gpl0/pkg/config"
)

// Backend is the interface that all output backends must implement.
type Backend interface {
	// Generate compiles a program and renders the result as bytes.
	Generate(prog *ast.Node, cfg *config.Config) (*bytes.Buffer, error)
}

type bufferCloser struct{ *bytes.Buffer }

func (bufferCloser) Close() error { return nil }

// Compile runs a fresh Context over prog and writes the object image to buf.
// It returns the Context so callers can inspect its literal table and
// warning count.
func Compile(prog *ast.Node, cfg *config.Config, buf *bytes.Buffer) (*Context, error) {
	ctx := NewContext(cfg)
	obj, err := ctx.GenerateProgram(prog)
	if err != nil {
		return ctx, err
	}
	if err := ctx.Emit(bof.NewWriter(bufferCloser{buf}), obj); err != nil {
		return ctx, err
	}
	return ctx, nil
}

type bofBackend struct{}

// NewBOFBackend returns a backend producing a BOF object image.
func NewBOFBackend() Backend { return bofBackend{} }

func (bofBackend) Generate(prog *ast.Node, cfg *config.Config) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if _, err := Compile(prog, cfg, &buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

type listingBackend struct{}

// NewListingBackend returns a backend producing a readable listing of the
// object image followed by the literal table.
func NewListingBackend() Backend { return listingBackend{} }

func (listingBackend) Generate(prog *ast.Node, cfg *config.Config) (*bytes.Buffer, error) {
	var image bytes.Buffer
	ctx, err := Compile(prog, cfg, &image)
	if err != nil {
		return nil, err
	}
	f, err := bof.Read(&image)
	if err != nil {
		return nil, fmt.Errorf("codegen: reading back object image: %w", err)
	}

	var out bytes.Buffer
	if err := f.Disassemble(&out); err != nil {
		return nil, err
	}
	out.WriteString("\n")
	if err := ctx.Literals().Fprint(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
