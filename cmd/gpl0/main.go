package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/tebeka/atexit"

	"github.com/xplshn/gpl0/internal/logger"
	"github.com/xplshn/gpl0/pkg/ast"
	"github.com/xplshn/gpl0/pkg/cli"
	"github.com/xplshn/gpl0/pkg/codegen"
	"github.com/xplshn/gpl0/pkg/config"
	"github.com/xplshn/gpl0/pkg/util"
)

func main() {
	app := cli.NewApp("gpl0")
	app.Synopsis = "[options] <input.json>"
	app.Description = "Code generator for PL/0. Reads a decorated syntax tree produced by the front end and writes a BOF object image for the gpl0 stack machine."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/gpl0>"
	app.Since = 2025

	var (
		outFile  string
		std      string
		dump     bool
		verbose  bool
		noColor  bool
		pedantic bool
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "a.bof", "Place the output into <file>.", "file")
	fs.String(&std, "std", "", "pl0x", "Specify language standard (pl0, pl0x)", "std")
	fs.Bool(&dump, "dump", "d", false, "Write a listing of the object image instead of the image itself.")
	fs.Bool(&verbose, "verbose", "v", false, "Log every compilation step.")
	fs.Bool(&noColor, "no-color", "", false, "Disable colored diagnostics.")
	fs.Bool(&pedantic, "pedantic", "", false, "Issue all warnings demanded by the current standard.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		logger.Init(verbose, noColor)

		if len(inputFiles) != 1 {
			util.Error(ast.Pos{}, "expected exactly one input file, got %d", len(inputFiles))
		}
		input := inputFiles[0]
		util.SetSourceFile(input)

		if pedantic {
			cfg.SetWarning(config.WarnPedantic, true)
		}
		if err := cfg.ApplyStd(std); err != nil {
			util.Error(ast.Pos{}, "%v", err)
		}
		cfg.ApplyFlagGroups(warningFlags, featureFlags)

		log.Debug("reading syntax tree", "file", input)
		prog := readTree(input)

		backend := codegen.NewBOFBackend()
		if dump {
			backend = codegen.NewListingBackend()
		}
		log.Debug("generating code", "std", cfg.StdName, "dump", dump)
		out, err := backend.Generate(prog, cfg)
		if err != nil {
			var cgErr *codegen.Error
			if errors.As(err, &cgErr) {
				util.Error(cgErr.Pos, "%v: %s", cgErr.Err, cgErr.Msg)
			}
			util.Error(ast.Pos{}, "code generation failed: %v", err)
		}

		if dump && outFile == "a.bof" {
			if _, err := os.Stdout.Write(out.Bytes()); err != nil {
				util.Error(ast.Pos{}, "writing listing: %v", err)
			}
			return nil
		}

		writeOutput(outFile, out.Bytes())
		log.Debug("wrote object image", "file", outFile, "bytes", out.Len(), "xxhash", fmt.Sprintf("%016x", xxhash.Sum64(out.Bytes())))
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func readTree(path string) *ast.Node {
	f, err := os.Open(path)
	if err != nil {
		util.Error(ast.Pos{}, "could not read file '%s': %v", path, err)
	}
	defer f.Close()
	prog, err := ast.Decode(f)
	if err != nil {
		util.Error(ast.Pos{}, "%v", err)
	}
	return prog
}

// writeOutput creates path and writes data to it. A partially written file
// is removed when the process exits with an error.
func writeOutput(path string, data []byte) {
	f, err := os.Create(path)
	if err != nil {
		util.Error(ast.Pos{}, "could not create '%s': %v", path, err)
	}
	done := false
	atexit.Register(func() {
		if !done {
			os.Remove(path)
		}
	})
	if _, err := f.Write(data); err != nil {
		f.Close()
		util.Error(ast.Pos{}, "writing '%s': %v", path, err)
	}
	if err := f.Close(); err != nil {
		util.Error(ast.Pos{}, "closing '%s': %v", path, err)
	}
	done = true
}
