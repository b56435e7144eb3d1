package util

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tebeka/atexit"

	"github.com/xplshn/gpl0/pkg/ast"
	"github.com/xplshn/gpl0/pkg/config"
)

var sourceFile = "<input>"

// SetSourceFile names the input that positions in diagnostics refer to.
func SetSourceFile(name string) {
	if name != "" {
		sourceFile = name
	}
}

func location(pos ast.Pos) string {
	if !pos.IsValid() {
		return sourceFile
	}
	return fmt.Sprintf("%s:%s", sourceFile, pos)
}

// Error logs a formatted error at pos and exits, running the registered
// exit handlers first.
func Error(pos ast.Pos, format string, args ...interface{}) {
	log.Error(fmt.Sprintf(format, args...), "at", location(pos))
	atexit.Exit(1)
}

// Warn logs a formatted warning at pos if wt is enabled in cfg and reports
// whether it did.
func Warn(cfg *config.Config, wt config.Warning, pos ast.Pos, format string, args ...interface{}) bool {
	if !cfg.IsWarningEnabled(wt) {
		return false
	}
	log.Warn(fmt.Sprintf(format, args...), "at", location(pos), "flag", "-W"+cfg.Warnings[wt].Name)
	return true
}
