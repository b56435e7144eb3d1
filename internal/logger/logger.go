package logger

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Init installs the default logger used by the gpl0 tools. Debug output is
// only shown when verbose is set.
func Init(verbose, noColor bool) {
	log.SetDefault(log.NewWithOptions(os.Stderr,
		log.Options{
			ReportCaller:    verbose,
			ReportTimestamp: false,
			Prefix:          "gpl0",
		}))

	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	log.SetColorProfile(termenv.ANSI256)
	if noColor || !term.IsTerminal(int(os.Stderr.Fd())) {
		log.SetColorProfile(termenv.Ascii)
	}
}
