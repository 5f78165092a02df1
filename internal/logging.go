package internal

import (
	"os"
	"strings"

	"github.com/inconshreveable/log15"
)

// InitLogging installs the root log15 handler. Unknown levels fall back to
// info, unknown formats to logfmt.
func InitLogging(level, format string) {
	lvl, err := log15.LvlFromString(strings.ToLower(level))
	if err != nil {
		lvl = log15.LvlInfo
	}
	var fmtr log15.Format
	switch format {
	case "json":
		fmtr = log15.JsonFormat()
	case "terminal":
		fmtr = log15.TerminalFormat()
	default:
		fmtr = log15.LogfmtFormat()
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stdout, fmtr)))
}

// Logger returns a logger tagged with the given module name
func Logger(module string) log15.Logger {
	return log15.New("module", module)
}

// Discard returns a logger that drops every record
func Discard() log15.Logger {
	l := log15.New()
	l.SetHandler(log15.DiscardHandler())
	return l
}
