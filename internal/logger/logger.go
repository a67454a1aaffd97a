// Package logger builds the process logger.  It is the same gommon
// logger echo uses internally, so request logs, framework messages and
// application messages share one format and one level.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

const header = `{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`

// New returns a JSON logger with the given prefix writing to w.  A nil
// w means stdout.
func New(prefix, level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stdout
	}
	l := log.New(prefix)
	l.SetOutput(w)
	l.SetHeader(header)
	l.SetLevel(ParseLevel(level))
	return l
}

// ParseLevel maps a level name to a gommon level.  Unknown names fall
// back to INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
