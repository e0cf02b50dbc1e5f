// Package logging centralizes the leveled-logger construction shared by the
// mmav and sensordb packages, so both read the same "debug:"/"info:"/
// "warn:"/"error:"/"alert:" prefix convention through colog.
package logging

import (
	"log"
	"os"

	"github.com/comail/colog"
)

// New returns a *log.Logger whose output is routed through a colog
// formatter keyed off the line's severity prefix (e.g. "warn: ..."),
// tagged with prefix in the same position the stdlib log package would
// put it.
func New(prefix string) *log.Logger {
	cl := colog.NewCoLog(os.Stderr, prefix, log.LstdFlags)
	cl.SetMinLevel(colog.LDebug)
	cl.SetDefaultLevel(colog.LInfo)
	return log.New(cl.Writer(), "", 0)
}
