// Package logging defines the small logger interface the engine uses for
// access and error logging, mirroring the teacher's own "Logger" field
// (valyala-fasthttp/server.go) and the tab-separated access-log line
// Reinis-FTM-go-http-server's server.handle writes per request.
package logging

import (
	"log"
	"os"
)

// Logger is satisfied by anything with a Printf method, so callers can
// plug in any structured logger without this package depending on one.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Default returns a Logger backed by the standard library's log package,
// writing to stderr with a timestamp prefix — the same backing store the
// teacher itself uses for this concern.
func Default() Logger {
	return log.New(os.Stderr, "originhttp ", log.LstdFlags)
}

// nopLogger discards everything; useful for tests that don't want log
// noise.
type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// Nop returns a Logger that discards all output.
func Nop() Logger { return nopLogger{} }
