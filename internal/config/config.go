// Package config parses the command-line flags the originserver binary
// needs, grounded on Reinis-FTM-go-http-server/cmd/httpserver/main.go's
// plain flag-driven entry point — this pack's idiom for a cmd/ binary,
// even though the teacher library itself takes a struct, not flags.
package config

import (
	"flag"
	"time"
)

// Config holds everything the server entry point needs to stand up a
// listener and an engine.Conn per accepted connection.
type Config struct {
	// Addr is the TCP address to listen on, e.g. ":8080".
	Addr string

	// ReusePort enables SO_REUSEPORT via tcplisten, letting multiple
	// processes share the same bind address.
	ReusePort bool

	// ReadTimeout and WriteTimeout: the larger of the two is a single
	// deadline for the whole connection, counted from accept, which
	// netio.Conn applies to every Read and Write. There is no separate
	// per-Read or per-Write timeout. Zero for both means no deadline.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// FileRoot is the directory staticfile requests are served from.
	FileRoot string

	// Verbose enables access logging to stderr.
	Verbose bool
}

// Parse builds a Config from args (normally os.Args[1:]).
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("originserver", flag.ContinueOnError)

	cfg := Config{}
	fs.StringVar(&cfg.Addr, "addr", "127.0.0.1:1234", "address to listen on")
	fs.BoolVar(&cfg.ReusePort, "reuseport", false, "enable SO_REUSEPORT")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", 0, "connection deadline; the larger of -read-timeout and -write-timeout applies (0 disables)")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", 0, "connection deadline; the larger of -read-timeout and -write-timeout applies (0 disables)")
	fs.StringVar(&cfg.FileRoot, "file-root", ".", "directory served under /files/")
	fs.BoolVar(&cfg.Verbose, "verbose", true, "log each request")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
