// Command originserver is a small demo binary wiring config, a
// tcplisten-backed listener, and the connection engine together, in the
// shape of valyala-fasthttp/server.go's top-level Serve(ln, handler) plus
// Reinis-FTM-go-http-server/cmd/httpserver/main.go's signal-driven
// shutdown.
package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/valyala/tcplisten"

	"originhttp/internal/body"
	"originhttp/internal/config"
	"originhttp/internal/engine"
	"originhttp/internal/logging"
	"originhttp/internal/metrics"
	"originhttp/internal/staticfile"
	"originhttp/internal/wire"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("originserver: %v", err)
	}

	ln, err := newListener(cfg)
	if err != nil {
		log.Fatalf("originserver: listen: %v", err)
	}
	defer ln.Close()

	logger := logging.Nop()
	if cfg.Verbose {
		logger = logging.Default()
	}
	counters := &metrics.Counters{}

	handler := demoHandler(cfg.FileRoot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		ln.Close()
	}()

	log.Printf("originserver: listening on %s", cfg.Addr)
	acceptLoop(ctx, ln, handler, logger, counters, connDeadline(cfg))
}

// connDeadline picks the longer of the configured read/write timeouts as
// the per-connection deadline the engine's context carries; netio.Conn
// re-derives an actual socket deadline from it on every Read/Write.
func connDeadline(cfg config.Config) time.Duration {
	d := cfg.ReadTimeout
	if cfg.WriteTimeout > d {
		d = cfg.WriteTimeout
	}
	return d
}

func newListener(cfg config.Config) (net.Listener, error) {
	if !cfg.ReusePort {
		return net.Listen("tcp", cfg.Addr)
	}
	tcfg := tcplisten.Config{ReusePort: true}
	return tcfg.NewListener("tcp4", cfg.Addr)
}

func acceptLoop(ctx context.Context, ln net.Listener, handler engine.Handler, logger logging.Logger, counters *metrics.Counters, deadline time.Duration) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Printf("originserver: accept: %v", err)
				continue
			}
		}
		conn := engine.NewConn(nc, handler, logger, counters)
		connCtx := ctx
		cancel := func() {}
		if deadline > 0 {
			connCtx, cancel = context.WithTimeout(ctx, deadline)
		}
		go func() {
			defer cancel()
			conn.Serve(connCtx)
		}()
	}
}

// demoHandler implements the literal end-to-end scenarios from spec.md §8:
// "/" returns a fixed greeting, "/echo" mirrors the request body back, and
// "/files/" serves a byte-range-capable static file tree rooted at root.
func demoHandler(root string) engine.Handler {
	fs := staticfile.OSFS{}

	return func(ctx context.Context, req *wire.Request, reqBody body.Reader) (*wire.Response, error) {
		uri := string(req.URI)

		switch {
		case uri == "/":
			return &wire.Response{StatusCode: 200, Body: body.NewMemoryReader([]byte("hello world.\n"))}, nil

		case uri == "/echo":
			data, err := readAll(ctx, reqBody)
			if err != nil {
				return nil, err
			}
			return &wire.Response{StatusCode: 200, Body: body.NewMemoryReader(data)}, nil

		case strings.HasPrefix(uri, "/files/"):
			path, ok := safeJoin(root, strings.TrimPrefix(uri, "/files/"))
			if !ok {
				return &wire.Response{StatusCode: 404, Body: body.NewMemoryReader([]byte("404 Not Found\n"))}, nil
			}
			return staticfile.Serve(req, fs, path)

		default:
			return &wire.Response{StatusCode: 404, Body: body.NewMemoryReader([]byte("404 Not Found\n"))}, nil
		}
	}
}

// safeJoin confines a request-supplied suffix under root, rejecting any
// path that would climb above it after cleaning (spec.md §9's flagged
// path-traversal Open Question — resolved in SPEC_FULL.md §12 by pushing
// the guard to the collaborator wiring it to a real filesystem, not the
// core staticfile package).
func safeJoin(root, suffix string) (string, bool) {
	cleanRoot := filepath.Clean(root)
	joined := filepath.Join(cleanRoot, filepath.Clean("/"+suffix))
	if joined != cleanRoot && !strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) {
		return "", false
	}
	return joined, true
}

func readAll(ctx context.Context, r body.Reader) ([]byte, error) {
	var out []byte
	for {
		chunk, err := r.Read(ctx)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			return out, nil
		}
		out = append(out, chunk...)
	}
}
