// Package netio adapts a net.Conn into the byte-connection primitive the
// connection engine pulls from: read() resolves with the next chunk or an
// empty chunk on clean EOF, write() accepts a non-empty chunk, and any
// transport error is latched so every subsequent call observes it.
//
// Go's blocking net.Conn.Read is already the pause/resume primitive the
// original design called for: the kernel holds bytes until a Read syscall
// is issued, so "paused" just means no Read call is outstanding, and
// "resume" is issuing one. Conn still enforces the single-outstanding-read
// invariant explicitly, the same way fasthttp panics on its own "BUG:"
// invariant violations, because a second concurrent Read is a programming
// error in the engine, not a recoverable runtime condition.
package netio

import (
	"context"
	"io"
	"net"
	"sync"
	"time"
)

const defaultChunkSize = 16 * 1024

// Conn wraps a net.Conn with latched error/EOF state and single-reader
// enforcement.
type Conn struct {
	nc net.Conn

	mu      sync.Mutex
	reading bool
	err     error
	eof     bool
}

// New wraps an accepted net.Conn.
func New(nc net.Conn) *Conn {
	return &Conn{nc: nc}
}

// Raw returns the underlying net.Conn, for collaborators (e.g. deadlines)
// that need it directly.
func (c *Conn) Raw() net.Conn { return c.nc }

// Read resolves with the next available chunk, or an empty chunk on clean
// end-of-stream. It fails with the connection's latched transport error if
// one has already been recorded. Precondition: no other Read is pending.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	if c.reading {
		c.mu.Unlock()
		panic("netio: Conn.Read called while a read is already pending")
	}
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	if c.eof {
		c.mu.Unlock()
		return nil, nil
	}
	c.reading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.reading = false
		c.mu.Unlock()
	}()

	if dl, ok := ctx.Deadline(); ok {
		_ = c.nc.SetReadDeadline(dl)
	} else {
		_ = c.nc.SetReadDeadline(time.Time{})
	}

	buf := make([]byte, defaultChunkSize)
	n, err := c.nc.Read(buf)
	if err != nil {
		if err == io.EOF {
			c.mu.Lock()
			c.eof = true
			c.mu.Unlock()
			if n > 0 {
				return buf[:n], nil
			}
			return nil, nil
		}
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return nil, err
	}
	return buf[:n], nil
}

// Write sends p, resolving once the runtime has accepted it for sending.
// Precondition: p is non-empty.
func (c *Conn) Write(ctx context.Context, p []byte) error {
	if len(p) == 0 {
		panic("netio: Conn.Write called with an empty chunk")
	}

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if dl, ok := ctx.Deadline(); ok {
		_ = c.nc.SetWriteDeadline(dl)
	} else {
		_ = c.nc.SetWriteDeadline(time.Time{})
	}

	if _, err := c.nc.Write(p); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return err
	}
	return nil
}

// Close destroys the underlying socket. Safe to call multiple times.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// RemoteAddr reports the peer address, for access logging.
func (c *Conn) RemoteAddr() net.Addr {
	return c.nc.RemoteAddr()
}
